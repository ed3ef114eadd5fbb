package marketing

import (
	"errors"
	"fmt"

	"glua-backend/internal/auth"
	"glua-backend/internal/database"
	"glua-backend/internal/ledger"
	"glua-backend/internal/models"
	"glua-backend/internal/report"

	"github.com/gofiber/fiber/v2"
)

type CreateItemRequest struct {
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

type IssueItemRequest struct {
	ItemID         uint   `json:"item_id"`
	IssuedTo       string `json:"issued_to"`
	QuantityIssued int64  `json:"quantity_issued"`
}

type ItemResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

type IssuedItemResponse struct {
	ID             uint   `json:"id"`
	Item           string `json:"item"`
	Stock          int64  `json:"stock"`
	IssuedTo       string `json:"issued_to"`
	QuantityIssued int64  `json:"quantity_issued"`
	IssuedBy       string `json:"issued_by"`
	DateIssued     string `json:"date_issued"`
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Marketing item not found")
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid quantity issued. Please enter a valid number")
	case errors.Is(err, ledger.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusConflict, "Cannot issue more than the available stock")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Operation failed")
}

// GET /api/marketing-items - `q` filters by name
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := report.LikeFilter(database.DB.Model(&models.MarketingItem{}), c.Query("q"), "name")

		var items []models.MarketingItem
		if err := q.Order("name ASC, id ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list marketing items")
		}

		resp := make([]ItemResponse, 0, len(items))
		for _, it := range items {
			resp = append(resp, ItemResponse{ID: it.ID, Name: it.Name, Stock: it.Stock})
		}
		return c.JSON(resp)
	}
}

// POST /api/marketing-items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if body.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stock cannot be negative")
		}

		item := models.MarketingItem{Name: body.Name, Stock: body.Stock}
		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create marketing item")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      item.ID,
			"message": fmt.Sprintf("Marketing item %q has been created successfully", item.Name),
		})
	}
}

// POST /api/marketing-items/issue
func IssueItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body IssueItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.IssuedTo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Issued-to is required")
		}

		issued, err := ledger.IssueMarketingItem(database.DB, body.ItemID, body.IssuedTo, userID, body.QuantityIssued)
		if err != nil {
			return ledgerError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      issued.ID,
			"message": fmt.Sprintf("Issued %d of %s to %s", issued.QuantityIssued, issued.Item, issued.IssuedTo),
		})
	}
}

// GET /api/issued-items - search, date range and pagination over the issuance ledger
func IssuedItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := report.ParsePagination(c)

		base := database.DB.Model(&models.IssuedItem{}).
			Joins("LEFT JOIN users ON users.id = issued_items.issued_by_id")
		base = report.LikeFilter(base, c.Query("q"), "issued_items.item", "issued_items.issued_to", "users.username")
		base = report.ApplyDateRange(base, "issued_items.date_issued", c)

		var total int64
		if err := base.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count issued items")
		}

		var issued []models.IssuedItem
		if err := base.
			Preload("IssuedBy").
			Order("issued_items.date_issued DESC, issued_items.id DESC").
			Offset(p.Offset()).Limit(p.PerPage).
			Find(&issued).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list issued items")
		}

		items := make([]IssuedItemResponse, 0, len(issued))
		for _, it := range issued {
			resp := IssuedItemResponse{
				ID:             it.ID,
				Item:           it.Item,
				Stock:          it.Stock,
				IssuedTo:       it.IssuedTo,
				QuantityIssued: it.QuantityIssued,
				DateIssued:     it.DateIssued.Format("2006-01-02 15:04:05"),
			}
			if it.IssuedBy != nil {
				resp.IssuedBy = it.IssuedBy.Username
			}
			items = append(items, resp)
		}
		return c.JSON(report.PagedResponse(items, p, total))
	}
}
