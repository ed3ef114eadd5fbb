package picking

import (
	"errors"
	"time"

	"glua-backend/internal/database"
	"glua-backend/internal/models"
	"glua-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AddEntryRequest struct {
	DrugID   uint  `json:"drug_id"`
	ClientID uint  `json:"client_id"`
	Quantity int64 `json:"quantity"`
}

type EntryResponse struct {
	ID       uint   `json:"id"`
	Date     string `json:"date"`
	Client   string `json:"client"`
	Product  string `json:"product"`
	BatchNo  string `json:"batch_no"`
	Quantity int64  `json:"quantity"`
}

func toEntryResponse(e models.PickingList) EntryResponse {
	resp := EntryResponse{
		ID:       e.ID,
		Date:     e.Date.Format("2006-01-02 15:04:05"),
		Product:  e.Product,
		BatchNo:  e.BatchNo,
		Quantity: e.Quantity,
	}
	if e.Client != nil {
		resp.Client = e.Client.Name
	}
	return resp
}

// POST /api/picking-list
//
// Adding an entry snapshots the drug's name and batch number but does not reserve
// or decrement stock. The availability check here is advisory only.
func AddHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be greater than zero")
		}
		if body.ClientID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Please select a client")
		}

		var drug models.Drug
		if err := database.DB.First(&drug, body.DrugID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Drug not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load drug")
		}

		var cl models.Client
		if err := database.DB.First(&cl, body.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Client not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load client")
		}

		if float64(body.Quantity) > drug.Stock {
			return fiber.NewError(fiber.StatusConflict, "Not enough stock available")
		}

		entry := models.PickingList{
			Date:     time.Now(),
			ClientID: &cl.ID,
			Product:  drug.Name,
			BatchNo:  drug.BatchNo,
			Quantity: body.Quantity,
		}
		if err := database.DB.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not add to picking list")
		}
		entry.Client = &cl

		return c.Status(fiber.StatusCreated).JSON(toEntryResponse(entry))
	}
}

// GET /api/picking-list - `q` searches product, batch number and client name
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := report.ParsePagination(c)

		base := database.DB.Model(&models.PickingList{}).
			Joins("LEFT JOIN clients ON clients.id = picking_lists.client_id")
		base = report.LikeFilter(base, c.Query("q"),
			"picking_lists.product", "picking_lists.batch_no", "clients.name")
		base = report.ApplyDateRange(base, "picking_lists.date", c)

		var total int64
		if err := base.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count picking list entries")
		}

		var entries []models.PickingList
		if err := base.
			Preload("Client").
			Order("picking_lists.date DESC, picking_lists.id DESC").
			Offset(p.Offset()).Limit(p.PerPage).
			Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list picking list entries")
		}

		items := make([]EntryResponse, 0, len(entries))
		for _, e := range entries {
			items = append(items, toEntryResponse(e))
		}
		return c.JSON(report.PagedResponse(items, p, total))
	}
}

// DELETE /api/picking-list/:id
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid entry id")
		}

		res := database.DB.Delete(&models.PickingList{}, id)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete entry")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Entry not found")
		}
		return c.JSON(fiber.Map{"message": "Entry removed from picking list"})
	}
}
