package inventory

import (
	"errors"
	"fmt"
	"time"

	"glua-backend/internal/auth"
	"glua-backend/internal/database"
	"glua-backend/internal/ledger"
	"glua-backend/internal/models"
	"glua-backend/internal/report"

	"github.com/gofiber/fiber/v2"
)

type CreateDrugRequest struct {
	Name          string  `json:"name"`
	BatchNo       string  `json:"batch_no"`
	Stock         float64 `json:"stock"`
	DosePack      float64 `json:"dose_pack"`
	ExpiryDate    *string `json:"expiry_date"` // "2006-01-02"
	ReorderLevel  float64 `json:"reorder_level"`
	MeasurementID *uint   `json:"measurement_id"`
}

type UpdateDrugRequest struct {
	Name         *string  `json:"name"`
	BatchNo      *string  `json:"batch_no"`
	ExpiryDate   *string  `json:"expiry_date"`
	ReorderLevel *float64 `json:"reorder_level"`
	DosePack     *float64 `json:"dose_pack"`
}

type RestockRequest struct {
	Supplier string `json:"supplier"`
	Added    int64  `json:"added"`
}

type SellRequest struct {
	ClientID uint    `json:"client_id"`
	Quantity float64 `json:"quantity"`
}

type LockRequest struct {
	ClientID uint    `json:"client_id"`
	Quantity float64 `json:"quantity"`
}

type StockedResponse struct {
	ID          uint    `json:"id"`
	DrugName    string  `json:"drug_name"`
	Supplier    string  `json:"supplier"`
	Staff       string  `json:"staff"`
	NumberAdded int64   `json:"number_added"`
	Total       float64 `json:"total"`
	DateAdded   string  `json:"date_added"`
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Record not found")
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return fiber.NewError(fiber.StatusBadRequest, "Quantity must be greater than zero")
	case errors.Is(err, ledger.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusConflict, "Not enough stock available")
	case errors.Is(err, ledger.ErrAlreadyResolved):
		return fiber.NewError(fiber.StatusConflict, "Already resolved")
	case errors.Is(err, ledger.ErrLockImmutable):
		return fiber.NewError(fiber.StatusConflict, "Cannot update locked drugs")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Operation failed")
}

// POST /api/drugs
func CreateDrugHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDrugRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name == "" || body.BatchNo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name and batch number are required")
		}
		if body.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stock cannot be negative")
		}

		drug := models.Drug{
			Name:          body.Name,
			BatchNo:       body.BatchNo,
			Stock:         body.Stock,
			DosePack:      body.DosePack,
			ReorderLevel:  body.ReorderLevel,
			MeasurementID: body.MeasurementID,
		}

		if body.ExpiryDate != nil && *body.ExpiryDate != "" {
			d, err := time.Parse("2006-01-02", *body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Expiry date must be 'YYYY-MM-DD'")
			}
			drug.ExpiryDate = &d
		}

		if err := database.DB.Create(&drug).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create drug")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      drug.ID,
			"message": fmt.Sprintf("%s has been successfully added to the inventory", drug.Name),
		})
	}
}

// GET /api/drugs - paginated, ordered by name; `q` searches name and batch number
func ListDrugsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := report.ParsePagination(c)

		base := database.DB.Model(&models.Drug{})
		base = report.LikeFilter(base, c.Query("q"), "name", "batch_no")

		var total int64
		if err := base.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count drugs")
		}

		var drugs []models.Drug
		if err := base.
			Order("name ASC, id ASC").
			Offset(p.Offset()).Limit(p.PerPage).
			Find(&drugs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list drugs")
		}

		items := make([]report.DrugResponse, 0, len(drugs))
		for _, d := range drugs {
			items = append(items, report.ToDrugResponse(d))
		}
		return c.JSON(report.PagedResponse(items, p, total))
	}
}

// PUT /api/drugs/:id - stock is deliberately not editable here, it only moves
// through the ledger operations.
func UpdateDrugHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid drug id")
		}

		var drug models.Drug
		if err := database.DB.First(&drug, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Drug not found")
		}

		var body UpdateDrugRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			drug.Name = *body.Name
		}
		if body.BatchNo != nil {
			drug.BatchNo = *body.BatchNo
		}
		if body.ReorderLevel != nil {
			drug.ReorderLevel = *body.ReorderLevel
		}
		if body.DosePack != nil {
			drug.DosePack = *body.DosePack
		}
		if body.ExpiryDate != nil {
			if *body.ExpiryDate == "" {
				drug.ExpiryDate = nil
			} else {
				d, err := time.Parse("2006-01-02", *body.ExpiryDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Expiry date must be 'YYYY-MM-DD'")
				}
				drug.ExpiryDate = &d
			}
		}

		if err := database.DB.Save(&drug).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update drug")
		}

		return c.JSON(report.ToDrugResponse(drug))
	}
}

// POST /api/drugs/:id/restock
func RestockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid drug id")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		stocked, err := ledger.Restock(database.DB, uint(id), userID, body.Supplier, body.Added)
		if err != nil {
			return ledgerError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      stocked.ID,
			"total":   stocked.Total,
			"message": fmt.Sprintf("%d added to stock", stocked.NumberAdded),
		})
	}
}

// POST /api/drugs/:id/sell
func SellHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid drug id")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body SellRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.ClientID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Please select a client")
		}

		sale, err := ledger.Sell(database.DB, uint(id), body.ClientID, userID, body.Quantity)
		if err != nil {
			return ledgerError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":                 sale.ID,
			"remaining_quantity": sale.RemainingQuantity,
			"message":            fmt.Sprintf("%g %s sold", sale.Quantity, sale.DrugSold),
		})
	}
}

// POST /api/drugs/:id/lock - moves the quantity out of available stock without a sale
func LockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid drug id")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body LockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.ClientID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Please select a client")
		}

		lock, err := ledger.Lock(database.DB, uint(id), body.ClientID, userID, body.Quantity)
		if err != nil {
			return ledgerError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      lock.ID,
			"message": fmt.Sprintf("%g locked", lock.Quantity),
		})
	}
}

// GET /api/stocked - restock ledger, optional date range
func ListStockedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := report.ApplyDateRange(database.DB.Model(&models.Stocked{}), "date_added", c)

		var entries []models.Stocked
		if err := q.
			Preload("Drug").Preload("Staff").
			Order("date_added DESC, id DESC").
			Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list stock additions")
		}

		items := make([]StockedResponse, 0, len(entries))
		for _, e := range entries {
			items = append(items, StockedResponse{
				ID:          e.ID,
				DrugName:    e.Drug.Name,
				Supplier:    e.Supplier,
				Staff:       e.Staff.Username,
				NumberAdded: e.NumberAdded,
				Total:       e.Total,
				DateAdded:   e.DateAdded.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(items)
	}
}
