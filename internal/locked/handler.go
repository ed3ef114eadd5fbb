package locked

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

type LockedProductResponse struct {
	ID         uint    `json:"id"`
	DrugID     uint    `json:"drug_id"`
	DrugName   string  `json:"drug_name"`
	BatchNo    string  `json:"batch_no"`
	LockedBy   string  `json:"locked_by"`
	Client     string  `json:"client"`
	Quantity   float64 `json:"quantity"`
	DateLocked string  `json:"date_locked"`
}

type UpdateLockRequest struct {
	DrugID   *uint    `json:"drug_id"`
	ClientID *uint    `json:"client_id"`
	Quantity *float64 `json:"quantity"`
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Lock not found")
	case errors.Is(err, ledger.ErrLockImmutable):
		return fiber.NewError(fiber.StatusConflict, "Cannot update locked drugs")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Operation failed")
}

func toResponse(l models.LockedProduct) LockedProductResponse {
	resp := LockedProductResponse{
		ID:         l.ID,
		DrugID:     l.DrugID,
		DrugName:   l.Drug.Name,
		BatchNo:    l.Drug.BatchNo,
		LockedBy:   l.LockedBy.Username,
		Quantity:   l.Quantity,
		DateLocked: l.DateLocked.Format("2006-01-02 15:04:05"),
	}
	if l.Client != nil {
		resp.Client = l.Client.Name
	}
	return resp
}

// GET /api/locked-products - newest lock first; `q` searches drug name and the
// locking user's name
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.LockedProduct{}).
			Joins("LEFT JOIN drugs ON drugs.id = locked_products.drug_id").
			Joins("LEFT JOIN users ON users.id = locked_products.locked_by_id")
		q = report.LikeFilter(q, c.Query("q"), "drugs.name", "users.username")

		var locks []models.LockedProduct
		if err := q.
			Preload("Drug").Preload("LockedBy").Preload("Client").
			Order("locked_products.date_locked DESC, locked_products.id DESC").
			Find(&locks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list locked products")
		}

		items := make([]LockedProductResponse, 0, len(locks))
		for _, l := range locks {
			items = append(items, toResponse(l))
		}
		return c.JSON(items)
	}
}

// POST /api/locked-products/:id/fulfill - convert the lock into a sale
func FulfillHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid lock id")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sale, err := ledger.Fulfill(database.DB, uint(id), userID)
		if err != nil {
			return ledgerError(err)
		}

		return c.JSON(fiber.Map{
			"sale_id": sale.ID,
			"message": fmt.Sprintf("%g %s sold and lock removed", sale.Quantity, sale.DrugSold),
		})
	}
}

// POST /api/locked-products/:id/unlock - cancel the lock, stock goes back
func UnlockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid lock id")
		}

		lock, err := ledger.Unlock(database.DB, uint(id))
		if err != nil {
			return ledgerError(err)
		}

		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("%g %s unlocked and added back to stock", lock.Quantity, lock.Drug.Name),
		})
	}
}

// PUT /api/locked-products/:id - locks cannot be edited in place; a lock is either
// fulfilled or unlocked. Kept as an explicit endpoint so clients get a clear
// rejection instead of a 404.
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid lock id")
		}

		var body UpdateLockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var lock models.LockedProduct
		if err := database.DB.First(&lock, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lock not found")
		}

		if body.DrugID != nil {
			if err := ledger.GuardLockUpdate(database.DB, lock.ID, *body.DrugID); err != nil {
				return ledgerError(err)
			}
		}
		return fiber.NewError(fiber.StatusConflict, "Locks cannot be edited; fulfill or unlock them instead")
	}
}
