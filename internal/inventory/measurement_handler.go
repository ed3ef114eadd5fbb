package inventory

import (
	"fmt"
	"time"

	"glua-backend/internal/database"
	"glua-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateMeasurementRequest struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"` // "2006-01-02"
}

type MeasurementResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"`
}

// GET /api/measurements - the unit catalogue drugs reference
func ListMeasurementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var measurements []models.Measurement
		if err := database.DB.Order("name ASC, id ASC").Find(&measurements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list measurements")
		}

		items := make([]MeasurementResponse, 0, len(measurements))
		for _, m := range measurements {
			items = append(items, MeasurementResponse{
				ID:         m.ID,
				Name:       m.Name,
				ExpiryDate: m.ExpiryDate.Format("2006-01-02"),
			})
		}
		return c.JSON(items)
	}
}

// POST /api/admin/measurements
func CreateMeasurementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMeasurementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		expiry, err := time.Parse("2006-01-02", body.ExpiryDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Expiry date must be 'YYYY-MM-DD'")
		}

		m := models.Measurement{Name: body.Name, ExpiryDate: expiry}
		if err := database.DB.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create measurement")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      m.ID,
			"message": fmt.Sprintf("Measurement %q has been created successfully", m.Name),
		})
	}
}
