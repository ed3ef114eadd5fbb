package client

import (
	"fmt"
	"strings"

	"glua-backend/internal/database"
	"glua-backend/internal/models"
	"glua-backend/internal/report"

	"github.com/gofiber/fiber/v2"
)

type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ClientResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func toResponse(cl models.Client) ClientResponse {
	resp := ClientResponse{ID: cl.ID, Name: cl.Name}
	if cl.Email != nil {
		resp.Email = *cl.Email
	}
	if cl.Phone != nil {
		resp.Phone = *cl.Phone
	}
	return resp
}

// GET /api/clients - paginated, ordered by name
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := report.ParsePagination(c)

		base := database.DB.Model(&models.Client{})
		base = report.LikeFilter(base, c.Query("q"), "name")

		var total int64
		if err := base.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count clients")
		}

		var clients []models.Client
		if err := base.
			Order("name ASC, id ASC").
			Offset(p.Offset()).Limit(p.PerPage).
			Find(&clients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list clients")
		}

		items := make([]ClientResponse, 0, len(clients))
		for _, cl := range clients {
			items = append(items, toResponse(cl))
		}
		return c.JSON(report.PagedResponse(items, p, total))
	}
}

// POST /api/clients
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Client name is required")
		}

		var count int64
		database.DB.Model(&models.Client{}).
			Where("LOWER(name) = LOWER(?)", body.Name).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Client %q already exists", body.Name))
		}

		cl := models.Client{Name: body.Name}
		if e := strings.TrimSpace(body.Email); e != "" {
			cl.Email = &e
		}
		if ph := strings.TrimSpace(body.Phone); ph != "" {
			cl.Phone = &ph
		}

		if err := database.DB.Create(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create client")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(cl))
	}
}

// PUT /api/clients/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid client id")
		}

		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}

		var body CreateClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Client name is required")
		}

		var count int64
		database.DB.Model(&models.Client{}).
			Where("LOWER(name) = LOWER(?) AND id <> ?", body.Name, cl.ID).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Another client with name %q already exists", body.Name))
		}

		cl.Name = body.Name
		cl.Email, cl.Phone = nil, nil
		if e := strings.TrimSpace(body.Email); e != "" {
			cl.Email = &e
		}
		if ph := strings.TrimSpace(body.Phone); ph != "" {
			cl.Phone = &ph
		}

		if err := database.DB.Save(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update client")
		}

		return c.JSON(toResponse(cl))
	}
}

// DELETE /api/clients/:id - blocked while any sale, lock, picking entry or
// cannister issuance still references the client.
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid client id")
		}

		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}

		var refs int64
		for _, m := range []interface{}{
			&models.Sale{}, &models.LockedProduct{}, &models.PickingList{}, &models.IssuedCannister{},
		} {
			var count int64
			database.DB.Model(m).Where("client_id = ?", cl.ID).Count(&count)
			refs += count
		}
		if refs > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Cannot delete this client: %d records still reference it", refs))
		}

		// the RESTRICT constraint backstops any reference created in between
		if err := database.DB.Delete(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Cannot delete this client: it is still referenced")
		}

		return c.JSON(fiber.Map{"message": fmt.Sprintf("Client %q has been successfully deleted", cl.Name)})
	}
}
