package cannister

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

type CreateCannisterRequest struct {
	Name    string `json:"name"`
	BatchNo string `json:"batch_no"`
	Stock   int64  `json:"stock"`
	Litres  string `json:"litres"`
}

type IssueCannisterRequest struct {
	ClientID uint  `json:"client_id"`
	Quantity int64 `json:"quantity"`
}

type CannisterResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	BatchNo string `json:"batch_no"`
	Stock   int64  `json:"stock"`
	Litres  string `json:"litres"`
}

type IssuedCannisterResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	BatchNo      string `json:"batch_no"`
	StaffOnDuty  string `json:"staff_on_duty"`
	ReturnedBy   string `json:"returned_by,omitempty"`
	Client       string `json:"client"`
	Quantity     int64  `json:"quantity"`
	Balance      int64  `json:"balance"`
	Returned     bool   `json:"returned"`
	DateIssued   string `json:"date_issued"`
	DateReturned string `json:"date_returned,omitempty"`
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
		return fiber.NewError(fiber.StatusConflict, "This cannister has already been returned")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Operation failed")
}

func toIssuedResponse(ic models.IssuedCannister) IssuedCannisterResponse {
	resp := IssuedCannisterResponse{
		ID:          ic.ID,
		Name:        ic.Name,
		BatchNo:     ic.BatchNo,
		StaffOnDuty: ic.StaffOnDuty.Username,
		Quantity:    ic.Quantity,
		Balance:     ic.Balance,
		Returned:    ic.Returned,
		DateIssued:  ic.DateIssued.Format("2006-01-02 15:04:05"),
	}
	if ic.Client != nil {
		resp.Client = ic.Client.Name
	}
	if ic.ReturnedBy != nil {
		resp.ReturnedBy = ic.ReturnedBy.Username
	}
	if ic.DateReturned != nil {
		resp.DateReturned = ic.DateReturned.Format("2006-01-02 15:04:05")
	}
	return resp
}

// GET /api/cannisters - `q` searches name, batch number and litres
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := report.LikeFilter(database.DB.Model(&models.Cannister{}), c.Query("q"), "name", "batch_no", "litres")

		var cannisters []models.Cannister
		if err := q.Order("name ASC, id ASC").Find(&cannisters).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list cannisters")
		}

		resp := make([]CannisterResponse, 0, len(cannisters))
		for _, cn := range cannisters {
			resp = append(resp, CannisterResponse{
				ID: cn.ID, Name: cn.Name, BatchNo: cn.BatchNo, Stock: cn.Stock, Litres: cn.Litres,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/cannisters
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCannisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" || body.BatchNo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name and batch number are required")
		}
		if body.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stock cannot be negative")
		}

		cn := models.Cannister{Name: body.Name, BatchNo: body.BatchNo, Stock: body.Stock, Litres: body.Litres}
		if err := database.DB.Create(&cn).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "A cannister with this batch number already exists")
		}

		return c.Status(fiber.StatusCreated).JSON(CannisterResponse{
			ID: cn.ID, Name: cn.Name, BatchNo: cn.BatchNo, Stock: cn.Stock, Litres: cn.Litres,
		})
	}
}

// POST /api/cannisters/:id/issue
func IssueHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid cannister id")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body IssueCannisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.ClientID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Please select a client")
		}

		issued, err := ledger.IssueCannister(database.DB, uint(id), body.ClientID, userID, body.Quantity)
		if err != nil {
			return ledgerError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      issued.ID,
			"balance": issued.Balance,
			"message": fmt.Sprintf("%d %s issued", issued.Quantity, issued.Name),
		})
	}
}

// GET /api/cannisters/bin-card - issuance ledger with search, date range, pagination
func BinCardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := report.ParsePagination(c)

		base := database.DB.Model(&models.IssuedCannister{}).
			Joins("LEFT JOIN users ON users.id = issued_cannisters.staff_on_duty_id").
			Joins("LEFT JOIN clients ON clients.id = issued_cannisters.client_id")
		base = report.LikeFilter(base, c.Query("q"),
			"issued_cannisters.name", "issued_cannisters.batch_no", "clients.name", "users.username")
		base = report.ApplyDateRange(base, "issued_cannisters.date_issued", c)

		var total int64
		if err := base.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count issued cannisters")
		}

		var issued []models.IssuedCannister
		if err := base.
			Preload("StaffOnDuty").Preload("ReturnedBy").Preload("Client").
			Order("issued_cannisters.date_issued DESC, issued_cannisters.id DESC").
			Offset(p.Offset()).Limit(p.PerPage).
			Find(&issued).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list issued cannisters")
		}

		items := make([]IssuedCannisterResponse, 0, len(issued))
		for _, ic := range issued {
			items = append(items, toIssuedResponse(ic))
		}
		return c.JSON(report.PagedResponse(items, p, total))
	}
}

// POST /api/cannisters/bin-card/:id/return - single Issued -> Returned transition
func ReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid issuance id")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		issued, err := ledger.ReturnCannister(database.DB, uint(id), userID)
		if err != nil {
			return ledgerError(err)
		}

		return c.JSON(fiber.Map{
			"id":      issued.ID,
			"message": fmt.Sprintf("%d %s returned to stock", issued.Quantity, issued.Name),
		})
	}
}
