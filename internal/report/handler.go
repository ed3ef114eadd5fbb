package report

import (
	"time"

	"glua-backend/internal/auth"
	"glua-backend/internal/database"
	"glua-backend/internal/models"
	"glua-backend/internal/session"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SaleResponse struct {
	ID                uint    `json:"id"`
	DrugSold          string  `json:"drug_sold"`
	BatchNo           string  `json:"batch_no"`
	Client            string  `json:"client"`
	Seller            string  `json:"seller"`
	Quantity          float64 `json:"quantity"`
	RemainingQuantity float64 `json:"remaining_quantity"`
	DateSold          string  `json:"date_sold"`
}

type TopSoldRow struct {
	DrugSold      string  `json:"drug_sold"`
	TotalQuantity float64 `json:"total_quantity"`
}

type DrugResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	BatchNo      string  `json:"batch_no"`
	Stock        float64 `json:"stock"`
	DosePack     float64 `json:"dose_pack"`
	ExpiryDate   string  `json:"expiry_date,omitempty"`
	ReorderLevel float64 `json:"reorder_level"`
}

func toSaleResponse(s models.Sale) SaleResponse {
	resp := SaleResponse{
		ID:                s.ID,
		DrugSold:          s.DrugSold,
		BatchNo:           s.BatchNo,
		Quantity:          s.Quantity,
		RemainingQuantity: s.RemainingQuantity,
		DateSold:          s.DateSold.Format("2006-01-02 15:04:05"),
	}
	if s.Client != nil {
		resp.Client = s.Client.Name
	}
	if s.Seller != nil {
		resp.Seller = s.Seller.Username
	}
	return resp
}

func ToDrugResponse(d models.Drug) DrugResponse {
	resp := DrugResponse{
		ID:           d.ID,
		Name:         d.Name,
		BatchNo:      d.BatchNo,
		Stock:        d.Stock,
		DosePack:     d.DosePack,
		ReorderLevel: d.ReorderLevel,
	}
	if d.ExpiryDate != nil {
		resp.ExpiryDate = d.ExpiryDate.Format("2006-01-02")
	}
	return resp
}

// -------------------------------------------------
// GET /api/reports/bin - sales ledger with search, date range and pagination
// -------------------------------------------------
func BinReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := ParsePagination(c)

		base := database.DB.Model(&models.Sale{}).
			Joins("LEFT JOIN clients ON clients.id = sales.client_id")
		base = LikeFilter(base, c.Query("q"), "sales.drug_sold", "sales.batch_no", "clients.name")
		base = ApplyDateRange(base, "sales.date_sold", c)

		var total int64
		if err := base.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count sales")
		}

		var sales []models.Sale
		if err := base.
			Preload("Client").Preload("Seller").
			Order("sales.date_sold DESC, sales.id DESC").
			Offset(p.Offset()).Limit(p.PerPage).
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}

		items := make([]SaleResponse, 0, len(sales))
		for _, s := range sales {
			items = append(items, toSaleResponse(s))
		}
		return c.JSON(PagedResponse(items, p, total))
	}
}

// GET /api/reports/history - sales within an inclusive date range, newest first
func SaleHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := ApplyDateRange(database.DB.Model(&models.Sale{}), "date_sold", c)

		var sales []models.Sale
		if err := q.
			Preload("Client").Preload("Seller").
			Order("date_sold DESC, id DESC").
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sale history")
		}

		items := make([]SaleResponse, 0, len(sales))
		var totalQuantity float64
		for _, s := range sales {
			items = append(items, toSaleResponse(s))
			totalQuantity += s.Quantity
		}

		return c.JSON(fiber.Map{
			"sales":          items,
			"total_quantity": totalQuantity,
		})
	}
}

// GET /api/reports/today
func TodaySalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)

		var sales []models.Sale
		if err := database.DB.
			Preload("Client").Preload("Seller").
			Where("date_sold >= ? AND date_sold < ?", start, end).
			Order("date_sold DESC, id DESC").
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load today's sales")
		}

		items := make([]SaleResponse, 0, len(sales))
		var totalQuantity float64
		for _, s := range sales {
			items = append(items, toSaleResponse(s))
			totalQuantity += s.Quantity
		}

		return c.JSON(fiber.Map{
			"sales":          items,
			"total_quantity": totalQuantity,
		})
	}
}

// GET /api/reports/top-sold - total quantity per product, best seller first
func TopSoldHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := TopSold(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not aggregate sales")
		}
		return c.JSON(rows)
	}
}

// GET /api/reports/low-stock
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var drugs []models.Drug
		if err := database.DB.
			Where("stock <= reorder_level AND stock > 0").
			Order("name ASC, id ASC").
			Find(&drugs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load low stock")
		}
		return c.JSON(drugResponses(drugs))
	}
}

// GET /api/reports/out-of-stock
func OutOfStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var drugs []models.Drug
		if err := database.DB.
			Where("stock = 0").
			Order("name ASC, id ASC").
			Find(&drugs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load out-of-stock list")
		}
		return c.JSON(drugResponses(drugs))
	}
}

// GET /api/reports/expiring-soon - expiry within 180 days, soonest first
func ExpiringSoonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		today := startOfToday()
		var drugs []models.Drug
		if err := database.DB.
			Where("expiry_date IS NOT NULL AND expiry_date <= ? AND stock > 0", today.AddDate(0, 0, 180)).
			Order("expiry_date ASC, id ASC").
			Find(&drugs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expiring drugs")
		}
		return c.JSON(drugResponses(drugs))
	}
}

// -------------------------------------------------
// GET /api/reports/dashboard
// -------------------------------------------------
func DashboardHandler(sessions session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		db := database.DB
		today := startOfToday()

		var totalProducts, lowStock, outOfStock, expired, expiringSoon int64
		var lockedProducts, marketingItems, pickingListEntries, cannisters int64

		db.Model(&models.Drug{}).Count(&totalProducts)
		db.Model(&models.Drug{}).Where("stock <= reorder_level AND stock > 0").Count(&lowStock)
		db.Model(&models.Drug{}).Where("stock = 0").Count(&outOfStock)
		db.Model(&models.Drug{}).Where("expiry_date IS NOT NULL AND expiry_date < ? AND stock > 0", today).Count(&expired)
		db.Model(&models.Drug{}).
			Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ? AND stock > 0", today, today.AddDate(0, 0, 180)).
			Count(&expiringSoon)
		db.Model(&models.LockedProduct{}).Count(&lockedProducts)
		db.Model(&models.MarketingItem{}).Count(&marketingItems)
		db.Model(&models.PickingList{}).Count(&pickingListEntries)
		db.Model(&models.Cannister{}).Count(&cannisters)

		topSold, err := TopSold(db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not aggregate sales")
		}

		// the stock-alert modal shows once per session, and only when there is
		// something worth alerting about
		showModal := false
		if lowStock > 0 || expiringSoon > 0 || outOfStock > 0 {
			showModal, _ = sessions.ShowModalOnce(c.Context(), auth.CurrentSessionID(c))
		}

		return c.JSON(fiber.Map{
			"total_products":        totalProducts,
			"low_stock_products":    lowStock,
			"out_of_stock_products": outOfStock,
			"expired_drugs_count":   expired,
			"expiring_soon_count":   expiringSoon,
			"total_expiring_count":  expired + expiringSoon,
			"locked_products":       lockedProducts,
			"marketing_items":       marketingItems,
			"total_picking_list":    pickingListEntries,
			"cannisters":            cannisters,
			"top_sold_products":     topSold,
			"show_modal":            showModal,
		})
	}
}

// TopSold aggregates total quantity sold per drug name, descending; ties broken by
// name so the ordering is stable.
func TopSold(db *gorm.DB) ([]TopSoldRow, error) {
	var rows []TopSoldRow
	err := db.Model(&models.Sale{}).
		Select("drug_sold, SUM(quantity) AS total_quantity").
		Group("drug_sold").
		Order("total_quantity DESC, drug_sold ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []TopSoldRow{}
	}
	return rows, nil
}

func drugResponses(drugs []models.Drug) []DrugResponse {
	items := make([]DrugResponse, 0, len(drugs))
	for _, d := range drugs {
		items = append(items, ToDrugResponse(d))
	}
	return items
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
