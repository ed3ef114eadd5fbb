package report

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"glua-backend/internal/database"
	"glua-backend/internal/models"
	"glua-backend/internal/session"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Measurement{}, &models.Drug{}, &models.Client{},
		&models.Sale{}, &models.Stocked{}, &models.LockedProduct{},
		&models.MarketingItem{}, &models.IssuedItem{}, &models.PickingList{},
		&models.Cannister{}, &models.IssuedCannister{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db
	return db
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/reports/bin", BinReportHandler())
	app.Get("/reports/history", SaleHistoryHandler())
	app.Get("/reports/top-sold", TopSoldHandler())
	app.Get("/reports/low-stock", LowStockHandler())
	app.Get("/reports/out-of-stock", OutOfStockHandler())
	app.Get("/reports/expiring-soon", ExpiringSoonHandler())
	app.Get("/dashboard", DashboardHandler(session.NoopStore{}))
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string, out interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("request %s: status %d, body %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func seedSale(t *testing.T, db *gorm.DB, drug, batch string, clientID *uint, qty float64, soldAt time.Time) models.Sale {
	t.Helper()
	s := models.Sale{
		DrugSold: drug, BatchNo: batch, ClientID: clientID,
		Quantity: qty, RemainingQuantity: 0, DateSold: soldAt,
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	return s
}

type pagedSales struct {
	Items      []SaleResponse `json:"items"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	Total      int64          `json:"total"`
	TotalPages int64          `json:"total_pages"`
}

func TestBinReportPaginationCoversEveryRowOnce(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < 25; i++ {
		seedSale(t, db, fmt.Sprintf("Drug %02d", i), "B1", nil, 1, base.Add(time.Duration(i)*time.Minute))
	}

	seen := map[uint]bool{}
	var firstPage pagedSales
	getJSON(t, app, "/reports/bin?per_page=10", &firstPage)
	if firstPage.Total != 25 || firstPage.TotalPages != 3 {
		t.Fatalf("total=%d total_pages=%d, want 25/3", firstPage.Total, firstPage.TotalPages)
	}

	for page := 1; page <= 3; page++ {
		var resp pagedSales
		getJSON(t, app, fmt.Sprintf("/reports/bin?per_page=10&page=%d", page), &resp)
		for _, item := range resp.Items {
			if seen[item.ID] {
				t.Fatalf("sale %d appeared on more than one page", item.ID)
			}
			seen[item.ID] = true
		}
	}
	if len(seen) != 25 {
		t.Fatalf("pages covered %d distinct sales, want 25", len(seen))
	}
}

func TestBinReportNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	seedSale(t, db, "Older", "B1", nil, 1, base)
	seedSale(t, db, "Newer", "B1", nil, 1, base.Add(time.Hour))

	var resp pagedSales
	getJSON(t, app, "/reports/bin", &resp)
	if len(resp.Items) != 2 || resp.Items[0].DrugSold != "Newer" {
		t.Fatalf("expected newest sale first, got %+v", resp.Items)
	}
}

func TestBinReportSearchMatchesClientName(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp()

	cl := models.Client{Name: "Mercy Clinic"}
	if err := db.Create(&cl).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	now := time.Now()
	seedSale(t, db, "Amoxicillin", "B1", &cl.ID, 1, now)
	seedSale(t, db, "Paracetamol", "B2", nil, 1, now)

	var resp pagedSales
	getJSON(t, app, "/reports/bin?q=mercy", &resp)
	if len(resp.Items) != 1 || resp.Items[0].DrugSold != "Amoxicillin" {
		t.Fatalf("client search returned %+v", resp.Items)
	}

	getJSON(t, app, "/reports/bin?q=PARACE", &resp)
	if len(resp.Items) != 1 || resp.Items[0].DrugSold != "Paracetamol" {
		t.Fatalf("case-insensitive drug search returned %+v", resp.Items)
	}
}

func TestBinReportDateRangeIsInclusive(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp()

	seedSale(t, db, "InRange", "B1", nil, 1, time.Date(2026, 3, 10, 23, 30, 0, 0, time.Local))
	seedSale(t, db, "Before", "B1", nil, 1, time.Date(2026, 3, 9, 10, 0, 0, 0, time.Local))
	seedSale(t, db, "After", "B1", nil, 1, time.Date(2026, 3, 11, 0, 30, 0, 0, time.Local))

	var resp pagedSales
	getJSON(t, app, "/reports/bin?start_date=2026-03-10&end_date=2026-03-10", &resp)
	if len(resp.Items) != 1 || resp.Items[0].DrugSold != "InRange" {
		t.Fatalf("date range returned %+v", resp.Items)
	}
}

func TestTopSoldAggregatesByDrug(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	seedSale(t, db, "Amoxicillin", "B1", nil, 5, now)
	seedSale(t, db, "Amoxicillin", "B2", nil, 3, now)
	seedSale(t, db, "Paracetamol", "B1", nil, 6, now)

	rows, err := TopSold(db)
	if err != nil {
		t.Fatalf("top sold: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].DrugSold != "Amoxicillin" || rows[0].TotalQuantity != 8 {
		t.Fatalf("best seller = %+v, want Amoxicillin/8", rows[0])
	}
	if rows[1].DrugSold != "Paracetamol" || rows[1].TotalQuantity != 6 {
		t.Fatalf("runner-up = %+v, want Paracetamol/6", rows[1])
	}
}

func TestStockAlertBoundaries(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp()

	drugs := []models.Drug{
		{Name: "AtLevel", BatchNo: "B1", Stock: 5, DosePack: 1, ReorderLevel: 5},
		{Name: "BelowLevel", BatchNo: "B1", Stock: 2, DosePack: 1, ReorderLevel: 5},
		{Name: "Healthy", BatchNo: "B1", Stock: 50, DosePack: 1, ReorderLevel: 5},
		{Name: "Drained", BatchNo: "B1", Stock: 0, DosePack: 1, ReorderLevel: 5},
	}
	for i := range drugs {
		if err := db.Create(&drugs[i]).Error; err != nil {
			t.Fatalf("seed drug: %v", err)
		}
	}

	var low []DrugResponse
	getJSON(t, app, "/reports/low-stock", &low)
	if len(low) != 2 {
		t.Fatalf("low stock = %+v, want AtLevel and BelowLevel", low)
	}
	for _, d := range low {
		if d.Name == "Drained" {
			t.Fatalf("out-of-stock drug leaked into low stock: %+v", low)
		}
	}

	var out []DrugResponse
	getJSON(t, app, "/reports/out-of-stock", &out)
	if len(out) != 1 || out[0].Name != "Drained" {
		t.Fatalf("out of stock = %+v, want only Drained", out)
	}
}

func TestExpiringSoonWindow(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp()

	soon := time.Now().AddDate(0, 0, 30)
	far := time.Now().AddDate(0, 0, 400)
	drugs := []models.Drug{
		{Name: "ExpiringSoon", BatchNo: "B1", Stock: 5, DosePack: 1, ReorderLevel: 1, ExpiryDate: &soon},
		{Name: "FarOut", BatchNo: "B1", Stock: 5, DosePack: 1, ReorderLevel: 1, ExpiryDate: &far},
		{Name: "NoExpiry", BatchNo: "B1", Stock: 5, DosePack: 1, ReorderLevel: 1},
		{Name: "DrainedSoon", BatchNo: "B1", Stock: 0, DosePack: 1, ReorderLevel: 1, ExpiryDate: &soon},
	}
	for i := range drugs {
		if err := db.Create(&drugs[i]).Error; err != nil {
			t.Fatalf("seed drug: %v", err)
		}
	}

	var resp []DrugResponse
	getJSON(t, app, "/reports/expiring-soon", &resp)
	if len(resp) != 1 || resp[0].Name != "ExpiringSoon" {
		t.Fatalf("expiring soon = %+v, want only ExpiringSoon", resp)
	}
}

func TestDashboardCountsAndModal(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp()

	if err := db.Create(&models.Drug{Name: "Low", BatchNo: "B1", Stock: 1, DosePack: 1, ReorderLevel: 5}).Error; err != nil {
		t.Fatalf("seed drug: %v", err)
	}

	var resp struct {
		TotalProducts int64 `json:"total_products"`
		LowStock      int64 `json:"low_stock_products"`
		ShowModal     bool  `json:"show_modal"`
	}
	getJSON(t, app, "/dashboard", &resp)
	if resp.TotalProducts != 1 || resp.LowStock != 1 {
		t.Fatalf("dashboard counts wrong: %+v", resp)
	}
	// the noop session store shows the alert modal on every load
	if !resp.ShowModal {
		t.Fatalf("expected show_modal with a low stock alert present")
	}
}
