package export

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"glua-backend/internal/database"
	"glua-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
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
		&models.User{}, &models.Drug{}, &models.Client{}, &models.Sale{},
		&models.Cannister{}, &models.IssuedCannister{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db
	return db
}

func fetch(t *testing.T, app *fiber.App, path string) ([]byte, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("request %s: status %d, body %s", path, resp.StatusCode, body)
	}
	return body, resp.Header.Get("Content-Disposition")
}

func TestBinReportExcelRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	app := fiber.New()
	app.Get("/export/bin-report.xlsx", BinReportExcelHandler())

	cl := models.Client{Name: "Mercy Clinic"}
	if err := db.Create(&cl).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	sale := models.Sale{
		DrugSold: "Amoxicillin", BatchNo: "B-100", ClientID: &cl.ID,
		Quantity: 6, RemainingQuantity: 14,
		DateSold: time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local),
	}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	body, disposition := fetch(t, app, "/export/bin-report.xlsx")
	if !strings.Contains(disposition, "bin-report.xlsx") {
		t.Fatalf("content disposition = %q, want attachment filename", disposition)
	}

	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Bin Report")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one sale", len(rows))
	}
	if rows[0][1] != "Drug" {
		t.Fatalf("header row wrong: %v", rows[0])
	}
	got := rows[1]
	if got[1] != "Amoxicillin" || got[2] != "B-100" || got[3] != "Mercy Clinic" {
		t.Fatalf("data row wrong: %v", got)
	}
}

func TestBinCardExcelHonorsDateFilter(t *testing.T) {
	db := setupTestDB(t)
	app := fiber.New()
	app.Get("/export/bin-card.xlsx", BinCardExcelHandler())

	staff := models.User{Username: "amina", Email: "amina@example.com", PasswordHash: "x", Role: models.RoleStaff}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	issue := func(name string, day int) {
		ic := models.IssuedCannister{
			Name: name, BatchNo: "OX-9", StaffOnDutyID: staff.ID,
			Quantity: 1, Balance: 1,
			DateIssued: time.Date(2026, 3, day, 10, 0, 0, 0, time.Local),
		}
		if err := db.Create(&ic).Error; err != nil {
			t.Fatalf("seed issuance: %v", err)
		}
	}
	issue("InRange", 10)
	issue("OutOfRange", 20)

	body, _ := fetch(t, app, "/export/bin-card.xlsx?start_date=2026-03-09&end_date=2026-03-11")

	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Bin Card")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "InRange" {
		t.Fatalf("filtered export rows wrong: %v", rows)
	}
}

func TestTopSoldCSV(t *testing.T) {
	db := setupTestDB(t)
	app := fiber.New()
	app.Get("/export/top-sold.csv", TopSoldCSVHandler())

	now := time.Now()
	for _, s := range []models.Sale{
		{DrugSold: "Amoxicillin", Quantity: 5, DateSold: now},
		{DrugSold: "Amoxicillin", Quantity: 3, DateSold: now},
		{DrugSold: "Paracetamol", Quantity: 6, DateSold: now},
	} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed sale: %v", err)
		}
	}

	body, disposition := fetch(t, app, "/export/top-sold.csv")
	if !strings.Contains(disposition, "top-sold.csv") {
		t.Fatalf("content disposition = %q", disposition)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header plus two drugs", len(lines))
	}
	if strings.TrimSpace(lines[0]) != "drug_sold,total_quantity" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "Amoxicillin,8") {
		t.Fatalf("best seller line = %q, want Amoxicillin,8", lines[1])
	}
}
