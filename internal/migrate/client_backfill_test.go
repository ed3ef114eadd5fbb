package migrate

import (
	"testing"
	"time"

	"glua-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLegacyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Drug{}, &models.Client{}, &models.Sale{},
		&models.LockedProduct{}, &models.PickingList{}, &models.IssuedCannister{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	// recreate the pre-clients schema: free text instead of a foreign key
	if err := db.Exec("ALTER TABLE sales ADD COLUMN client varchar(200)").Error; err != nil {
		t.Fatalf("add legacy column: %v", err)
	}
	return db
}

func TestBackfillClientsLinksLegacyNames(t *testing.T) {
	db := setupLegacyDB(t)

	now := time.Now()
	rows := []struct{ drug, client string }{
		{"Amoxicillin", "Mercy Clinic"},
		{"Paracetamol", "Mercy Clinic"},
		{"Ibuprofen", "St. Jude Hospital"},
		{"Aspirin", ""},
	}
	for _, r := range rows {
		err := db.Exec(
			"INSERT INTO sales (drug_sold, batch_no, quantity, remaining_quantity, date_sold, client) VALUES (?, ?, 1, 0, ?, ?)",
			r.drug, "B1", now, r.client,
		).Error
		if err != nil {
			t.Fatalf("seed legacy sale: %v", err)
		}
	}

	if err := BackfillClients(db); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	var clients []models.Client
	if err := db.Order("name ASC").Find(&clients).Error; err != nil {
		t.Fatalf("load clients: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("clients = %d, want 2 distinct names", len(clients))
	}
	if clients[0].Name != "Mercy Clinic" || clients[1].Name != "St. Jude Hospital" {
		t.Fatalf("client names wrong: %+v", clients)
	}

	var linked int64
	db.Model(&models.Sale{}).Where("client_id = ?", clients[0].ID).Count(&linked)
	if linked != 2 {
		t.Fatalf("sales linked to Mercy Clinic = %d, want 2", linked)
	}

	var orphaned int64
	db.Model(&models.Sale{}).Where("client_id IS NULL").Count(&orphaned)
	if orphaned != 1 {
		t.Fatalf("sales without a client = %d, want the blank-name row only", orphaned)
	}

	if db.Migrator().HasColumn(&models.Sale{}, "client") {
		t.Fatalf("legacy client column should be dropped after backfill")
	}
}

func TestBackfillClientsReusesExistingClients(t *testing.T) {
	db := setupLegacyDB(t)

	existing := models.Client{Name: "Mercy Clinic"}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	err := db.Exec(
		"INSERT INTO sales (drug_sold, batch_no, quantity, remaining_quantity, date_sold, client) VALUES (?, ?, 1, 0, ?, ?)",
		"Amoxicillin", "B1", time.Now(), "mercy clinic",
	).Error
	if err != nil {
		t.Fatalf("seed legacy sale: %v", err)
	}

	if err := BackfillClients(db); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	var count int64
	db.Model(&models.Client{}).Count(&count)
	if count != 1 {
		t.Fatalf("clients = %d, matching is case-insensitive so no duplicate expected", count)
	}

	var sale models.Sale
	if err := db.First(&sale).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if sale.ClientID == nil || *sale.ClientID != existing.ID {
		t.Fatalf("sale not linked to the existing client: %+v", sale)
	}
}

func TestBackfillClientsIsIdempotentOnModernSchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Drug{}, &models.Client{}, &models.Sale{},
		&models.LockedProduct{}, &models.PickingList{}, &models.IssuedCannister{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	// no legacy columns anywhere, the backfill must be a no-op
	if err := BackfillClients(db); err != nil {
		t.Fatalf("backfill on modern schema: %v", err)
	}
}
