package database

import (
	"log"

	"glua-backend/internal/config"
	"glua-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Measurement{},
		&models.Client{},
		&models.Drug{},
		&models.Sale{},
		&models.Stocked{},
		&models.LockedProduct{},
		&models.MarketingItem{},
		&models.IssuedItem{},
		&models.PickingList{},
		&models.Cannister{},
		&models.IssuedCannister{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// AutoMigrate does not always add the FK constraints on existing tables; the
	// protect-on-delete rule for clients depends on them, so force RESTRICT here.
	ensureRestrictConstraint("sales", "fk_sales_client", "client_id", "clients")
	ensureRestrictConstraint("locked_products", "fk_locked_products_client", "client_id", "clients")
	ensureRestrictConstraint("picking_lists", "fk_picking_lists_client", "client_id", "clients")
	ensureRestrictConstraint("issued_cannisters", "fk_issued_cannisters_client", "client_id", "clients")

	log.Println("Database connection OK. Migration complete.")
}

func ensureRestrictConstraint(table, constraint, column, refTable string) {
	var exists bool
	DB.Raw(`
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.table_constraints
			WHERE table_name = ?
			AND constraint_name = ?
		)
	`, table, constraint).Scan(&exists)

	if exists {
		return
	}

	if err := DB.Exec(
		"ALTER TABLE " + table + " ADD CONSTRAINT " + constraint +
			" FOREIGN KEY (" + column + ") REFERENCES " + refTable + "(id) ON DELETE RESTRICT",
	).Error; err != nil {
		log.Printf("Could not add constraint %s on %s: %v", constraint, table, err)
	}
}
