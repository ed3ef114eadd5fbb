package migrate

import (
	"fmt"
	"log"
	"strings"

	"glua-backend/internal/models"

	"gorm.io/gorm"
)

// Tables that historically stored the client as free text in a `client` column
// before the clients table existed.
var legacyClientTables = []struct {
	model interface{}
	table string
}{
	{&models.Sale{}, "sales"},
	{&models.LockedProduct{}, "locked_products"},
	{&models.PickingList{}, "picking_lists"},
	{&models.IssuedCannister{}, "issued_cannisters"},
}

// BackfillClients converts legacy free-text client columns into client_id
// foreign keys. For every distinct non-empty name it gets or creates a Client
// row, points the foreign key at it, then drops the legacy column. Tables that
// never had the column are skipped, so the backfill is safe to run repeatedly.
func BackfillClients(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range legacyClientTables {
			if !tx.Migrator().HasColumn(t.model, "client") {
				continue
			}
			if err := backfillTable(tx, t.table); err != nil {
				return fmt.Errorf("backfill %s: %w", t.table, err)
			}
		}
		return nil
	})
}

func backfillTable(tx *gorm.DB, table string) error {
	var names []string
	err := tx.Table(table).
		Distinct("client").
		Where("client IS NOT NULL AND client <> ''").
		Pluck("client", &names).Error
	if err != nil {
		return err
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var cl models.Client
		err := tx.Where("LOWER(name) = LOWER(?)", name).First(&cl).Error
		if err == gorm.ErrRecordNotFound {
			cl = models.Client{Name: name}
			if err := tx.Create(&cl).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		res := tx.Table(table).
			Where("client = ? AND client_id IS NULL", name).
			Update("client_id", cl.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("backfill: %s linked %d rows to client %q", table, res.RowsAffected, cl.Name)
		}
	}

	// raw ALTER TABLE: the sqlite migrator's DropColumn silently keeps columns that
	// were themselves added via ALTER TABLE
	return tx.Exec("ALTER TABLE " + table + " DROP COLUMN client").Error
}
