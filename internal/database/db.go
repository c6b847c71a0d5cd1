package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stocktrack/internal/database/models"
)

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		log.Fatal("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// balancesViewDDL is the primary read path for balances: the full
// item x location cross product so zero-stock pairs stay visible, with
// OUT rows negated inside the sum. The fallback fold in the balance
// service computes the identical result from raw rows.
const balancesViewDDL = `
CREATE OR REPLACE VIEW v_item_location_balances AS
SELECT i.id   AS item_id,
       i.sku  AS sku,
       i.name AS name,
       l.id   AS location_id,
       l.name AS location,
       COALESCE(SUM(CASE WHEN m.type = 'OUT' THEN -m.qty ELSE m.qty END), 0) AS qty_on_hand
FROM items i
CROSS JOIN locations l
LEFT JOIN inventory_moves m ON m.item_id = i.id AND m.location_id = l.id
GROUP BY i.id, i.sku, i.name, l.id, l.name`

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Item{}, &models.Location{}, &models.InventoryMove{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := db.Exec(balancesViewDDL).Error; err != nil {
		return fmt.Errorf("failed to create balances view: %w", err)
	}
	return nil
}
