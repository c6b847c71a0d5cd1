package handler

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stocktrack/internal/apperrors"
	"stocktrack/internal/database/models"
)

// BalanceRow is one balances response row: the derived quantity plus the
// item's threshold and the two stock-state flags. The flags are computed
// independently of each other; display precedence belongs to the caller.
type BalanceRow struct {
	models.ItemLocationBalance
	MinQty     decimal.Decimal `json:"min_qty"`
	LowStock   bool            `json:"low_stock"`
	OutOfStock bool            `json:"out_of_stock"`
}

type BalanceHandler struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewBalanceHandler(db *gorm.DB, log *logrus.Logger) *BalanceHandler {
	return &BalanceHandler{db: db, log: log}
}

// List returns one row per (item, location) pair, ordered by sku then
// location name. The materialized view is the primary path; when it is
// unavailable the same numbers are recomputed from raw rows. Both paths
// failing is an error, never an empty result.
func (s *BalanceHandler) List(ctx context.Context) ([]BalanceRow, error) {
	items, locations, err := s.loadCatalog(ctx)
	if err != nil {
		// With the catalog unreadable neither the view nor the fold can
		// produce a complete answer.
		return nil, apperrors.Unavailable("balances are unavailable", err)
	}

	balances, viewErr := s.queryView(ctx)
	if viewErr != nil {
		s.log.WithFields(logrus.Fields{
			"module":  "balance",
			"context": "balances view query failed, recomputing from ledger",
		}).Warn(viewErr.Error())

		var moves []models.InventoryMove
		if err := s.db.WithContext(ctx).Find(&moves).Error; err != nil {
			return nil, apperrors.Unavailable("balances are unavailable", err)
		}
		balances = ComputeBalances(items, locations, moves)
	}

	minQtyBySKU := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		minQtyBySKU[item.SKU] = item.MinQty
	}

	rows := make([]BalanceRow, len(balances))
	for i, b := range balances {
		minQty := minQtyBySKU[b.SKU]
		rows[i] = BalanceRow{
			ItemLocationBalance: b,
			MinQty:              minQty,
			LowStock:            LowStock(b.QtyOnHand, minQty),
			OutOfStock:          OutOfStock(b.QtyOnHand),
		}
	}
	return rows, nil
}

func (s *BalanceHandler) loadCatalog(ctx context.Context) ([]models.Item, []models.Location, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	var locations []models.Location
	if err := s.db.WithContext(ctx).Find(&locations).Error; err != nil {
		return nil, nil, err
	}
	return items, locations, nil
}

func (s *BalanceHandler) queryView(ctx context.Context) ([]models.ItemLocationBalance, error) {
	var balances []models.ItemLocationBalance
	err := s.db.WithContext(ctx).Raw(`
		SELECT item_id, sku, name, location_id, location, qty_on_hand
		FROM v_item_location_balances
		ORDER BY sku, location`).Scan(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// ComputeBalances folds the ledger into per-(item, location) quantities over
// the full catalog cross product, so pairs with no moves surface as zero.
// IN and ADJUST add the quantity, OUT subtracts it; the sum is independent
// of move order. Rows come back sorted by sku then location name, matching
// the view.
func ComputeBalances(items []models.Item, locations []models.Location, moves []models.InventoryMove) []models.ItemLocationBalance {
	type pair struct {
		itemID     int64
		locationID int64
	}

	sums := make(map[pair]decimal.Decimal)
	for _, move := range moves {
		key := pair{move.ItemID, move.LocationID}
		switch move.Type {
		case models.MoveTypeIn, models.MoveTypeAdjust:
			sums[key] = sums[key].Add(move.Qty)
		case models.MoveTypeOut:
			sums[key] = sums[key].Sub(move.Qty)
		}
	}

	balances := make([]models.ItemLocationBalance, 0, len(items)*len(locations))
	for _, item := range items {
		for _, location := range locations {
			balances = append(balances, models.ItemLocationBalance{
				ItemID:     item.ID,
				SKU:        item.SKU,
				Name:       item.Name,
				LocationID: location.ID,
				Location:   location.Name,
				QtyOnHand:  sums[pair{item.ID, location.ID}],
			})
		}
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].SKU != balances[j].SKU {
			return balances[i].SKU < balances[j].SKU
		}
		return balances[i].Location < balances[j].Location
	})
	return balances
}

// OutOfStock reports whether the pair has no stock on hand.
func OutOfStock(qtyOnHand decimal.Decimal) bool {
	return qtyOnHand.Sign() <= 0
}

// LowStock reports whether the pair is below the item's minimum quantity.
func LowStock(qtyOnHand, minQty decimal.Decimal) bool {
	return qtyOnHand.LessThan(minQty)
}
