package handler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stocktrack/internal/apperrors"
	"stocktrack/internal/database/models"

	"github.com/shopspring/decimal"
)

const DefaultListLimit = 100

// MoveInput is one ledger append. Exactly one of LocationID / LocationName
// must be set; a name that does not resolve creates the location.
type MoveInput struct {
	ItemID       int64
	LocationID   *int64
	LocationName *string
	Type         models.MoveType
	Qty          decimal.Decimal
	UnitCost     *decimal.Decimal
	SellPrice    *decimal.Decimal
	Ref          *string
	Note         *string
	UserName     *string
	MovedAt      *time.Time
}

// ListFilter narrows the read path. Zero values mean no filtering.
type ListFilter struct {
	ItemID     int64
	LocationID int64
	Type       models.MoveType
	From       time.Time
	To         time.Time
	Limit      int
}

type LedgerHandler struct {
	db *gorm.DB
}

func NewLedgerHandler(db *gorm.DB) *LedgerHandler {
	return &LedgerHandler{db: db}
}

// validateMove runs every input check before any store access.
func validateMove(in MoveInput) error {
	if in.ItemID <= 0 {
		return apperrors.Validation("itemId", "please select a valid item")
	}
	if !in.Type.Valid() {
		return apperrors.Validation("type", "movement type must be IN, OUT, or ADJUST")
	}
	if !in.Qty.IsPositive() {
		return apperrors.Validation("qty", "quantity must be greater than 0")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return apperrors.Validation("unitCost", "unit cost cannot be negative")
	}
	if in.SellPrice != nil && in.SellPrice.IsNegative() {
		return apperrors.Validation("sellPrice", "sell price cannot be negative")
	}
	if in.Ref != nil && len(*in.Ref) > 100 {
		return apperrors.Validation("ref", "reference must be 100 characters or less")
	}
	if in.Note != nil && len(*in.Note) > 500 {
		return apperrors.Validation("note", "note must be 500 characters or less")
	}
	if in.UserName != nil && len(*in.UserName) > 100 {
		return apperrors.Validation("userName", "user name must be 100 characters or less")
	}
	if err := validateLocationRef(in.LocationID, in.LocationName); err != nil {
		return err
	}
	return nil
}

func validateLocationRef(locationID *int64, locationName *string) error {
	hasID := locationID != nil && *locationID > 0
	hasName := locationName != nil && *locationName != ""
	if hasID == hasName {
		return apperrors.Validation("location", "exactly one of locationId or locationName must be provided")
	}
	if hasName && len(*locationName) > 100 {
		return apperrors.Validation("locationName", "location name must be 100 characters or less")
	}
	return nil
}

// GetOrCreateLocationID resolves a location reference. An id must resolve to
// an existing row; a name is looked up by exact match first, then created.
// The lookup and the conditional create are two explicit steps so each can
// be observed independently.
func (s *LedgerHandler) GetOrCreateLocationID(ctx context.Context, locationID *int64, locationName *string) (int64, error) {
	return s.getOrCreateLocationID(ctx, s.db, locationID, locationName)
}

func (s *LedgerHandler) getOrCreateLocationID(ctx context.Context, tx *gorm.DB, locationID *int64, locationName *string) (int64, error) {
	if err := validateLocationRef(locationID, locationName); err != nil {
		return 0, err
	}

	if locationID != nil && *locationID > 0 {
		var location models.Location
		if err := tx.WithContext(ctx).First(&location, *locationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return 0, apperrors.Reference("locationId", "location does not exist")
			}
			return 0, err
		}
		return location.ID, nil
	}

	var location models.Location
	err := tx.WithContext(ctx).Where("name = ?", *locationName).First(&location).Error
	if err == nil {
		return location.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	location = models.Location{Name: *locationName}
	if err := tx.WithContext(ctx).Create(&location).Error; err != nil {
		return 0, err
	}
	return location.ID, nil
}

// Append validates, resolves both foreign keys, and writes one ledger row in
// one transaction. The returned record carries its resolved item and
// location.
func (s *LedgerHandler) Append(ctx context.Context, in MoveInput) (*models.InventoryMove, error) {
	if err := validateMove(in); err != nil {
		return nil, err
	}

	var move *models.InventoryMove
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		move, err = s.appendTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, move.ID)
}

// AppendBatch applies the append contract to a non-empty ordered sequence.
// Every move is validated up front and the writes share one transaction, so
// a mid-batch failure leaves the ledger untouched.
func (s *LedgerHandler) AppendBatch(ctx context.Context, ins []MoveInput) ([]models.InventoryMove, error) {
	if len(ins) == 0 {
		return nil, apperrors.Validation("moves", "at least one move is required")
	}
	for _, in := range ins {
		if err := validateMove(in); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, 0, len(ins))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range ins {
			move, err := s.appendTx(ctx, tx, in)
			if err != nil {
				return err
			}
			ids = append(ids, move.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var moves []models.InventoryMove
	if err := s.db.WithContext(ctx).Preload("Item").Preload("Location").
		Where("id IN ?", ids).Order("id ASC").Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}

func (s *LedgerHandler) appendTx(ctx context.Context, tx *gorm.DB, in MoveInput) (*models.InventoryMove, error) {
	var item models.Item
	if err := tx.WithContext(ctx).First(&item, in.ItemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.Reference("itemId", "item does not exist")
		}
		return nil, err
	}

	locationID, err := s.getOrCreateLocationID(ctx, tx, in.LocationID, in.LocationName)
	if err != nil {
		return nil, err
	}

	movedAt := time.Now()
	if in.MovedAt != nil {
		movedAt = *in.MovedAt
	}

	move := models.InventoryMove{
		ItemID:     in.ItemID,
		LocationID: locationID,
		Type:       in.Type,
		Qty:        in.Qty,
		UnitCost:   in.UnitCost,
		SellPrice:  in.SellPrice,
		Ref:        in.Ref,
		Note:       in.Note,
		UserName:   in.UserName,
		MovedAt:    movedAt,
	}
	if err := tx.WithContext(ctx).Create(&move).Error; err != nil {
		return nil, err
	}
	return &move, nil
}

// Update is an administrative correction, not a business event. The full
// append contract is re-applied to the replacement values.
func (s *LedgerHandler) Update(ctx context.Context, id int64, in MoveInput) (*models.InventoryMove, error) {
	if err := validateMove(in); err != nil {
		return nil, err
	}

	var move models.InventoryMove
	if err := s.db.WithContext(ctx).First(&move, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("move", id)
		}
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.WithContext(ctx).First(&item, in.ItemID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.Reference("itemId", "item does not exist")
			}
			return err
		}

		locationID, err := s.getOrCreateLocationID(ctx, tx, in.LocationID, in.LocationName)
		if err != nil {
			return err
		}

		move.ItemID = in.ItemID
		move.LocationID = locationID
		move.Type = in.Type
		move.Qty = in.Qty
		move.UnitCost = in.UnitCost
		move.SellPrice = in.SellPrice
		move.Ref = in.Ref
		move.Note = in.Note
		move.UserName = in.UserName
		if in.MovedAt != nil {
			move.MovedAt = *in.MovedAt
		}
		return tx.WithContext(ctx).Save(&move).Error
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, move.ID)
}

// Delete is an administrative correction.
func (s *LedgerHandler) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.InventoryMove{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("move", id)
	}
	return nil
}

func (s *LedgerHandler) Get(ctx context.Context, id int64) (*models.InventoryMove, error) {
	return s.reload(ctx, id)
}

// List returns moves ordered by movedAt descending, capped at
// DefaultListLimit unless the filter asks for less.
func (s *LedgerHandler) List(ctx context.Context, filter ListFilter) ([]models.InventoryMove, error) {
	query := s.db.WithContext(ctx).Model(&models.InventoryMove{}).
		Preload("Item").Preload("Location")

	if filter.ItemID > 0 {
		query = query.Where("item_id = ?", filter.ItemID)
	}
	if filter.LocationID > 0 {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.Type != "" {
		if !filter.Type.Valid() {
			return nil, apperrors.Validation("type", "movement type must be IN, OUT, or ADJUST")
		}
		query = query.Where("type = ?", filter.Type)
	}
	if !filter.From.IsZero() {
		query = query.Where("moved_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("moved_at < ?", filter.To)
	}

	limit := filter.Limit
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	var moves []models.InventoryMove
	if err := query.Order("moved_at DESC").Limit(limit).Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}

func (s *LedgerHandler) reload(ctx context.Context, id int64) (*models.InventoryMove, error) {
	var move models.InventoryMove
	if err := s.db.WithContext(ctx).Preload("Item").Preload("Location").First(&move, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("move", id)
		}
		return nil, err
	}
	return &move, nil
}
