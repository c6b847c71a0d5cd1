package handler

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stocktrack/internal/apperrors"
	"stocktrack/internal/database/models"
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// ItemInput carries the mutable attributes of an item. Optional fields are
// pointers; nil leaves the column empty on create and untouched on update.
type ItemInput struct {
	SKU      string
	Name     string
	Category *string
	UOM      string
	Barcode  *string
	MinQty   decimal.Decimal
	ImageURL *string
}

type CatalogHandler struct {
	db *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

func validateItemInput(in ItemInput) error {
	if in.SKU == "" {
		return apperrors.Validation("sku", "SKU is required")
	}
	if len(in.SKU) > 50 {
		return apperrors.Validation("sku", "SKU must be 50 characters or less")
	}
	if !skuPattern.MatchString(in.SKU) {
		return apperrors.Validation("sku", "SKU can only contain letters, numbers, hyphens, and underscores")
	}
	if in.Name == "" {
		return apperrors.Validation("name", "item name is required")
	}
	if len(in.Name) > 255 {
		return apperrors.Validation("name", "item name must be 255 characters or less")
	}
	if in.Category != nil && len(*in.Category) > 100 {
		return apperrors.Validation("category", "category must be 100 characters or less")
	}
	if in.UOM == "" {
		return apperrors.Validation("uom", "unit of measure is required")
	}
	if len(in.UOM) > 20 {
		return apperrors.Validation("uom", "unit of measure must be 20 characters or less")
	}
	if in.Barcode != nil && len(*in.Barcode) > 100 {
		return apperrors.Validation("barcode", "barcode must be 100 characters or less")
	}
	if in.MinQty.IsNegative() {
		return apperrors.Validation("minQty", "minimum quantity cannot be negative")
	}
	if in.ImageURL != nil {
		if len(*in.ImageURL) > 500 {
			return apperrors.Validation("imageUrl", "image URL must be 500 characters or less")
		}
		if !validImageURL(*in.ImageURL) {
			return apperrors.Validation("imageUrl", "image URL must be a valid URL or root-relative path")
		}
	}
	return nil
}

// validImageURL accepts root-relative paths and absolute URLs.
func validImageURL(raw string) bool {
	if strings.HasPrefix(raw, "/") {
		return true
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func (s *CatalogHandler) CreateItem(ctx context.Context, in ItemInput) (*models.Item, error) {
	if in.UOM == "" {
		in.UOM = "pcs"
	}
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("sku = ?", in.SKU).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.Conflict("sku", "an item with this SKU already exists")
	}
	if in.Barcode != nil && *in.Barcode != "" {
		if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("barcode = ?", *in.Barcode).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.Conflict("barcode", "an item with this barcode already exists")
		}
	}

	item := models.Item{
		SKU:      in.SKU,
		Name:     in.Name,
		Category: in.Category,
		UOM:      in.UOM,
		Barcode:  in.Barcode,
		MinQty:   in.MinQty,
		ImageURL: in.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogHandler) UpdateItem(ctx context.Context, id int64, in ItemInput) (*models.Item, error) {
	if in.UOM == "" {
		in.UOM = "pcs"
	}
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("item", id)
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("sku = ? AND id <> ?", in.SKU, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.Conflict("sku", "an item with this SKU already exists")
	}
	if in.Barcode != nil && *in.Barcode != "" {
		if err := s.db.WithContext(ctx).Model(&models.Item{}).
			Where("barcode = ? AND id <> ?", *in.Barcode, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.Conflict("barcode", "an item with this barcode already exists")
		}
	}

	item.SKU = in.SKU
	item.Name = in.Name
	item.Category = in.Category
	item.UOM = in.UOM
	item.Barcode = in.Barcode
	item.MinQty = in.MinQty
	item.ImageURL = in.ImageURL

	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogHandler) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("item", id)
		}
		return nil, err
	}
	return &item, nil
}

func (s *CatalogHandler) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItem refuses to delete while any ledger entry references the item.
func (s *CatalogHandler) DeleteItem(ctx context.Context, id int64) error {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("item", id)
		}
		return err
	}

	var moveCount int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryMove{}).
		Where("item_id = ?", id).Count(&moveCount).Error; err != nil {
		return err
	}
	if moveCount > 0 {
		return apperrors.Conflict("id",
			fmt.Sprintf("item is referenced by %d inventory move(s); remove them before deleting", moveCount))
	}

	return s.db.WithContext(ctx).Delete(&models.Item{}, id).Error
}

func (s *CatalogHandler) CreateLocation(ctx context.Context, name string) (*models.Location, error) {
	if err := validateLocationName(name); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Location{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.Conflict("name", "a location with this name already exists")
	}

	location := models.Location{Name: name}
	if err := s.db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *CatalogHandler) UpdateLocation(ctx context.Context, id int64, name string) (*models.Location, error) {
	if err := validateLocationName(name); err != nil {
		return nil, err
	}

	var location models.Location
	if err := s.db.WithContext(ctx).First(&location, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("location", id)
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Location{}).
		Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.Conflict("name", "a location with this name already exists")
	}

	location.Name = name
	if err := s.db.WithContext(ctx).Save(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *CatalogHandler) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	var location models.Location
	if err := s.db.WithContext(ctx).First(&location, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("location", id)
		}
		return nil, err
	}
	return &location, nil
}

func (s *CatalogHandler) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// DeleteLocation refuses to delete while any ledger entry references the
// location.
func (s *CatalogHandler) DeleteLocation(ctx context.Context, id int64) error {
	var location models.Location
	if err := s.db.WithContext(ctx).First(&location, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("location", id)
		}
		return err
	}

	var moveCount int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryMove{}).
		Where("location_id = ?", id).Count(&moveCount).Error; err != nil {
		return err
	}
	if moveCount > 0 {
		return apperrors.Conflict("id",
			fmt.Sprintf("location is referenced by %d inventory move(s); remove or reassign them before deleting", moveCount))
	}

	return s.db.WithContext(ctx).Delete(&models.Location{}, id).Error
}

func validateLocationName(name string) error {
	if name == "" {
		return apperrors.Validation("name", "location name is required")
	}
	if len(name) > 100 {
		return apperrors.Validation("name", "location name must be 100 characters or less")
	}
	return nil
}
