package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	cataloghandler "stocktrack/internal/services/catalog/handler"
)

type ItemHTTPHandler struct {
	catalog CatalogService
	redis   *redis.Client
}

func NewItemHTTPHandler(catalog CatalogService, redisClient *redis.Client) *ItemHTTPHandler {
	return &ItemHTTPHandler{
		catalog: catalog,
		redis:   redisClient,
	}
}

type itemRequest struct {
	SKU      string           `json:"sku" binding:"required,max=50,sku"`
	Name     string           `json:"name" binding:"required,max=255"`
	Category *string          `json:"category" binding:"omitempty,max=100"`
	UOM      string           `json:"uom" binding:"omitempty,max=20"`
	Barcode  *string          `json:"barcode" binding:"omitempty,max=100"`
	MinQty   *decimal.Decimal `json:"minQty"`
	ImageURL *string          `json:"imageUrl" binding:"omitempty,max=500"`
}

func (r itemRequest) toInput() cataloghandler.ItemInput {
	minQty := decimal.Zero
	if r.MinQty != nil {
		minQty = *r.MinQty
	}
	return cataloghandler.ItemInput{
		SKU:      r.SKU,
		Name:     r.Name,
		Category: r.Category,
		UOM:      r.UOM,
		Barcode:  r.Barcode,
		MinQty:   minQty,
		ImageURL: r.ImageURL,
	}
}

func (s *ItemHTTPHandler) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := s.catalog.CreateItem(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	created(c, item)
}

func (s *ItemHTTPHandler) UpdateItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid item ID")
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := s.catalog.UpdateItem(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	success(c, item)
}

func (s *ItemHTTPHandler) GetItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid item ID")
		return
	}

	item, err := s.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, item)
}

func (s *ItemHTTPHandler) ListItems(c *gin.Context) {
	items, err := s.catalog.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, items)
}

func (s *ItemHTTPHandler) DeleteItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid item ID")
		return
	}

	if err := s.catalog.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	success(c, gin.H{"message": "Item deleted successfully"})
}
