package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"

	"stocktrack/internal/apperrors"
	"stocktrack/internal/database/models"
	balancehandler "stocktrack/internal/services/balance/handler"
	cataloghandler "stocktrack/internal/services/catalog/handler"
	ledgerhandler "stocktrack/internal/services/ledger/handler"
)

const (
	balancesCacheKey = "stocktrack:balances"
	balancesCacheTTL = 5 * time.Minute
)

// CatalogService is the catalog surface the gateway consumes.
type CatalogService interface {
	CreateItem(ctx context.Context, in cataloghandler.ItemInput) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, in cataloghandler.ItemInput) (*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	CreateLocation(ctx context.Context, name string) (*models.Location, error)
	UpdateLocation(ctx context.Context, id int64, name string) (*models.Location, error)
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	DeleteLocation(ctx context.Context, id int64) error
}

// LedgerService is the ledger surface the gateway consumes.
type LedgerService interface {
	Append(ctx context.Context, in ledgerhandler.MoveInput) (*models.InventoryMove, error)
	AppendBatch(ctx context.Context, ins []ledgerhandler.MoveInput) ([]models.InventoryMove, error)
	Get(ctx context.Context, id int64) (*models.InventoryMove, error)
	Update(ctx context.Context, id int64, in ledgerhandler.MoveInput) (*models.InventoryMove, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ledgerhandler.ListFilter) ([]models.InventoryMove, error)
}

// BalanceService is the balances read surface the gateway consumes.
type BalanceService interface {
	List(ctx context.Context) ([]balancehandler.BalanceRow, error)
}

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
			return skuPattern.MatchString(fl.Field().String())
		})
	}
}

// Helper functions
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

// respondError maps the core's typed errors onto the HTTP contract:
// validation and dangling references are the client's fault (400), missing
// targets are 404, uniqueness and delete-blocked are 409, everything else
// including an unavailable balances read is a 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperrors.KindValidation, apperrors.KindReference:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindUnavailable:
		status = http.StatusInternalServerError
	}

	body := gin.H{"success": false, "error": appErr.Message}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.JSON(status, body)
}

func parseIDParam(c *gin.Context, param string) (int64, error) {
	return strconv.ParseInt(c.Param(param), 10, 64)
}

func parseInt64Query(c *gin.Context, param string) int64 {
	val, err := strconv.ParseInt(c.Query(param), 10, 64)
	if err != nil {
		return 0
	}
	return val
}

func parseIntQuery(c *gin.Context, param string) int {
	val, err := strconv.Atoi(c.Query(param))
	if err != nil {
		return 0
	}
	return val
}

func parseTimeQuery(c *gin.Context, param string) time.Time {
	str := c.Query(param)
	if str == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", str)
	if err != nil {
		return time.Time{}
	}
	return t
}

// invalidateBalancesCache drops the cached balances response after any write
// that can change them. A nil client (tests) is a no-op.
func invalidateBalancesCache(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_ = rdb.Del(ctx, balancesCacheKey)
}
