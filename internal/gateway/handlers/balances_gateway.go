package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type BalanceHTTPHandler struct {
	balances BalanceService
	redis    *redis.Client
}

func NewBalanceHTTPHandler(balances BalanceService, redisClient *redis.Client) *BalanceHTTPHandler {
	return &BalanceHTTPHandler{
		balances: balances,
		redis:    redisClient,
	}
}

// ListBalances serves the balances table. The response is cached briefly in
// redis; every catalog or ledger write invalidates the cache. The engine
// itself stays cache-agnostic.
func (s *BalanceHTTPHandler) ListBalances(c *gin.Context) {
	ctx := c.Request.Context()

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, balancesCacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	rows, err := s.balances.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := json.Marshal(gin.H{"success": true, "data": rows})
	if err != nil {
		respondError(c, err)
		return
	}

	if s.redis != nil {
		_ = s.redis.Set(ctx, balancesCacheKey, body, balancesCacheTTL).Err()
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
