package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"stocktrack/internal/database/models"
	ledgerhandler "stocktrack/internal/services/ledger/handler"
)

type MoveHTTPHandler struct {
	ledger LedgerService
	redis  *redis.Client
}

func NewMoveHTTPHandler(ledger LedgerService, redisClient *redis.Client) *MoveHTTPHandler {
	return &MoveHTTPHandler{
		ledger: ledger,
		redis:  redisClient,
	}
}

type moveRequest struct {
	ItemID       int64            `json:"itemId" binding:"required,gt=0"`
	LocationID   *int64           `json:"locationId"`
	LocationName *string          `json:"locationName" binding:"omitempty,max=100"`
	Type         string           `json:"type" binding:"required,oneof=IN OUT ADJUST"`
	Qty          decimal.Decimal  `json:"qty"`
	UnitCost     *decimal.Decimal `json:"unitCost"`
	SellPrice    *decimal.Decimal `json:"sellPrice"`
	Ref          *string          `json:"ref" binding:"omitempty,max=100"`
	Note         *string          `json:"note" binding:"omitempty,max=500"`
	UserName     *string          `json:"userName" binding:"omitempty,max=100"`
	MovedAt      *time.Time       `json:"movedAt"`
}

type batchMoveRequest struct {
	Moves []moveRequest `json:"moves" binding:"required,min=1,dive"`
}

func (r moveRequest) toInput() ledgerhandler.MoveInput {
	return ledgerhandler.MoveInput{
		ItemID:       r.ItemID,
		LocationID:   r.LocationID,
		LocationName: r.LocationName,
		Type:         models.MoveType(r.Type),
		Qty:          r.Qty,
		UnitCost:     r.UnitCost,
		SellPrice:    r.SellPrice,
		Ref:          r.Ref,
		Note:         r.Note,
		UserName:     r.UserName,
		MovedAt:      r.MovedAt,
	}
}

func (s *MoveHTTPHandler) CreateMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	move, err := s.ledger.Append(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	created(c, move)
}

// CreateMoves records an ordered batch of moves as one unit; the multi-row
// entry form submits through here.
func (s *MoveHTTPHandler) CreateMoves(c *gin.Context) {
	var req batchMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inputs := make([]ledgerhandler.MoveInput, len(req.Moves))
	for i, move := range req.Moves {
		inputs[i] = move.toInput()
	}

	moves, err := s.ledger.AppendBatch(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	created(c, moves)
}

func (s *MoveHTTPHandler) GetMove(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid move ID")
		return
	}

	move, err := s.ledger.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, move)
}

func (s *MoveHTTPHandler) UpdateMove(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid move ID")
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	move, err := s.ledger.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	success(c, move)
}

func (s *MoveHTTPHandler) DeleteMove(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid move ID")
		return
	}

	if err := s.ledger.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	success(c, gin.H{"message": "Move deleted successfully"})
}

func (s *MoveHTTPHandler) ListMoves(c *gin.Context) {
	filter := ledgerhandler.ListFilter{
		ItemID:     parseInt64Query(c, "item_id"),
		LocationID: parseInt64Query(c, "location_id"),
		Type:       models.MoveType(c.Query("type")),
		From:       parseTimeQuery(c, "from"),
		To:         parseTimeQuery(c, "to"),
		Limit:      parseIntQuery(c, "limit"),
	}

	moves, err := s.ledger.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, moves)
}
