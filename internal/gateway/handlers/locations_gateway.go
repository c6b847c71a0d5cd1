package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type LocationHTTPHandler struct {
	catalog CatalogService
	redis   *redis.Client
}

func NewLocationHTTPHandler(catalog CatalogService, redisClient *redis.Client) *LocationHTTPHandler {
	return &LocationHTTPHandler{
		catalog: catalog,
		redis:   redisClient,
	}
}

type locationRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (s *LocationHTTPHandler) CreateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	location, err := s.catalog.CreateLocation(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	created(c, location)
}

func (s *LocationHTTPHandler) UpdateLocation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid location ID")
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	location, err := s.catalog.UpdateLocation(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	success(c, location)
}

func (s *LocationHTTPHandler) GetLocation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid location ID")
		return
	}

	location, err := s.catalog.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, location)
}

func (s *LocationHTTPHandler) ListLocations(c *gin.Context) {
	locations, err := s.catalog.ListLocations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, locations)
}

func (s *LocationHTTPHandler) DeleteLocation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		badRequest(c, "Invalid location ID")
		return
	}

	if err := s.catalog.DeleteLocation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	invalidateBalancesCache(c.Request.Context(), s.redis)
	success(c, gin.H{"message": "Location deleted successfully"})
}
