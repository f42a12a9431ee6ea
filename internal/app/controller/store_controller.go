package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	"github.com/ratethestore/ratethestore-backend/internal/middleware"
)

type StoreController struct {
	storeService  service.StoreService
	ratingService service.RatingService
}

func NewStoreController(storeService service.StoreService, ratingService service.RatingService) *StoreController {
	return &StoreController{
		storeService:  storeService,
		ratingService: ratingService,
	}
}

type CreateStoreRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Address string `json:"address" binding:"required"`
	OwnerID *uint  `json:"owner_id"`
}

type UpdateStoreRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// RateStoreRequest carries a rating for the store in the path. UserID is
// accepted for client compatibility and must match the caller.
type RateStoreRequest struct {
	UserID *uint `json:"userId"`
	Rating *int  `json:"rating" binding:"required"`
}

type StoreListQuery struct {
	Search    string `form:"search"`
	Name      string `form:"name"`
	Email     string `form:"email"`
	Address   string `form:"address"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name email address rating"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (q StoreListQuery) toServiceQuery() service.StoreQuery {
	return service.StoreQuery{
		Search:    q.Search,
		Name:      q.Name,
		Email:     q.Email,
		Address:   q.Address,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

// ListStores returns stores with their ratings and averages
// GET /api/stores
func (ctrl *StoreController) ListStores(c *gin.Context) {
	var query StoreListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	stores, err := ctrl.storeService.List(query.toServiceQuery())
	if err != nil {
		respondServiceError(c, err, "list stores")
		return
	}

	c.JSON(http.StatusOK, stores)
}

// GetStore returns one store with its ratings
// GET /api/stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	store, err := ctrl.storeService.Get(id)
	if err != nil {
		respondServiceError(c, err, "fetch store")
		return
	}

	c.JSON(http.StatusOK, store)
}

// CreateStore registers a store. Store owners always own what they create.
// POST /api/stores
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	store, err := ctrl.storeService.Create(session, service.StoreInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		respondServiceError(c, err, "create store")
		return
	}

	log.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"owner_id": store.OwnerID,
	})
	c.JSON(http.StatusCreated, store)
}

// UpdateStore patches a store's details
// PATCH /api/stores/:id
func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	store, err := ctrl.storeService.Update(session, id, service.StoreUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		respondServiceError(c, err, "update store")
		return
	}

	c.JSON(http.StatusOK, store)
}

// RateStore records the caller's rating and returns the refreshed store
// PATCH /api/stores/:id/ratings
func (ctrl *StoreController) RateStore(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if _, err := ctrl.ratingService.SubmitRating(session, req.UserID, id, *req.Rating); err != nil {
		respondServiceError(c, err, "submit rating")
		return
	}

	store, err := ctrl.storeService.Get(id)
	if err != nil {
		respondServiceError(c, err, "fetch store")
		return
	}

	c.JSON(http.StatusOK, store)
}

// DeleteStore removes a store and its ratings
// DELETE /api/stores/:id
func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.storeService.Delete(id); err != nil {
		respondServiceError(c, err, "delete store")
		return
	}

	log.Info("Store deleted", map[string]interface{}{
		"store_id": id,
	})
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Store deleted"})
}
