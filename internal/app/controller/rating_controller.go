package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{
		ratingService: ratingService,
	}
}

type SubmitRatingRequest struct {
	UserID  *uint `json:"user_id"`
	StoreID uint  `json:"store_id" binding:"required"`
	Rating  *int  `json:"rating" binding:"required"`
}

// SubmitRating inserts or replaces the caller's rating of a store
// POST /api/ratings
func (ctrl *RatingController) SubmitRating(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	rating, err := ctrl.ratingService.SubmitRating(session, req.UserID, req.StoreID, *req.Rating)
	if err != nil {
		respondServiceError(c, err, "submit rating")
		return
	}

	c.JSON(http.StatusOK, rating)
}

// ListRatings returns a store's ratings joined with rater name and email
// GET /api/ratings/:store_id
func (ctrl *RatingController) ListRatings(c *gin.Context) {
	storeID, ok := parseIDParam(c, "store_id")
	if !ok {
		return
	}

	ratings, err := ctrl.ratingService.RatingsWithRaters(storeID)
	if err != nil {
		respondServiceError(c, err, "list ratings")
		return
	}

	c.JSON(http.StatusOK, ratings)
}

// GetAverage returns a store's average rating and rating count
// GET /api/ratings/:store_id/average
func (ctrl *RatingController) GetAverage(c *gin.Context) {
	storeID, ok := parseIDParam(c, "store_id")
	if !ok {
		return
	}

	average, err := ctrl.ratingService.AverageFor(storeID)
	if err != nil {
		respondServiceError(c, err, "fetch average")
		return
	}

	c.JSON(http.StatusOK, average)
}
