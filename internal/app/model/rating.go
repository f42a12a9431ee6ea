package model

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's score for one store. (user_id, store_id) is unique.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store" json:"user_id"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store;index:idx_ratings_store_id" json:"store_id"`
	Rating    int       `gorm:"not null;check:chk_ratings_range,rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// ValidRating reports whether v is within the 1-5 star range.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// StoreRating is the compact form embedded in store listings.
type StoreRating struct {
	StoreID uint `json:"-"`
	UserID  uint `json:"userId"`
	Rating  int  `json:"rating"`
}

// RatingWithRater joins a rating with the rater's display fields.
type RatingWithRater struct {
	ID      uint   `json:"id"`
	UserID  uint   `json:"user_id"`
	StoreID uint   `json:"store_id"`
	Rating  int    `json:"rating"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// RatingSummary is the derived aggregate for a set of ratings.
// Average is nil when there are no ratings.
type RatingSummary struct {
	Average *float64 `json:"average_rating"`
	Count   int64    `json:"rating_count"`
}

// HasRatings distinguishes the empty state from an average of zero.
func (s RatingSummary) HasRatings() bool {
	return s.Count > 0 && s.Average != nil
}

// NewRatingSummary builds a summary from a sum and count of ratings.
func NewRatingSummary(total, count int64) RatingSummary {
	if count <= 0 {
		return RatingSummary{Count: 0}
	}
	avg := float64(total) / float64(count)
	return RatingSummary{Average: &avg, Count: count}
}

// SummarizeRatings averages the values in ratings.
func SummarizeRatings(ratings []StoreRating) RatingSummary {
	var total int64
	for _, r := range ratings {
		total += int64(r.Rating)
	}
	return NewRatingSummary(total, int64(len(ratings)))
}
