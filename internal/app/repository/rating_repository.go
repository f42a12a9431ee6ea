package repository

import (
	"errors"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Upsert(rating *model.Rating) error
	ListByStoreWithRaters(storeID uint) ([]model.RatingWithRater, error)
	ListWithRatersByStores(storeIDs []uint) ([]model.RatingWithRater, error)
	ListByStores(storeIDs []uint) ([]model.StoreRating, error)
	SummaryForStore(storeID uint) (model.RatingSummary, error)
	SummaryForOwner(ownerID uint) (model.RatingSummary, error)
	Count() (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

type ratingTotals struct {
	Total int64
	Count int64
}

// Upsert inserts or overwrites the (user_id, store_id) rating in a single
// statement and reloads the stored row into rating. The store row is share
// locked for the transaction, so a concurrent store delete either waits for
// the rating to commit or makes Upsert return gorm.ErrRecordNotFound.
func (r *ratingRepository) Upsert(rating *model.Rating) error {
	logger.Debug("Upserting rating in database", map[string]interface{}{
		"user_id":  rating.UserID,
		"store_id": rating.StoreID,
		"rating":   rating.Rating,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var store model.Store
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").First(&store, rating.StoreID).Error; err != nil {
			return err
		}

		row := model.Rating{
			UserID:  rating.UserID,
			StoreID: rating.StoreID,
			Rating:  rating.Rating,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).
			First(rating).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug("Rated store not found in database", map[string]interface{}{
			"store_id": rating.StoreID,
		})
		return err
	}
	if err != nil {
		logger.Error("Failed to upsert rating in database", err, map[string]interface{}{
			"user_id":  rating.UserID,
			"store_id": rating.StoreID,
		})
		return err
	}

	logger.Debug("Rating upserted in database", map[string]interface{}{
		"rating_id": rating.ID,
		"rating":    rating.Rating,
	})
	return nil
}

func (r *ratingRepository) ListByStoreWithRaters(storeID uint) ([]model.RatingWithRater, error) {
	return r.ListWithRatersByStores([]uint{storeID})
}

// ListWithRatersByStores joins each rating with its rater, ordered by rating id.
func (r *ratingRepository) ListWithRatersByStores(storeIDs []uint) ([]model.RatingWithRater, error) {
	logger.Debug("Listing ratings with raters", map[string]interface{}{
		"store_ids": storeIDs,
	})

	rows := []model.RatingWithRater{}
	if len(storeIDs) == 0 {
		return rows, nil
	}

	if err := r.db.Table("ratings").
		Select("ratings.id, ratings.user_id, ratings.store_id, ratings.rating, users.name, users.email").
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id IN ?", storeIDs).
		Order("ratings.id ASC").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to list ratings with raters", err, map[string]interface{}{
			"store_ids": storeIDs,
		})
		return nil, err
	}

	logger.Debug("Ratings with raters listed", map[string]interface{}{
		"count": len(rows),
	})
	return rows, nil
}

// ListByStores fetches the ratings of every listed store in one query.
func (r *ratingRepository) ListByStores(storeIDs []uint) ([]model.StoreRating, error) {
	if len(storeIDs) == 0 {
		return []model.StoreRating{}, nil
	}

	var rows []model.StoreRating
	if err := r.db.Model(&model.Rating{}).
		Select("store_id, user_id, rating").
		Where("store_id IN ?", storeIDs).
		Order("id ASC").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to list ratings for stores", err, map[string]interface{}{
			"store_count": len(storeIDs),
		})
		return nil, err
	}

	logger.Debug("Ratings for stores listed", map[string]interface{}{
		"store_count":  len(storeIDs),
		"rating_count": len(rows),
	})
	return rows, nil
}

func (r *ratingRepository) SummaryForStore(storeID uint) (model.RatingSummary, error) {
	var totals ratingTotals
	if err := r.db.Model(&model.Rating{}).
		Select("CAST(COALESCE(SUM(rating), 0) AS BIGINT) AS total, COUNT(*) AS count").
		Where("store_id = ?", storeID).
		Scan(&totals).Error; err != nil {
		logger.Error("Failed to summarize store ratings", err, map[string]interface{}{
			"store_id": storeID,
		})
		return model.RatingSummary{}, err
	}
	return model.NewRatingSummary(totals.Total, totals.Count), nil
}

// SummaryForOwner averages every rating across the stores ownerID owns.
func (r *ratingRepository) SummaryForOwner(ownerID uint) (model.RatingSummary, error) {
	var totals ratingTotals
	if err := r.db.Table("ratings").
		Select("CAST(COALESCE(SUM(ratings.rating), 0) AS BIGINT) AS total, COUNT(*) AS count").
		Joins("JOIN stores ON stores.id = ratings.store_id").
		Where("stores.owner_id = ?", ownerID).
		Scan(&totals).Error; err != nil {
		logger.Error("Failed to summarize owner ratings", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return model.RatingSummary{}, err
	}
	return model.NewRatingSummary(totals.Total, totals.Count), nil
}

func (r *ratingRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Rating{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count ratings", err)
		return 0, err
	}
	return count, nil
}
