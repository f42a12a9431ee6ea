package service

import (
	"errors"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"gorm.io/gorm"
)

// Rating submission outcomes reported to a RatingObserver.
const (
	OutcomeAccepted  = "accepted"
	OutcomeInvalid   = "invalid"
	OutcomeForbidden = "forbidden"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

// RatingObserver is notified of every rating submission.
type RatingObserver interface {
	ObserveRatingSubmission(outcome string)
}

// StoreAverage is the derived aggregate for one store.
type StoreAverage struct {
	StoreID uint `json:"store_id"`
	model.RatingSummary
}

type RatingService interface {
	SubmitRating(session *Session, requestedUserID *uint, storeID uint, value int) (*model.Rating, error)
	AverageFor(storeID uint) (*StoreAverage, error)
	RatingsWithRaters(storeID uint) ([]model.RatingWithRater, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
	observer   RatingObserver
}

// NewRatingService builds the rating ledger. observer may be nil.
func NewRatingService(
	ratingRepo repository.RatingRepository,
	storeRepo repository.StoreRepository,
	observer RatingObserver,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		observer:   observer,
	}
}

// SubmitRating records value as the session user's rating of storeID,
// replacing any earlier one. requestedUserID, when present, must be the
// session user.
func (s *ratingService) SubmitRating(session *Session, requestedUserID *uint, storeID uint, value int) (*model.Rating, error) {
	rating, err := s.submit(session, requestedUserID, storeID, value)
	s.observe(err)
	return rating, err
}

func (s *ratingService) submit(session *Session, requestedUserID *uint, storeID uint, value int) (*model.Rating, error) {
	if err := Authorize(session, CapAuthenticated); err != nil {
		return nil, err
	}
	if requestedUserID != nil && *requestedUserID != session.UserID {
		logger.Warn("Rating submission for another user denied", map[string]interface{}{
			"session_user_id":   session.UserID,
			"requested_user_id": *requestedUserID,
			"store_id":          storeID,
		})
		return nil, ErrForbidden
	}

	if !model.ValidRating(value) {
		return nil, ErrInvalidRating
	}

	rating := &model.Rating{
		UserID:  session.UserID,
		StoreID: storeID,
		Rating:  value,
	}
	if err := s.ratingRepo.Upsert(rating); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		logger.Error("Failed to submit rating", err, map[string]interface{}{
			"user_id":  session.UserID,
			"store_id": storeID,
		})
		return nil, err
	}

	logger.Info("Rating submitted", map[string]interface{}{
		"rating_id": rating.ID,
		"user_id":   rating.UserID,
		"store_id":  rating.StoreID,
		"rating":    rating.Rating,
	})
	return rating, nil
}

func (s *ratingService) observe(err error) {
	if s.observer == nil {
		return
	}

	outcome := OutcomeAccepted
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidRating):
		outcome = OutcomeInvalid
	case errors.Is(err, ErrForbidden):
		outcome = OutcomeForbidden
	case errors.Is(err, ErrStoreNotFound):
		outcome = OutcomeNotFound
	default:
		outcome = OutcomeError
	}
	s.observer.ObserveRatingSubmission(outcome)
}

func (s *ratingService) AverageFor(storeID uint) (*StoreAverage, error) {
	if err := s.ensureStore(storeID); err != nil {
		return nil, err
	}

	summary, err := s.ratingRepo.SummaryForStore(storeID)
	if err != nil {
		return nil, err
	}
	return &StoreAverage{StoreID: storeID, RatingSummary: summary}, nil
}

func (s *ratingService) RatingsWithRaters(storeID uint) ([]model.RatingWithRater, error) {
	if err := s.ensureStore(storeID); err != nil {
		return nil, err
	}

	rows, err := s.ratingRepo.ListByStoreWithRaters(storeID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.RatingWithRater{}
	}
	return rows, nil
}

func (s *ratingService) ensureStore(storeID uint) error {
	if _, err := s.storeRepo.FindByID(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}
	return nil
}
