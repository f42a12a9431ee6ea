package service

import (
	"fmt"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
)

// DashboardView is the role-specific landing data. Exactly one
// implementation exists per role.
type DashboardView interface {
	ViewRole() model.UserRole
}

type AdminDashboard struct {
	Role         model.UserRole `json:"role"`
	TotalUsers   int64          `json:"total_users"`
	TotalStores  int64          `json:"total_stores"`
	TotalRatings int64          `json:"total_ratings"`
}

func (AdminDashboard) ViewRole() model.UserRole { return model.RoleAdmin }

type UserDashboardStore struct {
	StoreView
	MyRating *int `json:"my_rating"`
}

type UserDashboard struct {
	Role   model.UserRole       `json:"role"`
	Stores []UserDashboardStore `json:"stores"`
}

func (UserDashboard) ViewRole() model.UserRole { return model.RoleNormalUser }

type OwnerDashboardStore struct {
	model.Store
	model.RatingSummary
	Raters []model.RatingWithRater `json:"raters"`
}

type OwnerDashboard struct {
	Role           model.UserRole        `json:"role"`
	Stores         []OwnerDashboardStore `json:"stores"`
	OverallAverage *float64              `json:"overall_average"`
	TotalRatings   int64                 `json:"total_ratings"`
}

func (OwnerDashboard) ViewRole() model.UserRole { return model.RoleStoreOwner }

type DashboardService interface {
	Dashboard(session *Session, query StoreQuery) (DashboardView, error)
}

type dashboardService struct {
	userRepo     repository.UserRepository
	storeRepo    repository.StoreRepository
	ratingRepo   repository.RatingRepository
	storeService StoreService
}

func NewDashboardService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
	storeService StoreService,
) DashboardService {
	return &dashboardService{
		userRepo:     userRepo,
		storeRepo:    storeRepo,
		ratingRepo:   ratingRepo,
		storeService: storeService,
	}
}

func (s *dashboardService) Dashboard(session *Session, query StoreQuery) (DashboardView, error) {
	if err := Authorize(session, CapAuthenticated); err != nil {
		return nil, err
	}

	logger.Debug("Building dashboard", map[string]interface{}{
		"user_id": session.UserID,
		"role":    session.Role,
	})

	switch session.Role {
	case model.RoleAdmin:
		return s.adminDashboard()
	case model.RoleNormalUser:
		return s.userDashboard(session, query)
	case model.RoleStoreOwner:
		return s.ownerDashboard(session)
	default:
		return nil, fmt.Errorf("dashboard: %w: %q", model.ErrUnknownRole, session.Role)
	}
}

func (s *dashboardService) adminDashboard() (DashboardView, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.Count()
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		Role:         model.RoleAdmin,
		TotalUsers:   users,
		TotalStores:  stores,
		TotalRatings: ratings,
	}, nil
}

func (s *dashboardService) userDashboard(session *Session, query StoreQuery) (DashboardView, error) {
	views, err := s.storeService.List(query)
	if err != nil {
		return nil, err
	}

	stores := make([]UserDashboardStore, len(views))
	for i, view := range views {
		stores[i] = UserDashboardStore{StoreView: view}
		for _, r := range view.Ratings {
			if r.UserID == session.UserID {
				value := r.Rating
				stores[i].MyRating = &value
				break
			}
		}
	}

	return &UserDashboard{Role: model.RoleNormalUser, Stores: stores}, nil
}

func (s *dashboardService) ownerDashboard(session *Session) (DashboardView, error) {
	owned, err := s.storeRepo.FindByOwner(session.UserID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(owned))
	for i, store := range owned {
		ids[i] = store.ID
	}
	raters, err := s.ratingRepo.ListWithRatersByStores(ids)
	if err != nil {
		return nil, err
	}

	byStore := make(map[uint][]model.RatingWithRater, len(owned))
	var total int64
	for _, r := range raters {
		byStore[r.StoreID] = append(byStore[r.StoreID], r)
		total += int64(r.Rating)
	}

	stores := make([]OwnerDashboardStore, len(owned))
	for i, store := range owned {
		rows := byStore[store.ID]
		if rows == nil {
			rows = []model.RatingWithRater{}
		}
		var sum int64
		for _, r := range rows {
			sum += int64(r.Rating)
		}
		stores[i] = OwnerDashboardStore{
			Store:         store,
			RatingSummary: model.NewRatingSummary(sum, int64(len(rows))),
			Raters:        rows,
		}
	}

	overall := model.NewRatingSummary(total, int64(len(raters)))
	return &OwnerDashboard{
		Role:           model.RoleStoreOwner,
		Stores:         stores,
		OverallAverage: overall.Average,
		TotalRatings:   overall.Count,
	}, nil
}
