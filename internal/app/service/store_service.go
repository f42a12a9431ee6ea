package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"github.com/ratethestore/ratethestore-backend/pkg/util"
	"gorm.io/gorm"
)

// StoreView is a store with its ratings and derived average.
type StoreView struct {
	model.Store
	Ratings []model.StoreRating `json:"ratings"`
	model.RatingSummary
}

type StoreInput struct {
	Name    string
	Email   string
	Address string
	OwnerID *uint
}

// StoreUpdate applies patch semantics: empty fields keep their value.
type StoreUpdate struct {
	Name    string
	Email   string
	Address string
}

// StoreQuery filters store listings. SortBy accepts name, email, address
// and rating.
type StoreQuery struct {
	Search    string
	Name      string
	Email     string
	Address   string
	SortBy    string
	SortOrder string
}

type StoreService interface {
	Create(session *Session, input StoreInput) (*StoreView, error)
	List(query StoreQuery) ([]StoreView, error)
	Get(id uint) (*StoreView, error)
	Update(session *Session, id uint, input StoreUpdate) (*StoreView, error)
	Delete(id uint) error
}

type storeService struct {
	storeRepo  repository.StoreRepository
	userRepo   repository.UserRepository
	ratingRepo repository.RatingRepository
}

func NewStoreService(
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	ratingRepo repository.RatingRepository,
) StoreService {
	return &storeService{
		storeRepo:  storeRepo,
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *storeService) Create(session *Session, input StoreInput) (*StoreView, error) {
	if err := Authorize(session, CapManageStores); err != nil {
		return nil, err
	}

	logger.Info("Creating store", map[string]interface{}{
		"name":       input.Name,
		"created_by": session.UserID,
	})

	store := &model.Store{
		Name:    strings.TrimSpace(input.Name),
		Email:   util.NormalizeEmail(input.Email),
		Address: strings.TrimSpace(input.Address),
	}
	if err := validateStore(store); err != nil {
		return nil, err
	}

	ownerID, err := s.resolveOwner(session, input.OwnerID)
	if err != nil {
		return nil, err
	}
	store.OwnerID = ownerID

	if err := s.storeRepo.Create(store); err != nil {
		logger.Error("Failed to create store", err, map[string]interface{}{
			"name": store.Name,
		})
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"owner_id": store.OwnerID,
	})
	return &StoreView{Store: *store, Ratings: []model.StoreRating{}}, nil
}

// resolveOwner: store owners always own what they create; admins may
// assign any existing store owner or leave the store unowned.
func (s *storeService) resolveOwner(session *Session, requested *uint) (*uint, error) {
	switch session.Role {
	case model.RoleStoreOwner:
		if requested != nil && *requested != session.UserID {
			return nil, ErrForbidden
		}
		id := session.UserID
		return &id, nil
	case model.RoleAdmin:
		if requested == nil || *requested == 0 {
			return nil, nil
		}
		owner, err := s.userRepo.FindByID(*requested)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOwnerNotFound
			}
			return nil, err
		}
		if owner.Role != model.RoleStoreOwner {
			return nil, ErrOwnerNotFound
		}
		id := owner.ID
		return &id, nil
	case model.RoleNormalUser:
		return nil, ErrForbidden
	default:
		return nil, ErrForbidden
	}
}

func (s *storeService) List(query StoreQuery) ([]StoreView, error) {
	byRating := strings.EqualFold(query.SortBy, "rating")
	filter := repository.StoreFilter{
		Search:    query.Search,
		Name:      query.Name,
		Email:     query.Email,
		Address:   query.Address,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if byRating {
		filter.SortBy = ""
	}

	stores, err := s.storeRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}

	views, err := s.withRatings(stores)
	if err != nil {
		return nil, err
	}

	if byRating {
		sortByAverage(views, strings.EqualFold(query.SortOrder, "desc"))
	}
	return views, nil
}

func (s *storeService) Get(id uint) (*StoreView, error) {
	store, err := s.findStore(id)
	if err != nil {
		return nil, err
	}

	views, err := s.withRatings([]model.Store{*store})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *storeService) Update(session *Session, id uint, input StoreUpdate) (*StoreView, error) {
	store, err := s.findStore(id)
	if err != nil {
		return nil, err
	}

	if !CanEditStore(session, store) {
		logger.Warn("Store update denied", map[string]interface{}{
			"store_id": id,
		})
		return nil, ErrForbidden
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		store.Name = name
	}
	if email := util.NormalizeEmail(input.Email); email != "" {
		store.Email = email
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		store.Address = address
	}
	if err := validateStore(store); err != nil {
		return nil, err
	}

	if err := s.storeRepo.Update(store); err != nil {
		logger.Error("Failed to update store", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}

	logger.Info("Store updated", map[string]interface{}{
		"store_id":   id,
		"updated_by": session.UserID,
	})
	return s.Get(id)
}

func (s *storeService) Delete(id uint) error {
	if err := s.storeRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}

	logger.Info("Store deleted", map[string]interface{}{
		"store_id": id,
	})
	return nil
}

func (s *storeService) findStore(id uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// withRatings attaches ratings to stores with a single rating query.
func (s *storeService) withRatings(stores []model.Store) ([]StoreView, error) {
	ids := make([]uint, len(stores))
	for i, store := range stores {
		ids[i] = store.ID
	}

	rows, err := s.ratingRepo.ListByStores(ids)
	if err != nil {
		return nil, err
	}

	byStore := make(map[uint][]model.StoreRating, len(stores))
	for _, row := range rows {
		byStore[row.StoreID] = append(byStore[row.StoreID], row)
	}

	views := make([]StoreView, len(stores))
	for i, store := range stores {
		ratings := byStore[store.ID]
		if ratings == nil {
			ratings = []model.StoreRating{}
		}
		views[i] = StoreView{
			Store:         store,
			Ratings:       ratings,
			RatingSummary: model.SummarizeRatings(ratings),
		}
	}
	return views, nil
}

// sortByAverage orders views by average rating; unrated stores sort last
// in both directions.
func sortByAverage(views []StoreView, desc bool) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Average, views[j].Average
		switch {
		case !views[i].HasRatings():
			return false
		case !views[j].HasRatings():
			return true
		case desc:
			return *a > *b
		default:
			return *a < *b
		}
	})
}

func validateStore(store *model.Store) error {
	if !util.LengthBetween(store.Name, util.StoreNameMinLength, util.NameMaxLength) {
		return fmt.Errorf("%w: store name must be %d-%d characters",
			ErrInvalidInput, util.StoreNameMinLength, util.NameMaxLength)
	}
	if !util.IsValidEmail(store.Email) {
		return fmt.Errorf("%w: store email is invalid", ErrInvalidInput)
	}
	if !util.LengthBetween(store.Address, util.StoreAddrMinLength, util.AddressMaxLength) {
		return fmt.Errorf("%w: store address must be %d-%d characters",
			ErrInvalidInput, util.StoreAddrMinLength, util.AddressMaxLength)
	}
	return nil
}
