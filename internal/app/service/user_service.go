package service

import (
	"errors"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"github.com/ratethestore/ratethestore-backend/pkg/util"
	"gorm.io/gorm"
)

// UserDetail is a user plus, for store owners, the average across their stores.
type UserDetail struct {
	model.User
	OwnerAverage *model.RatingSummary `json:"owner_average,omitempty"`
}

type UserService interface {
	Create(input UserInput) (*model.User, error)
	List(filter repository.UserFilter) ([]model.User, error)
	Get(id uint) (*UserDetail, error)
	UpdatePassword(session *Session, userID uint, currentPassword, newPassword string) error
	Delete(id uint) error
}

type userService struct {
	userRepo   repository.UserRepository
	ratingRepo repository.RatingRepository
	bcryptCost int
}

func NewUserService(
	userRepo repository.UserRepository,
	ratingRepo repository.RatingRepository,
	bcryptCost int,
) UserService {
	if bcryptCost == 0 {
		bcryptCost = util.DefaultBcryptCost
	}
	return &userService{
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
		bcryptCost: bcryptCost,
	}
}

// Create is the administrator path; any role may be assigned.
func (s *userService) Create(input UserInput) (*model.User, error) {
	logger.Info("Creating user", map[string]interface{}{
		"email": input.Email,
		"role":  input.Role,
	})

	user, err := input.normalize()
	if err != nil {
		return nil, err
	}

	if err := createUser(s.userRepo, user, input.Password, s.bcryptCost); err != nil {
		return nil, err
	}

	logger.Info("User created", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *userService) List(filter repository.UserFilter) ([]model.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, ErrInvalidRole
	}

	users, err := s.userRepo.List(filter)
	if err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}
	return users, nil
}

func (s *userService) Get(id uint) (*UserDetail, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	detail := &UserDetail{User: *user}
	switch user.Role {
	case model.RoleStoreOwner:
		summary, err := s.ratingRepo.SummaryForOwner(user.ID)
		if err != nil {
			return nil, err
		}
		detail.OwnerAverage = &summary
	case model.RoleAdmin, model.RoleNormalUser:
	}

	return detail, nil
}

// UpdatePassword compares currentPassword against the stored hash before
// replacing it. Only the user themselves or an admin may call it.
func (s *userService) UpdatePassword(session *Session, userID uint, currentPassword, newPassword string) error {
	if !CanActOnUser(session, userID) {
		logger.Warn("Password update denied", map[string]interface{}{
			"target_user_id": userID,
		})
		return ErrForbidden
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password update failed: current password incorrect", map[string]interface{}{
			"user_id": userID,
		})
		return ErrCurrentPasswordIncorrect
	}

	if !util.IsStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	hash, err := util.HashPasswordWithCost(newPassword, s.bcryptCost)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	if err := s.userRepo.UpdatePassword(userID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("Password updated", map[string]interface{}{
		"user_id":    userID,
		"updated_by": session.UserID,
	})
	return nil
}

func (s *userService) Delete(id uint) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}
