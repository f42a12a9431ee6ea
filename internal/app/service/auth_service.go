package service

import (
	"errors"
	"time"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"github.com/ratethestore/ratethestore-backend/pkg/util"
	"gorm.io/gorm"
)

type AuthService interface {
	Signup(input UserInput) (*model.User, error)
	Login(email, password string) (*model.User, *util.Token, error)
	VerifyToken(token string) (*Session, error)
	GetUserByID(id uint) (*model.User, error)
}

type AuthConfig struct {
	JWTSecret        string
	TokenExpiry      time.Duration
	BcryptCost       int
	AllowAdminSignup bool
}

type authService struct {
	userRepo repository.UserRepository
	cfg      AuthConfig
	// dummyHash is compared against on unknown emails so both login
	// failures pay for one bcrypt comparison at the configured cost.
	dummyHash      string
	verifyPassword func(hash, password string) bool
}

func NewAuthService(userRepo repository.UserRepository, cfg AuthConfig) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = util.DefaultBcryptCost
	}
	if cfg.TokenExpiry == 0 {
		cfg.TokenExpiry = 24 * time.Hour
	}
	dummyHash, err := util.HashPasswordWithCost("unknown-account-placeholder", cfg.BcryptCost)
	if err != nil {
		logger.Error("Failed to prepare placeholder password hash", err, map[string]interface{}{
			"bcrypt_cost": cfg.BcryptCost,
		})
	}
	return &authService{
		userRepo:       userRepo,
		cfg:            cfg,
		dummyHash:      dummyHash,
		verifyPassword: util.VerifyPassword,
	}
}

func (s *authService) Signup(input UserInput) (*model.User, error) {
	logger.Info("Attempting user signup", map[string]interface{}{
		"email": input.Email,
		"role":  input.Role,
	})

	user, err := input.normalize()
	if err != nil {
		logger.Warn("Signup failed: invalid input", map[string]interface{}{
			"email": input.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	if user.Role == model.RoleAdmin && !s.cfg.AllowAdminSignup {
		logger.Warn("Signup failed: administrator self-signup disabled", map[string]interface{}{
			"email": user.Email,
		})
		return nil, ErrForbidden
	}

	if err := createUser(s.userRepo, user, input.Password, s.cfg.BcryptCost); err != nil {
		return nil, err
	}

	logger.Info("User signed up successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.Token, error) {
	email = util.NormalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.verifyPassword(s.dummyHash, password)
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !s.verifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, s.cfg.JWTSecret, s.cfg.TokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, token, nil
}

// VerifyToken validates the token and loads the caller's current record.
// Tokens for deleted users are rejected as invalid.
func (s *authService) VerifyToken(token string) (*Session, error) {
	claims, err := util.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Token refers to a missing user", map[string]interface{}{
				"user_id": claims.UserID,
			})
			return nil, ErrInvalidToken
		}
		logger.Error("Failed to load session user", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return nil, err
	}

	return NewSession(user), nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return user, nil
}

// createUser checks email uniqueness, hashes password and inserts user.
// A concurrent duplicate caught by the unique index maps to the same error.
func createUser(repo repository.UserRepository, user *model.User, password string, cost int) error {
	exists, err := repo.ExistsByEmail(user.Email)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn("User creation failed: email already exists", map[string]interface{}{
			"email": user.Email,
		})
		return ErrEmailAlreadyExists
	}

	hash, err := util.HashPasswordWithCost(password, cost)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}
	user.PasswordHash = hash

	if err := repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}
