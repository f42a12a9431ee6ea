package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	"github.com/ratethestore/ratethestore-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Signup registers a new account. Role defaults to Normal User.
// POST /api/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := ctrl.authService.Signup(service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err, "signup")
		return
	}

	log.Info("User signed up", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	c.JSON(http.StatusOK, user)
}

// Login exchanges credentials for a session token
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "login")
		return
	}

	log.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token.AccessToken,
		ExpiresAt: token.ExpiresAt,
		User:      user,
	})
}

// Me returns the authenticated user's record
// GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(session.UserID)
	if err != nil {
		respondServiceError(c, err, "fetch user")
		return
	}

	c.JSON(http.StatusOK, user)
}
