package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	"github.com/ratethestore/ratethestore-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Role     string `json:"role"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type UserListQuery struct {
	Name      string `form:"name"`
	Email     string `form:"email"`
	Address   string `form:"address"`
	Role      string `form:"role"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name email address role"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ListUsers returns users matching the optional filters
// GET /api/users
func (ctrl *UserController) ListUsers(c *gin.Context) {
	var query UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	users, err := ctrl.userService.List(repository.UserFilter{
		Name:      query.Name,
		Email:     query.Email,
		Address:   query.Address,
		Role:      model.UserRole(query.Role),
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		respondServiceError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, users)
}

// CreateUser adds a user with any role
// POST /api/users
func (ctrl *UserController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := ctrl.userService.Create(service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err, "create user")
		return
	}

	log.Info("User created by administrator", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	c.JSON(http.StatusCreated, user)
}

// GetUser returns one user; store owners include their rating average
// GET /api/users/:id
func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.userService.Get(id)
	if err != nil {
		respondServiceError(c, err, "fetch user")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdatePassword replaces a password after checking the current one
// PATCH /api/users/:id/password
func (ctrl *UserController) UpdatePassword(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := ctrl.userService.UpdatePassword(session, id, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err, "update password")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Password updated"})
}

// DeleteUser removes a user along with their ratings
// DELETE /api/users/:id
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.userService.Delete(id); err != nil {
		respondServiceError(c, err, "delete user")
		return
	}

	log.Info("User deleted", map[string]interface{}{
		"user_id": id,
	})
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "User deleted"})
}
