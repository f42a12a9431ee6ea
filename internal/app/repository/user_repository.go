package repository

import (
	"strings"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserFilter narrows user listings. String filters are case-insensitive
// substring matches; Role is exact.
type UserFilter struct {
	Name      string
	Email     string
	Address   string
	Role      model.UserRole
	SortBy    string // name, email, address, role
	SortOrder string // asc, desc
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	ExistsByEmail(email string) (bool, error)
	List(filter UserFilter) ([]model.User, error)
	UpdatePassword(id uint, passwordHash string) error
	Delete(id uint) error
	Count() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

var userSortColumns = map[string]string{
	"name":    "name",
	"email":   "email",
	"address": "address",
	"role":    "role",
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		logger.Debug("User not found by ID in database", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}

	logger.Debug("User found by ID in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		logger.Debug("User not found by email in database", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	logger.Debug("User found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		logger.Error("Failed to check user email in database", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) List(filter UserFilter) ([]model.User, error) {
	logger.Debug("Listing users", map[string]interface{}{
		"name":       filter.Name,
		"email":      filter.Email,
		"address":    filter.Address,
		"role":       filter.Role,
		"sort_by":    filter.SortBy,
		"sort_order": filter.SortOrder,
	})

	query := r.db.Model(&model.User{})
	query = whereContains(query, "name", filter.Name)
	query = whereContains(query, "email", filter.Email)
	query = whereContains(query, "address", filter.Address)
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	query = query.Order(orderClause(userSortColumns, filter.SortBy, filter.SortOrder))

	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}

	logger.Debug("Users listed", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) UpdatePassword(id uint, passwordHash string) error {
	logger.Debug("Updating user password in database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("password", passwordHash)
	if result.Error != nil {
		logger.Error("Failed to update user password", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("User password updated in database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// Delete removes the user and the ratings they authored, and clears
// ownership of their stores, in one transaction.
func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Store{}).
			Where("owner_id = ?", id).
			Update("owner_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	logger.Debug("User deleted from database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count users", err)
		return 0, err
	}
	return count, nil
}

// whereContains adds a case-insensitive substring match on column.
func whereContains(query *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return query
	}
	return query.Where("LOWER("+column+") LIKE ? ESCAPE '!'", containsPattern(value))
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern matches value literally inside a LIKE ... ESCAPE '!'
// clause, so user input cannot inject wildcards.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(lower(value)) + "%"
}

// orderClause resolves a whitelisted sort column, falling back to id.
func orderClause(columns map[string]string, sortBy, sortOrder string) string {
	column, ok := columns[strings.ToLower(sortBy)]
	if !ok {
		return "id ASC"
	}
	if strings.EqualFold(sortOrder, "desc") {
		return column + " DESC, id ASC"
	}
	return column + " ASC, id ASC"
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
