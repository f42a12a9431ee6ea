package repository

import (
	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"gorm.io/gorm"
)

type StoreFilter struct {
	Search    string // name or address
	Name      string
	Email     string
	Address   string
	OwnerID   *uint
	SortBy    string // name, email, address
	SortOrder string
}

type StoreRepository interface {
	Create(store *model.Store) error
	BulkCreate(stores []model.Store, batchSize int) error
	Update(store *model.Store) error
	Delete(id uint) error
	FindAll(filter StoreFilter) ([]model.Store, error)
	FindByID(id uint) (*model.Store, error)
	FindByOwner(ownerID uint) ([]model.Store, error)
	Count() (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

var storeSortColumns = map[string]string{
	"name":    "name",
	"email":   "email",
	"address": "address",
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":     store.Name,
		"owner_id": store.OwnerID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":     store.Name,
			"owner_id": store.OwnerID,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

// BulkCreate inserts stores in batches inside one transaction; either every
// row is stored or none is.
func (r *storeRepository) BulkCreate(stores []model.Store, batchSize int) error {
	if len(stores) == 0 {
		return nil
	}

	logger.Info("Bulk creating stores", map[string]interface{}{
		"count":      len(stores),
		"batch_size": batchSize,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&stores, batchSize).Error
	})
	if err != nil {
		logger.Error("Failed to bulk create stores", err, map[string]interface{}{
			"count": len(stores),
		})
		return err
	}
	return nil
}

func (r *storeRepository) Update(store *model.Store) error {
	logger.Debug("Updating store in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})

	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return err
	}

	logger.Debug("Store updated in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

// Delete removes the store together with its ratings.
func (r *storeRepository) Delete(id uint) error {
	logger.Debug("Deleting store from database", map[string]interface{}{
		"store_id": id,
	})

	// The store row goes first: its row lock orders this delete against
	// in-flight rating upserts, which share lock the same row.
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Store{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("store_id = ?", id).Delete(&model.Rating{}).Error
	})
	if err != nil {
		logger.Error("Failed to delete store from database", err, map[string]interface{}{
			"store_id": id,
		})
		return err
	}

	logger.Debug("Store deleted from database", map[string]interface{}{
		"store_id": id,
	})
	return nil
}

func (r *storeRepository) FindAll(filter StoreFilter) ([]model.Store, error) {
	logger.Debug("Finding stores", map[string]interface{}{
		"search":  filter.Search,
		"name":    filter.Name,
		"address": filter.Address,
		"sort_by": filter.SortBy,
	})

	query := r.db.Model(&model.Store{})
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(address) LIKE ? ESCAPE '!'", like, like)
	}
	query = whereContains(query, "name", filter.Name)
	query = whereContains(query, "email", filter.Email)
	query = whereContains(query, "address", filter.Address)
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	var stores []model.Store
	if err := query.Order(orderClause(storeSortColumns, filter.SortBy, filter.SortOrder)).
		Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}

	logger.Debug("Stores found", map[string]interface{}{
		"count": len(stores),
	})
	return stores, nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	logger.Debug("Finding store by ID", map[string]interface{}{
		"store_id": id,
	})

	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		logger.Debug("Store not found by ID", map[string]interface{}{
			"store_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	logger.Debug("Store found", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return &store, nil
}

func (r *storeRepository) FindByOwner(ownerID uint) ([]model.Store, error) {
	return r.FindAll(StoreFilter{OwnerID: &ownerID})
}

func (r *storeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count stores", err)
		return 0, err
	}
	return count, nil
}
