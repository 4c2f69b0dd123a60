package repository

import (
	"errors"

	"github.com/shopstream/user-service/models"
	"github.com/shopstream/user-service/utils"
	"gorm.io/gorm"
)

// AddressRepository is the persistence contract for address records, all
// operations scoped to an owning user. Transaction hands the callback a
// repository bound to a single database transaction so that
// clear-then-set sequences on the default flag are atomic.
type AddressRepository interface {
	Transaction(fn func(AddressRepository) error) error
	Create(addr *models.Address) error
	FindByUserAndID(userID, addressID uint) (*models.Address, error)
	ListByUser(userID uint) ([]models.Address, error)
	CountByUser(userID uint) (int64, error)
	ClearDefault(userID uint) error
	FirstByUser(userID uint) (*models.Address, error)
	Save(addr *models.Address) error
	Delete(addr *models.Address) error
}

type gormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates a GORM-backed address repository.
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &gormAddressRepository{db: db}
}

func (r *gormAddressRepository) Transaction(fn func(AddressRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormAddressRepository{db: tx})
	})
}

func (r *gormAddressRepository) Create(addr *models.Address) error {
	if err := r.db.Create(addr).Error; err != nil {
		// The partial unique index on (user_id) WHERE is_default trips
		// when a concurrent commit already landed a default.
		if utils.IsDuplicateKeyError(err) {
			return utils.ConflictError("Another address became the default concurrently", err)
		}
		if utils.IsForeignKeyError(err) {
			return utils.NotFoundError("User not found", err)
		}
		return utils.InternalError("Failed to create address", err)
	}
	return nil
}

func (r *gormAddressRepository) FindByUserAndID(userID, addressID uint) (*models.Address, error) {
	var addr models.Address
	err := r.db.Where("id = ? AND user_id = ?", addressID, userID).First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.InternalError("Failed to fetch address", err)
	}
	return &addr, nil
}

func (r *gormAddressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addrs []models.Address
	if err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&addrs).Error; err != nil {
		return nil, utils.InternalError("Failed to fetch addresses", err)
	}
	return addrs, nil
}

func (r *gormAddressRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, utils.InternalError("Failed to count addresses", err)
	}
	return count, nil
}

func (r *gormAddressRepository) ClearDefault(userID uint) error {
	if err := r.db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error; err != nil {
		return utils.InternalError("Failed to clear default address", err)
	}
	return nil
}

func (r *gormAddressRepository) FirstByUser(userID uint) (*models.Address, error) {
	var addr models.Address
	err := r.db.Where("user_id = ?", userID).Order("id ASC").First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.InternalError("Failed to fetch address", err)
	}
	return &addr, nil
}

func (r *gormAddressRepository) Save(addr *models.Address) error {
	if err := r.db.Save(addr).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return utils.ConflictError("Another address became the default concurrently", err)
		}
		return utils.InternalError("Failed to save address", err)
	}
	return nil
}

func (r *gormAddressRepository) Delete(addr *models.Address) error {
	if err := r.db.Delete(addr).Error; err != nil {
		return utils.InternalError("Failed to delete address", err)
	}
	return nil
}
