package repository

import (
	"errors"

	"github.com/shopstream/user-service/models"
	"github.com/shopstream/user-service/utils"
	"gorm.io/gorm"
)

// UserRepository is the persistence contract for user records. Lookup
// methods return (nil, nil) when no row matches; absence is not an error
// at this layer.
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	ExistsByID(id uint) (bool, error)
	ExistsByEmail(email string) (bool, error)
	FindTokenByEmail(email string) (*models.TokenUser, error)
	FindCredentialByEmail(email string) (*models.CredentialUser, error)
	FindTokenByID(id uint) (*models.TokenUser, error)
	UpdateRefreshToken(id uint, token *string) error
	Save(user *models.User) error
	Delete(id uint) error
	List(offset, limit int, role string) ([]models.User, int64, error)
	Count() (int64, error)
	CountByRole(role string) (int64, error)
	CountGoogleUsers() (int64, error)
}

const tokenColumns = "id, email, first_name, last_name, refresh_token, google_id, role, is_google_user"
const credentialColumns = "id, email, password, first_name, last_name, refresh_token, role, is_google_user"

type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return utils.ConflictError("A user with this email address already exists", err)
		}
		return utils.InternalError("Failed to create user", err)
	}
	return nil
}

func (r *gormUserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Addresses").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.InternalError("Failed to fetch user", err)
	}
	return &user, nil
}

func (r *gormUserRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, utils.InternalError("Failed to check user existence", err)
	}
	return count > 0, nil
}

func (r *gormUserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, utils.InternalError("Failed to check email existence", err)
	}
	return count > 0, nil
}

func (r *gormUserRepository) FindTokenByEmail(email string) (*models.TokenUser, error) {
	var user models.TokenUser
	err := r.db.Model(&models.User{}).
		Select(tokenColumns).
		Where("email = ?", email).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.InternalError("Failed to fetch user", err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindCredentialByEmail(email string) (*models.CredentialUser, error) {
	var user models.CredentialUser
	err := r.db.Model(&models.User{}).
		Select(credentialColumns).
		Where("email = ?", email).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.InternalError("Failed to fetch user", err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindTokenByID(id uint) (*models.TokenUser, error) {
	var user models.TokenUser
	err := r.db.Model(&models.User{}).
		Select(tokenColumns).
		Where("id = ?", id).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.InternalError("Failed to fetch user", err)
	}
	return &user, nil
}

func (r *gormUserRepository) UpdateRefreshToken(id uint, token *string) error {
	if err := r.db.Model(&models.User{}).Where("id = ?", id).
		Update("refresh_token", token).Error; err != nil {
		return utils.InternalError("Failed to update refresh token", err)
	}
	return nil
}

func (r *gormUserRepository) Save(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return utils.ConflictError("Email already in use by another account", err)
		}
		return utils.InternalError("Failed to save user", err)
	}
	return nil
}

func (r *gormUserRepository) Delete(id uint) error {
	// Owned addresses go with the user via the ON DELETE CASCADE
	// constraint created by AutoMigrate.
	if err := r.db.Delete(&models.User{}, id).Error; err != nil {
		return utils.InternalError("Failed to delete user", err)
	}
	return nil
}

func (r *gormUserRepository) List(offset, limit int, role string) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{}).Preload("Addresses")
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.InternalError("Failed to count users", err)
	}

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, utils.InternalError("Failed to fetch users", err)
	}
	return users, total, nil
}

func (r *gormUserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, utils.InternalError("Failed to count users", err)
	}
	return count, nil
}

func (r *gormUserRepository) CountByRole(role string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, utils.InternalError("Failed to count users by role", err)
	}
	return count, nil
}

func (r *gormUserRepository) CountGoogleUsers() (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("is_google_user = ?", true).Count(&count).Error; err != nil {
		return 0, utils.InternalError("Failed to count google users", err)
	}
	return count, nil
}
