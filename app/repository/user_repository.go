package repository

import (
	"github.com/advisernote/advisernote/app/models"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByAPITokenHash(hash string) (*models.User, *models.Profile, error) {
	var user models.User
	if err := r.db.Where("api_token_hash = ?", hash).First(&user).Error; err != nil {
		return nil, nil, err
	}
	profile, err := models.GetOrCreateProfile(r.db, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &user, profile, nil
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Offset(offset).Limit(limit).Order("id ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a profile repository backed by GORM.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetOrCreateByUserID(userID uint) (*models.Profile, error) {
	return models.GetOrCreateProfile(r.db, userID)
}

func (r *profileRepository) Save(profile *models.Profile) error {
	return r.db.Save(profile).Error
}
