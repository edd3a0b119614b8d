package repository

import (
	"github.com/advisernote/advisernote/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPITokenHash(hash string) (*models.User, *models.Profile, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ProfileRepository defines the interface for subscription profile operations
type ProfileRepository interface {
	GetOrCreateByUserID(userID uint) (*models.Profile, error)
	Save(profile *models.Profile) error
}

// Repositories holds all repository instances
type Repositories struct {
	User    UserRepository
	Profile ProfileRepository
}
