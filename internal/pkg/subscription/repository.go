package subscription

import (
	"time"

	"github.com/advisernote/advisernote/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the reconciler service.
type Repository interface {
	GetOrCreateProfile(userID uint) (*models.Profile, error)
	UpdateProfile(userID uint, updates map[string]interface{}) error
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a reconciler repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetOrCreateProfile(userID uint) (*models.Profile, error) {
	return models.GetOrCreateProfile(r.db, userID)
}

// UpdateProfile is a single atomic conditional write keyed by user id;
// notifications for different users never interact, and last-write-wins is
// acceptable for replays of the same user.
func (r *gormRepository) UpdateProfile(userID uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(updates).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
