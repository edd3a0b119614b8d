package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds per-user subscription state. The row is created lazily at
// first read and mutated only by the payment notification reconciler or the
// admin subscription route, never deleted.
type Profile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Subscribed            bool       `gorm:"default:false;index" json:"subscribed"`
	SubscriptionExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"subscription_expires_at,omitempty"`
	PaymentID             string     `gorm:"type:varchar(191);default:''" json:"payment_id"`
	SubscriptionID        string     `gorm:"type:varchar(191);default:''" json:"subscription_id"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOrCreateProfile loads the subscription profile for a user, creating an
// unsubscribed row when none exists yet.
func GetOrCreateProfile(db *gorm.DB, userID uint) (*Profile, error) {
	var p Profile
	err := db.Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	p = Profile{UserID: userID}
	if err := db.Create(&p).Error; err != nil {
		// Lost a create race; the row exists now.
		if lookupErr := db.Where("user_id = ?", userID).First(&p).Error; lookupErr == nil {
			return &p, nil
		}
		return nil, err
	}
	return &p, nil
}
