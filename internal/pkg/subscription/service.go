package subscription

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/advisernote/advisernote/app/models"
	"gorm.io/gorm"
)

// Service reconciles payment provider notifications into subscription state.
type Service struct {
	repo Repository
}

// NewService creates a reconciler service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a reconciler service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordEvent persists notification payloads idempotently. A duplicate
// (provider, event id) pair reports created=false so the caller can
// acknowledge without re-applying. Only verified notifications are keyed by
// the provider's event id; an unverified one lands under its payload hash so
// it can never occupy the id a correctly signed delivery will arrive with.
func (s *Service) RecordEvent(ctx context.Context, in EventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" || !in.SignatureValid {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// Apply runs the reconciler state transition for one verified notification.
// Replaying the same notification leaves the store in the same end state.
func (s *Service) Apply(ctx context.Context, n Notification) (Outcome, error) {
	_ = ctx
	if n.UserID == 0 {
		return OutcomeRejectedMissingUser, nil
	}

	switch strings.ToLower(strings.TrimSpace(n.Status)) {
	case StatusComplete:
		if _, err := s.repo.GetOrCreateProfile(n.UserID); err != nil {
			return OutcomeApplied, err
		}
		expires := time.Now().AddDate(0, 1, 0)
		updates := map[string]interface{}{
			"subscribed":              true,
			"subscription_expires_at": &expires,
		}
		if pid := strings.TrimSpace(n.PaymentID); pid != "" {
			updates["payment_id"] = pid
		}
		if sid := strings.TrimSpace(n.SubscriptionID); sid != "" {
			updates["subscription_id"] = sid
		}
		if err := s.repo.UpdateProfile(n.UserID, updates); err != nil {
			return OutcomeApplied, err
		}
		return OutcomeApplied, nil

	case StatusRevoked:
		// Explicit provider-side cancellation or refund revokes access
		// immediately.
		if _, err := s.repo.GetOrCreateProfile(n.UserID); err != nil {
			return OutcomeRevoked, err
		}
		if err := s.repo.UpdateProfile(n.UserID, map[string]interface{}{
			"subscribed": false,
		}); err != nil {
			return OutcomeRevoked, err
		}
		return OutcomeRevoked, nil

	case StatusFailed, StatusCancelled:
		// A failed or abandoned payment never granted anything; the current
		// period, if any, runs out on its own.
		return OutcomeIgnored, nil

	default:
		return OutcomeIgnored, nil
	}
}

// MarkProcessed marks a ledger event as processed and stores an optional
// error for manual reconciliation.
func (s *Service) MarkProcessed(ctx context.Context, eventID uint, processingErr error) error {
	_ = ctx
	if eventID == 0 {
		return errors.New("event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(eventID, errMsg)
}

// IsActive reports whether a profile currently entitles paid features. An
// expired SubscriptionExpiresAt reads as not subscribed even when the
// subscribed flag was never flipped.
func IsActive(p *models.Profile) bool {
	if p == nil || !p.Subscribed {
		return false
	}
	if p.SubscriptionExpiresAt == nil {
		return true // lifetime or manual grant
	}
	return p.SubscriptionExpiresAt.After(time.Now())
}
