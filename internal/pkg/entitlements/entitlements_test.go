package entitlements

import (
	"testing"
	"time"

	"github.com/advisernote/advisernote/app/models"
	"github.com/stretchr/testify/assert"
)

func TestRequiresSubscription(t *testing.T) {
	assert.False(t, RequiresSubscription(FeatureTranscribe))
	assert.True(t, RequiresSubscription(FeatureSummarise))
	assert.False(t, RequiresSubscription(FeatureGeneratePDF))
}

func TestCanUse(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	active := &models.Profile{Subscribed: true, SubscriptionExpiresAt: &future}
	expired := &models.Profile{Subscribed: true, SubscriptionExpiresAt: &past}
	free := &models.Profile{}

	// Free features work regardless of profile state.
	assert.True(t, CanUse(nil, FeatureTranscribe))
	assert.True(t, CanUse(free, FeatureGeneratePDF))
	assert.True(t, CanUse(expired, FeatureTranscribe))

	// Summaries need an active subscription.
	assert.True(t, CanUse(active, FeatureSummarise))
	assert.False(t, CanUse(free, FeatureSummarise))
	assert.False(t, CanUse(expired, FeatureSummarise))
	assert.False(t, CanUse(nil, FeatureSummarise))
}
