package entitlements

import (
	"github.com/advisernote/advisernote/app/models"
	"github.com/advisernote/advisernote/internal/pkg/subscription"
)

// Feature names a gated capability of the product.
type Feature string

const (
	FeatureTranscribe  Feature = "transcribe"
	FeatureSummarise   Feature = "summarise"
	FeatureGeneratePDF Feature = "generate_pdf"
)

// RequiresSubscription reports whether a feature is reserved for paying
// users. Transcription and PDF export only need a login; summaries are the
// paid feature.
func RequiresSubscription(f Feature) bool {
	return f == FeatureSummarise
}

// CanUse combines the gating policy with the user's current profile.
func CanUse(p *models.Profile, f Feature) bool {
	if !RequiresSubscription(f) {
		return true
	}
	return subscription.IsActive(p)
}
