package speech

import (
	"context"
	"strings"

	"server/internal/domain"
)

// SynthesisRequest holds the parameters for one text-to-speech invocation.
type SynthesisRequest struct {
	Text         string
	LanguageCode string
	VoiceName    string
}

// SynthesisResult holds the produced audio and its content type.
type SynthesisResult struct {
	Audio    []byte
	MIMEType string
}

// Voice describes one entry of the provider voice catalog.
type Voice struct {
	Name            string           `json:"name"`
	LanguageCodes   []string         `json:"language_codes"`
	Gender          string           `json:"gender"`
	SampleRateHertz int              `json:"sample_rate_hertz"`
	Tier            domain.VoiceTier `json:"tier"`
}

// Synthesizer is the interface any speech backend must implement.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	ListVoices(ctx context.Context) ([]Voice, error)
}

// TierOfVoice maps a provider voice name to its billing tier. WaveNet and
// Neural2 voices bill at the premium rate; everything else is standard.
func TierOfVoice(name string) domain.VoiceTier {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "wavenet") || strings.Contains(lower, "neural2") {
		return domain.VoiceTierPremium
	}
	return domain.VoiceTierStandard
}
