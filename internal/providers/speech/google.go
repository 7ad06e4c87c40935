package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the Google Cloud TTS client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// GoogleClient calls the Google Cloud Text-to-Speech REST API. It is a thin
// translation layer; entitlement and billing decisions live in the credits
// package and must run before Synthesize is invoked.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewGoogleClient constructs a client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a generous timeout will be created,
// since synthesis of long inputs can take a while.
func NewGoogleClient(opts Options) *GoogleClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://texttospeech.googleapis.com/v1"
	}

	return &GoogleClient{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     opts.Logger,
	}
}

type googleSynthesizeRequest struct {
	Input       googleSynthesisInput `json:"input"`
	Voice       googleVoiceSelection `json:"voice"`
	AudioConfig googleAudioConfig    `json:"audioConfig"`
}

type googleSynthesisInput struct {
	Text string `json:"text"`
}

type googleVoiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
}

type googleAudioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type googleSynthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

type googleVoice struct {
	LanguageCodes          []string `json:"languageCodes"`
	Name                   string   `json:"name"`
	SSMLGender             string   `json:"ssmlGender"`
	NaturalSampleRateHertz int      `json:"naturalSampleRateHertz"`
}

type googleListVoicesResponse struct {
	Voices []googleVoice `json:"voices"`
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// Synthesize converts text to MP3 audio.
func (c *GoogleClient) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	payload := googleSynthesizeRequest{
		Input:       googleSynthesisInput{Text: req.Text},
		Voice:       googleVoiceSelection{LanguageCode: req.LanguageCode, Name: req.VoiceName},
		AudioConfig: googleAudioConfig{AudioEncoding: "MP3"},
	}

	var response googleSynthesizeResponse
	if err := c.invoke(ctx, http.MethodPost, "/text:synthesize", payload, &response); err != nil {
		return nil, err
	}

	audio, err := base64.StdEncoding.DecodeString(response.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio content returned")
	}

	c.logger.Debug().
		Str("language", req.LanguageCode).
		Str("voice", req.VoiceName).
		Int("bytes", len(audio)).
		Msg("speech: synthesized audio")

	return &SynthesisResult{Audio: audio, MIMEType: "audio/mpeg"}, nil
}

// ListVoices fetches the full provider voice catalog, annotated with the
// billing tier derived from each voice name.
func (c *GoogleClient) ListVoices(ctx context.Context) ([]Voice, error) {
	var response googleListVoicesResponse
	if err := c.invoke(ctx, http.MethodGet, "/voices", nil, &response); err != nil {
		return nil, err
	}

	voices := make([]Voice, 0, len(response.Voices))
	for _, v := range response.Voices {
		voices = append(voices, Voice{
			Name:            v.Name,
			LanguageCodes:   v.LanguageCodes,
			Gender:          v.SSMLGender,
			SampleRateHertz: v.NaturalSampleRateHertz,
			Tier:            TierOfVoice(v.Name),
		})
	}
	return voices, nil
}

func (c *GoogleClient) invoke(ctx context.Context, method, path string, payload any, out any) error {
	endpoint := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke texttospeech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr googleErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("texttospeech status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("texttospeech status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("texttospeech status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode texttospeech response: %w", err)
	}
	return nil
}

var _ Synthesizer = (*GoogleClient)(nil)
