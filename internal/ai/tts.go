package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTTSBaseURL = "https://texttospeech.googleapis.com/v1"

// Speech calls the Google Cloud Text-to-Speech REST API with an API key.
type Speech struct {
	apiKey     string
	voice      string
	language   string
	baseURL    string
	httpClient *http.Client
}

// NewSpeech constructs a narration client using a fixed voice.
func NewSpeech(apiKey, voice, language string) (*Speech, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("text-to-speech api key required")
	}
	return &Speech{
		apiKey:     apiKey,
		voice:      voice,
		language:   language,
		baseURL:    defaultTTSBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SSMLGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding    string   `json:"audioEncoding"`
		EffectsProfileID []string `json:"effectsProfileId"`
		SpeakingRate     float64  `json:"speakingRate"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize converts prepared speech text to MP3 bytes.
func (s *Speech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var reqBody synthesizeRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = s.language
	reqBody.Voice.Name = s.voice
	reqBody.Voice.SSMLGender = "NEUTRAL"
	reqBody.AudioConfig.AudioEncoding = "MP3"
	reqBody.AudioConfig.EffectsProfileID = []string{"large-automotive-class-device"}
	reqBody.AudioConfig.SpeakingRate = 1

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/text:synthesize?key=%s", s.baseURL, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return nil, fmt.Errorf("text-to-speech api error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("text-to-speech api error: %s", resp.Status)
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.AudioContent == "" {
		return nil, fmt.Errorf("no audio content in text-to-speech response")
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio data from text-to-speech")
	}
	return audio, nil
}
