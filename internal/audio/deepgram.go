// Package audio synthesizes lesson narration through the Deepgram speech
// API.
package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Synthesizer converts narration text to spoken audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// maxScriptChars is the provider's per-request character limit; longer
// scripts are cut at a sentence boundary below it.
const maxScriptChars = 1950

const defaultEndpoint = "https://api.deepgram.com/v1/speak"

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("audio: no API key configured")

// Deepgram calls the Deepgram text-to-speech REST API and returns MP3
// audio.
type Deepgram struct {
	apiKey   string
	voice    string
	endpoint string
	client   *http.Client
}

// NewDeepgram builds a client for the given key and voice model.
func NewDeepgram(apiKey, voice string) *Deepgram {
	if voice == "" {
		voice = "aura-asteria-en"
	}
	return &Deepgram{
		apiKey:   apiKey,
		voice:    voice,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Synthesize returns MP3 audio for the text.
func (d *Deepgram) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if d.apiKey == "" {
		return nil, ErrDisabled
	}

	body, err := json.Marshal(map[string]string{"text": TruncateScript(text)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %v", err)
	}

	endpoint := d.endpoint + "?model=" + url.QueryEscape(d.voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build speech request: %v", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("speech API returned status %d: %s", resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %v", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("audio: empty speech response")
	}
	return audio, nil
}

// TruncateScript cuts text to the provider's character limit, preferring
// the last sentence end before the cutoff.
func TruncateScript(text string) string {
	runes := []rune(text)
	if len(runes) <= maxScriptChars {
		return text
	}

	cut := string(runes[:maxScriptChars])
	if i := strings.LastIndexAny(cut, ".!?"); i > maxScriptChars/2 {
		return cut[:i+1]
	}
	return cut
}
