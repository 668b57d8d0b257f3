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

	"github.com/violetvoice/violet/internal/reliability"
)

const (
	defaultSTTBaseURL = "https://speech.googleapis.com"
	defaultTTSBaseURL = "https://texttospeech.googleapis.com"

	retryBase = 200 * time.Millisecond
	retryCap  = 2 * time.Second
)

// GoogleConfig configures the REST speech clients. Base URLs are
// overridable so tests can point at local servers.
type GoogleConfig struct {
	APIKey     string
	STTBaseURL string
	TTSBaseURL string
	HTTPClient *http.Client
}

// GoogleClient implements Recognizer and Synthesizer against the Google
// Cloud Speech-to-Text and Text-to-Speech REST APIs.
type GoogleClient struct {
	apiKey     string
	sttBaseURL string
	ttsBaseURL string
	client     *http.Client
}

func NewGoogleClient(cfg GoogleConfig) (*GoogleClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("google speech: API key is required")
	}
	c := &GoogleClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		sttBaseURL: strings.TrimRight(strings.TrimSpace(cfg.STTBaseURL), "/"),
		ttsBaseURL: strings.TrimRight(strings.TrimSpace(cfg.TTSBaseURL), "/"),
		client:     cfg.HTTPClient,
	}
	if c.sttBaseURL == "" {
		c.sttBaseURL = defaultSTTBaseURL
	}
	if c.ttsBaseURL == "" {
		c.ttsBaseURL = defaultTTSBaseURL
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 30 * time.Second}
	}
	return c, nil
}

type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize submits the complete PCM clip as LINEAR16 and joins the
// per-result top alternatives. An empty response body yields "".
func (c *GoogleClient) Recognize(ctx context.Context, pcm []byte, sampleRate int, languageCode string) (string, error) {
	reqBody := recognizeRequest{
		Config: recognizeConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            sampleRate,
			LanguageCode:               languageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: recognizeAudio{Content: base64.StdEncoding.EncodeToString(pcm)},
	}

	var resp recognizeResponse
	if err := c.postJSON(ctx, c.sttBaseURL+"/v1/speech:recognize", reqBody, &resp); err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var parts []string
	for _, res := range resp.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		if t := res.Alternatives[0].Transcript; t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n"), nil
}

type synthesizeRequest struct {
	Input       synthesisInput  `json:"input"`
	Voice       voiceSelection  `json:"voice"`
	AudioConfig synthesisConfig `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	SSMLGender   string `json:"ssmlGender"`
}

type synthesisConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders the text with the fixed voice configuration and
// returns the decoded audio bytes.
func (c *GoogleClient) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	reqBody := synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceSelection{
			LanguageCode: voice.LanguageCode,
			SSMLGender:   voice.SSMLGender,
		},
		AudioConfig: synthesisConfig{AudioEncoding: voice.AudioEncoding},
	}

	var resp synthesizeResponse
	if err := c.postJSON(ctx, c.ttsBaseURL+"/v1/text:synthesize", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	if resp.AudioContent == "" {
		return nil, fmt.Errorf("synthesize: empty audio content")
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("synthesize: decode audio: %w", err)
	}
	return audio, nil
}

// postJSON performs the request with one retry on retryable statuses.
func (c *GoogleClient) postJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt, retryBase, retryCap)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"?key="+c.apiKey, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("send request: %w", err)
			continue
		}

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
			res.Body.Close()
			lastErr = fmt.Errorf("http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
			if reliability.IsRetryableHTTPStatus(res.StatusCode) {
				continue
			}
			return lastErr
		}

		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return lastErr
}
