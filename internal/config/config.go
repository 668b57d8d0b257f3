package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the voice orchestrator.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	// Global admission: fixed-window ceiling per source IP.
	IPRequestLimit  int
	IPRequestWindow time.Duration

	// Per-session admission.
	SessionRequestLimit  int
	SessionCooldown      time.Duration
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	// Transcoder.
	FFmpegPath       string
	AudioInputFormat string
	AudioSampleRate  int

	// Speech collaborators.
	SpeechLanguage   string
	TTSVoiceGender   string
	TTSAudioEncoding string
	GoogleAPIKey     string
	GoogleSTTBaseURL string
	GoogleTTSBaseURL string

	// Generative collaborator.
	OpenAIAPIKey string
	OpenAIModel  string

	// Ephemeral artifact staging.
	ArtifactDir string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:             envOrDefault("APP_BIND_ADDR", ":5002"),
		MetricsNamespace:     envOrDefault("APP_METRICS_NAMESPACE", "violet"),
		AllowAnyOrigin:       false,
		IPRequestLimit:       100,
		IPRequestWindow:      15 * time.Minute,
		SessionRequestLimit:  10,
		SessionCooldown:      time.Second,
		SessionIdleTimeout:   30 * time.Minute,
		SessionSweepInterval: 5 * time.Minute,
		FFmpegPath:           envOrDefault("FFMPEG_PATH", "ffmpeg"),
		AudioInputFormat:     envOrDefault("AUDIO_INPUT_FORMAT", "webm"),
		AudioSampleRate:      48000,
		SpeechLanguage:       envOrDefault("SPEECH_LANGUAGE", "en-US"),
		TTSVoiceGender:       envOrDefault("TTS_VOICE_GENDER", "FEMALE"),
		TTSAudioEncoding:     envOrDefault("TTS_AUDIO_ENCODING", "MP3"),
		GoogleAPIKey:         trimmedEnv("GOOGLE_API_KEY"),
		GoogleSTTBaseURL:     envOrDefault("GOOGLE_STT_BASE_URL", "https://speech.googleapis.com"),
		GoogleTTSBaseURL:     envOrDefault("GOOGLE_TTS_BASE_URL", "https://texttospeech.googleapis.com"),
		OpenAIAPIKey:         trimmedEnv("OPENAI_API_KEY"),
		OpenAIModel:          envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ArtifactDir:          envOrDefault("ARTIFACT_DIR", filepath.Join(os.TempDir(), "violet")),
		ShutdownTimeout:      15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.IPRequestLimit, err = intFromEnv("IP_REQUEST_LIMIT", cfg.IPRequestLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.IPRequestWindow, err = durationFromEnv("IP_REQUEST_WINDOW", cfg.IPRequestWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionRequestLimit, err = intFromEnv("SESSION_REQUEST_LIMIT", cfg.SessionRequestLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionCooldown, err = durationFromEnv("SESSION_COOLDOWN", cfg.SessionCooldown)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionIdleTimeout, err = durationFromEnv("SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionSweepInterval, err = durationFromEnv("SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.AudioSampleRate, err = intFromEnv("AUDIO_SAMPLE_RATE", cfg.AudioSampleRate)
	if err != nil {
		return Config{}, err
	}

	if cfg.IPRequestLimit <= 0 {
		return Config{}, fmt.Errorf("IP_REQUEST_LIMIT must be positive")
	}
	if cfg.IPRequestWindow <= 0 {
		return Config{}, fmt.Errorf("IP_REQUEST_WINDOW must be positive")
	}
	if cfg.SessionRequestLimit <= 0 {
		return Config{}, fmt.Errorf("SESSION_REQUEST_LIMIT must be positive")
	}
	if cfg.SessionCooldown < 0 {
		return Config{}, fmt.Errorf("SESSION_COOLDOWN must not be negative")
	}
	if cfg.SessionIdleTimeout < time.Minute {
		return Config{}, fmt.Errorf("SESSION_IDLE_TIMEOUT must be at least 1m")
	}
	if cfg.SessionSweepInterval <= 0 {
		return Config{}, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if cfg.AudioSampleRate <= 0 {
		return Config{}, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive")
	}
	if strings.TrimSpace(cfg.FFmpegPath) == "" {
		return Config{}, fmt.Errorf("FFMPEG_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.ArtifactDir) == "" {
		return Config{}, fmt.Errorf("ARTIFACT_DIR must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
