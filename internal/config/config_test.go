package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":5002" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":5002")
	}
	if cfg.SessionRequestLimit != 10 {
		t.Fatalf("SessionRequestLimit = %d, want 10", cfg.SessionRequestLimit)
	}
	if cfg.SessionCooldown != time.Second {
		t.Fatalf("SessionCooldown = %v, want 1s", cfg.SessionCooldown)
	}
	if cfg.IPRequestLimit != 100 || cfg.IPRequestWindow != 15*time.Minute {
		t.Fatalf("IP limit = %d/%v, want 100/15m", cfg.IPRequestLimit, cfg.IPRequestWindow)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Fatalf("SessionIdleTimeout = %v, want 30m", cfg.SessionIdleTimeout)
	}
	if cfg.SessionSweepInterval != 5*time.Minute {
		t.Fatalf("SessionSweepInterval = %v, want 5m", cfg.SessionSweepInterval)
	}
	if cfg.AudioSampleRate != 48000 {
		t.Fatalf("AudioSampleRate = %d, want 48000", cfg.AudioSampleRate)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("OpenAIModel = %q, want gpt-4o-mini", cfg.OpenAIModel)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("SESSION_COOLDOWN", "250ms")
	t.Setenv("SESSION_REQUEST_LIMIT", "3")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want override", cfg.BindAddr)
	}
	if cfg.SessionCooldown != 250*time.Millisecond {
		t.Fatalf("SessionCooldown = %v, want 250ms", cfg.SessionCooldown)
	}
	if cfg.SessionRequestLimit != 3 {
		t.Fatalf("SessionRequestLimit = %d, want 3", cfg.SessionRequestLimit)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("FFmpegPath = %q, want override", cfg.FFmpegPath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero session limit", "SESSION_REQUEST_LIMIT", "0"},
		{"bad cooldown", "SESSION_COOLDOWN", "fast"},
		{"tiny idle timeout", "SESSION_IDLE_TIMEOUT", "10s"},
		{"zero ip limit", "IP_REQUEST_LIMIT", "0"},
		{"bad sample rate", "AUDIO_SAMPLE_RATE", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"IP_REQUEST_LIMIT",
		"IP_REQUEST_WINDOW",
		"SESSION_REQUEST_LIMIT",
		"SESSION_COOLDOWN",
		"SESSION_IDLE_TIMEOUT",
		"SESSION_SWEEP_INTERVAL",
		"FFMPEG_PATH",
		"AUDIO_INPUT_FORMAT",
		"AUDIO_SAMPLE_RATE",
		"SPEECH_LANGUAGE",
		"TTS_VOICE_GENDER",
		"TTS_AUDIO_ENCODING",
		"GOOGLE_API_KEY",
		"GOOGLE_STT_BASE_URL",
		"GOOGLE_TTS_BASE_URL",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
		"ARTIFACT_DIR",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
