package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/violetvoice/violet/internal/artifact"
	"github.com/violetvoice/violet/internal/audio"
	"github.com/violetvoice/violet/internal/brain"
	"github.com/violetvoice/violet/internal/command"
	"github.com/violetvoice/violet/internal/config"
	"github.com/violetvoice/violet/internal/govern"
	"github.com/violetvoice/violet/internal/httpapi"
	"github.com/violetvoice/violet/internal/observability"
	"github.com/violetvoice/violet/internal/session"
	"github.com/violetvoice/violet/internal/speech"
	"github.com/violetvoice/violet/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	var (
		recognizer  speech.Recognizer
		synthesizer speech.Synthesizer
	)
	if cfg.GoogleAPIKey != "" {
		google, err := speech.NewGoogleClient(speech.GoogleConfig{
			APIKey:     cfg.GoogleAPIKey,
			STTBaseURL: cfg.GoogleSTTBaseURL,
			TTSBaseURL: cfg.GoogleTTSBaseURL,
		})
		if err != nil {
			log.Fatalf("speech client init failed: %v", err)
		}
		recognizer = google
		synthesizer = google
		log.Printf("speech provider: google cloud")
	} else {
		recognizer = speech.NewMockRecognizer("hello violet")
		synthesizer = speech.NewMockSynthesizer()
		log.Printf("speech provider: mock (no GOOGLE_API_KEY)")
	}

	var adapter brain.Adapter
	if cfg.OpenAIAPIKey != "" {
		openaiAdapter, err := brain.NewOpenAIAdapter(brain.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		if err != nil {
			log.Fatalf("openai adapter init failed: %v", err)
		}
		adapter = openaiAdapter
		log.Printf("generative provider: openai %s", cfg.OpenAIModel)
	} else {
		adapter = brain.NewMockAdapter("")
		log.Printf("generative provider: mock (no OPENAI_API_KEY)")
	}

	artifacts, err := artifact.NewStore(cfg.ArtifactDir)
	if err != nil {
		log.Fatalf("artifact store init failed: %v", err)
	}
	log.Printf("artifact staging dir: %s", artifacts.Dir())

	sessions := session.NewRegistry()
	sessions.SetEvictHook(func(id string) {
		artifacts.SweepSession(id)
		metrics.SessionEvents.WithLabelValues("evicted").Inc()
		metrics.ActiveSessions.Set(float64(sessions.Count()))
		log.Printf("session %s evicted after idle timeout", id)
	})

	orchestrator := voice.NewOrchestrator(
		sessions,
		govern.New(cfg.SessionRequestLimit, cfg.SessionCooldown),
		audio.NewTranscoder(cfg.FFmpegPath, cfg.AudioInputFormat, cfg.AudioSampleRate),
		recognizer,
		synthesizer,
		command.NewRouter(adapter, command.NewHostStats()),
		artifacts,
		metrics,
		speech.Voice{
			LanguageCode:  cfg.SpeechLanguage,
			SSMLGender:    cfg.TTSVoiceGender,
			AudioEncoding: cfg.TTSAudioEncoding,
		},
		cfg.SpeechLanguage,
	)

	api := httpapi.New(cfg, sessions, orchestrator, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, cfg.SessionSweepInterval, cfg.SessionIdleTimeout)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
