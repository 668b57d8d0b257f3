// Package voice drives one websocket connection's request lifecycle: the
// greeting handshake and the audio-to-response pipeline.
package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/violetvoice/violet/internal/artifact"
	"github.com/violetvoice/violet/internal/audio"
	"github.com/violetvoice/violet/internal/command"
	"github.com/violetvoice/violet/internal/govern"
	"github.com/violetvoice/violet/internal/observability"
	"github.com/violetvoice/violet/internal/protocol"
	"github.com/violetvoice/violet/internal/session"
	"github.com/violetvoice/violet/internal/speech"
)

const outboundSendTimeout = 5 * time.Second

// Transcoder converts a client clip to raw LINEAR16 PCM. Satisfied by
// audio.Transcoder.
type Transcoder interface {
	ToPCM16(ctx context.Context, clip []byte) ([]byte, error)
	SampleRate() int
}

// Orchestrator wires the session registry, the admission governor, and the
// audio collaborators into the per-connection event loop.
type Orchestrator struct {
	sessions    *session.Registry
	governor    *govern.Governor
	transcoder  Transcoder
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
	router      *command.Router
	artifacts   *artifact.Store
	metrics     *observability.Metrics
	voice       speech.Voice
	language    string
	now         func() time.Time
}

func NewOrchestrator(
	sessions *session.Registry,
	governor *govern.Governor,
	transcoder Transcoder,
	recognizer speech.Recognizer,
	synthesizer speech.Synthesizer,
	router *command.Router,
	artifacts *artifact.Store,
	metrics *observability.Metrics,
	voice speech.Voice,
	language string,
) *Orchestrator {
	return &Orchestrator{
		sessions:    sessions,
		governor:    governor,
		transcoder:  transcoder,
		recognizer:  recognizer,
		synthesizer: synthesizer,
		router:      router,
		artifacts:   artifacts,
		metrics:     metrics,
		voice:       voice,
		language:    language,
		now:         time.Now,
	}
}

// RunConnection drives a session lifecycle for one websocket connection. It
// returns when ctx is cancelled or inbound closes; on the way out every
// in-flight request is cancelled and the session's staged artifacts are
// swept.
func (o *Orchestrator) RunConnection(ctx context.Context, s *session.Session, inbound <-chan any, outbound chan<- any) error {
	var (
		inflightMu sync.Mutex
		inflight   = make(map[string]context.CancelFunc)
		wg         sync.WaitGroup
	)

	cancelInflight := func() {
		inflightMu.Lock()
		for id, cancel := range inflight {
			cancel()
			delete(inflight, id)
		}
		inflightMu.Unlock()
	}

	defer func() {
		cancelInflight()
		wg.Wait()
		o.artifacts.SweepSession(s.ID)
		o.metrics.StagedArtifacts.Set(float64(o.artifacts.Count()))
		o.sessions.Close(s.ID)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-inbound:
			if !ok {
				return nil
			}
			switch m := msg.(type) {
			case protocol.RequestGreeting:
				o.handleGreeting(ctx, s.ID, m.DisplayName, outbound)
			case protocol.AudioStream:
				requestID, reqCtx := o.admit(ctx, s.ID, outbound, &inflightMu, inflight)
				if requestID == "" {
					continue
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer func() {
						inflightMu.Lock()
						if cancel, ok := inflight[requestID]; ok {
							cancel()
							delete(inflight, requestID)
						}
						inflightMu.Unlock()
					}()
					o.runRequest(reqCtx, s.ID, requestID, m.AudioBase64, outbound)
				}()
			case protocol.Interrupt:
				o.metrics.SessionEvents.WithLabelValues("interrupt").Inc()
				cancelInflight()
			}
		}
	}
}

// admit applies the per-session governor and registers a cancellable request.
// It returns an empty request id when the request was rejected.
func (o *Orchestrator) admit(ctx context.Context, sessionID string, outbound chan<- any, mu *sync.Mutex, inflight map[string]context.CancelFunc) (string, context.Context) {
	snapshot, err := o.sessions.Get(sessionID)
	if err != nil {
		o.send(ctx, outbound, protocol.ErrorEvent{
			Type:      protocol.TypeError,
			SessionID: sessionID,
			Code:      "unknown_session",
			Source:    "session",
			Detail:    err.Error(),
		})
		return "", nil
	}

	if err := o.governor.Admit(snapshot); err != nil {
		code := "rate_limited"
		if errors.Is(err, govern.ErrSessionLimitExceeded) {
			code = "session_limit_exceeded"
		}
		o.metrics.RequestsRejected.WithLabelValues(code).Inc()
		o.send(ctx, outbound, protocol.ErrorEvent{
			Type:      protocol.TypeError,
			SessionID: sessionID,
			Code:      code,
			Source:    "governor",
			Retryable: errors.Is(err, govern.ErrCooldownActive),
			Detail:    err.Error(),
		})
		return "", nil
	}

	if _, err := o.sessions.Touch(sessionID); err != nil {
		return "", nil
	}

	requestID := uuid.NewString()
	reqCtx, cancel := context.WithCancel(ctx)
	mu.Lock()
	inflight[requestID] = cancel
	mu.Unlock()
	return requestID, reqCtx
}

// runRequest executes the full pipeline for one admitted clip: decode,
// transcode, recognize, route, synthesize, deliver.
func (o *Orchestrator) runRequest(ctx context.Context, sessionID, requestID, audioBase64 string, outbound chan<- any) {
	clip, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		o.sendError(ctx, outbound, sessionID, requestID, "invalid_audio", "client", false, err)
		return
	}

	start := o.now()
	pcm, err := o.transcoder.ToPCM16(ctx, clip)
	if err != nil {
		if canceled(ctx, err) {
			return
		}
		o.metrics.CollaboratorErrors.WithLabelValues("ffmpeg", "transcode_failed").Inc()
		o.sendError(ctx, outbound, sessionID, requestID, "transcode_failed", "ffmpeg", false, err)
		return
	}
	o.metrics.ObserveStage("transcode", o.now().Sub(start))

	wav, err := audio.EncodePCM16WAV(pcm, o.transcoder.SampleRate())
	if err != nil {
		o.sendError(ctx, outbound, sessionID, requestID, "transcode_failed", "ffmpeg", false, err)
		return
	}

	start = o.now()
	transcript, err := o.recognizer.Recognize(ctx, wav, o.transcoder.SampleRate(), o.language)
	if err != nil {
		if canceled(ctx, err) {
			return
		}
		o.metrics.CollaboratorErrors.WithLabelValues("stt", "recognize_failed").Inc()
		o.sendError(ctx, outbound, sessionID, requestID, "recognize_failed", "stt", true, err)
		return
	}
	o.metrics.ObserveStage("recognize", o.now().Sub(start))

	// The transcript is always reported, even when empty, so the client can
	// show what was heard before the response arrives.
	o.send(ctx, outbound, protocol.Transcription{
		Type:      protocol.TypeTranscription,
		SessionID: sessionID,
		RequestID: requestID,
		Text:      transcript,
	})
	if transcript == "" {
		return
	}

	start = o.now()
	result := o.router.Respond(ctx, transcript)
	o.metrics.ObserveStage("respond", o.now().Sub(start))
	if result.Err != nil {
		if canceled(ctx, result.Err) {
			return
		}
		o.metrics.CollaboratorErrors.WithLabelValues(result.Source, "respond_failed").Inc()
		o.sendError(ctx, outbound, sessionID, requestID, "respond_failed", result.Source, true, result.Err)
		if result.Text == "" {
			return
		}
	}
	o.send(ctx, outbound, protocol.GPTResponse{
		Type:      protocol.TypeGPTResponse,
		SessionID: sessionID,
		RequestID: requestID,
		Text:      result.Text,
		Source:    result.Source,
	})

	audioBytes, ok := o.speak(ctx, sessionID, requestID, artifact.KindResponse, result.Text, outbound)
	if !ok {
		return
	}
	o.send(ctx, outbound, protocol.GPTAudio{
		Type:        protocol.TypeGPTAudio,
		SessionID:   sessionID,
		RequestID:   requestID,
		AudioBase64: base64.StdEncoding.EncodeToString(audioBytes),
		Format:      o.voice.Format(),
	})
	o.metrics.SessionEvents.WithLabelValues("request_completed").Inc()
}

func (o *Orchestrator) handleGreeting(ctx context.Context, sessionID, displayName string, outbound chan<- any) {
	text := GreetingText(displayName, o.now())
	audioBytes, ok := o.speak(ctx, sessionID, "", artifact.KindGreeting, text, outbound)
	if !ok {
		return
	}
	o.send(ctx, outbound, protocol.Greeting{
		Type:        protocol.TypeGreeting,
		SessionID:   sessionID,
		AudioBase64: base64.StdEncoding.EncodeToString(audioBytes),
		Format:      o.voice.Format(),
	})
	o.metrics.SessionEvents.WithLabelValues("greeting").Inc()
}

// speak synthesizes text, stages it on disk, and reads it back for delivery.
// The staged file exists only for the synthesis-to-delivery window.
func (o *Orchestrator) speak(ctx context.Context, sessionID, requestID string, kind artifact.Kind, text string, outbound chan<- any) ([]byte, bool) {
	start := o.now()
	synth, err := o.synthesizer.Synthesize(ctx, text, o.voice)
	if err != nil {
		if canceled(ctx, err) {
			return nil, false
		}
		o.metrics.CollaboratorErrors.WithLabelValues("tts", "synthesize_failed").Inc()
		o.sendError(ctx, outbound, sessionID, requestID, "synthesize_failed", "tts", true, err)
		return nil, false
	}
	o.metrics.ObserveStage("synthesize", o.now().Sub(start))

	h, err := o.artifacts.Stage(sessionID, kind, synth)
	if err != nil {
		o.sendError(ctx, outbound, sessionID, requestID, "artifact_failed", "artifact", false, err)
		return nil, false
	}
	o.metrics.StagedArtifacts.Set(float64(o.artifacts.Count()))

	data, err := o.artifacts.Consume(sessionID, h)
	o.metrics.StagedArtifacts.Set(float64(o.artifacts.Count()))
	if err != nil {
		o.sendError(ctx, outbound, sessionID, requestID, "artifact_failed", "artifact", false, err)
		return nil, false
	}
	return data, true
}

func (o *Orchestrator) sendError(ctx context.Context, outbound chan<- any, sessionID, requestID, code, source string, retryable bool, err error) {
	log.Printf("session %s request %s: %s (%s): %v", sessionID, requestID, code, source, err)
	o.send(ctx, outbound, protocol.ErrorEvent{
		Type:      protocol.TypeError,
		SessionID: sessionID,
		RequestID: requestID,
		Code:      code,
		Source:    source,
		Retryable: retryable,
		Detail:    err.Error(),
	})
}

// send delivers one outbound event without blocking the pipeline forever on
// a stalled writer.
func (o *Orchestrator) send(ctx context.Context, outbound chan<- any, msg any) {
	timer := time.NewTimer(outboundSendTimeout)
	defer timer.Stop()
	select {
	case outbound <- msg:
	case <-ctx.Done():
	case <-timer.C:
		log.Printf("outbound send timed out, dropping %T", msg)
	}
}

// canceled reports whether err (or the request context) reflects a
// cancelled request; cancelled requests end without an error event.
func canceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
