package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType identifies websocket payload variants. The wire names match the
// original socket.io event catalogue so existing clients keep working.
type EventType string

const (
	TypeRequestGreeting EventType = "requestGreeting"
	TypeAudioStream     EventType = "audioStream"
	TypeInterrupt       EventType = "interrupt"

	TypeGreeting      EventType = "greeting"
	TypeTranscription EventType = "transcription"
	TypeGPTResponse   EventType = "gptResponse"
	TypeGPTAudio      EventType = "gpt"
	TypeError         EventType = "error"
)

var ErrUnsupportedType = errors.New("unsupported event type")

type Envelope struct {
	Type EventType `json:"type"`
}

// RequestGreeting asks for a synthesized time-of-day greeting.
type RequestGreeting struct {
	Type        EventType `json:"type"`
	DisplayName string    `json:"display_name"`
}

// AudioStream carries one complete client-recorded clip.
type AudioStream struct {
	Type        EventType `json:"type"`
	AudioBase64 string    `json:"audio_base64"`
}

// Interrupt cancels the in-flight request, if any.
type Interrupt struct {
	Type EventType `json:"type"`
}

// Greeting delivers synthesized greeting audio.
type Greeting struct {
	Type        EventType `json:"type"`
	SessionID   string    `json:"session_id"`
	AudioBase64 string    `json:"audio_base64"`
	Format      string    `json:"format"`
}

// Transcription delivers the recognized utterance, emitted before the
// response for the same request.
type Transcription struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	RequestID string    `json:"request_id"`
	Text      string    `json:"text"`
}

// GPTResponse delivers the routed or generated response text.
type GPTResponse struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	RequestID string    `json:"request_id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
}

// GPTAudio delivers synthesized response audio.
type GPTAudio struct {
	Type        EventType `json:"type"`
	SessionID   string    `json:"session_id"`
	RequestID   string    `json:"request_id"`
	AudioBase64 string    `json:"audio_base64"`
	Format      string    `json:"format"`
}

// ErrorEvent reports any recoverable failure; the connection stays open.
type ErrorEvent struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	RequestID string    `json:"request_id,omitempty"`
	Code      string    `json:"code"`
	Source    string    `json:"source"`
	Retryable bool      `json:"retryable"`
	Detail    string    `json:"detail"`
}

// ParseClientEvent decodes and validates one inbound client payload.
func ParseClientEvent(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeRequestGreeting:
		var msg RequestGreeting
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeAudioStream:
		var msg AudioStream
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.AudioBase64 == "" {
			return nil, errors.New("invalid audioStream: empty audio")
		}
		return msg, nil
	case TypeInterrupt:
		var msg Interrupt
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
