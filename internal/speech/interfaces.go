// Package speech defines the recognizer and synthesizer collaborator
// contracts consumed by the pipeline, with Google Cloud REST and mock
// implementations.
package speech

import "context"

// Voice is the fixed synthesis configuration: one language, one timbre, one
// output encoding. No per-request negotiation.
type Voice struct {
	LanguageCode  string
	SSMLGender    string
	AudioEncoding string
}

// Format returns the lower-cased audio container name for the encoding,
// suitable for event payload format fields.
func (v Voice) Format() string {
	switch v.AudioEncoding {
	case "MP3":
		return "mp3"
	case "OGG_OPUS":
		return "ogg"
	case "LINEAR16":
		return "wav"
	default:
		return "audio"
	}
}

// Recognizer converts LINEAR16 audio to text. An empty transcript is a
// legitimate result (silent or unintelligible audio), not an error.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, sampleRate int, languageCode string) (string, error)
}

// Synthesizer converts response text to playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}
