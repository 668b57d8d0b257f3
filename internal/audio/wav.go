package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodePCM16WAV wraps raw PCM16LE mono audio in a WAV container. Used by
// the probe client and tests; the recognizer itself consumes bare PCM.
func EncodePCM16WAV(pcm []byte, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	if err := writePCM16WAV(&buf, pcm, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePCM16WAV(out io.Writer, pcm []byte, sampleRate int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
		pcmFormat     = 1
	)
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	if _, err := io.WriteString(out, "RIFF"); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := io.WriteString(out, "WAVE"); err != nil {
		return err
	}

	if _, err := io.WriteString(out, "fmt "); err != nil {
		return err
	}
	for _, v := range []any{
		uint32(16),
		uint16(pcmFormat),
		uint16(numChannels),
		uint32(sampleRate),
		byteRate,
		blockAlign,
		uint16(bitsPerSample),
	} {
		if err := binary.Write(out, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(out, "data"); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	_, err := out.Write(pcm)
	return err
}
