// voiceprobe is a smoke client for the websocket gateway: it connects,
// requests a greeting, streams a clip from disk, and prints the events the
// server sends back.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/violetvoice/violet/internal/protocol"
)

type options struct {
	baseURL     string
	displayName string
	clipPath    string
	interrupt   bool
	timeout     time.Duration
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "voiceprobe: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "voiceprobe: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var cfg options
	var timeoutMS int

	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:5002", "Violet base URL")
	flag.StringVar(&cfg.displayName, "name", "Tony", "display name for the greeting")
	flag.StringVar(&cfg.clipPath, "clip", "", "path to a recorded audio clip to stream (optional)")
	flag.BoolVar(&cfg.interrupt, "interrupt", false, "send an interrupt right after the clip")
	flag.IntVar(&timeoutMS, "timeout-ms", 20000, "time to wait for server events in milliseconds")
	flag.Parse()

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	if timeoutMS <= 0 {
		return options{}, fmt.Errorf("timeout-ms must be > 0")
	}
	cfg.timeout = time.Duration(timeoutMS) * time.Millisecond
	return cfg, nil
}

func run(cfg options) error {
	u, err := url.Parse(cfg.baseURL)
	if err != nil {
		return fmt.Errorf("parse base-url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/v1/voice/ws"

	conn, res, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()
	if res != nil {
		res.Body.Close()
	}
	fmt.Printf("connected to %s\n", u.String())

	if err := conn.WriteJSON(protocol.RequestGreeting{
		Type:        protocol.TypeRequestGreeting,
		DisplayName: cfg.displayName,
	}); err != nil {
		return fmt.Errorf("send greeting request: %w", err)
	}

	expected := 1
	if cfg.clipPath != "" {
		clip, err := os.ReadFile(cfg.clipPath)
		if err != nil {
			return fmt.Errorf("read clip: %w", err)
		}
		if err := conn.WriteJSON(protocol.AudioStream{
			Type:        protocol.TypeAudioStream,
			AudioBase64: base64.StdEncoding.EncodeToString(clip),
		}); err != nil {
			return fmt.Errorf("send clip: %w", err)
		}
		expected += 3
		if cfg.interrupt {
			if err := conn.WriteJSON(protocol.Interrupt{Type: protocol.TypeInterrupt}); err != nil {
				return fmt.Errorf("send interrupt: %w", err)
			}
		}
	}

	deadline := time.Now().Add(cfg.timeout)
	for received := 0; received < expected; received++ {
		_ = conn.SetReadDeadline(deadline)
		var env map[string]any
		if err := conn.ReadJSON(&env); err != nil {
			if cfg.interrupt {
				// An interrupted request legitimately produces fewer events.
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		printEvent(env)
	}
	return nil
}

func printEvent(env map[string]any) {
	t, _ := env["type"].(string)
	switch t {
	case string(protocol.TypeGreeting), string(protocol.TypeGPTAudio):
		audio, _ := env["audio_base64"].(string)
		format, _ := env["format"].(string)
		fmt.Printf("%-13s %d bytes of %s audio\n", t, base64.StdEncoding.DecodedLen(len(audio)), format)
	case string(protocol.TypeTranscription):
		fmt.Printf("%-13s %q\n", t, env["text"])
	case string(protocol.TypeGPTResponse):
		fmt.Printf("%-13s [%v] %q\n", t, env["source"], env["text"])
	case string(protocol.TypeError):
		fmt.Printf("%-13s code=%v source=%v detail=%v\n", t, env["code"], env["source"], env["detail"])
	default:
		fmt.Printf("%-13s %v\n", t, env)
	}
}
