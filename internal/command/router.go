// Package command routes a recognized utterance to a deterministic local
// handler or to the generative fallback.
package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/violetvoice/violet/internal/brain"
)

// Stats is the system-stats collaborator consumed by the "cpu" handler.
type Stats interface {
	CPUPercent(ctx context.Context) (float64, error)
}

// Result is the routed response for one transcript.
type Result struct {
	Text   string
	Source string
	// Err is set when a handler failed. A non-empty Text alongside Err is
	// the spoken fallback (generative failures apologize out loud); an
	// empty Text means there is nothing to speak.
	Err error
}

type rule struct {
	keyword string
	source  string
	handle  func(ctx context.Context) (string, error)
}

// Router applies an ordered keyword list; the first keyword contained in the
// lower-cased transcript wins. Order is part of the contract: a transcript
// mentioning both "time" and "joke" resolves to the time handler.
type Router struct {
	adapter brain.Adapter
	rules   []rule
	now     func() time.Time
}

func NewRouter(adapter brain.Adapter, stats Stats) *Router {
	r := &Router{
		adapter: adapter,
		now:     time.Now,
	}
	r.rules = []rule{
		{keyword: "time", source: "time", handle: r.currentTime},
		{keyword: "date", source: "date", handle: r.currentDate},
		{keyword: "cpu", source: "cpu", handle: statsHandler(stats)},
		{keyword: "joke", source: "joke", handle: jokeHandler()},
	}
	return r
}

// Respond resolves a non-empty transcript into response text. Empty
// transcripts are filtered upstream and never reach the router.
func (r *Router) Respond(ctx context.Context, transcript string) Result {
	lowered := strings.ToLower(transcript)
	for _, rule := range r.rules {
		if !strings.Contains(lowered, rule.keyword) {
			continue
		}
		text, err := rule.handle(ctx)
		if err != nil {
			return Result{Source: rule.source, Err: err}
		}
		return Result{Text: text, Source: rule.source}
	}

	text, err := r.adapter.Generate(ctx, brain.Preamble, transcript)
	if err != nil {
		// Generation failures are spoken as the fixed apology and reported
		// separately; they never surface as the response itself.
		return Result{Text: brain.Apology, Source: "gpt", Err: err}
	}
	return Result{Text: text, Source: "gpt"}
}

func (r *Router) currentTime(context.Context) (string, error) {
	return fmt.Sprintf("The current time is %s.", r.now().Format("3:04:05 PM")), nil
}

func (r *Router) currentDate(context.Context) (string, error) {
	return fmt.Sprintf("The current date is %s.", r.now().Format("1/2/2006")), nil
}

func statsHandler(stats Stats) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		usage, err := stats.CPUPercent(ctx)
		if err != nil {
			return "", fmt.Errorf("cpu stats: %w", err)
		}
		return fmt.Sprintf("CPU usage is at %.1f%%.", usage), nil
	}
}
