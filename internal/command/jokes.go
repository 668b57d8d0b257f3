package command

import (
	"context"
	"math/rand"
)

// oneLiners is the locally sourced joke pool, spiritually equivalent to the
// one-liner lists shipped with classic assistant demos.
var oneLiners = []string{
	"I told my computer I needed a break, and now it won't stop sending me vacation ads.",
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"I would tell you a UDP joke, but you might not get it.",
	"There are only 10 kinds of people: those who understand binary and those who don't.",
	"My code doesn't have bugs, it just develops random features.",
	"A SQL query walks into a bar, walks up to two tables and asks: may I join you?",
	"Why did the developer go broke? Because they used up all their cache.",
	"I changed my password to 'incorrect', so whenever I forget it the computer reminds me.",
	"Artificial intelligence is no match for natural stupidity.",
	"To understand recursion, you must first understand recursion.",
}

func jokeHandler() func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		return oneLiners[rand.Intn(len(oneLiners))], nil
	}
}
