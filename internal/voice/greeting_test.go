package voice

import (
	"strings"
	"testing"
	"time"
)

func atHour(h int) time.Time {
	return time.Date(2025, time.March, 4, h, 30, 0, 0, time.Local)
}

func TestGreetingTextTimeOfDay(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{6, "Good Morning Sir!"},
		{11, "Good Morning Sir!"},
		{12, "Good Afternoon Sir!"},
		{17, "Good Afternoon Sir!"},
		{18, "Good Evening Sir!"},
		{23, "Good Evening Sir!"},
		{0, "Good Night Sir!"},
		{5, "Good Night Sir!"},
	}
	for _, tc := range cases {
		got := GreetingText("Tony", atHour(tc.hour))
		if !strings.Contains(got, tc.want) {
			t.Errorf("hour %d: greeting %q missing %q", tc.hour, got, tc.want)
		}
	}
}

func TestGreetingTextComposition(t *testing.T) {
	got := GreetingText("Tony", atHour(9))
	if !strings.HasPrefix(got, "Welcome Back Tony! ") {
		t.Fatalf("greeting %q missing personalized prefix", got)
	}
	if !strings.HasSuffix(got, "Violet at your service. Please tell me how can I help you today?") {
		t.Fatalf("greeting %q missing service suffix", got)
	}
}

func TestGreetingTextDefaultsDisplayName(t *testing.T) {
	got := GreetingText("  ", atHour(9))
	if !strings.HasPrefix(got, "Welcome Back Sir! ") {
		t.Fatalf("greeting %q, want fallback display name", got)
	}
}
