package voice

import (
	"fmt"
	"strings"
	"time"
)

const defaultDisplayName = "Sir"

// GreetingText composes the personalized time-of-day greeting spoken when a
// client connects. Hour boundaries: morning [6,12), afternoon [12,18),
// evening [18,24), night otherwise.
func GreetingText(displayName string, now time.Time) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = defaultDisplayName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Welcome Back %s! ", name)

	switch hour := now.Hour(); {
	case 6 <= hour && hour < 12:
		b.WriteString("Good Morning Sir! ")
	case 12 <= hour && hour < 18:
		b.WriteString("Good Afternoon Sir! ")
	case 18 <= hour && hour < 24:
		b.WriteString("Good Evening Sir! ")
	default:
		b.WriteString("Good Night Sir! ")
	}

	b.WriteString("Violet at your service. Please tell me how can I help you today?")
	return b.String()
}
