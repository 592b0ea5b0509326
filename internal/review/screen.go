package review

// SnippetLength is the number of characters of the original code kept in a security event.
const SnippetLength = 200

const (
	blockedMessage       = "Inappropriate content was detected. Write the code yourself and keep learning!"
	blockedEncouragement = "There are no shortcuts to learning. Take it one step at a time!"
)

// ScreenResult is the outcome of screening a submission.
type ScreenResult struct {
	Blocked bool
	Event   *SecurityEvent
}

// Screen checks code for cheat-intent phrases. This is a deterrent, not a security control:
// obfuscated requests pass straight through.
func Screen(patterns PatternSet, code, userID string) ScreenResult {
	matched := patterns.Matches(code)
	if len(matched) == 0 {
		return ScreenResult{}
	}

	return ScreenResult{
		Blocked: true,
		Event: &SecurityEvent{
			UserID:          userID,
			EventType:       EventSuspiciousContent,
			CodeSnippet:     truncateRunes(code, SnippetLength),
			MatchedPatterns: matched,
		},
	}
}

// BlockedAdvice is the fixed advice returned when a submission is blocked.
func BlockedAdvice() Advice {
	return Advice{
		Severity:      SeverityWarning,
		Message:       blockedMessage,
		Hints:         []string{},
		Encouragement: blockedEncouragement,
	}
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
