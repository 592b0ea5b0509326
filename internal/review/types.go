// Package review holds the submission screening and feedback heuristics.
//
// Everything here is a best-effort text heuristic: nothing is executed or parsed.
package review

// Severity classifies advice. Values are ordered so that a higher value is more severe.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the wire name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "success"
	}
}

// Raise returns the more severe of s and other.
func (s Severity) Raise(other Severity) Severity {
	if other > s {
		return other
	}
	return s
}

// Findings is the result of the structural probes over a submission.
type Findings struct {
	HasFunctionDefinition bool     `json:"hasFunctionDefinition"`
	HasReturnStatement    bool     `json:"hasReturnStatement"`
	HasPrintCall          bool     `json:"hasPrintCall"`
	HasLoopConstruct      bool     `json:"hasLoopConstruct"`
	HasConditional        bool     `json:"hasConditional"`
	IndentationIssues     []string `json:"indentationIssues"`
	SyntaxIssues          []string `json:"syntaxIssues"`
}

// Advice is the feedback returned to the student.
type Advice struct {
	Severity           Severity
	Message            string
	Hints              []string
	Encouragement      string
	AdditionalPractice []string
}

// ProblemInfo is the slice of problem metadata the rules look at.
type ProblemInfo struct {
	ID         string
	Title      string
	Difficulty string
}

// EventSuspiciousContent is the event type recorded when the security filter trips.
const EventSuspiciousContent = "suspicious_content_detected"

// SecurityEvent is the audit fact emitted for a blocked submission.
type SecurityEvent struct {
	UserID          string
	EventType       string
	CodeSnippet     string
	MatchedPatterns []string
}
