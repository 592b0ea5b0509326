package review

import (
	"math/rand"
	"strings"
)

// Hints emitted by the rules, in rule order.
const (
	HintUseFunction      = "use a function definition"
	HintReturnResult     = "return the result"
	HintReturnNotPrint   = "return the value instead of printing it"
	HintUseLoop          = "use a loop construct"
	HintCheckIndentation = "check indentation, it is significant in Python"
	HintCheckSyntax      = "check block delimiters and parenthesis balance"
)

const (
	messageSuccess = "Great code! You are using the basic syntax correctly."
	messageWarning = "Almost there! Take a look at the hints below."
	messageError   = "There are a few things to improve. Let's go through them one at a time."
)

// EncouragementPool is the fixed set of encouragement messages.
var EncouragementPool = []string{
	"Practice makes perfect! You are improving a little every time.",
	"Programming is all about trial and error. Keep going!",
	"Taking on challenges without fear of mistakes is a great attitude!",
	"Every piece of code you write teaches you something new!",
	"You are making steady progress. Keep it up!",
}

// PracticeSuggestions is returned as additional practice whenever the advice is not a success.
var PracticeSuggestions = []string{
	"Review how to write a basic function",
	"Try some practice problems on using variables",
	"Go over the basic Python syntax again",
}

// TitleTokens holds the title substrings that switch on the metadata-driven rules.
// Matching is a case-sensitive substring test on the problem title.
type TitleTokens struct {
	Function  []string
	Iteration []string
}

// DefaultTitleTokens accepts the catalog's Japanese wording and its English equivalent.
var DefaultTitleTokens = TitleTokens{
	Function:  []string{"関数", "function"},
	Iteration: []string{"繰り返し", "loop"},
}

// Picker chooses an index in [0, n).
type Picker func(n int) int

// Synthesizer turns findings and problem metadata into advice.
type Synthesizer struct {
	tokens TitleTokens
	pick   Picker
}

// NewSynthesizer builds a synthesizer. A nil picker selects encouragement uniformly at random.
func NewSynthesizer(tokens TitleTokens, pick Picker) *Synthesizer {
	if pick == nil {
		pick = rand.Intn
	}
	return &Synthesizer{tokens: tokens, pick: pick}
}

// Synthesize evaluates the rules in order. Each rule may append a hint and raise the
// severity; severity never goes down.
func (s *Synthesizer) Synthesize(findings Findings, problem ProblemInfo) Advice {
	severity := SeveritySuccess
	hints := []string{}

	if !findings.HasFunctionDefinition {
		hints = append(hints, HintUseFunction)
		severity = severity.Raise(SeverityError)
	}

	if findings.HasFunctionDefinition && !findings.HasReturnStatement {
		hints = append(hints, HintReturnResult)
		severity = severity.Raise(SeverityError)
	}

	if findings.HasPrintCall && titleContains(problem.Title, s.tokens.Function) {
		hints = append(hints, HintReturnNotPrint)
		severity = severity.Raise(SeverityWarning)
	}

	if !findings.HasLoopConstruct && titleContains(problem.Title, s.tokens.Iteration) {
		hints = append(hints, HintUseLoop)
		severity = severity.Raise(SeverityWarning)
	}

	if len(findings.IndentationIssues) > 0 {
		hints = append(hints, HintCheckIndentation)
		severity = severity.Raise(SeverityWarning)
	}

	if len(findings.SyntaxIssues) > 0 {
		hints = append(hints, HintCheckSyntax)
		severity = severity.Raise(SeverityError)
	}

	advice := Advice{
		Severity:           severity,
		Message:            messageFor(severity),
		Hints:              hints,
		Encouragement:      s.encouragement(),
		AdditionalPractice: []string{},
	}
	if severity != SeveritySuccess {
		advice.AdditionalPractice = append(advice.AdditionalPractice, PracticeSuggestions...)
	}

	return advice
}

func (s *Synthesizer) encouragement() string {
	idx := s.pick(len(EncouragementPool))
	if idx < 0 || idx >= len(EncouragementPool) {
		idx = 0
	}
	return EncouragementPool[idx]
}

func messageFor(severity Severity) string {
	switch severity {
	case SeveritySuccess:
		return messageSuccess
	case SeverityWarning:
		return messageWarning
	default:
		return messageError
	}
}

func titleContains(title string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(title, token) {
			return true
		}
	}
	return false
}
