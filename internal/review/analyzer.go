package review

import (
	"fmt"
	"strings"
)

// Keyword probes are plain substring checks: a comment mentioning "return" counts as a return.
const (
	keywordFunction    = "def "
	keywordReturn      = "return"
	keywordPrint       = "print("
	keywordFor         = "for "
	keywordWhile       = "while "
	keywordConditional = "if "
	blockDelimiter     = ":"
)

var blockKeywords = []string{keywordFunction, keywordConditional, keywordFor, keywordWhile}

// Analyze runs every structural probe over code. It has no side effects and never fails.
func Analyze(code string) Findings {
	return Findings{
		HasFunctionDefinition: strings.Contains(code, keywordFunction),
		HasReturnStatement:    strings.Contains(code, keywordReturn),
		HasPrintCall:          strings.Contains(code, keywordPrint),
		HasLoopConstruct:      strings.Contains(code, keywordFor) || strings.Contains(code, keywordWhile),
		HasConditional:        strings.Contains(code, keywordConditional),
		IndentationIssues:     checkIndentation(code),
		SyntaxIssues:          checkSyntax(code),
	}
}

// checkIndentation only flags a definition keyword that is not left-anchored on its line.
func checkIndentation(code string) []string {
	issues := []string{}
	for i, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Index(line, keywordFunction) > 0 {
			issues = append(issues, fmt.Sprintf("line %d: check indentation of the function definition", i+1))
		}
	}
	return issues
}

// checkSyntax is line-local: multi-line expressions are not followed.
func checkSyntax(code string) []string {
	issues := []string{}
	for i, raw := range strings.Split(code, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if opensBlock(line) && !strings.HasSuffix(line, blockDelimiter) {
			issues = append(issues, fmt.Sprintf("line %d: missing block delimiter", i+1))
		}

		if strings.Count(line, "(") != strings.Count(line, ")") {
			issues = append(issues, fmt.Sprintf("line %d: unbalanced parentheses", i+1))
		}
	}
	return issues
}

func opensBlock(line string) bool {
	for _, keyword := range blockKeywords {
		if strings.Contains(line, keyword) {
			return true
		}
	}
	return false
}
