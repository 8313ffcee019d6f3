// Package guess classifies chat messages against the secret word.
package guess

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MaxCloseDistance is the largest edit distance still reported as a close guess.
const MaxCloseDistance = 2

// Result is the outcome of comparing a guess with the secret word.
// Only Exact counts as a correct guess; Close is a hint.
type Result struct {
	Exact bool
	Close bool
}

// Evaluate compares guess with secret after lower-casing and trimming both.
func Evaluate(guess, secret string) Result {
	g := normalize(guess)
	s := normalize(secret)
	if g == "" || s == "" {
		return Result{}
	}
	if g == s {
		return Result{Exact: true}
	}
	if g == s+"s" || s == g+"s" {
		return Result{Close: true}
	}
	if utf8.RuneCountInString(g) > 3 && levenshtein.ComputeDistance(g, s) <= MaxCloseDistance {
		return Result{Close: true}
	}
	return Result{}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
