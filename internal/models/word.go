// internal/models/word.go
package models

import "fmt"

// Difficulty is the tier a word was drawn from.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every tier in presentation order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Bonus returns the fractional score bonus applied for guessing a word of this tier.
func (d Difficulty) Bonus() float64 {
	switch d {
	case Medium:
		return 0.25
	case Hard:
		return 0.5
	default:
		return 0
	}
}

// ParseDifficulty validates a tier name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// WordChoice is one word offered to a drawer.
type WordChoice struct {
	Word       string     `json:"word"`
	Difficulty Difficulty `json:"difficulty"`
}
