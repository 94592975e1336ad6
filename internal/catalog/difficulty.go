package catalog

import "fmt"

// Difficulty controls how many answer options a quiz round shows.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// IsValid reports whether d is a recognised difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// ParseDifficulty converts s into a [Difficulty].
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.IsValid() {
		return "", fmt.Errorf("catalog: unknown difficulty %q; valid values: easy, medium, hard", s)
	}
	return d, nil
}

// OptionCount returns how many options to show for a category of n items.
// Hard shows every item; unknown difficulties behave like easy.
func (d Difficulty) OptionCount(n int) int {
	switch d {
	case Hard:
		return n
	case Medium:
		return min(5, n)
	default:
		return min(3, n)
	}
}
