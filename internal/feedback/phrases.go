// Package feedback chooses what to say after a quiz answer.
//
// Praise escalates in four tiers keyed to the running count of correct
// answers; wrong answers get a gentle encouragement. Both draw from fixed
// phrase pools through an anti-repeat picker so the same line is rarely
// heard twice in a row.
package feedback

import "fmt"

// Phrase is one feedback line.
type Phrase struct {
	// Text is the plain line spoken by device synthesis.
	Text string

	// Prompt is the text sent to the clip generator. It may carry
	// expressive audio tags such as "[laughs]".
	Prompt string

	// Speed is the speaking speed used when rendering the clip.
	Speed float64
}

func p(text, prompt string, speed float64) Phrase {
	if prompt == "" {
		prompt = text
	}
	return Phrase{Text: text, Prompt: prompt, Speed: speed}
}

// positiveTiers run from warm (tier 0) to over the moon (tier 3).
var positiveTiers = [TierCount][]Phrase{
	{
		p("Good job!", "", 1.0),
		p("Very good!", "", 1.0),
		p("That's right!", "", 1.0),
		p("Well done!", "", 1.0),
		p("Nice!", "", 1.0),
	},
	{
		p("Ooh, great work!", "", 1.05),
		p("Fantastic!", "[laughs] Fantastic!", 1.05),
		p("Brilliant!", "", 1.05),
		p("Awesome, way to go!", "", 1.05),
		p("Wonderful, keep it up!", "", 1.05),
	},
	{
		p("Wow, amazing!", "[laughs] Wow, amazing!", 1.1),
		p("You're doing so well!", "You're doing so well! [laughs]", 1.1),
		p("Look at you go!", "[gasps] Look at you go!", 1.1),
		p("So impressive!", "So impressive! [laughs]", 1.1),
		p("Woohoo! You really know your stuff!", "", 1.1),
	},
	{
		p("Oh my god, you're a genius!", "[gasps] Oh my god, you're a genius!", 1.1),
		p("Absolutely incredible!", "[laughs] Absolutely incredible!", 1.15),
		p("You are a superstar!", "You are a superstar! [laughs]", 1.15),
		p("There's no stopping you!", "[gasps] There's no stopping you!", 1.1),
		p("I can't believe how amazing you are!", "I can't believe how amazing you are! [laughs]", 1.1),
	},
}

var encouragement = []Phrase{
	p("Uh oh! Not quite.", "", 0.9),
	p("Oopsie! Let's try again!", "", 0.95),
	p("Hmm, not that one.", "", 0.85),
	p("Oh no! Give it another shot!", "", 0.95),
	p("Whoops! Try again!", "", 0.95),
	p("Nope! Almost though!", "", 0.95),
}

// Positive returns a copy of the phrase pool for tier. It panics if tier is
// outside [0, TierCount).
func Positive(tier int) []Phrase {
	return append([]Phrase(nil), positiveTiers[tier]...)
}

// Encouragement returns a copy of the encouragement pool.
func Encouragement() []Phrase {
	return append([]Phrase(nil), encouragement...)
}

// PositiveClipPath returns the asset path of a pre-rendered praise clip,
// e.g. "positive/tier2/4.mp3".
func PositiveClipPath(tier, index int) string {
	return fmt.Sprintf("positive/tier%d/%d.mp3", tier, index)
}

// EncouragementClipPath returns the asset path of a pre-rendered
// encouragement clip, e.g. "encouragement/3.mp3".
func EncouragementClipPath(index int) string {
	return fmt.Sprintf("encouragement/%d.mp3", index)
}
