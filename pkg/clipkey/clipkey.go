// Package clipkey maps display text to the key that addresses a pre-rendered
// audio clip.
//
// The clip generator and the playback side both call [Normalize]; a key is
// never built any other way. If the two ever disagree, every lookup misses
// the manifest and speech silently degrades to device synthesis.
//
// Lowercasing uses [strings.ToLower], which applies simple one-to-one
// Unicode case mapping. Tools that use full special casing (JavaScript's
// toLowerCase, for one) can disagree on non-ASCII input: "İstanbul" is
// "istanbul" here but "i-stanbul" there, because U+0130 lowers to "i"
// plus a combining dot. Keys are consistent within this module; a manifest
// produced elsewhere should stick to ASCII display text.
package clipkey

import "strings"

// Separator replaces every run of characters outside [a-z0-9].
const Separator = '-'

// WordsDir is the asset directory holding word clips and the manifest.
const WordsDir = "words"

// ManifestPath is the asset path of the JSON array of known word keys.
const ManifestPath = WordsDir + "/manifest.json"

// Ext is the file extension of every clip.
const Ext = ".mp3"

// Normalize lowercases text, collapses each maximal run of characters
// outside [a-z0-9] into a single [Separator] and trims the separator from
// both ends. It is pure, total and idempotent.
func Normalize(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	pending := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte(Separator)
			}
			pending = false
			b.WriteByte(c)
			continue
		}
		pending = true
	}
	return b.String()
}

// WordPath returns the asset path of the word clip for an already
// normalized key, e.g. "words/lion.mp3".
func WordPath(key string) string {
	return WordsDir + "/" + key + Ext
}
