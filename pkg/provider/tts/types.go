package tts

// VoiceProfile identifies a backend voice.
type VoiceProfile struct {
	ID       string
	Name     string
	Provider string

	// Language is a BCP 47 tag when the backend reports one.
	Language string

	// Metadata holds backend-specific labels (accent, age, category...).
	Metadata map[string]string
}

// VoiceSettings tune expressiveness. Zero values are sent as-is.
type VoiceSettings struct {
	Stability       float64
	SimilarityBoost float64
	Style           float64
	Speed           float64
	UseSpeakerBoost bool
}

// ConvertRequest is one utterance for [Converter.Convert].
type ConvertRequest struct {
	Text    string
	VoiceID string
	ModelID string

	// OutputFormat is backend-specific, e.g. "mp3_44100_128". Empty uses
	// the backend default.
	OutputFormat string

	Settings VoiceSettings
}
