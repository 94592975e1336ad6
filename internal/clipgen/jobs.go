package clipgen

import (
	"strings"

	"github.com/MrWong99/littlewords/internal/catalog"
	"github.com/MrWong99/littlewords/internal/feedback"
	"github.com/MrWong99/littlewords/pkg/clipkey"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
)

// Job is one clip to render.
type Job struct {
	// Path is the asset path relative to the output root.
	Path string

	// Text is sent to the TTS model verbatim, audio tags included.
	Text string

	Settings tts.VoiceSettings
}

// WordSettings renders learning words: steady, slightly slow and clear.
var WordSettings = tts.VoiceSettings{
	Stability:       0.5,
	SimilarityBoost: 0.8,
	Style:           0.6,
	Speed:           0.95,
	UseSpeakerBoost: true,
}

// BaseStability returns the stability used for feedback clips. v3 models
// are most expressive at zero.
func BaseStability(model string) float64 {
	if strings.Contains(model, "v3") {
		return 0.0
	}
	return 0.15
}

func feedbackSettings(stability, speed float64) tts.VoiceSettings {
	return tts.VoiceSettings{
		Stability:       stability,
		SimilarityBoost: 0.8,
		Style:           1.0,
		Speed:           speed,
		UseSpeakerBoost: true,
	}
}

// FeedbackJobs lists every praise and encouragement clip.
func FeedbackJobs(stability float64) []Job {
	var jobs []Job
	for tier := range feedback.TierCount {
		for i, ph := range feedback.Positive(tier) {
			jobs = append(jobs, Job{
				Path:     feedback.PositiveClipPath(tier, i),
				Text:     ph.Prompt,
				Settings: feedbackSettings(stability, ph.Speed),
			})
		}
	}
	for i, ph := range feedback.Encouragement() {
		jobs = append(jobs, Job{
			Path:     feedback.EncouragementClipPath(i),
			Text:     ph.Prompt,
			Settings: feedbackSettings(stability, ph.Speed),
		})
	}
	return jobs
}

// WordJobs lists the word clips for phrases and the manifest keys in the
// same order.
func WordJobs(phrases []string) (jobs []Job, keys []string) {
	for _, phrase := range phrases {
		key := clipkey.Normalize(phrase)
		if key == "" {
			continue
		}
		keys = append(keys, key)
		jobs = append(jobs, Job{Path: clipkey.WordPath(key), Text: phrase, Settings: WordSettings})
	}
	return jobs, keys
}

// LearningWordJobs is [WordJobs] over the catalog's learning phrases.
func LearningWordJobs() ([]Job, []string) {
	return WordJobs(catalog.LearningPhrases())
}
