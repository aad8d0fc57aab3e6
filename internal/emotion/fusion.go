package emotion

import "fmt"

// Modality weights for fusion. Text is structurally more reliable than
// the audio-feature signal, so it dominates.
const (
	textWeight  = 0.8
	audioWeight = 0.2

	agreementBoost    = 1.2
	agreementCap      = 0.95
	disagreementScale = 0.8
)

// Fuse combines a text-derived and an audio-derived Result into one fused
// Result. Pure function: it never fails for well-formed inputs.
//
// Intensity and confidence are weighted averages. Modality agreement on
// the label boosts confidence; disagreement dampens it and adopts the
// label of whichever source was individually more confident, keeping the
// text label on ties.
func Fuse(text, audio Result) Result {
	fused := Result{
		Intensity:  textWeight*text.Intensity + audioWeight*audio.Intensity,
		Confidence: textWeight*text.Confidence + audioWeight*audio.Confidence,
		Provenance: ProvenanceFused,
	}

	if text.Emotion == audio.Emotion {
		fused.Emotion = text.Emotion
		fused.Confidence *= agreementBoost
		if fused.Confidence > agreementCap {
			fused.Confidence = agreementCap
		}
		fused.Reasoning = fmt.Sprintf("text and audio agree on %s", fused.Emotion)
	} else {
		fused.Confidence *= disagreementScale
		if audio.Confidence > text.Confidence {
			fused.Emotion = audio.Emotion
		} else {
			fused.Emotion = text.Emotion
		}
		fused.Reasoning = fmt.Sprintf("text heard %s, audio heard %s; kept %s",
			text.Emotion, audio.Emotion, fused.Emotion)
	}

	fused.normalize()
	return fused
}
