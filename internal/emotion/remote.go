package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Completer is the slice of the provider client the remote classifier needs.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

const classifySystemPrompt = `You are an emotion classification engine for a voice journaling app. Analyze the emotional content of the user's journal entry. Your output must be ONLY a single valid JSON object, no other text, prose, or markdown:

{
  "emotion": "<one of: happy, sad, angry, anxious, calm, neutral, excited, peaceful>",
  "intensity": <float 0.0 to 1.0, strength of the emotion>,
  "confidence": <float 0.0 to 1.0, your certainty>,
  "reasoning": "<one short sentence explaining the classification>",
  "triggers": ["<word or phrase that signaled the emotion>", ...]
}`

// remoteResult mirrors the JSON contract with the provider.
type remoteResult struct {
	Emotion    string   `json:"emotion"`
	Intensity  float64  `json:"intensity"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Triggers   []string `json:"triggers"`
}

// RemoteClassifier asks an external text-understanding service to classify
// a journal entry. Every failure mode (network, timeout, malformed JSON,
// schema violation, out-of-set label) returns an error, which the
// pipeline treats as a soft failure and falls through to the lexicon.
type RemoteClassifier struct {
	client Completer
	model  string
}

// NewRemoteClassifier creates a RemoteClassifier using the given provider
// client and model name.
func NewRemoteClassifier(client Completer, model string) *RemoteClassifier {
	return &RemoteClassifier{client: client, model: model}
}

func (c *RemoteClassifier) Name() string { return ProvenanceRemote }

// Classify sends the text with the fixed instruction prompt and parses the
// JSON response into a Result.
func (c *RemoteClassifier) Classify(ctx context.Context, text string) (Result, error) {
	raw, err := c.client.Complete(ctx, c.model, classifySystemPrompt, text)
	if err != nil {
		return Result{}, fmt.Errorf("remote classification: %w", err)
	}

	payload, ok := extractJSONObject(raw)
	if !ok {
		return Result{}, fmt.Errorf("remote classification: no JSON object in response")
	}

	var rr remoteResult
	if err := json.Unmarshal([]byte(payload), &rr); err != nil {
		return Result{}, fmt.Errorf("remote classification: unmarshaling response: %w", err)
	}
	if rr.Emotion == "" {
		return Result{}, fmt.Errorf("remote classification: response missing emotion")
	}
	if !Emotion(strings.ToLower(rr.Emotion)).Valid() {
		return Result{}, fmt.Errorf("remote classification: emotion %q outside the label set", rr.Emotion)
	}

	r := Result{
		Emotion:    Emotion(strings.ToLower(rr.Emotion)),
		Intensity:  rr.Intensity,
		Confidence: rr.Confidence,
		Provenance: ProvenanceRemote,
		Reasoning:  rr.Reasoning,
		Triggers:   rr.Triggers,
	}
	r.normalize()
	return r, nil
}

// extractJSONObject returns the first top-level {...} span in s. Models
// occasionally wrap the object in code fences or stray prose.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
