package emotion

import (
	"context"
	"fmt"
	"testing"
)

// mockCompleter implements Completer for testing.
type mockCompleter struct {
	response string
	err      error
}

func (m *mockCompleter) Complete(ctx context.Context, model, system, user string) (string, error) {
	return m.response, m.err
}

func TestRemote_ValidResponse(t *testing.T) {
	mock := &mockCompleter{
		response: `{"emotion":"peaceful","intensity":0.6,"confidence":0.88,"reasoning":"soft, settled tone","triggers":["settled","at ease"]}`,
	}
	c := NewRemoteClassifier(mock, "test-model")

	got, err := c.Classify(context.Background(), "I feel settled and at ease tonight")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Emotion != Peaceful {
		t.Errorf("Emotion = %q, want %q", got.Emotion, Peaceful)
	}
	if got.Confidence != 0.88 {
		t.Errorf("Confidence = %v, want 0.88", got.Confidence)
	}
	if len(got.Triggers) != 2 {
		t.Errorf("Triggers = %v, want 2 entries", got.Triggers)
	}
}

func TestRemote_FencedResponse(t *testing.T) {
	mock := &mockCompleter{
		response: "```json\n{\"emotion\":\"happy\",\"intensity\":0.8,\"confidence\":0.9,\"reasoning\":\"upbeat\",\"triggers\":[]}\n```",
	}
	c := NewRemoteClassifier(mock, "test-model")

	got, err := c.Classify(context.Background(), "great day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Emotion != Happy {
		t.Errorf("Emotion = %q, want %q", got.Emotion, Happy)
	}
}

func TestRemote_MalformedJSON(t *testing.T) {
	mock := &mockCompleter{response: `{"emotion": "happy", "intensity": `}
	c := NewRemoteClassifier(mock, "test-model")

	if _, err := c.Classify(context.Background(), "some text"); err == nil {
		t.Error("want error for malformed JSON")
	}
}

func TestRemote_NoJSONInResponse(t *testing.T) {
	mock := &mockCompleter{response: "I think the user sounds happy."}
	c := NewRemoteClassifier(mock, "test-model")

	if _, err := c.Classify(context.Background(), "some text"); err == nil {
		t.Error("want error when response has no JSON object")
	}
}

func TestRemote_OutOfSetEmotion(t *testing.T) {
	mock := &mockCompleter{
		response: `{"emotion":"nostalgic","intensity":0.5,"confidence":0.8,"reasoning":"","triggers":[]}`,
	}
	c := NewRemoteClassifier(mock, "test-model")

	if _, err := c.Classify(context.Background(), "some text"); err == nil {
		t.Error("want error for emotion outside the label set")
	}
}

func TestRemote_ProviderError(t *testing.T) {
	mock := &mockCompleter{err: fmt.Errorf("status 503")}
	c := NewRemoteClassifier(mock, "test-model")

	if _, err := c.Classify(context.Background(), "some text"); err == nil {
		t.Error("want error when provider call fails")
	}
}

func TestRemote_ClampsOutOfRangeValues(t *testing.T) {
	mock := &mockCompleter{
		response: `{"emotion":"sad","intensity":1.4,"confidence":-0.1,"reasoning":"","triggers":[]}`,
	}
	c := NewRemoteClassifier(mock, "test-model")

	got, err := c.Classify(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intensity != 1 {
		t.Errorf("Intensity = %v, want clamped to 1", got.Intensity)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want clamped to 0", got.Confidence)
	}
}
