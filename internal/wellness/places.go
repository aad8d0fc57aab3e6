package wellness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/murmur/internal/emotion"
)

const suggestTimeout = 8 * time.Second

// PlaceSuggester produces place suggestions for a dominant emotion,
// optionally biased by location. Implementations are expected never to
// block past their timeout.
type PlaceSuggester interface {
	Suggest(ctx context.Context, dominant emotion.Emotion, geo *Geolocation) ([]Place, error)
}

// Completer is the slice of the provider client the remote suggester needs.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

const placesSystemPrompt = `You suggest real-world places that support emotional wellbeing. Given a mood and optionally coordinates, return ONLY a JSON array of exactly 3 places, sorted nearest first when coordinates are given, no other text:

[{"icon":"<single emoji>","name":"<place name>","description":"<one sentence on why it fits the mood>","type":"<park|cafe|gym|library|studio|trail|other>","address":"<street address or area>","distance":"<e.g. 1.2 km, empty if unknown>"}]`

// RemotePlaces asks the provider for specific, geographically sorted
// suggestions. Any failure is an error; wrap it in a Chain so callers
// always get the static fallback.
type RemotePlaces struct {
	client Completer
	model  string
}

// NewRemotePlaces creates a RemotePlaces using the given provider client
// and model name.
func NewRemotePlaces(client Completer, model string) *RemotePlaces {
	return &RemotePlaces{client: client, model: model}
}

func (r *RemotePlaces) Suggest(ctx context.Context, dominant emotion.Emotion, geo *Geolocation) ([]Place, error) {
	ctx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	user := fmt.Sprintf("Mood: %s.", dominant)
	if geo != nil {
		user = fmt.Sprintf("Mood: %s. Coordinates: %.5f,%.5f.", dominant, geo.Lat, geo.Lng)
	}

	raw, err := r.client.Complete(ctx, r.model, placesSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("remote place suggestion: %w", err)
	}

	payload, ok := extractJSONArray(raw)
	if !ok {
		return nil, fmt.Errorf("remote place suggestion: no JSON array in response")
	}

	var places []Place
	if err := json.Unmarshal([]byte(payload), &places); err != nil {
		return nil, fmt.Errorf("remote place suggestion: unmarshaling response: %w", err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("remote place suggestion: empty list")
	}
	if len(places) > 3 {
		places = places[:3]
	}
	return places, nil
}

// extractJSONArray returns the first top-level [...] span in s.
func extractJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// StaticPlaces is the deterministic fallback: a fixed list per emotion.
type StaticPlaces struct{}

func (StaticPlaces) Suggest(_ context.Context, dominant emotion.Emotion, _ *Geolocation) ([]Place, error) {
	return staticPlacesFor(dominant), nil
}

var staticPlaceLists = map[emotion.Emotion][]Place{
	emotion.Anxious: {
		{Icon: "🌳", Name: "A quiet park", Description: "Green space and slow walking lower the body's stress response.", Type: "park"},
		{Icon: "📚", Name: "A local library", Description: "Low-stimulation rooms make it easier to settle racing thoughts.", Type: "library"},
		{Icon: "🫖", Name: "A calm tea house", Description: "A warm drink and an unhurried pace to come back to baseline.", Type: "cafe"},
	},
	emotion.Sad: {
		{Icon: "☀️", Name: "A sunny waterfront", Description: "Light and open water reliably lift low moods.", Type: "trail"},
		{Icon: "☕", Name: "A friendly neighborhood cafe", Description: "Gentle background life without social pressure.", Type: "cafe"},
		{Icon: "🌺", Name: "A botanical garden", Description: "Color and growth, somewhere slow to wander.", Type: "park"},
	},
	emotion.Angry: {
		{Icon: "🏋️", Name: "A gym or climbing wall", Description: "Somewhere the intensity can go to work for you.", Type: "gym"},
		{Icon: "🥾", Name: "A steep hiking trail", Description: "Hard uphill effort is a proven pressure valve.", Type: "trail"},
		{Icon: "🏊", Name: "A swimming pool", Description: "Rhythmic laps wash the charge out of the body.", Type: "gym"},
	},
	emotion.Happy: {
		{Icon: "🎨", Name: "An art or maker studio", Description: "Good moods are the best time to make something.", Type: "studio"},
		{Icon: "🌄", Name: "A scenic overlook", Description: "Somewhere worth remembering the day from.", Type: "trail"},
		{Icon: "🍽️", Name: "A lively market hall", Description: "Share the mood with a little bustle around you.", Type: "other"},
	},
}

var staticPlaceDefault = []Place{
	{Icon: "🌳", Name: "A nearby park", Description: "A change of scene resets a session's worth of thinking.", Type: "park"},
	{Icon: "☕", Name: "A quiet cafe", Description: "Somewhere neutral to sit with your thoughts.", Type: "cafe"},
	{Icon: "🚶", Name: "A walking loop", Description: "Twenty unhurried minutes on foot.", Type: "trail"},
}

func staticPlacesFor(dominant emotion.Emotion) []Place {
	if list, ok := staticPlaceLists[dominant]; ok {
		return list
	}
	return staticPlaceDefault
}

// Chain tries suggesters in order, logging soft failures, and always
// resolves when a StaticPlaces sits at the end.
type Chain []PlaceSuggester

func (c Chain) Suggest(ctx context.Context, dominant emotion.Emotion, geo *Geolocation) ([]Place, error) {
	for _, s := range c {
		places, err := s.Suggest(ctx, dominant, geo)
		if err != nil {
			slog.Warn("place suggester failed, falling through", "error", err)
			continue
		}
		return places, nil
	}
	return staticPlacesFor(dominant), nil
}
