package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/murmur/internal/emotion"
	"github.com/kalambet/murmur/internal/match"
	"github.com/kalambet/murmur/internal/session"
	"github.com/kalambet/murmur/internal/storage"
	"github.com/kalambet/murmur/internal/wellness"
)

const maxRequestBodySize = 1 << 20 // 1MB

// historyWindow is how many recent entries feed the mood factor.
const historyWindow = 3

type AppDeps struct {
	Pipeline   *emotion.Pipeline
	Scorer     *match.Scorer
	Aggregator *wellness.Aggregator
	Store      *storage.Store
	Sessions   session.Store
	Token      string
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/classify", handleClassify(deps))
		r.Post("/classify/batch", handleClassifyBatch(deps))
		r.Post("/fuse", handleFuse(deps))
		r.Post("/match", handleMatch(deps))
		r.Post("/sessions", handleCreateSession(deps))
		r.Post("/sessions/{id}/turns", handleAppendTurn(deps))
		r.Post("/sessions/{id}/report", handleSessionReport(deps))
		r.Get("/profiles/{id}", handleGetProfile(deps))
		r.Put("/profiles/{id}", handlePutProfile(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type ClassifyRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
}

func handleClassify(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req ClassifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}

		result, err := deps.Pipeline.Classify(r.Context(), req.Text)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "classification failed: %v", err)
			return
		}

		if req.SessionID != "" {
			turn := session.Turn{Text: req.Text, Result: result, At: time.Now().UTC()}
			if _, err := deps.Sessions.Append(req.SessionID, turn); err != nil {
				httpError(w, http.StatusNotFound, "not_found", "session not found")
				return
			}
		}

		if req.ProfileID != "" {
			rec := storage.EmotionRecord{
				ID:         uuid.New().String(),
				ProfileID:  req.ProfileID,
				SessionID:  req.SessionID,
				Emotion:    string(result.Emotion),
				Intensity:  result.Intensity,
				Confidence: result.Confidence,
				Provenance: result.Provenance,
				Reasoning:  result.Reasoning,
				CreatedAt:  time.Now().UTC(),
			}
			if err := deps.Store.AppendEmotion(rec); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to record emotion: %v", err)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

type ClassifyBatchRequest struct {
	Texts []string `json:"texts"`
}

func handleClassifyBatch(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req ClassifyBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Texts) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "texts is required")
			return
		}

		results, err := deps.Pipeline.ClassifyBatch(r.Context(), req.Texts)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "batch classification failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

type FuseRequest struct {
	Text  emotion.Result `json:"text"`
	Audio emotion.Result `json:"audio"`
}

func handleFuse(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req FuseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if !req.Text.Emotion.Valid() {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown text emotion %q", req.Text.Emotion)
			return
		}
		if !req.Audio.Emotion.Valid() {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown audio emotion %q", req.Audio.Emotion)
			return
		}

		fused := emotion.Fuse(req.Text, req.Audio)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(fused)
	}
}

type MatchRequest struct {
	ProfileA string `json:"profile_a"`
	ProfileB string `json:"profile_b"`
}

func handleMatch(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.ProfileA == "" || req.ProfileB == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "profile_a and profile_b are required")
			return
		}

		a, err := loadMatchProfile(deps.Store, req.ProfileA)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "profile %s not found", req.ProfileA)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load profile: %v", err)
			return
		}
		b, err := loadMatchProfile(deps.Store, req.ProfileB)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "profile %s not found", req.ProfileB)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load profile: %v", err)
			return
		}

		score := deps.Scorer.Score(a, b)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(score)
	}
}

// loadMatchProfile assembles a scorer profile from the persistent store:
// the stored profile fields plus the recent emotion history and total
// entry count for the activity factor.
func loadMatchProfile(store *storage.Store, id string) (match.Profile, error) {
	p, err := store.GetProfile(id)
	if err != nil {
		return match.Profile{}, err
	}

	var interests []string
	if p.Interests != "" {
		if err := json.Unmarshal([]byte(p.Interests), &interests); err != nil {
			return match.Profile{}, fmt.Errorf("parsing interests for %s: %w", id, err)
		}
	}

	records, err := store.RecentEmotions(id, historyWindow)
	if err != nil {
		return match.Profile{}, err
	}
	history := make([]emotion.Result, len(records))
	for i, rec := range records {
		history[i] = emotion.Result{
			Emotion:    emotion.Normalize(rec.Emotion),
			Intensity:  rec.Intensity,
			Confidence: rec.Confidence,
			Provenance: rec.Provenance,
		}
	}

	count, err := store.CountEmotions(id)
	if err != nil {
		return match.Profile{}, err
	}

	return match.Profile{
		ID:         p.ID,
		City:       p.City,
		Age:        p.Age,
		Interests:  interests,
		History:    history,
		EntryCount: count,
	}, nil
}

type CreateSessionRequest struct {
	ProfileID string `json:"profile_id,omitempty"`
}

func handleCreateSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		sess := deps.Sessions.Create(req.ProfileID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(sess)
	}
}

type TurnRequest struct {
	Text string `json:"text"`
}

type TurnResponse struct {
	SessionID string         `json:"session_id"`
	TurnCount int            `json:"turn_count"`
	Result    emotion.Result `json:"result"`
}

func handleAppendTurn(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		id := chi.URLParam(r, "id")

		var req TurnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}

		result, err := deps.Pipeline.Classify(r.Context(), req.Text)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "classification failed: %v", err)
			return
		}

		turn := session.Turn{Text: req.Text, Result: result, At: time.Now().UTC()}
		sess, err := deps.Sessions.Append(id, turn)
		if errors.Is(err, session.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to append turn: %v", err)
			return
		}

		if sess.ProfileID != "" {
			rec := storage.EmotionRecord{
				ID:         uuid.New().String(),
				ProfileID:  sess.ProfileID,
				SessionID:  sess.ID,
				Emotion:    string(result.Emotion),
				Intensity:  result.Intensity,
				Confidence: result.Confidence,
				Provenance: result.Provenance,
				Reasoning:  result.Reasoning,
				CreatedAt:  turn.At,
			}
			if err := deps.Store.AppendEmotion(rec); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to record emotion: %v", err)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TurnResponse{
			SessionID: sess.ID,
			TurnCount: len(sess.Turns),
			Result:    result,
		})
	}
}

type ReportRequest struct {
	Geo *wellness.Geolocation `json:"geo,omitempty"`
}

func handleSessionReport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		id := chi.URLParam(r, "id")

		var req ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		sess, err := deps.Sessions.Get(id)
		if errors.Is(err, session.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get session: %v", err)
			return
		}

		entries := make([]emotion.Result, len(sess.Turns))
		texts := make([]string, len(sess.Turns))
		for i, t := range sess.Turns {
			entries[i] = t.Result
			texts[i] = t.Text
		}

		report, err := deps.Aggregator.Summarize(r.Context(), entries, wellness.Options{
			Geo:        req.Geo,
			Transcript: strings.Join(texts, "\n"),
		})
		if errors.Is(err, wellness.ErrEmptySession) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session has no turns")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to build report: %v", err)
			return
		}

		// The report ends the session.
		deps.Sessions.Delete(id)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

type ProfileRequest struct {
	DisplayName string   `json:"display_name"`
	City        string   `json:"city"`
	Age         *int     `json:"age,omitempty"`
	Interests   []string `json:"interests"`
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	City        string    `json:"city"`
	Age         *int      `json:"age,omitempty"`
	Interests   []string  `json:"interests"`
	EntryCount  int       `json:"entry_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		p, err := deps.Store.GetProfile(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}

		interests := []string{}
		if p.Interests != "" {
			if err := json.Unmarshal([]byte(p.Interests), &interests); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to parse interests: %v", err)
				return
			}
		}

		count, err := deps.Store.CountEmotions(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to count entries: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ProfileResponse{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			City:        p.City,
			Age:         p.Age,
			Interests:   interests,
			EntryCount:  count,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
}

func handlePutProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		id := chi.URLParam(r, "id")

		var req ProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		interestsJSON := "[]"
		if req.Interests != nil {
			b, err := json.Marshal(req.Interests)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to marshal interests: %v", err)
				return
			}
			interestsJSON = string(b)
		}

		now := time.Now().UTC()
		p := storage.Profile{
			ID:          id,
			DisplayName: req.DisplayName,
			City:        req.City,
			Age:         req.Age,
			Interests:   interestsJSON,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := deps.Store.SaveProfile(p); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save profile: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "updated", "id": id})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
