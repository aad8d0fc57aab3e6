package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/murmur/internal/emotion"
	"github.com/kalambet/murmur/internal/match"
	"github.com/kalambet/murmur/internal/session"
	"github.com/kalambet/murmur/internal/storage"
	"github.com/kalambet/murmur/internal/wellness"
)

const testToken = "test-token-12345"

func setupAppHandler(t *testing.T, token string) (http.Handler, *storage.Store, session.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	scorer, err := match.NewScorer(match.DefaultWeights())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	sessions := session.NewMemoryStore(0, nil)

	handler := NewAppHandler(AppDeps{
		Pipeline:   emotion.NewPipeline(emotion.NewLexiconClassifier(emotion.DefaultLexicon())),
		Scorer:     scorer,
		Aggregator: wellness.NewAggregator(nil),
		Store:      store,
		Sessions:   sessions,
		Token:      token,
	})
	return handler, store, sessions
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestHealth_NoAuth(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify", `{"text":"hello"}`, "")
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuth_WrongToken(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify", `{"text":"hello"}`, "wrong-token")
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestClassify_Basic(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	body := `{"text":"I am so happy and grateful today"}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var result emotion.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Emotion != emotion.Happy {
		t.Errorf("emotion = %q, want %q", result.Emotion, emotion.Happy)
	}
	if result.Provenance != emotion.ProvenanceLexicon {
		t.Errorf("provenance = %q, want %q", result.Provenance, emotion.ProvenanceLexicon)
	}
}

func TestClassify_EmptyText(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify", `{"text":"   "}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestClassify_RecordsToProfile(t *testing.T) {
	h, store, _ := setupAppHandler(t, testToken)

	body := `{"text":"I am so happy today","profile_id":"u1"}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	count, err := store.CountEmotions("u1")
	if err != nil {
		t.Fatalf("CountEmotions failed: %v", err)
	}
	if count != 1 {
		t.Errorf("recorded entries = %d, want 1", count)
	}
}

func TestClassify_UnknownSession(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	body := `{"text":"hello there","session_id":"nope"}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestClassifyBatch_Order(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	body := `{"texts":["I am so happy today","I feel worried and anxious"]}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify/batch", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var results []emotion.Result
	if err := json.NewDecoder(rr.Body).Decode(&results); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Emotion != emotion.Happy {
		t.Errorf("results[0] = %q, want %q", results[0].Emotion, emotion.Happy)
	}
	if results[1].Emotion != emotion.Anxious {
		t.Errorf("results[1] = %q, want %q", results[1].Emotion, emotion.Anxious)
	}
}

func TestClassifyBatch_Empty(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/classify/batch", `{"texts":[]}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestFuse_Agreement(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	body := `{
		"text":  {"emotion":"happy","intensity":0.6,"confidence":0.7,"provenance":"lexicon"},
		"audio": {"emotion":"happy","intensity":0.8,"confidence":0.9,"provenance":"audio-mock"}
	}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/fuse", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var fused emotion.Result
	if err := json.NewDecoder(rr.Body).Decode(&fused); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if fused.Emotion != emotion.Happy {
		t.Errorf("emotion = %q, want %q", fused.Emotion, emotion.Happy)
	}
	if fused.Provenance != emotion.ProvenanceFused {
		t.Errorf("provenance = %q, want %q", fused.Provenance, emotion.ProvenanceFused)
	}
}

func TestFuse_UnknownEmotion(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	body := `{
		"text":  {"emotion":"elated","intensity":0.6,"confidence":0.7},
		"audio": {"emotion":"happy","intensity":0.8,"confidence":0.9}
	}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/fuse", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func saveTestProfile(t *testing.T, store *storage.Store, id, city, interests string, age int) {
	t.Helper()
	a := age
	p := storage.Profile{
		ID:        id,
		City:      city,
		Age:       &a,
		Interests: interests,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveProfile(p); err != nil {
		t.Fatalf("SaveProfile(%s) failed: %v", id, err)
	}
}

func TestMatch_Basic(t *testing.T) {
	h, store, _ := setupAppHandler(t, testToken)

	saveTestProfile(t, store, "a", "Lisbon", `["hiking","music"]`, 30)
	saveTestProfile(t, store, "b", "Lisbon", `["hiking","music"]`, 31)

	body := `{"profile_a":"a","profile_b":"b"}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/match", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var score match.Score
	if err := json.NewDecoder(rr.Body).Decode(&score); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if score.Total <= 0 || score.Total > 1 {
		t.Errorf("total = %v, want in (0, 1]", score.Total)
	}
	if score.Tier == "" {
		t.Error("response missing compatibility tier")
	}
}

func TestMatch_ProfileNotFound(t *testing.T) {
	h, store, _ := setupAppHandler(t, testToken)

	saveTestProfile(t, store, "a", "Lisbon", `["hiking"]`, 30)

	body := `{"profile_a":"a","profile_b":"missing"}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/match", body, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSessionFlow_TurnsAndReport(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	// Create a session.
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/sessions", `{"profile_id":""}`, testToken)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d; body = %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var sess session.Session
	if err := json.NewDecoder(rr.Body).Decode(&sess); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session missing id")
	}

	// Append two turns.
	for i, text := range []string{
		"I am so happy and excited about the trip",
		"Feeling calm and peaceful tonight",
	} {
		rr := httptest.NewRecorder()
		req := authReq(http.MethodPost, "/sessions/"+sess.ID+"/turns", `{"text":"`+text+`"}`, testToken)
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("turn status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
		}
		var turn TurnResponse
		if err := json.NewDecoder(rr.Body).Decode(&turn); err != nil {
			t.Fatalf("decoding turn: %v", err)
		}
		if turn.TurnCount != i+1 {
			t.Errorf("turn_count = %d, want %d", turn.TurnCount, i+1)
		}
	}

	// Report closes the session.
	rr = httptest.NewRecorder()
	req = authReq(http.MethodPost, "/sessions/"+sess.ID+"/report", "", testToken)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var report wellness.Report
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.WellnessScore < 0 || report.WellnessScore > 100 {
		t.Errorf("wellness_score = %d, want in [0, 100]", report.WellnessScore)
	}
	if len(report.Places) != 3 {
		t.Errorf("places = %d, want 3", len(report.Places))
	}

	// The session is gone afterwards.
	rr = httptest.NewRecorder()
	req = authReq(http.MethodPost, "/sessions/"+sess.ID+"/report", "", testToken)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second report status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSessionReport_EmptySession(t *testing.T) {
	h, _, sessions := setupAppHandler(t, testToken)

	sess := sessions.Create("")

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/sessions/"+sess.ID+"/report", "", testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestProfile_PutAndGet(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	body := `{"display_name":"Ana","city":"Porto","age":28,"interests":["surf","books"]}`
	rr := httptest.NewRecorder()
	req := authReq(http.MethodPut, "/profiles/u1", body, testToken)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = authReq(http.MethodGet, "/profiles/u1", "", testToken)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var p ProfileResponse
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if p.DisplayName != "Ana" {
		t.Errorf("display_name = %q, want %q", p.DisplayName, "Ana")
	}
	if p.City != "Porto" {
		t.Errorf("city = %q, want %q", p.City, "Porto")
	}
	if p.Age == nil || *p.Age != 28 {
		t.Errorf("age = %v, want 28", p.Age)
	}
	if len(p.Interests) != 2 {
		t.Errorf("interests = %v, want 2 entries", p.Interests)
	}
}

func TestProfile_NotFound(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodGet, "/profiles/missing", "", testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
