package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const sampleEntryJSON = `{"type":"FOOD","item_name":"1 large egg","calories":78,"macros":{"protein":6,"carbs":0.6,"fat":5},"micros":{"sodium":62,"vitaminD":1.1},"confidence_score":0.9}`

/* ─── Response parsing ───────────────────────────────────────────────── */

func TestParseAnalyzedItems_JSONFencedArray(t *testing.T) {
	raw := "Here is the analysis:\n```json\n[" + sampleEntryJSON + "]\n```\nEnjoy!"

	items, err := parseAnalyzedItems(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].ItemName != "1 large egg" {
		t.Errorf("item_name = %q, want '1 large egg'", items[0].ItemName)
	}
	if items[0].Calories != 78 {
		t.Errorf("calories = %v, want 78", items[0].Calories)
	}
	if items[0].Macros.Protein != 6 {
		t.Errorf("protein = %v, want 6", items[0].Macros.Protein)
	}
}

// A single object in a fenced block (not wrapped in an array) still yields
// exactly one entry.
func TestParseAnalyzedItems_SingleObjectWrapped(t *testing.T) {
	raw := "```json\n" + sampleEntryJSON + "\n```"

	items, err := parseAnalyzedItems(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

// A fenced block without a language tag is the second rung of the ladder.
func TestParseAnalyzedItems_UntaggedFence(t *testing.T) {
	raw := "```\n[" + sampleEntryJSON + "]\n```"

	items, err := parseAnalyzedItems(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

// With no fence at all, the whole response is treated as the payload.
func TestParseAnalyzedItems_BareArray(t *testing.T) {
	raw := "[" + sampleEntryJSON + "," + sampleEntryJSON + "]"

	items, err := parseAnalyzedItems(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}

func TestParseAnalyzedItems_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"prose only", "I could not analyze that, sorry."},
		{"broken json in fence", "```json\n[{\"type\": \n```"},
		{"empty response", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := parseAnalyzedItems(tc.raw)
			if !errors.Is(err, errMalformedResponse) {
				t.Errorf("err = %v, want errMalformedResponse", err)
			}
			if len(items) != 0 {
				t.Errorf("got %d items, want 0 on parse failure", len(items))
			}
		})
	}
}

/* ─── Pipeline against a mock Gemini server ──────────────────────────── */

// geminiCannedResponse wraps text and citation URLs in the generateContent
// response shape the pipeline reads.
func geminiCannedResponse(text string, uris ...string) map[string]any {
	chunks := make([]map[string]any, len(uris))
	for i, u := range uris {
		chunks[i] = map[string]any{"web": map[string]any{"uri": u}}
	}
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content":           map[string]any{"parts": []map[string]any{{"text": text}}},
				"groundingMetadata": map[string]any{"groundingChunks": chunks},
			},
		},
	}
}

// newMockGemini starts a mock Gemini server and returns it plus a setter for
// the canned status/body (teacher pattern for AI-backend tests).
func newMockGemini() (*httptest.Server, func(int, any)) {
	var status int
	var body any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	return srv, func(s int, b any) { status = s; body = b }
}

func TestAnalyzeTextEntry_Success(t *testing.T) {
	srv, setMock := newMockGemini()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")

	text := "```json\n[" + sampleEntryJSON + "]\n```"
	setMock(http.StatusOK, geminiCannedResponse(text, "https://example.com/nutrition"))

	items, sources, err := analyzeTextEntry(context.Background(), srv.URL, "one egg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if len(sources) != 1 || sources[0] != "https://example.com/nutrition" {
		t.Errorf("sources = %v, want the grounding URL", sources)
	}
}

// Repeat grounding URLs are passed through as-is; the pipeline does not dedup.
func TestAnalyzeTextEntry_DuplicateSourcesKept(t *testing.T) {
	srv, setMock := newMockGemini()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")

	text := "```json\n[" + sampleEntryJSON + "]\n```"
	setMock(http.StatusOK, geminiCannedResponse(text, "https://example.com/a", "https://example.com/a"))

	_, sources, err := analyzeTextEntry(context.Background(), srv.URL, "one egg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Errorf("got %d sources, want 2 (duplicates preserved)", len(sources))
	}
}

func TestAnalyzeTextEntry_MissingAPIKey(t *testing.T) {
	srv, _ := newMockGemini()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "")

	_, _, err := analyzeTextEntry(context.Background(), srv.URL, "one egg")
	if !errors.Is(err, errNoAPIKey) {
		t.Errorf("err = %v, want errNoAPIKey", err)
	}
}

func TestAnalyzeTextEntry_ServiceError(t *testing.T) {
	srv, setMock := newMockGemini()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")

	setMock(http.StatusInternalServerError, map[string]string{"error": "overloaded"})

	_, _, err := analyzeTextEntry(context.Background(), srv.URL, "one egg")
	if err == nil {
		t.Fatal("expected an error for a 500 from the service")
	}
	if errors.Is(err, errMalformedResponse) || errors.Is(err, errNoAPIKey) {
		t.Errorf("service failure misclassified: %v", err)
	}
}

func TestAnalyzeTextEntry_MalformedBody(t *testing.T) {
	srv, setMock := newMockGemini()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")

	setMock(http.StatusOK, geminiCannedResponse("sorry, I can only answer in prose today"))

	_, _, err := analyzeTextEntry(context.Background(), srv.URL, "one egg")
	if !errors.Is(err, errMalformedResponse) {
		t.Errorf("err = %v, want errMalformedResponse", err)
	}
}

/* ─── Handler paths that fail before touching the DB ─────────────────── */

// setupAnalyzeTest creates a Gin engine wired to a mock Gemini server with a
// stub auth middleware. No DB: only request paths that fail before the first
// insert are exercised here.
func setupAnalyzeTest() (*gin.Engine, *httptest.Server, func(int, any)) {
	srv, setMock := newMockGemini()

	gin.SetMode(gin.TestMode)
	h := Handler{geminiBaseURL: srv.URL}
	router := gin.New()
	router.POST("/api/logs/analyze", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.analyzeAndLog)

	return router, srv, setMock
}

func doAnalyzeRequest(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/logs/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeAndLog_EmptyText(t *testing.T) {
	router, srv, _ := setupAnalyzeTest()
	defer srv.Close()

	w := doAnalyzeRequest(router, `{"text":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeAndLog_BadDate(t *testing.T) {
	router, srv, _ := setupAnalyzeTest()
	defer srv.Close()

	w := doAnalyzeRequest(router, `{"text":"one egg","date":"15-03-2026"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeAndLog_MissingAPIKey(t *testing.T) {
	router, srv, _ := setupAnalyzeTest()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "")

	w := doAnalyzeRequest(router, `{"text":"one egg"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

// A response that defeats every parse fallback is a retryable user error, not
// a server crash: 422 with a friendly message and zero rows written.
func TestAnalyzeAndLog_MalformedResponse(t *testing.T) {
	router, srv, setMock := setupAnalyzeTest()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")

	setMock(http.StatusOK, geminiCannedResponse("no json here"))

	w := doAnalyzeRequest(router, `{"text":"one egg"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp["error"], "could not understand") {
		t.Errorf("error = %q, want the generic retry message", resp["error"])
	}
}

func TestAnalyzeAndLog_ServiceFailure(t *testing.T) {
	router, srv, setMock := setupAnalyzeTest()
	defer srv.Close()
	t.Setenv("GEMINI_API_KEY", "test-key")

	setMock(http.StatusServiceUnavailable, map[string]string{"error": "try later"})

	w := doAnalyzeRequest(router, `{"text":"one egg"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}
