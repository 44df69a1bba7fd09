package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

/* ─── Error taxonomy ─────────────────────────────────────────────────── */

// errNoAPIKey means GEMINI_API_KEY is unset. A configuration problem, not a
// transient one — retrying the same submission cannot succeed.
var errNoAPIKey = errors.New("GEMINI_API_KEY not set")

// errMalformedResponse means the model answered but no parse fallback could
// turn the answer into entries. Retryable by resubmitting the text.
var errMalformedResponse = errors.New("could not understand the entry")

/* ─── Gemini prompt ──────────────────────────────────────────────────── */

const geminiModel = "gemini-2.5-flash"
const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// analyzeSystemPrompt is the static instruction sent with every extraction
// call; only the user's free text varies. The micronutrient schema and unit
// table are rendered from the canonical list in nutrients.go.
var analyzeSystemPrompt = `You are an expert nutritionist and fitness tracker AI.
Your goal is to analyze the user's natural language input (which could be about food or exercise) and return structured nutritional data.

1. Decide if the input is FOOD or EXERCISE.
2. If the user enters multiple items (e.g. "eggs and toast"), separate them into individual objects.
3. If FOOD: Estimate calories, macros, and a COMPREHENSIVE list of micronutrients including Vitamins A,C,D,E,K, full B-Complex, and essential minerals.
4. If EXERCISE: Estimate calories burned (return a positive number). Macros/Micros should be 0.
5. If the user mentions specific brands or foods you aren't sure about, use the Google Search tool to find accurate data.
6. Return the data strictly in the following JSON ARRAY format inside a markdown code block.

JSON Structure:
[
  {
    "type": "FOOD" or "EXERCISE",
    "item_name": "Specific item name (e.g. '1 large egg')",
    "calories": number,
    "macros": { "protein": number, "carbs": number, "fat": number },
    "micros": { ` + micronutrientKeyList() + ` },
    "confidence_score": number (0-1)
  }
]

All micronutrient units:
` + micronutrientUnitLines() + `

Important: Return valid JSON Array only inside the code block. Use 0 for any value you strictly cannot estimate, but try to estimate based on standard nutritional data.`

/* ─── Wire types ─────────────────────────────────────────────────────── */

// geminiPart, geminiContent etc. mirror the generateContent REST schema.
// Raw net/http keeps the Gemini SDK out of the dependency tree.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent    `json:"system_instruction"`
	Contents          []geminiContent  `json:"contents"`
	Tools             []map[string]any `json:"tools"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					URI string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// analyzedItem is one structured entry parsed from the model's JSON array.
// The caller assigns id, date and timestamp — the user may be back-dating,
// so those never come from the response.
type analyzedItem struct {
	Type     string  `json:"type"`
	ItemName string  `json:"item_name"`
	Calories float64 `json:"calories"`
	Macros   struct {
		Protein float64 `json:"protein"`
		Carbs   float64 `json:"carbs"`
		Fat     float64 `json:"fat"`
	} `json:"macros"`
	Micros          map[string]float64 `json:"micros"`
	ConfidenceScore float64            `json:"confidence_score"`
}

/* ─── Gemini HTTP client ─────────────────────────────────────────────── */

// callGemini sends a generateContent request with Google Search grounding
// enabled and returns the concatenated response text plus any grounding
// citation URLs. The base URL is a parameter so tests can point it at a
// mock server.
func callGemini(ctx context.Context, baseURL, text string) (string, []string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", nil, errNoAPIKey
	}

	reqBody := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: analyzeSystemPrompt}}},
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: text}}}},
		Tools:             []map[string]any{{"google_search": map[string]any{}}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, geminiModel)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	// Grounded calls do a live web search server-side, so allow more time
	// than a plain completion would need.
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return "", nil, fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	// Repeat URLs are passed through as-is; dedup is not our contract.
	var sources []string
	for _, chunk := range result.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web.URI != "" {
			sources = append(sources, chunk.Web.URI)
		}
	}

	return sb.String(), sources, nil
}

/* ─── Response parsing ───────────────────────────────────────────────── */

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// parseAnalyzedItems extracts the JSON array of entries from the raw model
// response. Fallback ladder: a ```json fenced block, then any fenced block,
// then the whole response as the payload. A single unwrapped object is
// tolerated and treated as a one-element array. When every rung fails, the
// result is errMalformedResponse and zero entries.
func parseAnalyzedItems(responseText string) ([]analyzedItem, error) {
	payload := responseText
	if m := jsonFenceRe.FindStringSubmatch(responseText); m != nil {
		payload = m[1]
	} else if m := anyFenceRe.FindStringSubmatch(responseText); m != nil {
		payload = m[1]
	}
	payload = strings.TrimSpace(payload)

	var items []analyzedItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		var single analyzedItem
		if err := json.Unmarshal([]byte(payload), &single); err != nil {
			return nil, errMalformedResponse
		}
		items = []analyzedItem{single}
	}
	return items, nil
}

// analyzeTextEntry runs the full extraction pipeline: one grounded Gemini
// call, then the parse ladder. The items are schema candidates only — no
// id, date or timestamp is assigned here.
func analyzeTextEntry(ctx context.Context, baseURL, text string) ([]analyzedItem, []string, error) {
	responseText, sources, err := callGemini(ctx, baseURL, text)
	if err != nil {
		return nil, nil, err
	}
	items, err := parseAnalyzedItems(responseText)
	if err != nil {
		return nil, nil, err
	}
	return items, sources, nil
}
