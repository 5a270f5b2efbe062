package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/application/meeting"
)

type capturedRequest struct {
	path string
	body map[string]any
}

func newTestServer(t *testing.T, answer string, status int) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom"}}`))
			return
		}
		resp := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": answer}},
					},
				},
			},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestExtractor(t *testing.T, srv *httptest.Server) *Gemini {
	t.Helper()
	g, err := New(context.Background(), Config{
		Endpoint:   srv.URL + "/",
		HTTPClient: srv.Client(),
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	return g
}

func TestExtract_Transcript(t *testing.T) {
	answer := `{"summary":"Release on Friday.","tasks":[{"title":" Write notes ","content":"Draft release notes","assigneeName":"Bob","dueDate":"2024-01-12"}]}`
	srv, captured := newTestServer(t, answer, http.StatusOK)

	extraction, err := newTestExtractor(t, srv).Extract(context.Background(), meeting.ExtractRequest{
		Transcript:  "Bob drafts the notes by Friday.",
		TeamMembers: []string{"Alice", "Bob"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Release on Friday.", extraction.Summary)
	require.Len(t, extraction.Suggestions, 1)
	assert.Equal(t, "Write notes", extraction.Suggestions[0].Title)
	assert.Equal(t, "Bob", extraction.Suggestions[0].AssigneeName)
	assert.Equal(t, "2024-01-12", extraction.Suggestions[0].DueDate)

	assert.True(t, strings.HasSuffix(captured.path, "models/gemini-2.5-flash:generateContent"), captured.path)

	body, err := json.Marshal(captured.body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Bob drafts the notes by Friday.")
	assert.Contains(t, string(body), "- Alice")
	assert.Contains(t, string(body), "application/json")
}

func TestExtract_AudioIsSentInline(t *testing.T) {
	srv, captured := newTestServer(t, `{"summary":"ok","tasks":[]}`, http.StatusOK)
	audio := []byte("webm-bytes")

	extraction, err := newTestExtractor(t, srv).Extract(context.Background(), meeting.ExtractRequest{
		Audio:         audio,
		AudioMIMEType: "audio/webm",
	})

	require.NoError(t, err)
	assert.Empty(t, extraction.Suggestions)

	body, err := json.Marshal(captured.body)
	require.NoError(t, err)
	assert.Contains(t, string(body), base64.StdEncoding.EncodeToString(audio))
	assert.Contains(t, string(body), "audio/webm")
}

func TestExtract_CodeFencedAnswer(t *testing.T) {
	srv, _ := newTestServer(t, "```json\n{\"summary\":\"fenced\",\"tasks\":[]}\n```", http.StatusOK)

	extraction, err := newTestExtractor(t, srv).Extract(context.Background(), meeting.ExtractRequest{Transcript: "x"})

	require.NoError(t, err)
	assert.Equal(t, "fenced", extraction.Summary)
}

func TestExtract_Failures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv, _ := newTestServer(t, "", http.StatusInternalServerError)
		_, err := newTestExtractor(t, srv).Extract(context.Background(), meeting.ExtractRequest{Transcript: "x"})
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		srv, _ := newTestServer(t, "Sorry, I cannot help.", http.StatusOK)
		_, err := newTestExtractor(t, srv).Extract(context.Background(), meeting.ExtractRequest{Transcript: "x"})
		assert.Error(t, err)
	})

	t.Run("empty answer", func(t *testing.T) {
		srv, _ := newTestServer(t, "  ", http.StatusOK)
		_, err := newTestExtractor(t, srv).Extract(context.Background(), meeting.ExtractRequest{Transcript: "x"})
		assert.ErrorIs(t, err, errEmptyResponse)
	})
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}
