// Package genai implements meeting extraction on the Gemini API.
package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	gl "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/domain"
)

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-2.5-flash"

	meterName = "github.com/rezkam/taskflow/internal/infrastructure/genai"
)

var errEmptyResponse = errors.New("model returned no content")

// Config configures a Gemini extractor.
type Config struct {
	APIKey   string
	Model    string        // empty = DefaultModel
	Endpoint string        // empty = the public endpoint
	Timeout  time.Duration // zero = no timeout beyond the caller's context

	// HTTPClient replaces the authenticated transport. Tests point it
	// at a local server.
	HTTPClient *http.Client
}

// Gemini extracts meeting minutes and task drafts with a Gemini model.
type Gemini struct {
	models   *gl.ModelsService
	model    string
	timeout  time.Duration
	requests metric.Int64Counter
}

var _ meeting.Extractor = (*Gemini)(nil)

// New creates a Gemini extractor.
func New(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" && cfg.HTTPClient == nil {
		return nil, fmt.Errorf("%w: gemini api key is required", domain.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := gl.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	requests, err := otel.Meter(meterName).Int64Counter(
		"taskflow.genai.requests",
		metric.WithDescription("Meeting extraction requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	return &Gemini{
		models:   svc.Models,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		requests: requests,
	}, nil
}

// Extract sends the transcript or recording to the model and parses its JSON answer.
func (g *Gemini) Extract(ctx context.Context, req meeting.ExtractRequest) (*domain.Extraction, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	call := g.models.GenerateContent("models/"+g.model, buildRequest(req)).Context(ctx)
	resp, err := call.Do()
	if err != nil {
		g.record(ctx, "error")
		return nil, fmt.Errorf("generate content: %w", err)
	}

	extraction, err := parseResponse(resp)
	if err != nil {
		g.record(ctx, "invalid")
		return nil, err
	}

	g.record(ctx, "ok")
	return extraction, nil
}

func (g *Gemini) record(ctx context.Context, outcome string) {
	g.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", g.model),
		attribute.String("outcome", outcome),
	))
}

func systemInstruction(team []string) string {
	var b strings.Builder
	b.WriteString("You are an administrative assistant. Summarize the meeting into concise minutes ")
	b.WriteString("and extract every actionable task.\n")
	b.WriteString("For each task give a short title, a description, the assignee and a due date.\n")
	b.WriteString("The assignee must be copied exactly from this team list, or left empty when nobody on it was named:\n")
	for _, name := range team {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("Due dates use the YYYY-MM-DD format, or are left empty when none was mentioned.\n")
	b.WriteString("Answer in JSON only.")
	return b.String()
}

func buildRequest(req meeting.ExtractRequest) *gl.GenerateContentRequest {
	var parts []*gl.Part
	if len(req.Audio) > 0 {
		mime := req.AudioMIMEType
		if mime == "" {
			mime = "audio/webm"
		}
		parts = append(parts,
			&gl.Part{InlineData: &gl.Blob{MimeType: mime, Data: base64.StdEncoding.EncodeToString(req.Audio)}},
			&gl.Part{Text: "Listen to this meeting recording, summarize it and extract the tasks."},
		)
	} else {
		parts = append(parts, &gl.Part{Text: "Analyze this meeting transcript:\n\n" + req.Transcript})
	}

	return &gl.GenerateContentRequest{
		SystemInstruction: &gl.Content{Parts: []*gl.Part{{Text: systemInstruction(req.TeamMembers)}}},
		Contents:          []*gl.Content{{Role: "user", Parts: parts}},
		GenerationConfig: &gl.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}
}

func responseSchema() *gl.Schema {
	str := func(desc string) gl.Schema { return gl.Schema{Type: "STRING", Description: desc} }
	return &gl.Schema{
		Type: "OBJECT",
		Properties: map[string]gl.Schema{
			"summary": str("Meeting minutes"),
			"tasks": {
				Type: "ARRAY",
				Items: &gl.Schema{
					Type: "OBJECT",
					Properties: map[string]gl.Schema{
						"title":        str("Short task title"),
						"content":      str("Task description"),
						"assigneeName": str("Exact team member name or empty"),
						"dueDate":      str("YYYY-MM-DD or empty"),
					},
					Required: []string{"title", "content"},
				},
			},
		},
		Required: []string{"summary", "tasks"},
	}
}

type extractionPayload struct {
	Summary string `json:"summary"`
	Tasks   []struct {
		Title        string `json:"title"`
		Content      string `json:"content"`
		AssigneeName string `json:"assigneeName"`
		DueDate      string `json:"dueDate"`
	} `json:"tasks"`
}

func parseResponse(resp *gl.GenerateContentResponse) (*domain.Extraction, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errEmptyResponse
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			text.WriteString(p.Text)
		}
	}
	raw := stripCodeFence(text.String())
	if raw == "" {
		return nil, errEmptyResponse
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode model answer: %w", err)
	}

	extraction := &domain.Extraction{
		Summary:     payload.Summary,
		Suggestions: make([]domain.SuggestedTask, 0, len(payload.Tasks)),
	}
	for _, t := range payload.Tasks {
		extraction.Suggestions = append(extraction.Suggestions, domain.SuggestedTask{
			Title:        strings.TrimSpace(t.Title),
			Content:      strings.TrimSpace(t.Content),
			AssigneeName: strings.TrimSpace(t.AssigneeName),
			DueDate:      strings.TrimSpace(t.DueDate),
		})
	}
	return extraction, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON answers.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
