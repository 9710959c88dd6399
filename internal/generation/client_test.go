package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dramagen/internal/heuristics"
	"dramagen/internal/schema"
	"dramagen/internal/services"
	"dramagen/internal/services/llm"
)

type scriptedBackend struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []llm.Request
}

func (b *scriptedBackend) Complete(_ context.Context, req llm.Request) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.err != nil {
		return "", b.err
	}
	if len(b.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	next := b.responses[0]
	b.responses = b.responses[1:]
	return next, nil
}

func blueprintJSON(t *testing.T, mutate func(*schema.SeasonBlueprint)) string {
	t.Helper()
	bp := schema.SeasonBlueprint{
		Theme:                  "Courier turned CEO",
		Premise:                "A mocked courier becomes the boss in three days.",
		Genre:                  "urban",
		Audience:               "general",
		EpisodeCount:           2,
		EpisodeDurationMinutes: 5,
		CoreConflicts:          []string{"pride vs. poverty", "old classmates vs. new power"},
		Arcs:                   []string{"rise to the top"},
		MainCharacters:         []string{"Zhou Ping"},
		EpisodeTitles:          []string{"Delivery", "Takeover"},
	}
	if mutate != nil {
		mutate(&bp)
	}
	data, err := json.Marshal(bp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestGenerateBlueprintValid(t *testing.T) {
	backend := &scriptedBackend{responses: []string{"```json\n" + blueprintJSON(t, nil) + "\n```"}}
	client := New(backend)

	bp, err := client.GenerateBlueprint(context.Background(), "Theme: courier", heuristics.DefaultCapabilities())
	if err != nil {
		t.Fatalf("GenerateBlueprint: %v", err)
	}
	if bp.EpisodeCount != 2 || bp.TitleFor(2) != "Takeover" {
		t.Fatalf("unexpected blueprint %+v", bp)
	}

	req := backend.requests[0]
	if req.SystemPrompt != SystemPrompt {
		t.Fatal("expected default system prompt")
	}
	if !strings.HasPrefix(req.UserPrompt, "Theme: courier") || !strings.Contains(req.UserPrompt, "episode_titles (array of strings, required)") {
		t.Fatalf("user prompt missing prompt or contract:\n%s", req.UserPrompt)
	}
	names := make([]string, 0, len(req.Tools))
	for _, tool := range req.Tools {
		names = append(names, tool.Name)
	}
	if diff := cmp.Diff([]string{"get_tropes", "rhythm_template", "catchy_titles"}, names); diff != "" {
		t.Fatalf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateBackendFailure(t *testing.T) {
	cause := errors.New("http 503")
	client := New(&scriptedBackend{err: cause})

	_, err := client.GenerateEpisode(context.Background(), "Episode 1", heuristics.Capabilities{})
	if !errors.Is(err, services.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain, got %v", err)
	}
	if errors.Is(err, services.ErrValidation) {
		t.Fatal("backend failure must not be classified as validation")
	}
}

func TestGenerateCorrectiveRepromptRecovers(t *testing.T) {
	bad := blueprintJSON(t, func(bp *schema.SeasonBlueprint) { bp.EpisodeTitles = bp.EpisodeTitles[:1] })
	backend := &scriptedBackend{responses: []string{bad, blueprintJSON(t, nil)}}
	client := New(backend)

	if _, err := client.GenerateBlueprint(context.Background(), "Theme: courier", heuristics.Capabilities{}); err != nil {
		t.Fatalf("GenerateBlueprint: %v", err)
	}
	if len(backend.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(backend.requests))
	}
	second := backend.requests[1].UserPrompt
	for _, want := range []string{"previous response was rejected", "episode_titles", "expected 2, got 1"} {
		if !strings.Contains(second, want) {
			t.Fatalf("corrective prompt missing %q:\n%s", want, second)
		}
	}
}

func TestGenerateValidationFailure(t *testing.T) {
	bad := blueprintJSON(t, func(bp *schema.SeasonBlueprint) { bp.EpisodeDurationMinutes = 90 })
	backend := &scriptedBackend{responses: []string{bad, bad}}
	client := New(backend)

	_, err := client.GenerateBlueprint(context.Background(), "Theme", heuristics.Capabilities{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *schema.ValidationError in chain, got %v", err)
	}
	if diff := cmp.Diff([]string{"episode_duration_minutes"}, verr.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if services.Kind(err) != "validation" {
		t.Fatalf("unexpected kind %q", services.Kind(err))
	}
}

func TestGenerateWithoutRepromptMakesOneCall(t *testing.T) {
	backend := &scriptedBackend{responses: []string{"not json at all", blueprintJSON(t, nil)}}
	client := New(backend, WithCorrectiveReprompt(false))

	_, err := client.Generate(context.Background(), schema.KindSeasonBlueprint, "Theme", heuristics.Capabilities{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(backend.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(backend.requests))
	}
}

func TestGenerateUnknownKind(t *testing.T) {
	client := New(&scriptedBackend{})
	if _, err := client.Generate(context.Background(), schema.Kind("poem"), "x", heuristics.Capabilities{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	var nilClient *Client
	if _, err := nilClient.Generate(context.Background(), schema.KindEpisodeOutline, "x", heuristics.Capabilities{}); err == nil {
		t.Fatal("expected error from nil client")
	}
}

func TestToolsFromCapabilitiesEncodeResults(t *testing.T) {
	tools := ToolsFromCapabilities(heuristics.DefaultCapabilities())
	var titles llm.Tool
	for _, tool := range tools {
		if tool.Name == heuristics.CapabilityTitles {
			titles = tool
		}
	}
	out, err := titles.Call(json.RawMessage(`{"seed":"Heiress","count":2}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var decoded []string
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode tool result %q: %v", out, err)
	}
	if diff := cmp.Diff(heuristics.TitleVariants("Heiress", 2), decoded); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if _, err := titles.Call(json.RawMessage(`{"count":"x"}`)); err == nil {
		t.Fatal("expected argument error")
	}
	if params := titles.ParameterSchema(); params["required"] == nil {
		t.Fatalf("expected required params in schema %v", params)
	}
	if ToolsFromCapabilities(heuristics.Capabilities{}) != nil {
		t.Fatal("expected nil tools for empty capabilities")
	}
}

func TestBackendFunc(t *testing.T) {
	called := false
	backend := BackendFunc(func(_ context.Context, req llm.Request) (string, error) {
		called = true
		return blueprintJSON(t, nil), nil
	})
	if _, err := New(backend, WithSystemPrompt("custom")).GenerateBlueprint(context.Background(), "x", heuristics.Capabilities{}); err != nil || !called {
		t.Fatalf("BackendFunc not used: called=%v err=%v", called, err)
	}
}
