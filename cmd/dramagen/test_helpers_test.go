package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	server     *stubBackend
}

// setupCLITestEnv isolates HOME, the working directory, and provider
// credentials, then points the openai provider at a stub server.
func setupCLITestEnv(t *testing.T, extraConfig string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Chdir(base)
	for _, key := range []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "DRAMAGEN_PROVIDER", "DRAMAGEN_MODEL", "DRAMAGEN_BASE_URL", "DRAMAGEN_LOG_LEVEL", "NO_COLOR"} {
		t.Setenv(key, "")
	}

	stub := newStubBackend(t)
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[llm]
provider = "openai"
api_key = "test-key"
base_url = %q
model = "stub-model"
retry_attempts = 1

[logging]
level = "error"
%s
`, stub.url, extraConfig)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath, server: stub}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n---\n%s", needle, haystack)
	}
}

var episodeNumberPattern = regexp.MustCompile(`episode_number: (\d+)`)

// stubBackend answers chat completion requests with canned blueprint and
// episode JSON.
type stubBackend struct {
	url string

	mu          sync.Mutex
	requests    int
	failEpisode int
}

func newStubBackend(t *testing.T) *stubBackend {
	t.Helper()
	stub := &stubBackend{}
	server := httptest.NewServer(http.HandlerFunc(stub.serve))
	t.Cleanup(server.Close)
	stub.url = server.URL
	return stub
}

func (s *stubBackend) setFailEpisode(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEpisode = n
}

func (s *stubBackend) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *stubBackend) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user := ""
	for _, msg := range req.Messages {
		if msg.Role == "user" {
			user = msg.Content
		}
	}

	s.mu.Lock()
	s.requests++
	failEpisode := s.failEpisode
	s.mu.Unlock()

	var content string
	switch {
	case strings.Contains(user, "(SeasonBlueprint)"):
		content = stubBlueprintJSON
	case strings.Contains(user, "(EpisodeOutline)"):
		number := 1
		if match := episodeNumberPattern.FindStringSubmatch(user); match != nil {
			number, _ = strconv.Atoi(match[1])
		}
		if number == failEpisode {
			http.Error(w, "upstream exploded", http.StatusBadRequest)
			return
		}
		content = stubEpisodeJSON(number)
	default:
		http.Error(w, "unexpected prompt", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{map[string]any{
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

const stubBlueprintJSON = `{
  "theme": "Courier turned CEO",
  "premise": "A mocked courier takes over the company in three days.",
  "genre": "urban",
  "audience": "general",
  "episode_count": 3,
  "episode_duration_minutes": 5,
  "core_conflicts": ["pride vs. poverty", "old friends vs. new power"],
  "arcs": ["rise to the top"],
  "main_characters": ["Zhou Ping"],
  "episode_titles": ["Delivery", "Takeover", "Payback"]
}`

func stubEpisodeJSON(number int) string {
	return fmt.Sprintf(`{
  "episode_number": %d,
  "title": "Episode %d",
  "target_duration_minutes": 5,
  "opening_hook": "A spilled order.",
  "beats": [
    {"index": 1, "title": "Mockery", "duration_seconds": 120, "setting": "restaurant", "characters": ["Zhou Ping"], "synopsis": "Classmates laugh.", "hook": "A phone rings."},
    {"index": 2, "title": "Reveal", "duration_seconds": 180, "setting": "lobby", "characters": ["Zhou Ping"], "synopsis": "The board bows.", "hook": "Who is he?", "twist": "He owns it."}
  ],
  "cliffhanger": "The chairman calls."
}`, number, number)
}
