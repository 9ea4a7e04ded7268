package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloudlead/internal/config"
)

func TestPrompt(t *testing.T) {
	got := Prompt("TechFlow Inc", "techflow.com")
	want := "Provide business intelligence analysis for TechFlow Inc (techflow.com). Focus on their market position, technology stack, and potential pain points. Keep it under 100 words."
	if got != want {
		t.Fatalf("unexpected prompt:\n%s", got)
	}
	if strings.Contains(Prompt("Acme", ""), "(") {
		t.Fatalf("prompt without website must not include parentheses")
	}
}

func TestAnalyze(t *testing.T) {
	var gotReq struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Strong cloud player.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := New(config.Config{OpenAIAPIKey: "sk-test", OpenAIAPIURL: srv.URL + "/v1", OpenAIModel: "gpt-3.5-turbo", OpenAIMaxTokens: 150})
	text, err := c.Analyze(context.Background(), "CloudCraft", "cloudcraft.com")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if text != "Strong cloud player." {
		t.Fatalf("unexpected text %q", text)
	}
	if gotReq.Model != "gpt-3.5-turbo" || gotReq.MaxTokens != 150 {
		t.Fatalf("unexpected request %+v", gotReq)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Fatalf("expected one user message, got %+v", gotReq.Messages)
	}
}

func TestAnalyzeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	c := New(config.Config{OpenAIAPIKey: "sk-test", OpenAIAPIURL: srv.URL + "/v1"})
	if _, err := c.Analyze(context.Background(), "CloudCraft", ""); err == nil {
		t.Fatalf("expected error")
	}
}
