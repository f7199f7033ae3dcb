package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeModels struct {
	mu        sync.Mutex
	generated []fakeResponse
	prompts   []string

	embedCalls [][]*genai.Content
	embedCount func(n int) int
	embedErr   error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range contents {
		for _, p := range c.Parts {
			f.prompts = append(f.prompts, p.Text)
		}
	}
	if len(f.generated) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.generated[0]
	f.generated = f.generated[1:]
	return next.resp, next.err
}

func (f *fakeModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls = append(f.embedCalls, contents)
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	n := len(contents)
	if f.embedCount != nil {
		n = f.embedCount(n)
	}
	resp := &genai.EmbedContentResponse{}
	for i := 0; i < n; i++ {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: []float32{float32(len(contents[0].Parts[0].Text)), float32(i)}})
	}
	return resp, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func testGenerator(m models, retries int) *Generator {
	g := newGenerator(m, Config{MaxRetries: retries, Logger: zap.NewNop()})
	g.baseDelay = 0
	return g
}

func TestGenerateContentRetriesServerErrors(t *testing.T) {
	fake := &fakeModels{generated: []fakeResponse{
		{err: genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}},
		{resp: textResponse("  hello  ")},
	}}
	g := testGenerator(fake, 3)

	out, err := g.GenerateContent(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}
	if out != "hello" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(fake.prompts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(fake.prompts))
	}
}

func TestGenerateContentGivesUpAfterMaxRetries(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusInternalServerError, Message: "boom"}
	fake := &fakeModels{generated: []fakeResponse{{err: apiErr}, {err: apiErr}, {err: apiErr}}}
	g := testGenerator(fake, 2)

	_, err := g.GenerateContent(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if len(fake.prompts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(fake.prompts))
	}
	var got genai.APIError
	if !errors.As(err, &got) || got.Code != http.StatusInternalServerError {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
}

func TestGenerateContentDoesNotRetryLongQuotaDelay(t *testing.T) {
	fake := &fakeModels{generated: []fakeResponse{
		{err: genai.APIError{Code: http.StatusTooManyRequests, Message: "quota exceeded, retry in 55s"}},
		{resp: textResponse("late")},
	}}
	g := testGenerator(fake, 3)

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected quota error")
	}
	if len(fake.prompts) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(fake.prompts))
	}
}

func TestGenerateContentRejectsEmptyPrompt(t *testing.T) {
	g := testGenerator(&fakeModels{}, 1)
	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestGenerateContentEmptyResponse(t *testing.T) {
	fake := &fakeModels{generated: []fakeResponse{{resp: &genai.GenerateContentResponse{}}}}
	g := testGenerator(fake, 1)
	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{genai.APIError{Code: http.StatusTooManyRequests, Message: "slow down"}, true},
		{genai.APIError{Code: http.StatusTooManyRequests, Message: "Please retry after 5s"}, true},
		{genai.APIError{Code: http.StatusTooManyRequests, Message: "Please retry in 45.5s"}, false},
		{genai.APIError{Code: http.StatusBadGateway}, true},
		{genai.APIError{Code: http.StatusBadRequest}, false},
		{errors.New("network"), false},
	}
	for _, tc := range cases {
		if got := retryable(tc.err); got != tc.want {
			t.Fatalf("retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), " "); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
	if _, err := NewGenerator(nil, Config{}); err == nil {
		t.Fatal("expected error for nil client")
	}
}
