package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/babel/internal/ai"
)

type stubCompletion struct{ err error }

func (s stubCompletion) Generate(context.Context, string, ai.Options) (string, error) {
	return "ok", s.err
}

type stubTranscription struct{}

func (stubTranscription) Transcribe(context.Context, []byte) (string, error) {
	return "text", nil
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	return string(body)
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/items/"+id, nil))
	}

	body := scrape(t, m)
	want := `babel_http_requests_total{method="GET",route="/items/{id}",status="418"} 3`
	if !strings.Contains(body, want) {
		t.Errorf("expected %q in exposition, got:\n%s", want, body)
	}
}

func TestProviderInstrumentation(t *testing.T) {
	m := New()
	ok := m.Completion("workersai", stubCompletion{})
	bad := m.Completion("workersai", stubCompletion{err: errors.New("boom")})
	tr := m.Transcription("openai", stubTranscription{})

	ok.Generate(context.Background(), "p", ai.DefaultOptions())
	bad.Generate(context.Background(), "p", ai.DefaultOptions())
	if text, _ := tr.Transcribe(context.Background(), nil); text != "text" {
		t.Errorf("expected passthrough result, got %q", text)
	}

	body := scrape(t, m)
	for _, want := range []string{
		`babel_provider_calls_total{operation="generate",outcome="ok",provider="workersai"} 1`,
		`babel_provider_calls_total{operation="generate",outcome="error",provider="workersai"} 1`,
		`babel_provider_calls_total{operation="transcribe",outcome="ok",provider="openai"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition", want)
		}
	}
}
