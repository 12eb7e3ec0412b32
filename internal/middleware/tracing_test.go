// AngelaMos | 2026
// tracing_test.go

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(t.Context()) //nolint:errcheck // test cleanup
	})

	return recorder
}

func TestTracingNamesSpansByRoute(t *testing.T) {
	recorder := recordSpans(t)

	r := chi.NewRouter()
	r.Use(middleware.Tracing)
	r.Get("/share/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, path := range []string{"/share/abc", "/share/def", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "GET /share/{id}", spans[0].Name())
	assert.Equal(t, "GET /share/{id}", spans[1].Name())
	assert.Equal(t, "GET /boom", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}
