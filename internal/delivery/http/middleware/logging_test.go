package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSink keeps the last log record so tests can assert on its attributes.
type recordSink struct {
	record slog.Record
}

func (s *recordSink) Enabled(context.Context, slog.Level) bool { return true }

func (s *recordSink) Handle(_ context.Context, r slog.Record) error {
	s.record = r.Clone()
	return nil
}

func (s *recordSink) WithAttrs([]slog.Attr) slog.Handler { return s }

func (s *recordSink) WithGroup(string) slog.Handler { return s }

func recordAttrs(r slog.Record) map[string]slog.Value {
	attrs := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})
	return attrs
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		method string
		path   string
		body   string
	}{
		{"ok with body", http.StatusOK, http.MethodGet, "/events", `{"success":true}`},
		{"created", http.StatusCreated, http.MethodPost, "/auth/signup", ""},
		{"server error", http.StatusInternalServerError, http.MethodPost, "/events", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordSink{}
			handler := LoggingMiddleware(slog.New(sink), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, "http://test"+tt.path, nil))

			require.Equal(t, tt.status, rr.Code)
			require.Equal(t, "request", sink.record.Message)

			attrs := recordAttrs(sink.record)
			assert.Equal(t, tt.method, attrs["method"].String())
			assert.Equal(t, tt.path, attrs["path"].String())
			assert.Equal(t, int64(tt.status), attrs["status"].Int64())
			assert.Equal(t, int64(len(tt.body)), attrs["bytes"].Int64())
			assert.GreaterOrEqual(t, attrs["duration_ms"].Int64(), int64(0))
		})
	}
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	sink := &recordSink{}
	handler := LoggingMiddleware(slog.New(sink), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok")) // implicit 200
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://test/healthz", nil))

	attrs := recordAttrs(sink.record)
	assert.Equal(t, int64(http.StatusOK), attrs["status"].Int64())
}
