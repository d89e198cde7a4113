package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
)

const maxAuditPayload = 64 << 10

var sensitiveFields = map[string]bool{
	"password":         true,
	"current_password": true,
	"new_password":     true,
	"token":            true,
	"refresh_token":    true,
	"code":             true,
}

type auditWriter struct {
	http.ResponseWriter
	err         error
	wroteHeader bool
}

func (w *auditWriter) RecordError(err error) { w.err = err }

func (w *auditWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *auditWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying flusher.
func (w *auditWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// ErrorAudit persists errors that reach the generic 500 and panics. The
// caller only ever sees the generic message.
func ErrorAudit(errorLogs errorlog.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := capturePayload(r)
			aw := &auditWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				var message, stack string
				switch {
				case rec != nil:
					message = fmt.Sprint(rec)
					stack = string(debug.Stack())
					if !aw.wroteHeader {
						response.InternalServerError(aw, "An unexpected error occurred")
					}
				case aw.err != nil:
					message = aw.err.Error()
				default:
					return
				}

				slog.ErrorContext(r.Context(), "unhandled request error", "route", r.URL.Path, "error", message)

				// The request context may already be canceled by the time
				// the record is written.
				errorLogs.Record(context.WithoutCancel(r.Context()), errorlog.Record{
					TenantID: tenantFromRoute(r),
					Route:    r.Method + " " + r.URL.Path,
					Message:  message,
					Stack:    stack,
					Payload:  payload,
				})
			}()

			next.ServeHTTP(aw, r)
		})
	}
}

// tenantFromRoute reads the {tenant} parameter after routing has run. Chi
// shares the route context down the chain, so it is filled in by now.
func tenantFromRoute(r *http.Request) *string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	if tenant := rctx.URLParam(TenantParam); tenant != "" {
		return &tenant
	}
	return nil
}

// capturePayload copies a JSON body for the audit record and leaves the
// request body readable for the handler.
func capturePayload(r *http.Request) string {
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxAuditPayload))
	if err != nil {
		return ""
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}

	return redact(buf)
}

func redact(body []byte) string {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return ""
	}
	out, err := json.Marshal(redactValue(v))
	if err != nil {
		return ""
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if sensitiveFields[strings.ToLower(k)] {
				t[k] = "[REDACTED]"
				continue
			}
			t[k] = redactValue(val)
		}
	case []interface{}:
		for i := range t {
			t[i] = redactValue(t[i])
		}
	}
	return v
}
