package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader is echoed on every response handled by the middleware.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by HTTPLogger.Middleware.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// HTTPLogger logs HTTP requests and responses.
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger.
func NewHTTPLogger(logger *Logger, maxBodySize int) *HTTPLogger {
	if maxBodySize == 0 {
		maxBodySize = 10 * 1024
	}
	return &HTTPLogger{
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// responseRecorder captures the response for logging.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	body        *bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
		r.ResponseWriter.WriteHeader(status)
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	if r.body != nil && r.body.Len() < 10*1024 {
		r.body.Write(b[:min(len(b), 10*1024-r.body.Len())])
	}
	return n, err
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Middleware returns an HTTP middleware that logs requests and responses.
// Provider tokens and CSRF values never reach the log.
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		var requestBody string
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength < int64(h.maxBodySize) {
			bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, int64(h.maxBodySize)))
			if err == nil {
				requestBody = redactBody(string(bodyBytes), r.Header.Get("Content-Type"))
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		recorder.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Milliseconds()

		fields := map[string]any{
			"method":         r.Method,
			"path":           r.URL.Path,
			"query":          r.URL.RawQuery,
			"status":         recorder.status,
			"size":           recorder.size,
			"remote_addr":    r.RemoteAddr,
			"user_agent":     r.UserAgent(),
			"content_type":   r.Header.Get("Content-Type"),
			"content_length": r.ContentLength,
		}

		if requestBody != "" {
			fields["request_body"] = truncate(requestBody, 1000)
		}

		contentType := recorder.Header().Get("Content-Type")
		if recorder.body.Len() > 0 && strings.HasPrefix(contentType, "application/json") {
			fields["response_body"] = truncate(recorder.body.String(), 1000)
		}

		headers := make(map[string]string)
		for name, values := range r.Header {
			if !isSensitiveHeader(name) {
				headers[name] = strings.Join(values, ", ")
			}
		}
		if len(headers) > 0 {
			fields["request_headers"] = headers
		}

		entry := Entry{
			Level:     INFO.String(),
			Category:  "http",
			Message:   fmt.Sprintf("%s %s %d", r.Method, r.URL.Path, recorder.status),
			Fields:    fields,
			RequestID: requestID,
			Duration:  &duration,
		}
		if recorder.status >= 400 {
			entry.Level = WARN.String()
		}
		if recorder.status >= 500 {
			entry.Level = ERROR.String()
		}
		if h.logger != nil {
			h.logger.write(entry)
		}
	})
}

// sensitiveFields are request body keys whose values are replaced before logging.
var sensitiveFields = map[string]bool{
	"ibm_token":  true,
	"token":      true,
	"csrf_token": true,
}

const redacted = "[redacted]"

// redactBody renders a request body for the log. Known form and JSON bodies
// keep their non-sensitive fields; anything that cannot be parsed is dropped.
func redactBody(body, contentType string) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return redacted
	}
	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(body)
		if err != nil {
			return redacted
		}
		return redactValues(values)
	case "multipart/form-data":
		values, err := multipartValues(body, params["boundary"])
		if err != nil {
			return redacted
		}
		return redactValues(values)
	case "application/json":
		var payload map[string]any
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return redacted
		}
		for key := range payload {
			if sensitiveFields[key] {
				payload[key] = redacted
			}
		}
		out, err := json.Marshal(payload)
		if err != nil {
			return redacted
		}
		return string(out)
	default:
		return redacted
	}
}

func redactValues(values url.Values) string {
	for key := range values {
		if sensitiveFields[key] {
			values[key] = []string{redacted}
		}
	}
	return values.Encode()
}

// multipartValues collects the form fields of a multipart body. File parts
// are recorded by name only.
func multipartValues(body, boundary string) (url.Values, error) {
	if boundary == "" {
		return nil, errors.New("multipart body without boundary")
	}
	reader := multipart.NewReader(strings.NewReader(body), boundary)
	values := url.Values{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		name := part.FormName()
		if filename := part.FileName(); filename != "" {
			values.Add(name, "[file "+filename+"]")
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, err
		}
		values.Add(name, string(data))
	}
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "auth") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "csrf") ||
		strings.Contains(lower, "cookie") ||
		strings.Contains(lower, "key") ||
		strings.Contains(lower, "secret")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... [truncated]"
}
