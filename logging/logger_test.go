package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var entries []Entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestLoggerHonoursMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("console", WARN, &buf)

	logger.Info("server", "ignored", nil)
	logger.Warn("server", "kept", map[string]any{"port": 4173})
	logger.Error("server", "failed", errors.New("boom"), nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Site != "console" || entries[0].Message != "kept" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Error != "boom" {
		t.Fatalf("expected error text, got %+v", entries[1])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DEBUG, " WARN ": WARN, "error": ERROR, "": INFO, "loud": INFO}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestMiddlewareRedactsTokens(t *testing.T) {
	var buf bytes.Buffer
	logger := New("console", DEBUG, &buf)

	var seenID string
	handler := NewHTTPLogger(logger, 0).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusUnauthorized)
	}))

	req := httptest.NewRequest(http.MethodPost, "/fetch_backends", strings.NewReader("ibm_token=secret-token-value&csrf_token=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seenID == "" || rec.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("expected request id to be shared, got %q / %q", seenID, rec.Header().Get(RequestIDHeader))
	}
	if strings.Contains(buf.String(), "secret-token-value") {
		t.Fatalf("token leaked into log: %s", buf.String())
	}
	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0].Level != "WARN" || entries[0].RequestID != seenID {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	headers, _ := entries[0].Fields["request_headers"].(map[string]any)
	if _, ok := headers["X-Csrf-Token"]; ok {
		t.Fatal("csrf header should not be logged")
	}
}

func TestRedactBodyJSON(t *testing.T) {
	out := redactBody(`{"python_code":"qc","token":"abcdefghijk"}`, "application/json")
	if strings.Contains(out, "abcdefghijk") || !strings.Contains(out, `"python_code":"qc"`) {
		t.Fatalf("unexpected redaction %s", out)
	}
}

func multipartBody(t *testing.T, fields map[string]string) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf.String(), mw.FormDataContentType()
}

func TestMiddlewareRedactsEveryBodyShape(t *testing.T) {
	multi, multiType := multipartBody(t, map[string]string{"ibm_token": "secret-token-value", "shots": "1024"})

	cases := []struct {
		name        string
		body        string
		contentType string
		keep        string
	}{
		{name: "multipart form", body: multi, contentType: multiType, keep: "shots=1024"},
		{name: "malformed json", body: `{"token":"secret-token-value","shots":"1024",}`, contentType: "application/json"},
		{name: "mixed-case form", body: "ibm_token=secret-token-value&shots=1024", contentType: "Application/X-WWW-Form-Urlencoded", keep: "shots=1024"},
		{name: "json with charset", body: `{"token":"secret-token-value","shots":1024}`, contentType: "application/JSON; charset=utf-8", keep: `"shots":1024`},
		{name: "unknown type", body: "ibm_token=secret-token-value", contentType: "text/plain"},
		{name: "missing type", body: "ibm_token=secret-token-value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewHTTPLogger(New("console", DEBUG, &buf), 0).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/fetch_backends", strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if strings.Contains(buf.String(), "secret-token-value") {
				t.Fatalf("token leaked into log: %s", buf.String())
			}
			entries := decodeLines(t, &buf)
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			body, _ := entries[0].Fields["request_body"].(string)
			if tc.keep != "" && !strings.Contains(body, tc.keep) {
				t.Fatalf("expected %q in logged body, got %q", tc.keep, body)
			}
			if tc.keep == "" && body != redacted {
				t.Fatalf("expected body to be dropped, got %q", body)
			}
		})
	}
}

func TestRedactBodyMultipartFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("circuit", "bell.py")
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := fw.Write([]byte("qc.measure_all()")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := mw.WriteField("csrf_token", "abc"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := redactBody(buf.String(), mw.FormDataContentType())
	if strings.Contains(out, "measure_all") || strings.Contains(out, "abc") {
		t.Fatalf("unexpected redaction %s", out)
	}
	if !strings.Contains(out, "circuit=%5Bfile+bell.py%5D") {
		t.Fatalf("expected file placeholder, got %s", out)
	}
}

func TestFileWriterRotates(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(dir, "console.log", 1, 2)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	defer fw.Close()

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	fw.now = func() time.Time { return clock }
	fw.maxSize = 16

	for i := 0; i < 3; i++ {
		clock = clock.Add(time.Second)
		if _, err := fw.Write([]byte("0123456789abc\n")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	rotated, _ := filepath.Glob(filepath.Join(dir, "console.log.*.gz"))
	if len(rotated) != 2 {
		t.Fatalf("expected 2 rotated files, got %v", rotated)
	}
	data, err := os.ReadFile(filepath.Join(dir, "console.log"))
	if err != nil {
		t.Fatalf("read active file: %v", err)
	}
	if string(data) != "0123456789abc\n" {
		t.Fatalf("unexpected active file %q", data)
	}
}
