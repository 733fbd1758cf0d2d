package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTargetsSendsTokenAndCSRF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "abc1234567", r.PostForm.Get("ibm_token"))
		assert.Equal(t, "csrf-1", r.PostForm.Get("csrf_token"))
		assert.Equal(t, "csrf-1", r.Header.Get(CSRFHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"backends":[["ibmq_1","IBM Q1"],["ibm_kyiv","Kyiv",127,4]]}`)
	}))
	defer srv.Close()

	client := &Client{FetchTargetsURL: srv.URL, CSRFToken: "csrf-1"}
	resp, err := client.FetchTargets(context.Background(), "abc1234567")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.Targets, 2)
	assert.Equal(t, model.Target{ID: "ibmq_1", Label: "IBM Q1"}, resp.Targets[0])
	require.NotNil(t, resp.Targets[1].Qubits)
	require.NotNil(t, resp.Targets[1].QueueDepth)
	assert.Equal(t, 127, *resp.Targets[1].Qubits)
	assert.Equal(t, 4, *resp.Targets[1].QueueDepth)
}

func TestFetchTargetsNon2xxIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"message":"Invalid IBM Quantum token."}`)
	}))
	defer srv.Close()

	client := &Client{FetchTargetsURL: srv.URL}
	_, err := client.FetchTargets(context.Background(), "abc1234567")
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.HTTPStatus())
	assert.Equal(t, "HTTP 401: Invalid IBM Quantum token.", err.Error())
}

func TestRunSimulationPostsJSON(t *testing.T) {
	var got model.SubmissionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "csrf-2", r.Header.Get(CSRFHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(model.RunSimulationResponse{
			Success:        true,
			JobID:          "job-9",
			CircuitDiagram: "ZGlhZ3JhbQ==",
			Counts:         map[string]int{"00": 510, "11": 514},
		})
	}))
	defer srv.Close()

	client := &Client{RunSimulationURL: srv.URL, CSRFToken: "csrf-2"}
	payload := model.SubmissionRequest{
		Code:   "qc.measure(0, 0)",
		Target: "ibmq_1",
		Mode:   model.ModeSampler,
		Shots:  1024,
		Token:  "abc1234567",
	}
	resp, err := client.RunSimulation(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "job-9", resp.JobID)
	assert.Equal(t, 514, resp.Counts["11"])
}

func TestRunSimulationServerErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &Client{RunSimulationURL: srv.URL}
	_, err := client.RunSimulation(context.Background(), model.SubmissionRequest{})
	require.Error(t, err)
	assert.Equal(t, "HTTP 500: boom", err.Error())
}

func TestLoadPredefinedExtractsFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "bell_state", r.PostForm.Get("predefined_circuit"))
		assert.Equal(t, "true", r.PostForm.Get("load_predefined"))
		assert.Equal(t, "2048", r.PostForm.Get("shots"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><body>
<div id="errorContainer"><div class="alert alert-danger" role="alert"><ul><li>heads up</li></ul></div><script>alert(1)</script></div>
<textarea id="python_code">
qc = QuantumCircuit(2, 2)
qc.h(0)</textarea>
</body></html>`)
	}))
	defer srv.Close()

	client := &Client{PageURL: srv.URL}
	frag, err := client.LoadPredefined(context.Background(), "bell_state", url.Values{"shots": {"2048"}})
	require.NoError(t, err)
	assert.Equal(t, "qc = QuantumCircuit(2, 2)\nqc.h(0)", frag.Code)
	assert.Contains(t, frag.ErrorHTML, "heads up")
	assert.Contains(t, frag.ErrorHTML, `class="alert alert-danger"`)
	assert.NotContains(t, frag.ErrorHTML, "<script")
}

func TestLoadPredefinedKeepsLeadingBlankLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html><body><textarea id=\"python_code\">\n\n# header\nqc.measure(0, 0)</textarea></body></html>")
	}))
	defer srv.Close()

	client := &Client{PageURL: srv.URL}
	frag, err := client.LoadPredefined(context.Background(), "bell_state", nil)
	require.NoError(t, err)
	assert.Equal(t, "\n# header\nqc.measure(0, 0)", frag.Code)
}

func TestLoadPredefinedFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := &Client{PageURL: srv.URL}
	_, err := client.LoadPredefined(context.Background(), "bell_state", nil)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: Bad Gateway", err.Error())
}

func TestLoadPredefinedMissingEditor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body><p>nothing here</p></body></html>`)
	}))
	defer srv.Close()

	client := &Client{PageURL: srv.URL}
	_, err := client.LoadPredefined(context.Background(), "bell_state", nil)
	require.Error(t, err)
}
