// Package backend talks to the simulation service behind the circuit page.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// CSRFHeader carries the double-submit token on JSON and form requests.
	CSRFHeader = "X-CSRF-Token"

	maxFragmentBytes = 2 * 1024 * 1024
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string
	// Message is the server's "message" field when the body was a JSON envelope.
	Message string
	Body    string
}

func (e *HTTPError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, detail)
}

// HTTPStatus exposes the status code to callers that only know the error interface.
func (e *HTTPError) HTTPStatus() int {
	return e.StatusCode
}

// Client issues the three requests the circuit page makes. A nil HTTP client
// uses one without a timeout; connect and submit are never cut short unless
// the caller's context is.
type Client struct {
	PageURL          string
	FetchTargetsURL  string
	RunSimulationURL string
	CSRFToken        string
	HTTP             *http.Client
	Sanitizer        *bluemonday.Policy
}

// ErrorRegionPolicy allows the alert markup the page server renders into the error region.
func ErrorRegionPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div", "ul", "li", "button", "span")
	p.AllowAttrs("class", "role").Globally()
	p.AllowAttrs("type", "data-bs-dismiss", "aria-label").OnElements("button")
	return p
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{}
}

// LoadPredefined posts the selection back to the page and extracts the editor
// text and error-region markup from the re-rendered page.
func (c *Client) LoadPredefined(ctx context.Context, selection string, fields url.Values) (model.Fragment, error) {
	form := url.Values{}
	for key, values := range fields {
		form[key] = append([]string(nil), values...)
	}
	form.Set("predefined_circuit", selection)
	form.Set("load_predefined", "true")
	if c.CSRFToken != "" && form.Get("csrf_token") == "" {
		form.Set("csrf_token", c.CSRFToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.PageURL, strings.NewReader(form.Encode()))
	if err != nil {
		return model.Fragment{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setCSRF(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return model.Fragment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Fragment{}, readHTTPError(resp)
	}

	return c.parseFragment(io.LimitReader(resp.Body, maxFragmentBytes))
}

func (c *Client) parseFragment(r io.Reader) (model.Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.Fragment{}, fmt.Errorf("parse page: %w", err)
	}

	editor := doc.Find("#python_code").First()
	if editor.Length() == 0 {
		return model.Fragment{}, errors.New("page is missing the circuit editor")
	}
	// The parser already drops the single newline that may follow <textarea>.
	code := editor.Text()
	if goquery.NodeName(editor) == "input" {
		code, _ = editor.Attr("value")
	}

	var errorHTML string
	if region := doc.Find("#errorContainer").First(); region.Length() > 0 {
		markup, err := region.Html()
		if err != nil {
			return model.Fragment{}, fmt.Errorf("read error region: %w", err)
		}
		policy := c.Sanitizer
		if policy == nil {
			policy = ErrorRegionPolicy()
		}
		errorHTML = strings.TrimSpace(policy.Sanitize(markup))
	}

	return model.Fragment{Code: code, ErrorHTML: errorHTML}, nil
}

// FetchTargets performs the connect handshake.
func (c *Client) FetchTargets(ctx context.Context, token string) (model.FetchTargetsResponse, error) {
	form := url.Values{}
	form.Set("ibm_token", token)
	form.Set("csrf_token", c.CSRFToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.FetchTargetsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return model.FetchTargetsResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	c.setCSRF(req)

	var out model.FetchTargetsResponse
	if err := c.doJSON(req, &out); err != nil {
		return model.FetchTargetsResponse{}, err
	}
	return out, nil
}

// RunSimulation dispatches a submission as a single JSON request.
func (c *Client) RunSimulation(ctx context.Context, payload model.SubmissionRequest) (model.RunSimulationResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return model.RunSimulationResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RunSimulationURL, bytes.NewReader(data))
	if err != nil {
		return model.RunSimulationResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setCSRF(req)

	var out model.RunSimulationResponse
	if err := c.doJSON(req, &out); err != nil {
		return model.RunSimulationResponse{}, err
	}
	return out, nil
}

func (c *Client) setCSRF(req *http.Request) {
	if c.CSRFToken != "" {
		req.Header.Set(CSRFHeader, c.CSRFToken)
	}
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
	var envelope struct {
		Message string `json:"message"`
	}
	if strings.HasPrefix(httpErr.Body, "{") && json.Unmarshal(body, &envelope) == nil {
		httpErr.Message = strings.TrimSpace(envelope.Message)
	}
	return httpErr
}
