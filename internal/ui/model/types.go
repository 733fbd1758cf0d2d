package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects how a circuit is executed on the chosen target.
type Mode string

const (
	// ModeLocal runs the circuit on a local-style simulator.
	ModeLocal Mode = "local"
	// ModeSampler samples measurement outcomes and therefore requires measurements.
	ModeSampler Mode = "sampler"
	// ModeEstimator computes expectation values; validated like ModeLocal.
	ModeEstimator Mode = "estimator"
)

// ParseMode normalises a mode value read from a select element.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeSampler:
		return ModeSampler
	case ModeEstimator:
		return ModeEstimator
	default:
		return ModeLocal
	}
}

// RequiresMeasurement reports whether circuits in this mode must measure.
func (m Mode) RequiresMeasurement() bool {
	return m == ModeSampler
}

// ResultMode chooses how a successful submission is presented.
type ResultMode string

const (
	// ResultInline renders returned artifacts into the results tabs.
	ResultInline ResultMode = "inline"
	// ResultJobIDOnly shows the job notice and leaves retrieval to the results page.
	ResultJobIDOnly ResultMode = "job-id-only"
)

// ParseResultMode maps a data attribute value onto a ResultMode, defaulting to inline.
func ParseResultMode(raw string) ResultMode {
	if ResultMode(strings.ToLower(strings.TrimSpace(raw))) == ResultJobIDOnly {
		return ResultJobIDOnly
	}
	return ResultInline
}

// Target is an execution backend offered after a successful connect.
type Target struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Qubits     *int   `json:"qubits,omitempty"`
	QueueDepth *int   `json:"queueDepth,omitempty"`
}

// UnmarshalJSON accepts both the positional form [id, label, qubits?, queue?]
// and an object form.
func (t *Target) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		type plain Target
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*t = Target(p)
		return nil
	}

	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode target: %w", err)
	}
	if len(fields) == 0 {
		return fmt.Errorf("decode target: empty entry")
	}
	var out Target
	if err := json.Unmarshal(fields[0], &out.ID); err != nil {
		return fmt.Errorf("decode target id: %w", err)
	}
	out.Label = out.ID
	if len(fields) > 1 {
		if err := json.Unmarshal(fields[1], &out.Label); err != nil {
			return fmt.Errorf("decode target label: %w", err)
		}
	}
	if len(fields) > 2 {
		out.Qubits = optionalInt(fields[2])
	}
	if len(fields) > 3 {
		out.QueueDepth = optionalInt(fields[3])
	}
	*t = out
	return nil
}

// MarshalJSON writes the positional form used by the backend contract.
func (t Target) MarshalJSON() ([]byte, error) {
	entry := []any{t.ID, t.Label}
	if t.Qubits != nil || t.QueueDepth != nil {
		entry = append(entry, t.Qubits)
	}
	if t.QueueDepth != nil {
		entry = append(entry, t.QueueDepth)
	}
	return json.Marshal(entry)
}

func optionalInt(raw json.RawMessage) *int {
	var n *int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return n
}

// IntPtr is a small helper for optional target attributes.
func IntPtr(v int) *int {
	return &v
}

// Session is the page-lifetime connection state.
type Session struct {
	Connected bool
	Token     string
	Targets   []Target
}

// SubmissionRequest is built fresh for every submit click.
type SubmissionRequest struct {
	Code   string `json:"python_code"`
	Target string `json:"backend"`
	Mode   Mode   `json:"simulator_type"`
	Shots  int    `json:"shots"`
	Token  string `json:"token"`
}

// FetchTargetsResponse is the connect endpoint envelope.
type FetchTargetsResponse struct {
	Success bool     `json:"success"`
	Targets []Target `json:"backends,omitempty"`
	Message string   `json:"message,omitempty"`
}

// RunSimulationResponse is the submit endpoint envelope.
type RunSimulationResponse struct {
	Success        bool           `json:"success"`
	JobID          string         `json:"job_id,omitempty"`
	CircuitDiagram string         `json:"circuit_diagram,omitempty"`
	HistogramSim   string         `json:"histogram_sim,omitempty"`
	Counts         map[string]int `json:"simulation_counts,omitempty"`
	Redirect       string         `json:"redirect,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// ResultArtifact holds what a successful submission returned. Images stay
// base64 encoded since they are only ever rendered as data URLs.
type ResultArtifact struct {
	DiagramImage   string
	HistogramImage string
	Counts         map[string]int
	JobID          string
	Redirect       string
}

// Artifact extracts the renderable parts of a response.
func (r RunSimulationResponse) Artifact() ResultArtifact {
	return ResultArtifact{
		DiagramImage:   r.CircuitDiagram,
		HistogramImage: r.HistogramSim,
		Counts:         r.Counts,
		JobID:          r.JobID,
		Redirect:       r.Redirect,
	}
}

// Fragment is the part of a re-rendered page the predefined loader keeps.
type Fragment struct {
	Code      string
	ErrorHTML string
}

// NoticeKind maps onto the alert colour of a notice.
type NoticeKind string

const (
	NoticeDanger  NoticeKind = "danger"
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a dismissible message shown in the error region.
type Notice struct {
	Kind  NoticeKind
	Items []string
	// Link is appended to the last item when set.
	Link *NoticeLink
}

// NoticeLink is an external anchor rendered inside a notice.
type NoticeLink struct {
	Prefix string
	Label  string
	Href   string
	Suffix string
}

// ResultTab is one tab header plus its pane.
type ResultTab struct {
	ID       string
	Title    string
	Heading  string
	Image    string
	ImageAlt string
	Active   bool

	// CountsHeading and CountsJSON are only set on the histogram tab.
	CountsHeading string
	CountsJSON    string
}

// ResultView is the render model for the results area.
type ResultView struct {
	Tabs []ResultTab
}

// Empty reports whether there is nothing to render.
func (v ResultView) Empty() bool {
	return len(v.Tabs) == 0
}

// PredefinedOption is an entry of the predefined circuit selector.
type PredefinedOption struct {
	Value string
	Label string
}
