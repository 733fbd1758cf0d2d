package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

type statusErr int

func (s statusErr) Error() string   { return "status" }
func (s statusErr) HTTPStatus() int { return int(s) }

func TestBuildResultViewDiagramOnly(t *testing.T) {
	view := BuildResultView(model.ResultArtifact{DiagramImage: "abc", HistogramImage: "def"})
	if len(view.Tabs) != 1 {
		t.Fatalf("expected diagram tab only without counts, got %+v", view.Tabs)
	}
	if !view.Tabs[0].Active || view.Tabs[0].ID != "circuit" {
		t.Fatalf("expected active circuit tab, got %+v", view.Tabs[0])
	}
}

func TestBuildResultViewWithHistogram(t *testing.T) {
	view := BuildResultView(model.ResultArtifact{
		DiagramImage:   "abc",
		HistogramImage: "def",
		Counts:         map[string]int{"1": 2, "0": 1},
	})
	if len(view.Tabs) != 2 {
		t.Fatalf("expected two tabs, got %d", len(view.Tabs))
	}
	hist := view.Tabs[1]
	if hist.ID != "histogram" || hist.Active {
		t.Fatalf("unexpected histogram tab: %+v", hist)
	}
	if hist.CountsJSON != "{\n  \"0\": 1,\n  \"1\": 2\n}" {
		t.Fatalf("unexpected counts json %q", hist.CountsJSON)
	}
}

func TestRenderResultTabs(t *testing.T) {
	tabs, panes := RenderResultTabs(BuildResultView(model.ResultArtifact{
		DiagramImage:   "abc",
		HistogramImage: "def",
		Counts:         map[string]int{"0": 1},
	}))
	if strings.Count(tabs, `class="nav-item"`) != 2 {
		t.Fatalf("expected two tab headers: %s", tabs)
	}
	if !strings.Contains(panes, `src="data:image/png;base64,abc"`) || !strings.Contains(panes, `src="data:image/png;base64,def"`) {
		t.Fatalf("expected both images: %s", panes)
	}
	if !strings.Contains(panes, "<pre") {
		t.Fatalf("expected counts block: %s", panes)
	}
}

func TestRenderNoticeEscapes(t *testing.T) {
	out := RenderNotice(ErrorNotice(`<script>alert("x")</script>`))
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected escaped output: %s", out)
	}
	if !strings.Contains(out, "alert-danger") || !strings.Contains(out, "btn-close") {
		t.Fatalf("expected dismissible danger alert: %s", out)
	}
	if RenderNotice(model.Notice{}) != "" {
		t.Fatal("expected empty notice to render nothing")
	}
}

func TestJobNoticeLinksDashboard(t *testing.T) {
	out := RenderNotice(JobNotice("job-42"))
	if !strings.Contains(out, "Job submitted (ID: job-42)") {
		t.Fatalf("expected job id: %s", out)
	}
	if !strings.Contains(out, `href="`+DashboardURL+`"`) {
		t.Fatalf("expected dashboard link: %s", out)
	}
}

func TestTargetOptionLabel(t *testing.T) {
	if got := TargetOptionLabel(model.Target{ID: "ibmq_1", Label: "IBM Q1"}); got != "IBM Q1" {
		t.Fatalf("unexpected label %q", got)
	}
	got := TargetOptionLabel(model.Target{ID: "ibm_kyiv", Label: "Kyiv", Qubits: model.IntPtr(127), QueueDepth: model.IntPtr(3)})
	if got != "Kyiv (127 qubits, queue 3)" {
		t.Fatalf("unexpected decorated label %q", got)
	}
	if got := TargetOptionLabel(model.Target{ID: "fallback"}); got != "fallback" {
		t.Fatalf("expected id fallback, got %q", got)
	}
	options := RenderTargetOptions([]model.Target{{ID: "a&b", Label: "A"}})
	if options != `<option value="a&amp;b">A</option>` {
		t.Fatalf("unexpected options %q", options)
	}
}

func TestSubmitBusinessMessage(t *testing.T) {
	msg, expired := SubmitBusinessMessage("Session not initialized for user")
	if !expired || msg != MsgSessionExpired {
		t.Fatalf("expected session expiry, got %q %v", msg, expired)
	}
	msg, expired = SubmitBusinessMessage("")
	if expired || msg != MsgUnknownError {
		t.Fatalf("expected unknown error, got %q %v", msg, expired)
	}
	msg, expired = SubmitBusinessMessage("Circuit has 5 qubits, backend supports 3.")
	if expired || msg != "Circuit has 5 qubits, backend supports 3." {
		t.Fatalf("expected verbatim message, got %q", msg)
	}
}

func TestTransportMessages(t *testing.T) {
	if got := SubmitTransportMessage(statusErr(500)); got != MsgServerError {
		t.Fatalf("unexpected 500 message %q", got)
	}
	if got := SubmitTransportMessage(statusErr(401)); got != MsgNotConnected {
		t.Fatalf("unexpected 401 message %q", got)
	}
	if got := SubmitTransportMessage(errors.New("offline")); got != "Failed to submit job: offline" {
		t.Fatalf("unexpected raw message %q", got)
	}
	if got := ConnectFailureMessage(statusErr(401)); got != "Failed to connect to IBM Quantum: "+MsgInvalidToken {
		t.Fatalf("unexpected connect message %q", got)
	}
	if got := ConnectFailureMessage(errors.New("dial tcp: refused")); got != "Failed to connect to IBM Quantum: dial tcp: refused" {
		t.Fatalf("unexpected connect message %q", got)
	}
}
