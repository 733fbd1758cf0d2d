// Package workflow drives the connect-then-submit flow of the circuit page.
//
// The controller owns no DOM. It talks to the page through View and to the
// simulation service through Backend, and keeps the connection flag in a
// state.SessionStore so each handler reads and writes it explicitly.
package workflow

import (
	"context"
	"net/url"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/forms"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"github.com/Its-donkey/circuit-console/internal/ui/state"
)

// Backend is the simulation service as seen from the page.
type Backend interface {
	LoadPredefined(ctx context.Context, selection string, fields url.Values) (model.Fragment, error)
	FetchTargets(ctx context.Context, token string) (model.FetchTargetsResponse, error)
	RunSimulation(ctx context.Context, req model.SubmissionRequest) (model.RunSimulationResponse, error)
}

// Control names a button whose busy state the controller toggles.
type Control string

const (
	ControlConnect Control = "connect"
	ControlSubmit  Control = "submit"
)

// View applies render models to the page.
type View interface {
	// SetCode replaces the editor text, mirrors it and resizes the editor.
	SetCode(code string)
	// MirrorCode copies text to the hidden field and resizes the editor.
	MirrorCode(code string)
	SetErrorHTML(markup string)
	ShowNotice(notice model.Notice)
	// SetBusy disables a control and shows its spinner, or restores both.
	SetBusy(control Control, busy bool)
	SetEnabled(control Control, enabled bool)
	SetTargets(targets []model.Target)
	SetConnectionStatus(connected bool)
	RenderResults(view model.ResultView)
	Navigate(target string)
}

// BusinessError is a success:false reply from the service.
type BusinessError struct {
	Message string
	// Expired is set when the reply means the provider session is gone.
	Expired bool
}

func (e *BusinessError) Error() string {
	return e.Message
}

// Options tunes validation and result handling.
type Options struct {
	MinTokenLength int
	MeasureMatch   forms.MeasureMatch
	ResultMode     model.ResultMode
	// Logf receives debug traces. Nil discards them.
	Logf func(format string, args ...any)
}

// Controller implements the page handlers.
type Controller struct {
	backend Backend
	view    View
	session *state.SessionStore
	opts    Options
}

// New wires a controller. A nil session store starts disconnected.
func New(backend Backend, view View, session *state.SessionStore, opts Options) *Controller {
	if session == nil {
		session = state.NewSessionStore(false)
	}
	if opts.MinTokenLength == 0 {
		opts.MinTokenLength = forms.DefaultMinTokenLength
	}
	if opts.MeasureMatch == "" {
		opts.MeasureMatch = forms.MatchSubstring
	}
	if opts.ResultMode == "" {
		opts.ResultMode = model.ResultInline
	}
	return &Controller{backend: backend, view: view, session: session, opts: opts}
}

// Session returns a snapshot of the connection state.
func (c *Controller) Session() model.Session {
	return c.session.Snapshot()
}

func (c *Controller) logf(format string, args ...any) {
	if c.opts.Logf != nil {
		c.opts.Logf(format, args...)
	}
}

// PrimeEditor fills an empty editor with the default circuit and syncs the mirror.
func (c *Controller) PrimeEditor(current string) {
	if current == "" {
		c.logf("editor empty, loading default circuit")
		c.view.SetCode(forms.DefaultCircuit)
		return
	}
	c.view.MirrorCode(current)
}

// MirrorInput runs on every edit of the circuit editor.
func (c *Controller) MirrorInput(text string) {
	c.view.MirrorCode(text)
}

// SelectPredefined runs when the selector changes: the error region is cleared
// and the custom sentinel resets the editor.
func (c *Controller) SelectPredefined(selection string) {
	c.logf("predefined circuit changed to %q", selection)
	c.view.SetErrorHTML("")
	if forms.IsCustomSelection(selection) {
		c.view.SetCode(forms.DefaultCircuit)
	}
}

// LoadPredefined replaces the editor text with a predefined circuit.
func (c *Controller) LoadPredefined(ctx context.Context, selection string, fields url.Values) error {
	if forms.IsCustomSelection(selection) {
		c.logf("custom circuit selected, skipping predefined load")
		c.view.SetCode(forms.DefaultCircuit)
		c.view.SetErrorHTML("")
		return nil
	}

	frag, err := c.backend.LoadPredefined(ctx, selection, fields)
	if err != nil {
		c.logf("load predefined circuit %q: %v", selection, err)
		c.view.ShowNotice(forms.ErrorNotice(forms.PredefinedFailureMessage(err)))
		return err
	}
	c.view.SetCode(frag.Code)
	c.view.SetErrorHTML(frag.ErrorHTML)
	return nil
}

// Connect validates the token, fetches targets and flips the session to connected.
func (c *Controller) Connect(ctx context.Context, token string) error {
	if verr := forms.ValidateToken(token, c.opts.MinTokenLength); verr != nil {
		c.view.ShowNotice(forms.ErrorNotice(verr.Message))
		return verr
	}
	token = strings.TrimSpace(token)

	restore := c.busy(ControlConnect)
	defer restore()

	resp, err := c.backend.FetchTargets(ctx, token)
	restore()

	if err != nil {
		c.logf("fetch targets: %v", err)
		c.disconnect()
		c.view.ShowNotice(forms.ErrorNotice(forms.ConnectFailureMessage(err)))
		return err
	}
	if !resp.Success {
		msg := forms.ConnectBusinessMessage(resp.Message)
		c.disconnect()
		c.view.ShowNotice(forms.ErrorNotice(msg))
		return &BusinessError{Message: msg}
	}

	c.session.Update(model.Session{Connected: true, Token: token, Targets: resp.Targets})
	c.view.SetTargets(resp.Targets)
	c.view.SetEnabled(ControlSubmit, true)
	c.view.SetConnectionStatus(true)
	c.view.ShowNotice(forms.SuccessNotice(forms.MsgConnected))
	return nil
}

// Submit validates the draft and dispatches it.
func (c *Controller) Submit(ctx context.Context, input forms.SubmitInput) error {
	if verr := forms.ValidateSubmission(c.session.Snapshot(), input, c.opts.MeasureMatch); verr != nil {
		c.logf("submission blocked: %s", verr.Field)
		c.view.ShowNotice(forms.ErrorNotice(verr.Message))
		return verr
	}
	payload := forms.BuildSubmissionRequest(input)

	restore := c.busy(ControlSubmit)
	defer restore()

	resp, err := c.backend.RunSimulation(ctx, payload)
	restore()

	if err != nil {
		c.logf("run simulation: %v", err)
		c.view.ShowNotice(forms.ErrorNotice(forms.SubmitTransportMessage(err)))
		return err
	}
	if !resp.Success {
		msg, expired := forms.SubmitBusinessMessage(resp.Message)
		if expired {
			c.disconnect()
		}
		c.view.ShowNotice(forms.ErrorNotice(msg))
		return &BusinessError{Message: msg, Expired: expired}
	}

	artifact := resp.Artifact()
	if c.opts.ResultMode == model.ResultInline {
		c.view.RenderResults(forms.BuildResultView(artifact))
	}
	c.view.ShowNotice(forms.JobNotice(artifact.JobID))
	if strings.TrimSpace(artifact.Redirect) != "" {
		c.view.Navigate(artifact.Redirect)
	}
	return nil
}

// Finalize re-syncs controls once the page has loaded, in case the browser
// restored stale DOM state from its cache.
func (c *Controller) Finalize() {
	c.view.SetBusy(ControlConnect, false)
	c.view.SetBusy(ControlSubmit, false)
	c.view.SetEnabled(ControlSubmit, c.session.Connected())
}

// busy marks a control busy and returns an idempotent restore func.
func (c *Controller) busy(control Control) func() {
	c.view.SetBusy(control, true)
	restored := false
	return func() {
		if restored {
			return
		}
		restored = true
		c.view.SetBusy(control, false)
	}
}

func (c *Controller) disconnect() {
	c.session.Disconnect()
	c.view.SetEnabled(ControlSubmit, false)
	c.view.SetConnectionStatus(false)
}
