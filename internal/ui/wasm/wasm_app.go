//go:build js && wasm

package wasm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/Its-donkey/circuit-console/internal/ui/backend"
	"github.com/Its-donkey/circuit-console/internal/ui/forms"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"github.com/Its-donkey/circuit-console/internal/ui/state"
	"github.com/Its-donkey/circuit-console/internal/ui/workflow"
)

var (
	// Document references the global browser document for DOM interactions.
	Document js.Value
	// Controller drives the page once RunApp has wired it.
	Controller *workflow.Controller
)

// pageConfig is read from the data attributes of the hardware form.
type pageConfig struct {
	PageURL          string
	FetchTargetsURL  string
	RunSimulationURL string
	ConnectLabel     string
	SubmitLabel      string
	Connected        bool
	ResultMode       model.ResultMode
	MinTokenLength   int
	MeasureMatch     forms.MeasureMatch
	CSRFToken        string
}

func readPageConfig() pageConfig {
	cfg := pageConfig{
		PageURL:          js.Global().Get("location").Get("pathname").String(),
		FetchTargetsURL:  "/fetch_backends",
		RunSimulationURL: "/run_hardware_simulation",
		MinTokenLength:   forms.DefaultMinTokenLength,
	}
	form := Document.Call("getElementById", "hardwareForm")
	attr := func(name string) string {
		if !form.Truthy() {
			return ""
		}
		value := form.Call("getAttribute", name)
		if value.Type() != js.TypeString {
			return ""
		}
		return strings.TrimSpace(value.String())
	}
	if v := attr("data-fetch-backends-url"); v != "" {
		cfg.FetchTargetsURL = v
	}
	if v := attr("data-run-simulation-url"); v != "" {
		cfg.RunSimulationURL = v
	}
	cfg.ConnectLabel = attr("data-connect-label")
	cfg.SubmitLabel = attr("data-submit-label")
	cfg.Connected = attr("data-connected") == "true"
	cfg.ResultMode = model.ParseResultMode(attr("data-result-mode"))
	cfg.MeasureMatch = forms.ParseMeasureMatch(attr("data-measure-match"))
	if n, err := strconv.Atoi(attr("data-min-token-length")); err == nil && n > 0 {
		cfg.MinTokenLength = n
	}
	if csrf := Document.Call("querySelector", `input[name="csrf_token"]`); csrf.Truthy() {
		cfg.CSRFToken = csrf.Get("value").String()
	}
	return cfg
}

func consoleLog(format string, args ...any) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("debug", fmt.Sprintf(format, args...))
	}
}

func bindController() {
	forms.BindCircuitForm(forms.FormActions{
		Mirror: Controller.MirrorInput,
		Select: Controller.SelectPredefined,
		Load: func(selection string, fields url.Values) {
			go func() {
				_ = Controller.LoadPredefined(context.Background(), selection, fields)
			}()
		},
		Connect: func(token string) {
			go func() {
				if err := Controller.Connect(context.Background(), token); err != nil {
					consoleLog("connect failed: %v", err)
				}
			}()
		},
		Submit: func(input forms.SubmitInput) {
			go func() {
				if err := Controller.Submit(context.Background(), input); err != nil {
					consoleLog("submit failed: %v", err)
				}
			}()
		},
		Finalize: Controller.Finalize,
	})
}

func newController(cfg pageConfig) *workflow.Controller {
	client := &backend.Client{
		PageURL:          cfg.PageURL,
		FetchTargetsURL:  cfg.FetchTargetsURL,
		RunSimulationURL: cfg.RunSimulationURL,
		CSRFToken:        cfg.CSRFToken,
		Sanitizer:        backend.ErrorRegionPolicy(),
	}
	return workflow.New(client, newDOMView(cfg.ConnectLabel, cfg.SubmitLabel), state.NewSessionStore(cfg.Connected), workflow.Options{
		MinTokenLength: cfg.MinTokenLength,
		MeasureMatch:   cfg.MeasureMatch,
		ResultMode:     cfg.ResultMode,
		Logf:           consoleLog,
	})
}
