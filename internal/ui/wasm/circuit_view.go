//go:build js && wasm

package wasm

import (
	"strconv"
	"strings"
	"syscall/js"

	"github.com/Its-donkey/circuit-console/internal/ui/forms"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"github.com/Its-donkey/circuit-console/internal/ui/workflow"
)

// controlIDs maps a busy-able control onto its button, label and spinner ids.
var controlIDs = map[workflow.Control]struct {
	button  string
	label   string
	spinner string
	busy    string
}{
	workflow.ControlConnect: {button: "connectBtn", label: "connectBtnText", spinner: "connectSpinner", busy: "Connecting..."},
	workflow.ControlSubmit:  {button: "submitBtn", label: "submitBtnText", spinner: "loadingSpinner", busy: "Submitting..."},
}

// domView applies controller output to the circuit page.
type domView struct {
	labels map[workflow.Control]string
}

var _ workflow.View = (*domView)(nil)

func newDOMView(connectLabel, submitLabel string) *domView {
	if strings.TrimSpace(connectLabel) == "" {
		connectLabel = "Connect"
	}
	if strings.TrimSpace(submitLabel) == "" {
		submitLabel = "Run on IBM Quantum"
	}
	return &domView{labels: map[workflow.Control]string{
		workflow.ControlConnect: connectLabel,
		workflow.ControlSubmit:  submitLabel,
	}}
}

func byID(id string) js.Value {
	return Document.Call("getElementById", id)
}

func (v *domView) SetCode(code string) {
	if editor := byID("python_code"); editor.Truthy() {
		editor.Set("value", code)
	}
	v.MirrorCode(code)
}

func (v *domView) MirrorCode(code string) {
	if hidden := byID("hardware_python_code"); hidden.Truthy() {
		hidden.Set("value", code)
	}
	autoGrow(byID("python_code"))
}

func autoGrow(editor js.Value) {
	if !editor.Truthy() {
		return
	}
	style := editor.Get("style")
	style.Set("height", "auto")
	style.Set("height", strconv.Itoa(editor.Get("scrollHeight").Int())+"px")
}

func (v *domView) SetErrorHTML(markup string) {
	if region := byID("errorContainer"); region.Truthy() {
		region.Set("innerHTML", markup)
	}
}

func (v *domView) ShowNotice(notice model.Notice) {
	v.SetErrorHTML(forms.RenderNotice(notice))
}

func (v *domView) SetBusy(control workflow.Control, busy bool) {
	ids, ok := controlIDs[control]
	if !ok {
		return
	}
	if btn := byID(ids.button); btn.Truthy() {
		btn.Set("disabled", busy)
	}
	if label := byID(ids.label); label.Truthy() {
		text := v.labels[control]
		if busy {
			text = ids.busy
		}
		label.Set("textContent", text)
	}
	if spinner := byID(ids.spinner); spinner.Truthy() {
		if busy {
			spinner.Get("classList").Call("remove", "d-none")
		} else {
			spinner.Get("classList").Call("add", "d-none")
		}
	}
}

func (v *domView) SetEnabled(control workflow.Control, enabled bool) {
	ids, ok := controlIDs[control]
	if !ok {
		return
	}
	if btn := byID(ids.button); btn.Truthy() {
		btn.Set("disabled", !enabled)
	}
}

func (v *domView) SetTargets(targets []model.Target) {
	if list := byID("backend"); list.Truthy() {
		list.Set("innerHTML", forms.RenderTargetOptions(targets))
	}
}

func (v *domView) SetConnectionStatus(connected bool) {
	if status := byID("connectionStatus"); status.Truthy() {
		status.Set("innerHTML", forms.RenderConnectionStatus(connected))
	}
}

func (v *domView) RenderResults(view model.ResultView) {
	tabs, panes := forms.RenderResultTabs(view)
	if head := byID("resultsTab"); head.Truthy() {
		head.Set("innerHTML", tabs)
	}
	if body := byID("resultsTabContent"); body.Truthy() {
		body.Set("innerHTML", panes)
	}
}

func (v *domView) Navigate(target string) {
	js.Global().Get("location").Set("href", target)
}
