//go:build js && wasm

package forms

import (
	"net/url"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

// DefaultShots is used when the shots field is empty or unparsable.
const DefaultShots = 1024

var (
	formHandlers    []js.Func
	runtimeDocument js.Value
)

// FormActions receives the page events bound by BindCircuitForm.
type FormActions struct {
	Mirror   func(code string)
	Select   func(selection string)
	Load     func(selection string, fields url.Values)
	Connect  func(token string)
	Submit   func(input SubmitInput)
	Finalize func()
}

func formDocument() js.Value {
	if !runtimeDocument.Truthy() {
		runtimeDocument = js.Global().Get("document")
	}
	return runtimeDocument
}

// BindCircuitForm attaches the circuit page handlers, replacing any bound earlier.
func BindCircuitForm(actions FormActions) {
	releaseFormHandlers()
	doc := formDocument()

	editor := doc.Call("getElementById", "python_code")
	addFormHandler(editor, "input", func(this js.Value, _ []js.Value) any {
		if actions.Mirror != nil {
			actions.Mirror(this.Get("value").String())
		}
		return nil
	})

	selector := doc.Call("getElementById", "predefined_circuit")
	addFormHandler(selector, "change", func(this js.Value, _ []js.Value) any {
		if actions.Select != nil {
			actions.Select(this.Get("value").String())
		}
		return nil
	})

	loadBtn := doc.Call("getElementById", "loadCircuitBtn")
	addFormHandler(loadBtn, "click", func(_ js.Value, args []js.Value) any {
		preventDefault(args)
		if actions.Load != nil {
			actions.Load(inputValue("predefined_circuit"), formFields("circuitForm"))
		}
		return nil
	})

	connectBtn := doc.Call("getElementById", "connectBtn")
	addFormHandler(connectBtn, "click", func(_ js.Value, args []js.Value) any {
		preventDefault(args)
		if actions.Connect != nil {
			actions.Connect(inputValue("ibm_token"))
		}
		return nil
	})

	submitBtn := doc.Call("getElementById", "submitBtn")
	addFormHandler(submitBtn, "click", func(_ js.Value, args []js.Value) any {
		preventDefault(args)
		if actions.Submit != nil {
			actions.Submit(readSubmitInput())
		}
		return nil
	})

	forEachNode(doc.Call("querySelectorAll", "form"), func(form js.Value) {
		addFormHandler(form, "keydown", func(_ js.Value, args []js.Value) any {
			if len(args) == 0 {
				return nil
			}
			event := args[0]
			if event.Get("key").String() != "Enter" {
				return nil
			}
			target := event.Get("target")
			if target.Truthy() && target.Get("id").String() == "python_code" {
				return nil
			}
			event.Call("preventDefault")
			return nil
		})
	})

	addFormHandler(js.Global(), "load", func(js.Value, []js.Value) any {
		if actions.Finalize != nil {
			actions.Finalize()
		}
		return nil
	})
}

// ReleaseCircuitForm drops every handler bound by BindCircuitForm.
func ReleaseCircuitForm() {
	releaseFormHandlers()
}

func readSubmitInput() SubmitInput {
	shots, err := strconv.Atoi(strings.TrimSpace(inputValue("shots")))
	if err != nil {
		shots = DefaultShots
	}
	code := inputValue("hardware_python_code")
	if code == "" {
		code = inputValue("python_code")
	}
	return SubmitInput{
		Code:   code,
		Target: inputValue("backend"),
		Mode:   model.ParseMode(inputValue("simulator_type")),
		Shots:  shots,
		Token:  inputValue("ibm_token"),
	}
}

func inputValue(id string) string {
	node := formDocument().Call("getElementById", id)
	if !node.Truthy() {
		return ""
	}
	value := node.Get("value")
	if value.Type() != js.TypeString {
		return ""
	}
	return value.String()
}

// formFields collects the named controls of a form so a predefined load
// re-posts everything the page would have sent.
func formFields(id string) url.Values {
	fields := url.Values{}
	form := formDocument().Call("getElementById", id)
	if !form.Truthy() {
		return fields
	}
	forEachNode(form.Get("elements"), func(el js.Value) {
		name := el.Get("name")
		if name.Type() != js.TypeString || name.String() == "" {
			return
		}
		kind := el.Get("type").String()
		if (kind == "checkbox" || kind == "radio") && !el.Get("checked").Bool() {
			return
		}
		if kind == "button" || kind == "submit" {
			return
		}
		fields.Add(name.String(), el.Get("value").String())
	})
	return fields
}

func preventDefault(args []js.Value) {
	if len(args) > 0 && args[0].Truthy() {
		args[0].Call("preventDefault")
	}
}

func addFormHandler(node js.Value, event string, handler func(js.Value, []js.Value) any) {
	if !node.Truthy() {
		return
	}
	fn := js.FuncOf(handler)
	node.Call("addEventListener", event, fn)
	formHandlers = append(formHandlers, fn)
}

func releaseFormHandlers() {
	for _, fn := range formHandlers {
		fn.Release()
	}
	formHandlers = formHandlers[:0]
}

func forEachNode(list js.Value, fn func(js.Value)) {
	if !list.Truthy() {
		return
	}
	length := list.Get("length").Int()
	for i := 0; i < length; i++ {
		fn(list.Index(i))
	}
}
