//go:build js && wasm

package wasm

import (
	"syscall/js"
)

// RunApp bootstraps the circuit page and blocks forever.
func RunApp() {
	done := make(chan struct{})
	Document = js.Global().Get("document")

	if !Document.Call("getElementById", "python_code").Truthy() {
		js.Global().Get("console").Call("error", "circuit editor missing")
		<-done
	}

	cfg := readPageConfig()
	Controller = newController(cfg)
	bindController()

	editor := Document.Call("getElementById", "python_code")
	Controller.PrimeEditor(editor.Get("value").String())
	if Document.Get("readyState").String() == "complete" {
		Controller.Finalize()
	}
	<-done
}
