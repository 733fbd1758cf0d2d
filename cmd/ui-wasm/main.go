//go:build js && wasm

package main

import "github.com/Its-donkey/circuit-console/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
