package forms

import "strings"

// CustomSelection is the predefined-circuit sentinel meaning "write your own".
const CustomSelection = ""

// DefaultCircuit is the template the editor falls back to.
const DefaultCircuit = "from qiskit import QuantumCircuit\nqc = QuantumCircuit(1, 1)\nqc.x(0)\nqc.measure(0, 0)"

// IsCustomSelection reports whether a predefined selection is the custom sentinel.
func IsCustomSelection(selection string) bool {
	return strings.TrimSpace(selection) == CustomSelection
}
