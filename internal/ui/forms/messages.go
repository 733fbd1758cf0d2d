package forms

import (
	"errors"
	"fmt"
	"strings"
)

// User-facing messages shown in the error region.
const (
	MsgTokenRequired       = "IBM Quantum token is required."
	MsgConnectFirst        = "Please connect to IBM Quantum first."
	MsgCodeRequired        = "Please provide Python code to simulate."
	MsgMeasurementRequired = "Circuit must include measurements for Sampler simulation. Add qc.measure() or qc.measure_all()."
	MsgConnected           = "Successfully connected to IBM Quantum."
	MsgInvalidToken        = "Invalid token. Please check and try again."
	MsgSessionExpired      = "Invalid IBM Quantum token or session expired. Please reconnect with a valid token."
	MsgUnknownError        = "Unknown error occurred."
	MsgServerError         = "Server error occurred. Please try again or contact support."
	MsgNotConnected        = "Not connected to IBM Quantum. Please reconnect with a valid token."

	DashboardURL = "https://quantum-computing.ibm.com/services/resources?tab=systems"
)

// sessionErrorMarkers are business messages that mean the provider session is gone.
var sessionErrorMarkers = []string{"Invalid token", "Session not initialized"}

type httpStatusError interface {
	HTTPStatus() int
}

func statusOf(err error) int {
	var se httpStatusError
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return 0
}

// ConnectFailureMessage words a transport failure of the connect request.
func ConnectFailureMessage(err error) string {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	if statusOf(err) == 401 || strings.Contains(reason, "401") {
		reason = MsgInvalidToken
	}
	return "Failed to connect to IBM Quantum: " + reason
}

// ConnectBusinessMessage words a success:false reply from the connect endpoint.
func ConnectBusinessMessage(message string) string {
	if strings.TrimSpace(message) == "" {
		return MsgUnknownError
	}
	return message
}

// SubmitBusinessMessage words a success:false reply from the submit endpoint.
// expired is true when the message means the session must be re-established.
func SubmitBusinessMessage(message string) (text string, expired bool) {
	for _, marker := range sessionErrorMarkers {
		if strings.Contains(message, marker) {
			return MsgSessionExpired, true
		}
	}
	if strings.TrimSpace(message) == "" {
		return MsgUnknownError, false
	}
	return message, false
}

// SubmitTransportMessage words a transport failure of the submit request.
func SubmitTransportMessage(err error) string {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	switch status := statusOf(err); {
	case status == 500 || strings.Contains(reason, "HTTP 500"):
		return MsgServerError
	case status == 401 || strings.Contains(reason, "HTTP 401"):
		return MsgNotConnected
	default:
		return "Failed to submit job: " + reason
	}
}

// PredefinedFailureMessage words a failed predefined circuit load.
func PredefinedFailureMessage(err error) string {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return fmt.Sprintf("Failed to load predefined circuit: %s. Please try again.", reason)
}

// JobSubmittedMessage is the lead text of the info notice after a successful submit.
func JobSubmittedMessage(jobID string) string {
	return fmt.Sprintf("Job submitted (ID: %s). Please wait, as it may be queued due to backend demand. Check", jobID)
}
