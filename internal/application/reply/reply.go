// Package reply builds the result payloads handlers return to clients.
// Validation failures and domain rejections are ordinary payloads carrying
// a message, not Go errors; errors are reserved for infrastructure faults.
package reply

import "fmt"

// R is a response payload. Handlers return these and the dispatcher
// serializes them as the response body.
type R = map[string]any

// OK returns a success payload with a message.
func OK(message string) R {
	return R{"success": true, "message": message}
}

// OKf returns a success payload with a formatted message.
func OKf(format string, args ...any) R {
	return OK(fmt.Sprintf(format, args...))
}

// Fail returns a rejection payload with a message.
func Fail(message string) R {
	return R{"success": false, "message": message}
}

// Failf returns a rejection payload with a formatted message.
func Failf(format string, args ...any) R {
	return Fail(fmt.Sprintf(format, args...))
}
