package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// PreflightError describes a failed precondition along with how to fix it.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

// Error implements the error interface.
func (e *PreflightError) Error() string {
	return e.Message
}

func printError(err error) {
	var preflight *PreflightError
	if errors.As(err, &preflight) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorLabel(), preflight.Message)
		if preflight.Hint != "" {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", preflight.Hint)
		}
		if preflight.NextStep != "" {
			fmt.Fprintf(os.Stderr, "  next: %s\n", preflight.NextStep)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", errorLabel(), strings.TrimSpace(err.Error()))
}
