package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the row number a command refers to.
// The first argument must be a positive number in render order, as shown by
// `tasklist list`. The remaining arguments are returned unchanged.
func ParseTaskRef(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrTaskRefRequired
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, nil, fmt.Errorf("invalid task reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, args[1:], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// reportTaskRefError prints the error for a bad task reference.
func reportTaskRefError(errOut io.Writer, err error) {
	if errors.Is(err, ErrTaskRefRequired) {
		fmt.Fprintln(errOut, "error: task reference required")
		return
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
}
