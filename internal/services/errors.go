package services

import (
	"errors"
	"fmt"
	"strings"
)

// Markers classify failures. Wrap attaches exactly one of them and Kind maps
// it back to a label.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// kinds is checked in order; the first marker found in the chain wins.
var kinds = []struct {
	marker error
	label  string
}{
	{ErrNotFound, "not_found"},
	{ErrValidation, "validation"},
	{ErrConfiguration, "configuration"},
	{ErrExternalTool, "external_tool"},
}

// Wrap returns "<marker>: <stage>: <operation>: <message>[: <err>]" with
// blank parts omitted. marker and err both stay reachable through errors.Is.
// A nil marker means ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	var parts []string
	for _, p := range []string{stage, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Kind labels err for summaries and the run ledger. Errors without a known
// marker are "transient"; nil is "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.label
		}
	}
	return "transient"
}
