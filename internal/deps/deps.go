package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary and how much ahclip depends on it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after a PATH lookup.
type Status struct {
	Requirement
	Available bool
	Path      string // resolved executable, set when Available
	Detail    string
}

// Satisfied is true when the binary was found or may be absent.
func (s Status) Satisfied() bool { return s.Available || s.Optional }

// Lookup resolves a single requirement on PATH.
func Lookup(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	st := Status{Requirement: req}
	if req.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return st
	}
	st.Available, st.Path = true, path
	return st
}

// CheckBinaries resolves every requirement, preserving order.
func CheckBinaries(reqs []Requirement) []Status {
	out := make([]Status, len(reqs))
	for i, req := range reqs {
		out[i] = Lookup(req)
	}
	return out
}
