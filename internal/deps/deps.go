// Package deps reports whether the external programs captioner shells out
// to can be found.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"captioner/internal/config"
)

// Requirement names an external program.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch resolved, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		default:
			status.Available = true
			status.Path = resolved
		}
		results = append(results, status)
	}
	return results
}

// Requirements lists the programs cfg needs.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Required for audio capture, extraction, and encoding"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Required to read video frame rate and size"},
	}
	reqs = append(reqs, Requirement{
		Name:        "uvx",
		Command:     "uvx",
		Description: "Runs WhisperX for offline transcription",
		Optional:    !strings.EqualFold(cfg.Transcription.Engine, config.EngineWhisperX),
	})
	return reqs
}

// MissingRequired returns the unavailable statuses that are not optional.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
