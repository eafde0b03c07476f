package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Detector finds the user's shell.
type Detector struct {
	getenv func(string) string
	// parentName returns the executable name of the parent process.
	parentName func(ctx context.Context) (string, error)
}

// NewDetector returns a Detector reading the real environment and process
// table.
func NewDetector() *Detector {
	return &Detector{getenv: os.Getenv, parentName: parentProcessName}
}

// Detect tries $SHELL first, then the parent process name. An unrecognised
// shell is reported as Unknown rather than as an error.
func (d *Detector) Detect(ctx context.Context) (*DetectionResult, error) {
	if k := kindOf(d.getenv("SHELL")); k.Known() {
		return &DetectionResult{Shell: k, Source: "$SHELL"}, nil
	}
	if d.parentName != nil {
		if name, err := d.parentName(ctx); err == nil {
			if k := kindOf(name); k.Known() {
				return &DetectionResult{Shell: k, Source: "parent process"}, nil
			}
		}
	}
	return &DetectionResult{Shell: Unknown}, nil
}

// kindOf maps a shell path or process name to a Kind. Login shells are
// reported with a leading "-".
func kindOf(path string) Kind {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(strings.TrimPrefix(name, "-"), ".exe")
	if k := Kind(name); k.Known() {
		return k
	}
	return Unknown
}

func parentProcessName(ctx context.Context) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getppid()))
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}
