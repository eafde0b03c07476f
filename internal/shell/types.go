package shell

// Kind is a shell suiup knows the startup file of.
type Kind string

const (
	Bash    Kind = "bash"
	Zsh     Kind = "zsh"
	Fish    Kind = "fish"
	Unknown Kind = "unknown"
)

// Known reports whether k has a startup file suiup can point at.
func (k Kind) Known() bool {
	return k == Bash || k == Zsh || k == Fish
}

// DetectionResult is the shell that was found and what revealed it.
type DetectionResult struct {
	Shell Kind
	// Source is "$SHELL" or "parent process"; empty when nothing matched.
	Source string
}

// PathHint tells the user how to put a directory on PATH.
type PathHint struct {
	Shell Kind
	// RCFile is the startup file the line belongs in; empty when unknown.
	RCFile string
	// Line is the command to add.
	Line string
	// Configured is set when RCFile already mentions the directory, so
	// only a new shell is needed.
	Configured bool
}
