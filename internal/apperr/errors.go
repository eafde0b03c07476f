// Package apperr defines the error taxonomy shared by every suiup command.
//
// Components return *Error values (or wrap them) so the top-level command
// handler can print one line and exit non-zero, regardless of where in the
// call chain the failure happened.
package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUserInput
	KindNetwork
	KindNotFound
	KindIntegrity
	KindToolchainMissing
	KindFileSystem
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "user input"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not found"
	case KindIntegrity:
		return "integrity"
	case KindToolchainMissing:
		return "toolchain missing"
	case KindFileSystem:
		return "file system"
	default:
		return "unknown"
	}
}

// Error is a classified failure with an optional remediation hint.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind, so that
// errors.Is(err, ErrNotFound) matches any not-found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is checks.
var (
	ErrUserInput        = &Error{Kind: KindUserInput}
	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrIntegrity        = &Error{Kind: KindIntegrity}
	ErrToolchainMissing = &Error{Kind: KindToolchainMissing}
)

// UserInput returns a UserInputError with a formatted message.
func UserInput(format string, args ...any) *Error {
	return &Error{Kind: KindUserInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NotFoundError carrying a remediation hint.
func NotFound(message, hint string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Hint: hint}
}

// Network wraps a transport failure for url.
func Network(url string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: "request to " + url + " failed", Err: err}
}

// Integrity returns an IntegrityError.
func Integrity(message string, err error) *Error {
	return &Error{Kind: KindIntegrity, Message: message, Err: err}
}

// ToolchainMissing returns a ToolchainMissingError for the named tool.
func ToolchainMissing(tool, hint string) *Error {
	return &Error{
		Kind:    KindToolchainMissing,
		Message: tool + " is not installed",
		Hint:    hint,
	}
}

// KindOf classifies an arbitrary error chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindFileSystem
	}
	return KindUnknown
}

// HintOf returns the first remediation hint found in the chain.
func HintOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Hint != "" {
			return e.Hint
		}
		err = e.Err
	}
	return ""
}

// kindHints are the fallback hints for errors that carry none of their own.
var kindHints = map[Kind]string{
	KindNetwork:    "Check your connection. Set GITHUB_TOKEN if GitHub is rate limiting you",
	KindFileSystem: "Check the permissions of the suiup data, cache and bin directories",
	KindIntegrity:  "Remove the damaged file and run the command again",
}

// Format renders err as the single line printed by the command handler.
// The first hint in the chain wins; without one, the error's kind picks a
// generic hint.
func Format(err error) string {
	msg := err.Error()
	hint := HintOf(err)
	if hint == "" {
		hint = kindHints[KindOf(err)]
	}
	if hint != "" && !strings.Contains(msg, hint) {
		msg = strings.TrimRight(msg, ".") + ". " + hint
	}
	return msg
}
