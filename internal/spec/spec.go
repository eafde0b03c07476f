// Package spec parses user binary specifiers such as "sui@testnet-1.39.3"
// into a BinarySpec and resolves the install strategy for it.
package spec

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/git"
)

// Release channels.
const (
	Testnet = "testnet"
	Devnet  = "devnet"
	Mainnet = "mainnet"

	// Standalone is the channel installer-kind binaries are recorded under.
	Standalone = "standalone"

	// DefaultChannel is used when a specifier names no channel.
	DefaultChannel = Testnet
)

// Channels lists the fixed release channels in display order.
var Channels = []string{Testnet, Devnet, Mainnet}

// IsChannel reports whether s is one of the fixed release channels.
func IsChannel(s string) bool {
	for _, c := range Channels {
		if s == c {
			return true
		}
	}
	return false
}

// BinarySpec is a parsed install request. Version is empty when none was
// given; NightlyBranch is empty unless building from source.
type BinarySpec struct {
	Binary        Binary
	Channel       string
	Version       string
	Debug         bool
	NightlyBranch string
}

// Name returns the binary name.
func (s BinarySpec) Name() string {
	return s.Binary.Name
}

// IsNightly reports whether the spec requests a branch build.
func (s BinarySpec) IsNightly() bool {
	return s.NightlyBranch != ""
}

func (s BinarySpec) String() string {
	out := s.Binary.Name + "@" + s.Channel
	if s.Version != "" {
		out += "-" + s.Version
	}
	if s.NightlyBranch != "" {
		out += " (nightly " + s.NightlyBranch + ")"
	}
	if s.Debug {
		out += " (debug)"
	}
	return out
}

// ParseError reports a specifier that violates the grammar.
type ParseError struct {
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// Unwrap classifies every parse failure as user input.
func (e *ParseError) Unwrap() error {
	return apperr.ErrUserInput
}

// Parser parses specifiers against a configurable default channel.
type Parser struct {
	DefaultChannel string
}

// Parse parses s with the testnet default channel.
func Parse(s string) (BinarySpec, error) {
	return Parser{DefaultChannel: DefaultChannel}.Parse(s)
}

// Parse splits s into a binary name and an optional channel/version token.
//
// The separator is the first of "@", "==", "=" or " " present in s. The token
// is interpreted as follows:
//   - "testnet", "devnet", "mainnet": a channel with no version
//   - "<channel>-<rest>": split on the first hyphen
//   - anything else: a version on the default channel
//
// A version that itself begins with a channel name followed by a hyphen is
// therefore read as channel-qualified.
func (p Parser) Parse(s string) (BinarySpec, error) {
	defaultChannel := p.DefaultChannel
	if defaultChannel == "" {
		defaultChannel = DefaultChannel
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return BinarySpec{}, &ParseError{Input: s, Message: "binary name is required. Use `suiup list` to find available binaries to install."}
	}

	parts := strings.Split(s, separator(s))
	if len(parts) > 2 {
		return BinarySpec{}, &ParseError{Input: s, Message: fmt.Sprintf("invalid format %q. Use 'binary' or 'binary@version'", s)}
	}

	bin, ok := Lookup(parts[0])
	if !ok {
		return BinarySpec{}, &ParseError{
			Input:   s,
			Message: fmt.Sprintf("Invalid binary name: %s. Use `suiup list` to find available binaries to install.", parts[0]),
		}
	}

	out := BinarySpec{Binary: bin, Channel: defaultChannel}
	if len(parts) == 1 {
		return out, nil
	}

	token := parts[1]
	if token == "" {
		return BinarySpec{}, &ParseError{Input: s, Message: fmt.Sprintf("missing version or channel after %q", parts[0])}
	}

	if IsChannel(token) {
		out.Channel = token
		return out, nil
	}

	for _, ch := range Channels {
		if rest, ok := strings.CutPrefix(token, ch+"-"); ok {
			if rest == "" {
				return BinarySpec{}, &ParseError{Input: s, Message: fmt.Sprintf("missing version after %q", ch+"-")}
			}
			out.Channel = ch
			out.Version = rest
			return out, nil
		}
	}

	out.Version = token
	return out, nil
}

func separator(s string) string {
	switch {
	case strings.Contains(s, "@"):
		return "@"
	case strings.Contains(s, "=="):
		return "=="
	case strings.Contains(s, "="):
		return "="
	default:
		return " "
	}
}

// Options are the flags that accompany a specifier on the command line.
type Options struct {
	Debug   bool
	Nightly string
}

// Apply validates opts against the parsed spec and returns the final spec.
func (s BinarySpec) Apply(opts Options) (BinarySpec, error) {
	if opts.Nightly != "" && s.Version != "" {
		return BinarySpec{}, apperr.UserInput("Cannot install from nightly and a release at the same time. Remove the version or the nightly flag")
	}
	if opts.Debug && opts.Nightly == "" && !s.Binary.Debug {
		return BinarySpec{}, apperr.UserInput("Debug flag is only available for the `%s` binary", Sui)
	}
	if opts.Nightly != "" {
		// The branch names the install directory, so it must not escape it.
		if err := git.ValidateBranch(opts.Nightly); err != nil {
			return BinarySpec{}, err
		}
	}
	s.Debug = opts.Debug
	s.NightlyBranch = opts.Nightly
	return s, nil
}

// ParseSwitch parses the "binary@channel" form used by switch. Both parts
// are mandatory and the channel may be any channel or branch name.
func ParseSwitch(s string) (Binary, string, error) {
	name, channel, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok || name == "" || channel == "" {
		return Binary{}, "", &ParseError{Input: s, Message: fmt.Sprintf("invalid format %q. Use 'binary@network_release' (e.g. sui@testnet)", s)}
	}
	bin, found := Lookup(name)
	if !found {
		return Binary{}, "", &ParseError{
			Input:   s,
			Message: fmt.Sprintf("Invalid binary name: %s. Use `suiup list` to find available binaries to install.", name),
		}
	}
	return bin, channel, nil
}
