package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// Confirmer asks yes/no questions. It uses an interactive promptui prompt
// on a terminal and a plain line read otherwise.
type Confirmer struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	assumeYes   bool
}

// NewConfirmer returns a Confirmer bound to stdin and stdout.
func NewConfirmer(assumeYes bool) *Confirmer {
	return &Confirmer{
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
		assumeYes:   assumeYes,
	}
}

// NewLineConfirmer returns a non-interactive Confirmer reading answers from in.
func NewLineConfirmer(in io.Reader, out io.Writer, assumeYes bool) *Confirmer {
	return &Confirmer{in: in, out: out, assumeYes: assumeYes}
}

// Confirm asks message and reports whether the answer was yes. The default
// answer is no. With assumeYes it returns true without asking.
func (c *Confirmer) Confirm(message string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if c.interactive {
		return c.confirmInteractive(message)
	}
	return c.confirmLine(message)
}

func (c *Confirmer) confirmInteractive(message string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     strings.TrimSpace(strings.TrimSuffix(message, "[y/N]")),
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, nil
	default:
		return false, fmt.Errorf("read confirmation: %w", err)
	}
}

func (c *Confirmer) confirmLine(message string) (bool, error) {
	fmt.Fprintf(c.out, "%s ", message)
	response, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
