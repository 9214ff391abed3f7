package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the operator for credentials and the identifier source.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// ReadPassword reads a line without echo. When nil the password is read
	// like any other answer.
	ReadPassword func() ([]byte, error)
}

// NewPrompter reads answers from in. When in is a terminal the password is
// read without echo.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.ReadPassword = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

func (p *Prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Ask fills the endpoint credentials and decides whether the identifiers are
// fetched live. Answering anything but y or Y keeps a file based source, or
// switches a live source to the directory of saved pages.
func (p *Prompter) Ask(cfg *Config) error {
	fmt.Fprint(p.out, "Username: ")
	user, err := p.line()
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	fmt.Fprint(p.out, "Password: ")
	var pass string
	if p.ReadPassword != nil {
		b, err := p.ReadPassword()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(p.out)
		pass = string(b)
	} else if pass, err = p.line(); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(p.out, "Run T0? (y/n): ")
	answer, err := p.line()
	if err != nil {
		return fmt.Errorf("failed to read answer: %w", err)
	}

	cfg.User, cfg.Password = user, pass
	switch a := strings.TrimSpace(answer); {
	case a == "y" || a == "Y":
		cfg.Source = SourceLive
	case cfg.Source == SourceLive:
		cfg.Source = SourceDir
	}
	return nil
}
