package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalFd returns the file descriptor of r when it is a terminal.
func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// readSecret prompts for a password without echo on a terminal, or reads
// all of a piped stdin with the trailing newline removed.
func readSecret(in io.Reader, out io.Writer) (string, error) {
	if fd, ok := terminalFd(in); ok {
		fmt.Fprint(out, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// lineConfirmer asks a yes/no question and reads the answer from in.
// Anything other than "y" or "yes" declines.
type lineConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (c lineConfirmer) Confirm(title, message string) (bool, error) {
	fmt.Fprintf(c.out, "%s\n\n%s [y/N] ", title, message)
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
