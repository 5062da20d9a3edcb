package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errUsage = errors.New("usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func termSize(f *os.File) (int, int, error) { return term.GetSize(int(f.Fd())) }

// readPassword reads from file (trailing newlines stripped), from the terminal
// with echo off, or from one line of piped input.
func readPassword(file string, in io.Reader, prompt io.Writer) (string, error) {
	if file != "" && file != "-" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readContent returns inline text, or the contents of path ("-" reads all of in).
func readContent(inline, path string, in io.Reader) (string, bool, error) {
	switch {
	case inline != "" && path != "":
		return "", false, usageErr("use either --content or --file")
	case inline != "":
		return inline, true, nil
	case path == "-":
		b, err := io.ReadAll(in)
		return string(b), true, err
	case path != "":
		b, err := os.ReadFile(path)
		return string(b), true, err
	}
	return "", false, nil
}
