package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal indirections, swapped in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// GetSimpleText prints prompt to w and reads a single line from reader.
// Surrounding whitespace is trimmed. If EOF occurs after some input was
// read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	return readLine(reader)
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password. On a terminal the
// input is not echoed; otherwise (piped input) a plain line is read from
// reader.
func GetPassword(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	fd := stdinFd()
	if !isTerminal(fd) {
		return GetSimpleText(reader, prompt, w)
	}

	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Confirm prints question (already formatted as a y/N prompt) and reports
// whether the answer was yes. Anything else, including EOF, is a no.
func Confirm(reader *bufio.Reader, question string, w io.Writer) bool {
	if _, err := fmt.Fprint(w, question); err != nil {
		return false
	}
	answer, err := readLine(reader)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "c", "có":
		return true
	default:
		return false
	}
}
