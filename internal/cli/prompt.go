package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errPasswordMismatch = errors.New("passwords do not match")

// prompter reads answers line by line. Echo is disabled while a password
// is typed when input is a terminal; piped input is read as is.
type prompter struct {
	input  *os.File
	reader *bufio.Reader
	output io.Writer
}

func newPrompter(input *os.File, output io.Writer) *prompter {
	return &prompter{input: input, reader: bufio.NewReader(input), output: output}
}

func (p *prompter) password(label string) (string, error) {
	fmt.Fprint(p.output, label)

	restore, err := disableEcho(p.input)
	if err == nil {
		defer func() {
			restore()
			fmt.Fprintln(p.output)
		}()
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newPassword asks twice and requires both answers to match.
func (p *prompter) newPassword() (string, error) {
	first, err := p.password("Password: ")
	if err != nil {
		return "", err
	}
	second, err := p.password("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}
