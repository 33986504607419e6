package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers line by line from the command's input.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// valueOr returns value when set, otherwise asks with message.
func (p *prompter) valueOr(value, message string) (string, error) {
	if value != "" {
		return value, nil
	}

	fmt.Fprint(p.out, message)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer to %q: %w", strings.TrimSpace(message), err)
	}
	return strings.TrimSpace(line), nil
}
