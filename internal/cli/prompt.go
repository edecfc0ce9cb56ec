package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errInvalidAnswer is returned for anything but an explicit yes or no.
var errInvalidAnswer = errors.New("answer yes or no")

// ParseYesNo validates a gate answer. Only an explicit affirmative proceeds.
func ParseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	default:
		return false, errInvalidAnswer
	}
}

// prompter asks questions on out and reads answers line by line from in.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// line prints question and returns the next input line without its line ending.
// A final line without newline is returned as is; io.EOF is returned once input is exhausted.
func (p *prompter) line(question string) (string, error) {
	if question != "" {
		fmt.Fprintln(p.out, question)
	}

	answer, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || answer == "") {
		return "", err
	}

	return strings.TrimRight(answer, "\r\n"), nil
}

// ask repeats question until parse accepts the answer.
func ask[T any](p *prompter, question, retry string, parse func(string) (T, error)) (T, error) {
	for {
		answer, err := p.line(question)
		if err != nil {
			var zero T

			return zero, err
		}

		value, err := parse(answer)
		if err == nil {
			return value, nil
		}

		fmt.Fprintf(p.out, "%s (%v)\n", retry, err)

		question = ""
	}
}

// confirm asks a yes/no question. Exhausted input counts as no.
func (p *prompter) confirm(question string) (bool, error) {
	ok, err := ask(p, question+" (yes/no)", "Wrong option.", ParseYesNo)
	if errors.Is(err, io.EOF) {
		return false, nil
	}

	return ok, err
}
