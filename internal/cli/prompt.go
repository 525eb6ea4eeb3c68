package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrap(err, "error reading answer")
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks for an explicit yes before an irreversible action.
func (p *prompter) Confirm(ctx context.Context, warning string) (bool, error) {
	answer, err := p.ask(fmt.Sprintf("%s\nType 'yes' to continue: ", warning))
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "yes"), nil
}

func (p *prompter) choose(question string, options map[string]string) (string, error) {
	answer, err := p.ask(question)
	if err != nil {
		return "", err
	}
	if choice, ok := options[strings.ToLower(answer)]; ok {
		return choice, nil
	}
	return "", nil
}
