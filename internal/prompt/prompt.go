// Package prompt implements the line-oriented interactive questions of the
// batch tool. All I/O goes through the reader and writer handed to New, so the
// questions can be driven by canned input in tests.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// ErrInputClosed is returned when the input stream ends before an answer is read.
var ErrInputClosed = errors.New("prompt: input closed")

// yesNoHint is printed when a yes/no question receives something else.
const yesNoHint = "Please answer with 'y' or 'n'."

type readResult struct {
	line string
	err  error
}

// Prompter asks questions on out and reads answers from in, one line each.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	start sync.Once
	lines chan readResult
}

// New creates a Prompter over the given streams.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan readResult),
	}
}

// Println writes a line of text to the prompt output.
func (p *Prompter) Println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

// Printf writes formatted text to the prompt output.
func (p *Prompter) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

// readLoop feeds input lines to p.lines until the reader fails. A line read
// while nobody is waiting is held until the next call to Line.
func (p *Prompter) readLoop() {
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- readResult{line: line, err: err}
		if err != nil {
			close(p.lines)
			return
		}
	}
}

// Line prints prompt and returns the next input line with surrounding
// whitespace removed. A final line without a newline is still returned;
// ErrInputClosed is returned only when nothing at all could be read.
// Cancelling ctx abandons the wait and returns ctx.Err().
func (p *Prompter) Line(ctx context.Context, prompt string) (string, error) {
	_, _ = io.WriteString(p.out, prompt)

	p.start.Do(func() { go p.readLoop() })

	var res readResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			return "", ErrInputClosed
		}
		res = r
	}

	if res.err != nil {
		if errors.Is(res.err, io.EOF) && res.line != "" {
			return strings.TrimSpace(res.line), nil
		}
		if errors.Is(res.err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read input: %w", res.err)
	}
	return strings.TrimSpace(res.line), nil
}

// WithDefault asks for a value labelled label. An empty answer yields def;
// anything else is returned verbatim after trimming.
func (p *Prompter) WithDefault(ctx context.Context, label, def string) (string, error) {
	answer, err := p.Line(ctx, fmt.Sprintf("%s (default: %s): ", label, def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choice asks prompt until the lower-cased answer is a key of valid, and
// returns the mapped value. An empty answer returns def. Any other answer
// prints hint and asks again; an empty hint lists the accepted keys.
func Choice[T any](ctx context.Context, p *Prompter, prompt, hint string, valid map[string]T, def T) (T, error) {
	if hint == "" {
		hint = keysHint(valid)
	}

	for {
		answer, err := p.Line(ctx, prompt)
		if err != nil {
			var zero T
			return zero, err
		}

		answer = strings.ToLower(answer)
		if answer == "" {
			return def, nil
		}
		if v, ok := valid[answer]; ok {
			return v, nil
		}
		p.Println(hint)
	}
}

func keysHint[T any](valid map[string]T) string {
	keys := make([]string, 0, len(valid))
	for k := range valid {
		keys = append(keys, "'"+k+"'")
	}
	slices.Sort(keys)

	switch len(keys) {
	case 0:
		return "Please answer."
	case 1:
		return "Please answer with " + keys[0] + "."
	}
	return "Please answer with " + strings.Join(keys[:len(keys)-1], ", ") + " or " + keys[len(keys)-1] + "."
}

var yesNo = map[string]bool{
	"y":   true,
	"yes": true,
	"n":   false,
	"no":  false,
}

// Confirm asks a yes/no question. An empty answer returns defaultYes.
func (p *Prompter) Confirm(ctx context.Context, prompt string, defaultYes bool) (bool, error) {
	return Choice(ctx, p, prompt, yesNoHint, yesNo, defaultYes)
}
