package library

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console is the line-oriented terminal shared by the authorization prompt and
// the selection UI. One goroutine reads In; ReadLine waits for the next line or ctx.
type Console struct {
	out   io.Writer
	lines chan string

	mu sync.Mutex // serializes writes to out
}

// NewConsole starts reading in. The reader goroutine exits at EOF.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{out: out, lines: make(chan string)}
	go func() {
		defer close(c.lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			c.lines <- strings.TrimSpace(sc.Text())
		}
	}()
	return c
}

// Printf writes to the console output.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// ReadLine returns the next trimmed input line. io.EOF once input is exhausted.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Ask prints prompt and reads the answer.
func (c *Console) Ask(ctx context.Context, prompt string) (string, error) {
	c.Printf("%s", prompt)
	return c.ReadLine(ctx)
}
