package tui

import (
	"os"
	"sync"
)

// Output is the program's terminal writer. Every write holds one lock, so
// the bell can never land in the middle of a rendered frame. It embeds the
// file so Bubble Tea still detects the terminal.
type Output struct {
	*os.File
	mu sync.Mutex
}

func NewOutput(f *os.File) *Output {
	return &Output{File: f}
}

func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.File.Write(p)
}

func (o *Output) WriteString(s string) (int, error) {
	return o.Write([]byte(s))
}

// Bell rings the terminal bell.
func (o *Output) Bell() {
	o.WriteString("\a")
}
