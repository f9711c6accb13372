package terminal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console reads lines from an input stream and writes styled text to an output.
type Console struct {
	reader *bufio.Reader
	out    io.Writer
	mu     sync.Mutex
	Style  Style
}

// NewConsole wraps in and out.
//
// Precondition: in and out must be non-nil.
func NewConsole(in io.Reader, out io.Writer, style Style) *Console {
	return &Console{reader: bufio.NewReaderSize(in, 4096), out: out, Style: style}
}

// ReadLine reads one line of input without its line terminator. Control
// characters other than tab are dropped.
//
// Postcondition: Returns the trimmed line, or io.EOF once input is exhausted
// and no partial line remains.
func (c *Console) ReadLine() (string, error) {
	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			if err == io.EOF && line.Len() > 0 {
				return strings.TrimSpace(line.String()), nil
			}
			return strings.TrimSpace(line.String()), err
		}
		if b == '\n' {
			break
		}
		if b == '\r' {
			next, err := c.reader.Peek(1)
			if err == nil && len(next) > 0 && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			break
		}
		if b < 32 && b != '\t' {
			continue
		}
		line.WriteByte(b)
	}
	return strings.TrimSpace(line.String()), nil
}

// Prompt writes prompt and reads the answer.
func (c *Console) Prompt(prompt string) (string, error) {
	c.Write(c.Style.Colorize(BrightCyan, prompt))
	return c.ReadLine()
}

// Write writes text as is.
func (c *Console) Write(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, text)
}

// Writeln writes text followed by a newline.
func (c *Console) Writeln(text string) {
	c.Write(text + "\n")
}

// Writef writes formatted text followed by a newline.
func (c *Console) Writef(format string, args ...any) {
	c.Writeln(fmt.Sprintf(format, args...))
}
