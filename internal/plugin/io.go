package plugin

import (
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// IO is the output sink the plugin installer reports through. Messages may
// be wrapped in <warning>, <info> or <error> markup.
type IO interface {
	Write(message string)
}

var markup = regexp.MustCompile(`(?s)^<(warning|info|error)>(.*)</(warning|info|error)>$`)

// splitMarkup returns the message level ("" when unmarked) and its text.
func splitMarkup(message string) (level, text string) {
	m := markup.FindStringSubmatch(message)
	if m == nil || m[1] != m[3] {
		return "", message
	}
	return m[1], m[2]
}

// ConsoleIO writes messages to a terminal, styling marked-up levels.
type ConsoleIO struct {
	w      io.Writer
	styles map[string]lipgloss.Style
}

// NewConsoleIO creates a ConsoleIO writing to w.
func NewConsoleIO(w io.Writer) *ConsoleIO {
	return &ConsoleIO{
		w: w,
		styles: map[string]lipgloss.Style{
			"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
	}
}

// Write prints message on its own line.
func (c *ConsoleIO) Write(message string) {
	level, text := splitMarkup(message)
	if style, ok := c.styles[level]; ok {
		text = style.Render(text)
	}
	fmt.Fprintln(c.w, text)
}

// LogIO forwards messages to a logrus logger; warnings and errors keep
// their level, everything else is logged at info.
type LogIO struct {
	log *logrus.Logger
}

// NewLogIO creates a LogIO. A nil logger falls back to logrus.New().
func NewLogIO(log *logrus.Logger) *LogIO {
	if log == nil {
		log = logrus.New()
	}
	return &LogIO{log: log}
}

// Write logs message.
func (l *LogIO) Write(message string) {
	level, text := splitMarkup(message)
	switch level {
	case "warning":
		l.log.Warn(text)
	case "error":
		l.log.Error(text)
	default:
		l.log.Info(text)
	}
}

// BufferIO collects raw messages in memory.
type BufferIO struct {
	mu       sync.Mutex
	messages []string
}

// Write appends message.
func (b *BufferIO) Write(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
}

// Messages returns a copy of the collected messages.
func (b *BufferIO) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

type discardIO struct{}

func (discardIO) Write(string) {}
