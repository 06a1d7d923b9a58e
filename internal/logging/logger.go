package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level enumerates severity tiers.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel maps a level name (case-insensitive) to a Level
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Level(i), nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

// Logger is a concurrency-safe, levelled console logger. A nil *Logger
// discards everything.
type Logger struct {
	mu     sync.Mutex
	level  Level
	out    io.Writer
	styles map[Level]lipgloss.Style
}

// New creates a logger writing lines at or above minLevel to w. Colour is
// only emitted when w is a terminal.
func New(w io.Writer, minLevel Level) *Logger {
	r := lipgloss.NewRenderer(w)
	return &Logger{
		level: minLevel,
		out:   w,
		styles: map[Level]lipgloss.Style{
			DEBUG: r.NewStyle().Foreground(lipgloss.Color(colorDebug)),
			INFO:  r.NewStyle().Foreground(lipgloss.Color(colorInfo)).Bold(true),
			WARN:  r.NewStyle().Foreground(lipgloss.Color(colorWarn)).Bold(true),
			ERROR: r.NewStyle().Foreground(lipgloss.Color(colorError)).Bold(true),
		},
	}
}

// Colours match the tui palette.
const (
	colorDebug = "#6D7383"
	colorInfo  = "#A78BFA"
	colorWarn  = "#F59E0B"
	colorError = "#EF4444"
)

// Enabled reports whether messages at lvl are written
func (l *Logger) Enabled(lvl Level) bool {
	return l != nil && lvl >= l.level
}

func (l *Logger) log(lvl Level, format string, args ...any) {
	if !l.Enabled(lvl) {
		return
	}
	tag := l.styles[lvl].Render(fmt.Sprintf("[%s]", lvl))
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", tag, msg)
}

func (l *Logger) Debug(f string, a ...any) { l.log(DEBUG, f, a...) }
func (l *Logger) Info(f string, a ...any)  { l.log(INFO, f, a...) }
func (l *Logger) Warn(f string, a ...any)  { l.log(WARN, f, a...) }
func (l *Logger) Error(f string, a ...any) { l.log(ERROR, f, a...) }
