package logs

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// levelPriority defines the priority of each log level
// higher value= more severe
var levelPriority = map[Level]int{
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

var levelColor = map[Level]*color.Color{
	DEBUG: color.New(color.FgHiBlack),
	INFO:  color.New(color.FgCyan),
	WARN:  color.New(color.FgYellow),
	ERROR: color.New(color.FgRed, color.Bold),
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	lvl := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelPriority[lvl]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

type Entry struct {
	TimeStamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Component string    `json:"component,omitempty"`
	Message   string    `json:"message"`
}

type Logger struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	level   Level
	out     io.Writer
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput mirrors every recorded entry to w as a single console line.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.out = w
	}
}

// level: minimum log level to record(e.g., INFO, WARN, ERROR,DEBUG)
//
// maxsize:maximum number of log entries kept in memory
func NewLogger(maxSize int, level Level, opts ...Option) *Logger {
	l := &Logger{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		level:   level,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// log applies level filtering and ring buffer behavior
func (l *Logger) log(level Level, component, msg string) {
	if levelPriority[level] < levelPriority[l.level] {
		return
	}

	entry := Entry{
		TimeStamp: time.Now(),
		Level:     level,
		Component: component,
		Message:   msg,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.maxSize {
		// remove oldest entry (ring behavior)
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)

	if l.out != nil {
		l.write(entry)
	}
}

// write renders one entry; caller holds l.mu so lines never interleave.
func (l *Logger) write(e Entry) {
	prefix := ""
	if e.Component != "" {
		prefix = "[" + e.Component + "] "
	}
	_, _ = levelColor[e.Level].Fprintf(l.out, "%s %-5s %s%s\n",
		e.TimeStamp.Format("15:04:05.000"), e.Level, prefix, e.Message)
}

func (l *Logger) Debug(msg string) {
	l.log(DEBUG, "", msg)
}

func (l *Logger) Info(msg string) {
	l.log(INFO, "", msg)
}

func (l *Logger) Warn(msg string) {
	l.log(WARN, "", msg)
}

func (l *Logger) Error(msg string) {
	l.log(ERROR, "", msg)
}

func (l *Logger) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		out := make([]Entry, len(l.entries))
		copy(out, l.entries)
		return out
	}

	start := len(l.entries) - n
	out := make([]Entry, n)
	copy(out, l.entries[start:])
	return out
}

// For returns a view of the logger that tags every entry with component.
func (l *Logger) For(component string) *Scope {
	return &Scope{logger: l, component: component}
}

// Scope is a component-tagged view over a shared Logger.
type Scope struct {
	logger    *Logger
	component string
}

func (s *Scope) Debugf(format string, args ...any) {
	s.logger.log(DEBUG, s.component, fmt.Sprintf(format, args...))
}

func (s *Scope) Infof(format string, args ...any) {
	s.logger.log(INFO, s.component, fmt.Sprintf(format, args...))
}

func (s *Scope) Warnf(format string, args ...any) {
	s.logger.log(WARN, s.component, fmt.Sprintf(format, args...))
}

func (s *Scope) Errorf(format string, args ...any) {
	s.logger.log(ERROR, s.component, fmt.Sprintf(format, args...))
}
