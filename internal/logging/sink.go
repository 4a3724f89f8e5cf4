package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
)

const DefaultMaxEntries = 500

// Entry is a single captured log record.
type Entry struct {
	Timestamp time.Time
	Level     slog.Level
	Message   string
}

// MemorySink is an slog.Handler that keeps recent records in memory so the
// TUI can show them without writing over the alternate screen. Handlers
// derived with WithAttrs share the same buffer. It is safe for concurrent use.
type MemorySink struct {
	buf    *ring
	level  slog.Leveler
	prefix string
}

type ring struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
}

// NewMemorySink creates a MemorySink that retains at most maxSize entries at
// or above level.
func NewMemorySink(maxSize int, level slog.Leveler) *MemorySink {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &MemorySink{buf: &ring{maxSize: maxSize}, level: level}
}

// Enabled implements slog.Handler.
func (s *MemorySink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= s.level.Level()
}

// Handle implements slog.Handler.
func (s *MemorySink) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	if s.prefix != "" {
		b.WriteString(" ")
		b.WriteString(s.prefix)
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(" ")
		b.WriteString(formatAttr(a))
		return true
	})

	s.buf.add(Entry{Timestamp: r.Time, Level: r.Level, Message: b.String()})
	return nil
}

// WithAttrs implements slog.Handler.
func (s *MemorySink) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	parts := make([]string, 0, len(attrs)+1)
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	for _, a := range attrs {
		parts = append(parts, formatAttr(a))
	}
	return &MemorySink{buf: s.buf, level: s.level, prefix: strings.Join(parts, " ")}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (s *MemorySink) WithGroup(_ string) slog.Handler { return s }

// Entries returns a snapshot of all buffered entries.
func (s *MemorySink) Entries() []Entry {
	s.buf.mu.Lock()
	defer s.buf.mu.Unlock()
	result := make([]Entry, len(s.buf.entries))
	copy(result, s.buf.entries)
	return result
}

// Render formats all entries one per line for a viewport. Lines wider than
// width-2 cells are truncated.
func (s *MemorySink) Render(width int) string {
	entries := s.Entries()
	if len(entries) == 0 {
		return "(no log entries yet)"
	}
	var b strings.Builder
	for _, e := range entries {
		line := fmt.Sprintf("%s [%s] %s",
			e.Timestamp.Format("15:04:05"),
			levelLabel(e.Level),
			e.Message,
		)
		if width > 10 {
			line = ansi.Truncate(line, width-2, "...")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if len(r.entries) > r.maxSize {
		r.entries = r.entries[len(r.entries)-r.maxSize:]
	}
}

func formatAttr(a slog.Attr) string {
	return a.Key + "=" + fmt.Sprintf("%v", a.Value.Resolve().Any())
}

func levelLabel(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}
