// Package console writes one readable line per log entry:
//
//	15:09:26.535 ERR lagstiftning.revisions revision.load.failed identifier=2024:12 error="..."
//
// Fields keep the order they were attached in: logger fields, then context
// fields, then the call's key/value pairs.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// Level represents the severity attached to a log entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "FTL"}

// String returns the three letter tag written for the level.
func (l Level) String() string {
	if int(l) < len(levelTags) {
		return levelTags[l]
	}
	return levelTags[LevelInfo]
}

// ParseLevel maps a configuration level name onto a Level. Unknown or empty
// names report false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// DefaultTimeLayout is the clock-only layout used when Options.TimeLayout is empty.
const DefaultTimeLayout = "15:04:05.000"

// Options configures the console logger provider. Zero values select stderr,
// time.Now, DefaultTimeLayout and LevelInfo.
type Options struct {
	Writer     io.Writer
	TimeFunc   func() time.Time
	TimeLayout string
	MinLevel   *Level
}

type sink struct {
	mu     sync.Mutex
	out    io.Writer
	now    func() time.Time
	layout string
	min    Level
}

// NewProvider returns a provider whose loggers share one writer.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{
		out:    opts.Writer,
		now:    opts.TimeFunc,
		layout: opts.TimeLayout,
		min:    LevelInfo,
	}
	if s.out == nil {
		s.out = os.Stderr
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.layout == "" {
		s.layout = DefaultTimeLayout
	}
	if opts.MinLevel != nil {
		s.min = *opts.MinLevel
	}
	return s
}

func (s *sink) GetLogger(name string) interfaces.Logger {
	return &lineLogger{sink: s, name: strings.TrimSpace(name)}
}

type attr struct {
	key   string
	value any
}

type lineLogger struct {
	sink  *sink
	name  string
	attrs []attr
	ctx   context.Context
}

var (
	_ interfaces.Logger       = (*lineLogger)(nil)
	_ interfaces.FieldsLogger = (*lineLogger)(nil)
)

func (l *lineLogger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *lineLogger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *lineLogger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *lineLogger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *lineLogger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *lineLogger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

// WithFields returns a logger that writes fields, sorted by key, on every entry.
func (l *lineLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	next := l.clone()
	next.attrs = appendMap(next.attrs, fields)
	return next
}

func (l *lineLogger) WithContext(ctx context.Context) interfaces.Logger {
	next := l.clone()
	next.ctx = ctx
	return next
}

func (l *lineLogger) clone() *lineLogger {
	return &lineLogger{
		sink:  l.sink,
		name:  l.name,
		attrs: append([]attr(nil), l.attrs...),
		ctx:   l.ctx,
	}
}

func (l *lineLogger) write(level Level, msg string, args []any) {
	if l.sink == nil || level < l.sink.min {
		return
	}

	attrs := append([]attr(nil), l.attrs...)
	attrs = appendMap(attrs, logging.ContextFields(l.ctx))
	attrs = appendArgs(attrs, args)

	var b strings.Builder
	b.WriteString(l.sink.now().Format(l.sink.layout))
	b.WriteByte(' ')
	b.WriteString(level.String())
	if l.name != "" {
		b.WriteByte(' ')
		b.WriteString(l.name)
	}
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.key)
		b.WriteByte('=')
		b.WriteString(render(a.value))
	}
	b.WriteByte('\n')

	l.sink.mu.Lock()
	_, _ = io.WriteString(l.sink.out, b.String())
	l.sink.mu.Unlock()
}

// set replaces the value of an existing key in place or appends it.
func set(attrs []attr, key string, value any) []attr {
	for i := range attrs {
		if attrs[i].key == key {
			attrs[i].value = value
			return attrs
		}
	}
	return append(attrs, attr{key: key, value: value})
}

func appendMap(attrs []attr, fields map[string]any) []attr {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attrs = set(attrs, key, fields[key])
	}
	return attrs
}

// appendArgs reads args as key/value pairs. A dangling value or a non-string
// key is kept under "!BADKEY".
func appendArgs(attrs []attr, args []any) []attr {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" || i+1 == len(args) {
			attrs = append(attrs, attr{key: "!BADKEY", value: args[i]})
			if i+1 < len(args) && !ok {
				attrs = append(attrs, attr{key: "!BADKEY", value: args[i+1]})
			}
			continue
		}
		attrs = set(attrs, key, args[i+1])
	}
	return attrs
}

func render(value any) string {
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		return quote(v)
	case error:
		return quote(v.Error())
	case time.Duration:
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return quote(v.String())
	}
	return quote(fmt.Sprint(value))
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return r == '=' || r == '"' || unicode.IsSpace(r) || !unicode.IsPrint(r)
	}) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
