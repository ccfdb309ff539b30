package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/codesbot/core/buildinfo"
	coreconfig "github.com/m3rciful/codesbot/core/config"
)

var (
	// L is the root logger. Component loggers derive from it.
	L *slog.Logger

	// DB logs database connections.
	DB *slog.Logger
	// MIG logs migration runs.
	MIG *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs route and command registration.
	TWire *slog.Logger
)

var (
	state = struct {
		sync.Mutex
		initialized bool
		closed      bool
		sink        *asyncSink
		files       []io.Closer
	}{}

	level      slog.LevelVar
	debugRatio = newSampler(1, 50)
	trace      bool
)

func init() {
	setRoot(slog.New(slog.DiscardHandler))
}

func setRoot(root *slog.Logger) {
	L = root
	DB = Component("db")
	MIG = Component("db.migrate")
	TG = Component("tg")
	TWire = Component("tg.wire")
}

// settings is the resolved logging configuration.
type settings struct {
	level    slog.Level
	format   logFormat
	order    []string
	num, den int
	profile  string
	file     string
	audit    bool
}

func resolve(cfg *coreconfig.Config) settings {
	s := settings{level: slog.LevelInfo, format: formatJSON, num: 1, den: 50, profile: "prod"}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging
	s.audit = cfg.Audit.Enabled
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}

	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}

	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				s.order = append(s.order, k)
			}
		}
	}

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		num, den, ok := parseSampleSpec(spec)
		switch {
		case ok && num == 0 && den == 0:
			s.num, s.den = 0, 0
		case ok && num > 0 && den > 0:
			s.num, s.den = num, den
		}
	}

	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		s.file = filepath.Join(dir, name)
	}
	return s
}

// InitLogger installs the process logger. Only the first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	state.Lock()
	defer state.Unlock()
	if state.initialized {
		return nil
	}
	state.initialized = true

	s := resolve(cfg)
	level.Set(s.level)
	debugRatio.Set(s.num, s.den)
	trace = envFlag("TRACE") || envFlag("LOG_TRACE")

	outputs := []io.Writer{os.Stdout}
	var fileErr error
	if s.file != "" {
		f, err := openLogFile(s.file)
		if err != nil {
			fileErr = err
		} else {
			outputs = append(outputs, f)
			state.files = append(state.files, f)
		}
	}
	state.sink = newAsyncSink(outputs, 64<<10)

	setRoot(slog.New(newLineHandler(&level, state.sink, s.format, s.order)))
	slog.SetDefault(L)

	if fileErr != nil {
		Warn(context.Background(), "app", "log_file.unavailable", slog.String("err", fileErr.Error()))
	}
	Info(context.Background(), "app", "startup",
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", s.profile),
		slog.Bool("audit", s.audit),
	)
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Shutdown drains pending lines and closes log files.
func Shutdown() error {
	state.Lock()
	defer state.Unlock()
	if state.closed {
		return nil
	}
	state.closed = true

	var errs []error
	if state.sink != nil {
		errs = append(errs, state.sink.Close())
	}
	for _, c := range state.files {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Component returns L tagged with component=name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With(slog.String("component", name))
}

// LogEvent logs attrs as event on logg, falling back to the context logger.
func LogEvent(ctx context.Context, logg *slog.Logger, lvl slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logg.LogAttrs(ctx, lvl, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug gates high-volume debug lines. TRACE=1 lets every line through.
func ShouldSampleDebug() bool {
	return trace || debugRatio.Allow()
}
