// Package bot connects the operator session to Telegram.
package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/codesbot/core/config"
	"github.com/m3rciful/codesbot/core/logger"
	coretelegram "github.com/m3rciful/codesbot/core/telegram"
	"github.com/m3rciful/codesbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/codesbot/core/telegram/helpers"
	"github.com/m3rciful/codesbot/core/telegram/router"
	tgsender "github.com/m3rciful/codesbot/core/telegram/sender"
	"github.com/m3rciful/codesbot/internal/audit"
	"github.com/m3rciful/codesbot/internal/codes"

	tele "gopkg.in/telebot.v4"
)

const (
	auditTimeout   = 3 * time.Second
	auditListLimit = 10
)

// SendFunc delivers a rendered reply to the chat of c.
type SendFunc func(c tele.Context, r Reply) error

// App owns the session and builds the Telegram wiring around it.
type App struct {
	cfg      *coreconfig.Config
	session  *codes.Session
	recorder audit.Recorder
	// journal is set when the recorder can also list entries; it enables /audit.
	journal  audit.Reader
	send     SendFunc
	closers  []io.Closer
}

// Option customizes App.
type Option func(*App)

// WithRecorder sets the audit journal. The default discards entries.
// A recorder that is also an audit.Reader adds the /audit command.
func WithRecorder(r audit.Recorder) Option {
	return func(a *App) {
		if r == nil {
			return
		}
		a.recorder = r
		if rd, ok := r.(audit.Reader); ok {
			a.journal = rd
		}
	}
}

// WithSender replaces the outbound send path.
func WithSender(fn SendFunc) Option {
	return func(a *App) {
		if fn != nil {
			a.send = fn
		}
	}
}

// WithCloser registers a resource released by Close.
func WithCloser(c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, c)
		}
	}
}

// New returns an App with a fresh idle session for the configured admin.
func New(cfg *coreconfig.Config, opts ...Option) *App {
	a := &App{
		cfg:      cfg,
		session:  codes.NewSession(cfg.Telegram.AdminID),
		recorder: audit.Nop{},
		send:     sendMarkdown,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session exposes the operator session.
func (a *App) Session() *codes.Session { return a.session }

// Registry returns a registry with /start, the menu callbacks and, when the journal is readable, /audit.
func (a *App) Registry() (*coretelegram.Registry, error) {
	reg := coretelegram.NewRegistry()
	err := reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStart,
		Description: "Open the admin panel",
		AdminOnly:   true,
		Aliases:     []string{"menu"},
	})
	if err != nil {
		return nil, err
	}
	if a.journal != nil {
		err := reg.RegisterCommand("/audit", commands.Command{
			Handler:     a.onAudit,
			Description: "Show recent operations",
			AdminOnly:   true,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, action := range codes.Actions() {
		if err := reg.RegisterCallback(string(action), a.onAction(action)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// TelegramRunOptions assembles registry, routes and middleware for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return coretelegram.RunOptions{}, err
	}

	var routes []coretelegram.Route
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: a.cfg.Telegram.AdminID})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackRouteOptions{AdminID: a.cfg.Telegram.AdminID}))
	routes = append(routes, router.TextRoutes(a, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:   a.cfg,
		Registry: reg,
		// One worker keeps replies in the order the session produced them.
		DispatcherOptions: tgsender.Options{Workers: 1, MaxRetries: 2},
		Middlewares:       coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:            routes,
	}, nil
}

// Close releases registered resources.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// InProgress reports whether the session waits for free text from userID.
func (a *App) InProgress(userID int64) bool {
	return a.session.Authorize(userID) && a.session.Mode() != codes.ModeIdle
}

// ManagerHandler feeds free text to the session. Bot commands are never treated as input.
func (a *App) ManagerHandler(c tele.Context) error {
	if isCommand(c.Message()) {
		return nil
	}
	return a.reply(c, audit.EventText, "", a.session.ApplyText(senderID(c), c.Text()))
}

func (a *App) onStart(c tele.Context) error {
	return a.reply(c, audit.EventStart, "", a.session.ApplyStart(senderID(c)))
}

func (a *App) onAction(action codes.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.reply(c, audit.EventAction, string(action), a.session.ApplyAction(senderID(c), action))
	}
}

func (a *App) onAudit(c tele.Context) error {
	if !a.session.Authorize(senderID(c)) {
		return nil
	}
	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), auditTimeout)
	defer cancel()
	entries, err := a.journal.Recent(ctx, auditListLimit)
	if err != nil {
		return err
	}
	return a.send(c, RenderAudit(entries))
}

// reply logs the transition, journals it and sends the rendered directive.
func (a *App) reply(c tele.Context, event, action string, tr codes.Transition) error {
	ctx := tghelpers.BuildContext(c)
	d := tr.Directive
	r, ok := Render(d)
	if !ok {
		logger.Debug(ctx, "codes", "session."+event,
			slog.String("status", "skip"),
			slog.String("action", action),
			slog.String("directive", d.Kind.String()),
		)
		return nil
	}

	logger.Info(ctx, "codes", "session."+event,
		slog.String("status", "ok"),
		slog.String("action", action),
		slog.String("directive", d.Kind.String()),
		slog.String("mode_before", string(tr.ModeBefore)),
		slog.String("mode", string(tr.After.Mode)),
		slog.Int("codes", len(tr.After.Codes)),
		slog.Int("valid", len(tr.After.Valid)),
	)
	a.record(ctx, audit.NewEntry(senderID(c), event, action, d, tr.After))

	return a.send(c, r)
}

func (a *App) record(ctx context.Context, e audit.Entry) {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()
	if err := a.recorder.Record(ctx, e); err != nil {
		logger.Warn(ctx, "audit", "audit.write",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

func sendMarkdown(c tele.Context, r Reply) error {
	return tghelpers.SendMDV2(c, r.Text, r.Markup)
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func isCommand(m *tele.Message) bool {
	if m == nil {
		return false
	}
	for _, e := range m.Entities {
		if e.Type == tele.EntityCommand && e.Offset == 0 {
			return true
		}
	}
	return false
}
