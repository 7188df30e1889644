package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/todoclient/internal/client/client"
	"github.com/dmitrijs2005/todoclient/internal/client/i18n"
	"github.com/dmitrijs2005/todoclient/internal/client/router"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
	"github.com/dmitrijs2005/todoclient/internal/client/state"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// getSimpleText and getPassword point to the interactive input helpers and
// can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Deps are the collaborators of App. All fields are required except
// Language, which defaults to the base language.
type Deps struct {
	Auth     *state.AuthStore
	Todos    *state.TodoStore
	Nav      *router.Navigator
	Bundle   *i18n.Bundle
	Session  session.Store
	Logger   logging.Logger
	PageSize int
	// Language is used when the session store has no language yet.
	Language string
	In       io.Reader
	Out      io.Writer
}

// App is the interactive client.
type App struct {
	auth     *state.AuthStore
	todos    *state.TodoStore
	nav      *router.Navigator
	bundle   *i18n.Bundle
	sess     session.Store
	log      logging.Logger
	pageSize int

	p        *i18n.Printer
	reader   *bufio.Reader
	out      io.Writer
	commands map[string]*command
	order    []string
}

// NewApp builds the client and picks the display language: the stored one,
// then d.Language, then the base language.
func NewApp(ctx context.Context, d Deps) *App {
	a := &App{
		auth:     d.Auth,
		todos:    d.Todos,
		nav:      d.Nav,
		bundle:   d.Bundle,
		sess:     d.Session,
		log:      d.Logger,
		pageSize: d.PageSize,
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
	}

	code, err := a.sess.Language(ctx)
	if err != nil {
		a.log.Warn(ctx, "cannot read stored language", "error", err)
	}
	if code == "" {
		code = d.Language
	}
	tag, _ := i18n.Match(code)
	a.p = a.bundle.Printer(tag)

	a.registerCommands()
	return a
}

// OnUnauthorized drops the in-memory session and shows the login screen.
// It is meant to be installed as the HTTP client's unauthorized handler,
// which has already removed the stored credentials.
func (a *App) OnUnauthorized(ctx context.Context) {
	a.log.Info(ctx, "session rejected by server, signing out")
	a.auth.Invalidate()
	a.todos.Reset()
	a.nav.Redirect(router.Login)
}

// Run shows the start screen and then reads commands until the user exits
// or the input ends.
func (a *App) Run(ctx context.Context) {
	a.println(a.p.T("app.title"))

	if a.nav.Current() == router.Login {
		_ = a.login(ctx, nil)
	} else {
		a.renderHome()
	}

	runREPL(ctx, a, a.reader, a.out)
}

func (a *App) prompt() string {
	name := "-"
	if st := a.auth.Snapshot(); st.User != nil {
		name = st.User.Email
	}
	return fmt.Sprintf("todo %s (%s)> ", a.nav.Current().Path(), name)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

// report prints the outcome of a failed command. stored is the message the
// state container recorded for it.
func (a *App) report(err error, stored string) {
	switch {
	case errors.Is(err, client.ErrUnauthorized) && !a.auth.IsAuthenticated():
		a.println(a.p.T("auth.sessionExpired"))
	case stored != "":
		a.println(a.p.T("app.error", stored))
	default:
		a.println(a.p.T("app.error", err.Error()))
	}
}
