package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/router"
)

// errQuit ends the REPL.
var errQuit = errors.New("quit")

// execIface is the surface the REPL needs. App implements it; tests can
// provide a lightweight stub.
type execIface interface {
	prompt() string
	exec(ctx context.Context, name string, args []string) error
}

// command is one REPL verb. An empty route means the command is available
// on every screen and is not guarded.
type command struct {
	name  string
	usage string
	route router.Route
	run   func(ctx context.Context, args []string) error
}

// runREPL prints the prompt, reads a line, and hands its first word and the
// remaining words to a. It returns on EOF, on a canceled ctx, or when a
// command returns errQuit. Command errors are reported by the commands
// themselves.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(w, a.prompt())

		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		if err := a.exec(ctx, parts[0], parts[1:]); errors.Is(err, errQuit) {
			return
		}
	}
}

func (a *App) registerCommands() {
	cmds := []*command{
		{name: "login", route: router.Login, run: a.login},
		{name: "logout", run: a.logout},
		{name: "home", route: router.Home, run: a.home},
		{name: "whoami", route: router.Home, run: a.whoami},
		{name: "todos", usage: "todos [page]", route: router.Todos, run: a.list},
		{name: "page", usage: "page N", route: router.Todos, run: a.page},
		{name: "next", route: router.Todos, run: a.next},
		{name: "prev", route: router.Todos, run: a.prev},
		{name: "add", route: router.Todos, run: a.add},
		{name: "edit", usage: "edit <id|#>", route: router.Todos, run: a.edit},
		{name: "toggle", usage: "toggle <id|#>", route: router.Todos, run: a.toggle},
		{name: "show", usage: "show <id|#>", route: router.Todos, run: a.show},
		{name: "delete", usage: "delete <id|#>", route: router.Todos, run: a.remove},
		{name: "lang", usage: "lang [en|vi]", run: a.lang},
		{name: "help", run: a.help},
		{name: "exit", run: a.exit},
	}

	a.commands = make(map[string]*command, len(cmds)+1)
	for _, c := range cmds {
		if c.usage == "" {
			c.usage = c.name
		}
		a.commands[c.name] = c
		a.order = append(a.order, c.name)
	}
	a.commands["quit"] = a.commands["exit"]
}

// exec runs one command. Errors left by the previous command are cleared
// first, the way the web forms drop them once the user types again.
func (a *App) exec(ctx context.Context, name string, args []string) error {
	a.auth.ClearError()
	a.todos.ClearError()

	cmd, ok := a.commands[name]
	if !ok {
		a.println(a.p.T("app.unknownCommand", name))
		return nil
	}

	if cmd.route != "" {
		landed := a.nav.Go(cmd.route)
		if landed != cmd.route {
			return a.redirected(ctx, landed)
		}
	}
	return cmd.run(ctx, args)
}

// redirected renders the screen the guard sent the user to.
func (a *App) redirected(ctx context.Context, to router.Route) error {
	switch to {
	case router.Login:
		a.println(a.p.T("auth.loginRequired"))
		return a.login(ctx, nil)
	default:
		a.println(a.p.T("auth.alreadyLoggedIn"))
		a.renderHome()
		return nil
	}
}

func (a *App) usage(name string) {
	a.println(a.p.T("app.usage", a.commands[name].usage))
}

func (a *App) help(_ context.Context, _ []string) error {
	a.println(a.p.T("help.title"))
	for _, name := range a.order {
		c := a.commands[name]
		if c.route != "" && c.route.Protected() && !a.auth.IsAuthenticated() {
			continue
		}
		a.println(fmt.Sprintf("  %-16s %s", c.usage, a.p.T("help."+name)))
	}
	return nil
}

func (a *App) exit(_ context.Context, _ []string) error {
	a.println(a.p.T("app.bye"))
	return errQuit
}
