// Package cli provides the interactive todo command-line client.
//
// The screens of the client (login, home and the todo list) are rendered as
// text by a read-eval-print loop. Every command is bound to a route and is
// passed through the route guard before it runs, so protected commands
// issued while signed out land on the login screen instead.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or the input ends. See NewApp and runREPL for details.
package cli
