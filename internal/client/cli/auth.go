package cli

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/todoclient/internal/client/router"
)

// login renders the login screen: it prompts for credentials and, on
// success, moves to the home screen. A failed attempt stays on the login
// screen with the error printed.
func (a *App) login(ctx context.Context, _ []string) error {
	a.println(a.p.T("auth.login"))

	email, err := getSimpleText(a.reader, a.p.T("auth.email"), a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.p.T("auth.password"), a.out)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, email, password); err != nil {
		msg := a.auth.Snapshot().Error()
		if msg == "" {
			msg = err.Error()
		}
		a.println(a.p.T("app.error", msg))
		return err
	}

	a.nav.Go(router.Home)
	a.renderHome()
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	a.auth.Logout(ctx)
	a.todos.Reset()
	a.nav.Go(router.Login)
	a.println(a.p.T("auth.loggedOut"))
	return nil
}

func (a *App) home(_ context.Context, _ []string) error {
	a.renderHome()
	return nil
}

func (a *App) renderHome() {
	a.println(a.p.T("home.title"))
	a.println(a.p.T("home.subtitle"))
	if st := a.auth.Snapshot(); st.User != nil {
		a.println(a.p.T("auth.welcome", st.User.Name))
	}
	a.println(a.p.T("home.hint"))
}

// whoami prints the signed-in user and, when the token is a JWT, its
// expiry. The token is decoded without verification; only the server can
// tell whether it is still valid.
func (a *App) whoami(_ context.Context, _ []string) error {
	st := a.auth.Snapshot()
	if st.User != nil {
		a.println(a.p.T("common.hello", st.User.Name) + " <" + st.User.Email + ">")
	}

	exp, ok := tokenExpiry(st.Token)
	if !ok {
		a.println(a.p.T("auth.tokenOpaque"))
		return nil
	}
	a.println(a.p.T("auth.tokenExpires", exp.Local().Format(time.RFC1123)))
	return nil
}

func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
