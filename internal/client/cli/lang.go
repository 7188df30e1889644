package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todoclient/internal/client/i18n"
)

// lang shows the active language and the supported ones, or switches to
// and persists the language given as argument.
func (a *App) lang(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println(a.p.T("language.current", a.p.LanguageName(a.p.Language())))
		for _, tag := range i18n.Supported() {
			a.println(fmt.Sprintf("  %-4s %s", tag, a.p.LanguageName(tag)))
		}
		return nil
	}

	tag, ok := i18n.Match(args[0])
	if !ok {
		a.println(a.p.T("language.unsupported", args[0]))
		return nil
	}
	if err := a.sess.SetLanguage(ctx, tag.String()); err != nil {
		a.log.Warn(ctx, "cannot persist language", "language", tag.String(), "error", err)
		a.report(err, "")
		return err
	}
	a.p = a.bundle.Printer(tag)
	a.println(a.p.T("language.changed", a.p.LanguageName(tag)))
	return nil
}
