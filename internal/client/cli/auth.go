package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/services"
	"github.com/dmitrijs2005/docchat/internal/client/session"
	"github.com/dmitrijs2005/docchat/internal/client/ui"
	"github.com/dmitrijs2005/docchat/internal/common"
)

// register prompts for username, email and a confirmed password, creates
// the account and signs in.
func (a *App) register(ctx context.Context, _ invocation) error {
	out := a.printer.Writer()

	username, err := getSimpleText(a.reader, "Enter username", out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", out)
	if err != nil {
		return err
	}
	password, err := getPassword(out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(out, "Confirm password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := services.ValidateNewPassword(string(password), string(confirm)); err != nil {
		return err
	}

	callCtx, cancel := a.callContext(ctx)
	defer cancel()
	s, err := a.sessions.Register(callCtx, username, email, string(password))
	if err != nil {
		return err
	}

	a.printer.Success("Welcome, %s!", s.Username())
	a.enterChat(ctx)
	return nil
}

// login prompts for credentials. A rejected login is shown here, it is not
// a session failure.
func (a *App) login(ctx context.Context, _ invocation) error {
	out := a.printer.Writer()

	email, err := getSimpleText(a.reader, "Enter email", out)
	if err != nil {
		return err
	}
	password, err := getPassword(out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	callCtx, cancel := a.callContext(ctx)
	defer cancel()
	s, err := a.sessions.SignIn(callCtx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			msg := client.Detail(err)
			if msg == "" {
				msg = "Invalid email or password"
			}
			a.printer.Error("%s", msg)
			return nil
		}
		return err
	}

	a.printer.Success("Signed in as %s", s.Username())
	a.enterChat(ctx)
	return nil
}

// oauth without arguments prints where the browser flow starts; with the
// token from the callback page it completes the sign-in.
func (a *App) oauth(ctx context.Context, inv invocation) error {
	if len(inv.Args) == 0 {
		a.printer.Info("Open %s in your browser, then run: oauth <token>", a.api.OAuthLoginURL())
		return nil
	}

	callCtx, cancel := a.callContext(ctx)
	defer cancel()
	s, err := a.sessions.CompleteOAuth(callCtx, inv.Args[0])
	if err != nil {
		return err
	}

	if s.Hydrated() {
		a.printer.Success("Signed in as %s", s.Username())
	} else {
		a.printer.Success("Signed in")
	}
	a.enterChat(ctx)
	return nil
}

func (a *App) logout(ctx context.Context, _ invocation) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	a.store.NewConversation()
	a.setActions(nil)
	a.printer.Success("Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, _ invocation) error {
	s := a.sessions.Current()
	if !s.Hydrated() {
		callCtx, cancel := a.callContext(ctx)
		defer cancel()
		var err error
		if s, err = a.sessions.Hydrate(callCtx); err != nil {
			return err
		}
	}
	a.printer.Println(ui.Profile(s.User))
	return nil
}

var _ session.Navigator = (*App)(nil)
