package cli

import (
	"context"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/session"
	"github.com/dmitrijs2005/docchat/internal/client/ui"
	"github.com/dmitrijs2005/docchat/internal/common"
)

func (a *App) showProfile(ctx context.Context, inv invocation) error {
	a.Navigate(session.ViewProfile)

	user, err := a.profile.Get(ctx)
	if err != nil {
		return err
	}
	if len(inv.Args) == 0 {
		a.printer.Println(ui.Profile(user))
		return nil
	}
	if inv.Args[0] != "edit" {
		return usageError("profile [edit]")
	}

	out := a.printer.Writer()
	fullName, err := getSimpleText(a.reader, "Full name (empty keeps \""+user.FullName+"\")", out)
	if err != nil {
		return err
	}
	bio, err := getSimpleText(a.reader, "Bio (empty keeps the current one)", out)
	if err != nil {
		return err
	}

	p := models.Profile{FullName: user.FullName, Bio: user.Bio}
	if fullName != "" {
		p.FullName = fullName
	}
	if bio != "" {
		p.Bio = bio
	}

	updated, err := a.profile.Update(ctx, p)
	if err != nil {
		return err
	}
	a.printer.Success("Profile updated successfully!")
	a.printer.Println(ui.Profile(updated))
	return nil
}

func (a *App) changePassword(ctx context.Context, _ invocation) error {
	a.Navigate(session.ViewProfile)
	out := a.printer.Writer()

	current, err := getPassword(out, "Current password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)
	next, err := getPassword(out, "New password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)
	confirm, err := getPassword(out, "Confirm new password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.profile.ChangePassword(ctx, string(current), string(next), string(confirm)); err != nil {
		return err
	}
	a.printer.Success("Password changed successfully!")
	return nil
}
