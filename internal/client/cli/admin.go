package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/services"
	"github.com/dmitrijs2005/docchat/internal/client/session"
	"github.com/dmitrijs2005/docchat/internal/client/ui"
	"github.com/dmitrijs2005/docchat/internal/common"
)

const adminUsage = "admin stats|users [-page n] [-size n] [-search s] [-status active|blocked|all]|block <id>|unblock <id>"

// adminCommand needs the profile snapshot for the admin flag. Non-admins
// are sent back to the chat view.
func (a *App) adminCommand(ctx context.Context, inv invocation) error {
	if len(inv.Args) == 0 {
		return usageError(adminUsage)
	}
	if !a.sessions.Current().Hydrated() {
		callCtx, cancel := a.callContext(ctx)
		_, err := a.sessions.Hydrate(callCtx)
		cancel()
		if err != nil {
			return err
		}
	}

	err := a.runAdmin(ctx, inv.Args[0], inv.Args[1:])
	if errors.Is(err, common.ErrForbidden) {
		a.Navigate(session.ViewChat)
	}
	return err
}

func (a *App) runAdmin(ctx context.Context, sub string, args []string) error {
	switch sub {
	case "stats":
		stats, err := a.admin.Stats(ctx)
		if err != nil {
			return err
		}
		a.Navigate(session.ViewAdmin)
		a.printer.Println(ui.Stats(stats))
		return nil

	case "users":
		f, err := parseUserFilter(args)
		if err != nil {
			return err
		}
		list, err := a.admin.Users(ctx, f)
		if err != nil {
			return err
		}
		a.Navigate(session.ViewAdmin)
		a.printer.Println(ui.Users(list))
		return nil

	case "block", "unblock":
		if len(args) != 1 {
			return usageError("admin " + sub + " <id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return usageError("admin " + sub + " <id>")
		}
		if sub == "block" {
			ok, err := confirmFn(fmt.Sprintf("Block user %d?", id))
			if err != nil || !ok {
				return err
			}
			err = a.admin.Block(ctx, id)
			if err != nil {
				return err
			}
			a.printer.Success("User %d blocked", id)
			return nil
		}
		if err := a.admin.Unblock(ctx, id); err != nil {
			return err
		}
		a.printer.Success("User %d unblocked", id)
		return nil
	}
	return usageError(adminUsage)
}

func parseUserFilter(args []string) (models.UserFilter, error) {
	fs := flag.NewFlagSet("admin users", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var f models.UserFilter
	fs.IntVar(&f.Page, "page", 1, "page number")
	fs.IntVar(&f.PageSize, "size", services.DefaultPageSize, "users per page")
	fs.StringVar(&f.Search, "search", "", "username or email fragment")
	fs.StringVar(&f.Status, "status", "all", "active, blocked or all")

	if err := fs.Parse(args); err != nil {
		return models.UserFilter{}, usageError(adminUsage)
	}
	return f, nil
}
