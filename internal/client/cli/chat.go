package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/session"
	"github.com/dmitrijs2005/docchat/internal/client/ui"
	"github.com/dmitrijs2005/docchat/internal/common"
)

func (a *App) listConversations(ctx context.Context) error {
	convs, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	a.printer.Println(ui.Conversations(convs, a.store.Active(), a.store.Stale()))
	return nil
}

func (a *App) list(ctx context.Context, _ invocation) error {
	a.Navigate(session.ViewChat)
	return a.listConversations(ctx)
}

// resolveConversation accepts a position in the last list or a raw id.
func (a *App) resolveConversation(ref string) (string, string) {
	convs := a.store.Conversations()
	if i, ok := index(ref, len(convs)); ok {
		return convs[i].ID, convs[i].Title
	}
	for _, c := range convs {
		if c.ID == ref {
			return c.ID, c.Title
		}
	}
	return ref, ref
}

func (a *App) open(ctx context.Context, inv invocation) error {
	if len(inv.Args) != 1 {
		return usageError("open <n|id>")
	}
	id, title := a.resolveConversation(inv.Args[0])
	a.Navigate(session.ViewChat)

	msgs, err := a.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.setActions(nil)
			a.printer.Warning("Conversation %s no longer exists", title)
			return nil
		}
		return err
	}

	a.printer.Bold("%s", title)
	if len(msgs) == 0 {
		a.setActions(nil)
		a.printer.Info("No messages yet")
		return nil
	}
	a.show(msgs, true)
	return nil
}

func (a *App) newConversation(ctx context.Context, _ invocation) error {
	a.store.NewConversation()
	a.setActions(nil)
	a.Navigate(session.ViewChat)
	a.printer.Info("Started a new conversation")
	return nil
}

func (a *App) sendCommand(ctx context.Context, inv invocation) error {
	return a.send(ctx, inv.Rest)
}

// send hands text to the composer and prints the answer it settled on. The
// failed-reply bubble is printed before the error itself is reported.
func (a *App) send(ctx context.Context, text string) error {
	a.Navigate(session.ViewChat)

	res, err := a.composer.Send(ctx, text)
	if errors.Is(err, common.ErrEmptyMessage) || errors.Is(err, common.ErrBusy) {
		return err
	}
	if res.Dropped {
		a.log.Debug(ctx, "reply arrived for a conversation no longer shown", "conversation_id", res.ConversationID)
		return err
	}

	a.show([]models.Message{res.Reply}, false)
	if res.Promoted {
		a.printer.Info("New conversation started")
	}
	return err
}

func (a *App) history(ctx context.Context, _ invocation) error {
	msgs := a.store.Messages()
	if len(msgs) == 0 {
		a.printer.Info("No messages yet")
		return nil
	}
	a.show(msgs, true)
	return nil
}

func (a *App) rename(ctx context.Context, inv invocation) error {
	if len(inv.Args) < 2 {
		return usageError("rename <n|id> <title>")
	}
	id, _ := a.resolveConversation(inv.Args[0])
	title := strings.TrimSpace(strings.TrimPrefix(inv.Rest, inv.Args[0]))

	conv, err := a.store.Rename(ctx, id, title)
	if err != nil {
		return err
	}
	a.printer.Success("Renamed to %q", conv.Title)
	return nil
}

func (a *App) deleteConversation(ctx context.Context, inv invocation) error {
	if len(inv.Args) != 1 {
		return usageError("delete <n|id>")
	}
	id, title := a.resolveConversation(inv.Args[0])

	ok, err := confirmFn(fmt.Sprintf("Delete conversation %q?", title))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	wasActive := a.store.Active() == id
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	if wasActive {
		a.setActions(nil)
	}
	a.printer.Success("Conversation deleted")
	return nil
}

func (a *App) copyCode(ctx context.Context, inv invocation) error {
	if len(inv.Args) != 1 {
		return usageError("copy <n>")
	}
	var n int
	if _, err := fmt.Sscanf(inv.Args[0], "%d", &n); err != nil {
		return usageError("copy <n>")
	}
	action, ok := a.copyAction(n)
	if !ok {
		return fmt.Errorf("no code block %d: %w", n, common.ErrNotFound)
	}
	if err := action.Copy(a.clipboard, a.now()); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	a.printer.Success("Copied!")
	return nil
}

// ask streams an answer that is not stored in any conversation.
func (a *App) ask(ctx context.Context, inv invocation) error {
	if inv.Rest == "" {
		return usageError("ask <question>")
	}
	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	out := a.printer.Writer()
	_, err := a.stream.Ask(callCtx, inv.Rest, func(chunk string) {
		fmt.Fprint(out, chunk)
	})
	fmt.Fprintln(out)
	return err
}
