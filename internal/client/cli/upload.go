package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/session"
	"github.com/dmitrijs2005/docchat/internal/client/ui"
	"github.com/dmitrijs2005/docchat/internal/client/upload"
	"github.com/dmitrijs2005/docchat/internal/filex"
)

// submit validates and starts uploading paths. Paths that cannot be read
// are reported one by one and skipped.
func (a *App) submit(ctx context.Context, paths []string) (upload.Batch, error) {
	var cands []upload.Candidate
	for _, p := range paths {
		path, err := filex.ExpandHome(p)
		if err != nil {
			a.printer.Error("%s: %v", p, err)
			continue
		}
		c, err := upload.FromPath(path)
		if err != nil {
			a.printer.Error("%s: %v", p, err)
			continue
		}
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return upload.Batch{}, nil
	}

	// the view must switch before the batch can complete
	if valid, _ := upload.Validate(cands); len(valid) > 0 {
		a.Navigate(session.ViewUpload)
	}
	batch, err := a.pipeline.Submit(ctx, cands)
	if len(batch.Tasks) > 0 {
		a.printer.Info("Uploading %d file(s)", len(batch.Tasks))
	}
	return batch, err
}

func (a *App) upload(ctx context.Context, inv invocation) error {
	if len(inv.Args) == 0 {
		return usageError("upload <file>...")
	}
	_, err := a.submit(ctx, inv.Args)
	return err
}

func (a *App) tasks(ctx context.Context, _ invocation) error {
	a.printer.Println(ui.Tasks(a.pipeline.Tasks()))
	return nil
}

func (a *App) removeTask(ctx context.Context, inv invocation) error {
	if len(inv.Args) != 1 {
		return usageError("remove <n>")
	}
	tasks := a.pipeline.Tasks()
	i, ok := index(inv.Args[0], len(tasks))
	if !ok {
		return usageError(fmt.Sprintf("remove <n>, n between 1 and %d", len(tasks)))
	}
	if err := a.pipeline.Remove(tasks[i].ID); err != nil {
		return err
	}
	a.printer.Success("Removed %s", tasks[i].Filename)
	return nil
}

func (a *App) files(ctx context.Context, _ invocation) error {
	listing, err := a.library.List(ctx)
	if err != nil {
		return err
	}
	a.printer.Println(ui.Files(listing.Files, listing.Stale))
	return nil
}

// UploadFiles uploads paths outside the shell and waits for every
// transfer. It fails when the session is missing or any file did not make
// it.
func (a *App) UploadFiles(ctx context.Context, paths []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.bus.Close()

	if _, err := a.sessions.RequireSession(ctx); err != nil {
		return err
	}
	a.startWatchers(ctx)

	batch, err := a.submit(ctx, paths)
	if err != nil {
		a.report(ctx, err)
	}
	a.pipeline.Wait()

	failed := 0
	for _, t := range a.pipeline.Tasks() {
		if t.Status == models.UploadError {
			failed++
		}
	}
	a.printer.Println(ui.Tasks(a.pipeline.Tasks()))

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d uploads failed", failed, len(batch.Tasks))
	case err != nil:
		return err
	}
	return nil
}

// Ask streams one answer outside the shell.
func (a *App) Ask(ctx context.Context, question string) error {
	if _, err := a.sessions.RequireSession(ctx); err != nil {
		return err
	}
	err := a.ask(ctx, invocation{Rest: question})
	if err != nil {
		return a.sessions.Guard(ctx, err)
	}
	return nil
}
