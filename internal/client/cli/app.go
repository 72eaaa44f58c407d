package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/composer"
	"github.com/dmitrijs2005/docchat/internal/client/config"
	"github.com/dmitrijs2005/docchat/internal/client/conversations"
	"github.com/dmitrijs2005/docchat/internal/client/events"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/render"
	convcache "github.com/dmitrijs2005/docchat/internal/client/repositories/conversations"
	filecache "github.com/dmitrijs2005/docchat/internal/client/repositories/files"
	"github.com/dmitrijs2005/docchat/internal/client/services"
	"github.com/dmitrijs2005/docchat/internal/client/session"
	"github.com/dmitrijs2005/docchat/internal/client/ui"
	"github.com/dmitrijs2005/docchat/internal/client/upload"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// API is the backend surface used by the shell.
type API interface {
	client.ContentAPI
	OAuthLoginURL() string
}

// Asker streams one-off answers.
type Asker interface {
	Ask(ctx context.Context, question string, onChunk func(string)) (string, error)
}

type App struct {
	cfg *config.Config
	log logging.Logger
	db  *sql.DB

	api      API
	stream   Asker
	sessions *session.Manager
	bus      *events.Bus
	store    *conversations.Store
	composer *composer.Composer
	pipeline *upload.Pipeline
	library  services.LibraryService
	profile  services.ProfileService
	admin    services.AdminService

	renderer  *render.Renderer
	printer   *ui.Printer
	reader    *bufio.Reader
	clipboard render.Clipboard
	now       func() time.Time
	commands  []command

	mu      sync.Mutex
	view    session.View
	actions []*render.CopyAction
}

// NewApp wires the shell against the Content API at cfg.ServerURL. db must
// already be migrated.
func NewApp(cfg *config.Config, db *sql.DB, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	a := newApp(cfg, db, log, in, out)

	// the session is the credential source of both transports
	api, err := client.NewHTTPClient(cfg.ServerURL, a)
	if err != nil {
		return nil, err
	}
	stream, err := client.NewStreamClient(cfg.ServerURL, a, log)
	if err != nil {
		return nil, err
	}

	a.wire(api, stream)
	return a, nil
}

func newApp(cfg *config.Config, db *sql.DB, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		db:        db,
		renderer:  render.New(),
		printer:   ui.NewPrinter(out),
		reader:    bufio.NewReader(in),
		clipboard: render.SystemClipboard{},
		now:       time.Now,
	}
}

func (a *App) wire(api API, stream Asker) {
	a.api = api
	a.stream = stream
	a.bus = events.NewBus()
	a.sessions = session.NewManager(a.db, api, a, a.log)
	a.store = conversations.NewStore(api, convcache.NewSQLiteRepository(a.db), a.cfg.RequestTimeout, a.log)
	a.composer = composer.New(api, a.store, a.bus, a.cfg.RequestTimeout, a.log)
	a.pipeline = upload.New(api, a.bus, upload.Options{
		Tick:        a.cfg.ProgressTick,
		Step:        a.cfg.ProgressStep,
		Concurrency: a.cfg.UploadConcurrency,
		Timeout:     a.cfg.UploadTimeout,
	}, a.log)
	a.library = services.NewLibraryService(api, filecache.NewSQLiteRepository(a.db), a.cfg.RequestTimeout, a.log)
	a.profile = services.NewProfileService(api, a.sessions, a.cfg.RequestTimeout, a.log)
	a.admin = services.NewAdminService(api, a.sessions, a.cfg.RequestTimeout, a.log)
	a.commands = a.commandTable()
}

// Token implements client.TokenSource.
func (a *App) Token() string {
	if a.sessions == nil {
		return ""
	}
	return a.sessions.Token()
}

// Navigate implements session.Navigator.
func (a *App) Navigate(v session.View) {
	a.mu.Lock()
	prev := a.view
	a.view = v
	a.mu.Unlock()
	if prev == v {
		return
	}

	switch v {
	case session.ViewSignIn:
		a.printer.Warning("Not signed in. Use login, register or oauth.")
	case session.ViewChat:
		a.printer.Info("Chat: type a question about your documents, or 'help' for commands")
	case session.ViewUpload:
		a.printer.Info("Uploads: 'tasks' shows progress, 'remove <n>' drops a task")
	case session.ViewProfile:
		a.printer.Info("Profile")
	case session.ViewAdmin:
		a.printer.Info("Admin dashboard")
	}
}

func (a *App) currentView() session.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) prompt() string {
	cur := a.sessions.Current()
	if cur == nil {
		return "docchat (signed out)> "
	}
	name := cur.Username()
	if name == "" {
		name = "signed in"
	}
	view := a.currentView()
	if view == 0 {
		view = session.ViewChat
	}
	return fmt.Sprintf("docchat (%s · %s)> ", name, view)
}

// Run starts the interactive shell on the configured input and blocks until
// the user leaves.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.bus.Close()

	a.printer.Banner(a.cfg.ServerURL)
	a.startWatchers(ctx)
	a.resume(ctx)

	runREPL(ctx, a, a.prompt, a.reader, a.printer.Writer())

	if pending := a.pendingUploads(); pending > 0 {
		a.printer.Info("Waiting for %d upload(s) to finish...", pending)
	}
	a.pipeline.Wait()
	return nil
}

// resume restores a persisted session and opens the chat view, or asks
// for sign-in.
func (a *App) resume(ctx context.Context) {
	s, err := a.sessions.RequireSession(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrUnauthenticated) {
			a.report(ctx, err)
		}
		return
	}
	if !s.Hydrated() {
		callCtx, cancel := a.callContext(ctx)
		if _, err := a.sessions.Hydrate(callCtx); err != nil {
			a.log.Warn(ctx, "could not fetch profile for stored credential", "error", err)
		}
		cancel()
		if a.sessions.Token() == "" {
			return
		}
	}
	a.enterChat(ctx)
}

func (a *App) enterChat(ctx context.Context) {
	a.Navigate(session.ViewChat)
	a.report(ctx, a.listConversations(ctx))
}

func (a *App) startWatchers(ctx context.Context) {
	storeEvents, _ := a.bus.Subscribe()
	go a.store.Watch(ctx, storeEvents)

	uiEvents, _ := a.bus.Subscribe()
	go a.watchEvents(ctx, uiEvents)
}

func (a *App) watchEvents(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			switch e.Kind {
			case events.UploadSucceeded:
				a.printer.Success("Successfully uploaded %s!", e.Name)
			case events.BatchCompleted:
				a.printer.Info("All uploads finished")
				a.Navigate(session.ViewChat)
			}
		}
	}
}

func (a *App) pendingUploads() int {
	n := 0
	for _, t := range a.pipeline.Tasks() {
		if !t.Status.Terminal() {
			n++
		}
	}
	return n
}

func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.RequestTimeout)
}

// Execute runs one line of input.
func (a *App) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name := strings.ToLower(fields[0])

	cmd, ok := a.lookup(name)
	if !ok {
		if a.currentView() == session.ViewChat && a.sessions.Token() != "" {
			a.report(ctx, a.send(ctx, line))
			return false
		}
		a.printer.Error("Unknown command: %s (type 'help')", fields[0])
		return false
	}
	if cmd.quit {
		a.printer.Println("Bye!")
		return true
	}

	if cmd.auth {
		if _, err := a.sessions.RequireSession(ctx); err != nil {
			if !errors.Is(err, common.ErrUnauthenticated) {
				a.report(ctx, err)
			}
			return false
		}
	}

	inv := invocation{Args: fields[1:], Rest: strings.TrimSpace(line[len(fields[0]):])}
	a.report(ctx, cmd.run(ctx, inv))
	return false
}

// usageError is returned by a command invoked with bad arguments.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

// report shows err to the user. Authentication failures tear the session
// down first.
func (a *App) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	err = a.sessions.Guard(ctx, err)

	var usage usageError
	switch {
	case errors.As(err, &usage):
		a.printer.Warning("Usage: %s", string(usage))
	case errors.Is(err, common.ErrUnauthenticated):
		a.store.NewConversation()
		a.setActions(nil)
		a.printer.Error("Your session has ended, please sign in again")
	case errors.Is(err, common.ErrForbidden):
		a.printer.Error("Admin access required")
	case errors.Is(err, common.ErrBusy):
		a.printer.Warning("Still waiting for the previous answer")
	case errors.Is(err, common.ErrEmptyMessage):
		a.printer.Warning("Message is empty")
	default:
		a.printer.Failure(err)
	}
}

func (a *App) setActions(actions []*render.CopyAction) {
	a.mu.Lock()
	a.actions = actions
	a.mu.Unlock()
}

// show prints msgs and registers their copy actions. With reset the
// numbering starts over, otherwise it continues.
func (a *App) show(msgs []models.Message, reset bool) {
	a.mu.Lock()
	if reset {
		a.actions = nil
	}
	first := len(a.actions) + 1
	a.mu.Unlock()

	out, actions := ui.Transcript(a.renderer, msgs, a.now(), first)

	a.mu.Lock()
	a.actions = append(a.actions, actions...)
	a.mu.Unlock()

	if out != "" {
		a.printer.Println(out)
	}
}

func (a *App) copyAction(n int) (*render.CopyAction, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n < 1 || n > len(a.actions) {
		return nil, false
	}
	return a.actions[n-1], true
}
