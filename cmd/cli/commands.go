package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/docchat/internal/client/cli"
	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/config"
	"github.com/dmitrijs2005/docchat/internal/filex"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// Set with -ldflags "-X main.buildVersion=...".
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documents from the terminal",
		Long: `docchat is a terminal client for the document chat service.
Upload PDF, TXT, MD or DOCX files and ask questions about them.`,
		Example: `  # Start the interactive shell
  $ docchat

  # Upload documents
  $ docchat upload ~/reports/q3.pdf notes.md

  # Stream a one-off answer
  $ docchat ask "What was the Q3 revenue?"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *cli.App) error {
				return app.Run(ctx)
			})
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	// the values are read by config.LoadConfig; cobra only has to accept them
	pf := root.PersistentFlags()
	pf.StringP("server", "s", "", "Content API base URL")
	pf.StringP("data-dir", "d", "", "data directory")
	pf.IntP("timeout", "t", 0, "request timeout (in seconds)")
	pf.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	pf.StringP("config", "c", "", "path to a JSON config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "start the interactive shell (default)",
			Args:  cobra.NoArgs,
			RunE:  root.RunE,
		},
		&cobra.Command{
			Use:   "upload <file>...",
			Short: "upload documents and wait for them to finish",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, app *cli.App) error {
					return app.UploadFiles(ctx, args)
				})
			},
		},
		&cobra.Command{
			Use:   "ask <question>",
			Short: "stream a one-off answer",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, app *cli.App) error {
					return app.Ask(ctx, strings.Join(args, " "))
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Build version: %s\n", buildVersion)
				fmt.Fprintf(out, "Build date: %s\n", buildDate)
				fmt.Fprintf(out, "Build commit: %s\n", buildCommit)
			},
		},
	)
	return root
}

// withApp loads the configuration, opens the local store and runs fn with
// a ready App. SIGINT and SIGTERM cancel ctx.
func withApp(ctx context.Context, fn func(ctx context.Context, app *cli.App) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return err
	}
	cfg.DataDir = dir

	log := logging.New(os.Stderr, cfg.LogLevel)

	db, err := client.InitDatabase(ctx, cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer closeDB(ctx, db, log)

	app, err := cli.NewApp(cfg, db, log, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	return fn(ctx, app)
}

func closeDB(ctx context.Context, db *sql.DB, log logging.Logger) {
	if err := db.Close(); err != nil {
		log.Error(ctx, "close local store", "error", err)
	}
}
