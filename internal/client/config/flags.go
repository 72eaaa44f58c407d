package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/docchat/internal/flagx"
)

var ownFlags = []string{"s", "server", "d", "data-dir", "t", "timeout", "l", "log-level"}

// parseFlags populates selected Config fields from args.
//
// Only the flags listed in ownFlags are looked at (in single or double dash
// form), so subcommands and other components keep theirs.
func parseFlags(cfg *Config, args []string) error {
	allowed := make([]string, 0, 2*len(ownFlags))
	for _, f := range ownFlags {
		allowed = append(allowed, "-"+f, "--"+f)
	}
	own := flagx.FilterArgs(args, allowed)

	fs := flag.NewFlagSet("docchat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "Content API base URL")
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Content API base URL")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	seconds := int(cfg.RequestTimeout.Seconds())
	fs.IntVar(&seconds, "t", seconds, "request timeout (in seconds)")
	fs.IntVar(&seconds, "timeout", seconds, "request timeout (in seconds)")

	if err := fs.Parse(own); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" || f.Name == "timeout" {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	})
	return nil
}
