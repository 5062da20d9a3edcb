// Command inkwell is a terminal client for the Inkwell blogging platform.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/inkwell/internal/config"
	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/logging"
	"github.com/spf13/pflag"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `inkwell - read and write blog posts from the terminal

Usage:
  inkwell [global flags] <command> [args]

Reading:
  home                              latest published posts (default)
  post <id> [--comment TEXT]        read a post and its comments
  categories                        all categories with post counts
  category <slug>                   published posts in one category

Account:
  register --email E [--password-file F] [--username U] [--full-name N]
  login    --email E [--password-file F]
  logout
  whoami
  profile  [--tab published|draft|all]
  profile edit [--full-name N] [--username U] [--avatar-url URL] [--bio TEXT]

Writing (login required):
  create --title T (--content MD | --file PATH|-) [--excerpt X] [--slug S] [--category SLUG] [--publish]
  edit <id> [--title T] [--content MD | --file PATH|-] [--excerpt X] [--slug S] [--category SLUG] [--publish|--draft]
  delete <id>
  uncomment <comment-id>
  category add --name N [--slug S] [--description D]

Admin:
  migrate [up|down|status]
  version

Global flags:
%s`, fs.FlagUsages())
}

// run parses global flags and dispatches one command. It returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 2
	}

	fs := pflag.NewFlagSet("inkwell", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	cfg.AddFlags(fs)
	help := fs.BoolP("help", "h", false, "show help")
	if err := fs.Parse(args); err != nil {
		usage(stderr, fs)
		return 2
	}
	if *help {
		usage(stdout, fs)
		return 0
	}

	rest := fs.Args()
	cmd := "home"
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}
	if cmd == "help" {
		usage(stdout, fs)
		return 0
	}
	if cmd == "version" {
		fmt.Fprintf(stdout, "inkwell %s (%s)\n", version, buildDate)
		return 0
	}
	h, ok := routes[cmd]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		usage(stderr, fs)
		return 2
	}

	log, err := logging.New(cfg.LogLevel, cfg.Debug)
	if err != nil {
		fmt.Fprintln(stderr, "logging:", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if cmd == "migrate" {
		if cfg.DSN == "" {
			fmt.Fprintln(stderr, "missing database DSN (--dsn or INKWELL_DSN)")
			return 2
		}
		return report(stderr, runMigrate(ctx, cfg.DSN, rest, stdout))
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	a, err := newApp(ctx, cfg, log, stdin, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "connect:", err)
		return 1
	}
	defer a.Close()

	return report(stderr, h(ctx, a, rest))
}

// report prints err in the form the user should see and maps it to an exit code.
func report(w io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errs.ErrNoSession):
		fmt.Fprintln(w, "login required: run `inkwell login`")
	case errors.Is(err, errs.ErrUnauthorized):
		fmt.Fprintln(w, "invalid email or password")
	case errors.Is(err, errs.ErrRateLimited):
		fmt.Fprintln(w, "too many failed attempts, try again later:", err)
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errUsage):
		fmt.Fprintln(w, err)
		return 2
	default:
		fmt.Fprintln(w, "error:", err)
	}
	return 1
}
