// Command ventes manages the apartment sales ledger from the terminal, either
// on the configured store or, with --server, through a running API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ventes/internal/application"
	"github.com/JonMunkholm/ventes/internal/client"
	"github.com/JonMunkholm/ventes/internal/config"
	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/logging"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// opener returns the backend for one command run.
type opener func(ctx context.Context, server string, timeout time.Duration) (backend, error)

// openBackend uses the API when a server URL is set and the store otherwise.
func openBackend(ctx context.Context, server string, timeout time.Duration) (backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	if server == "" {
		server = cfg.Client.Server
	}
	if timeout <= 0 {
		timeout = cfg.Client.Timeout
	}
	if server != "" {
		return remote{client.New(server, timeout)}, nil
	}

	svc, err := application.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return local{svc: svc}, nil
}

type rootOptions struct {
	server  string
	timeout time.Duration
	open    opener
	backend backend
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:           "ventes",
		Short:         "Gestion des ventes d'appartements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.open(cmd.Context(), opts.server, opts.timeout)
			if err != nil {
				return err
			}
			opts.backend = b
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.backend == nil {
				return nil
			}
			return opts.backend.Close()
		},
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	root.PersistentFlags().StringVar(&opts.server, "server", "", "API base URL (default $VENTES_SERVER; empty uses the local store)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "API call timeout (default $VENTES_CLIENT_TIMEOUT)")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newDeleteCmd(opts),
		newClearCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(openBackend)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	if err == nil {
		return exitOK
	}
	return exitError
}

// printError writes the user-facing message, one line per invalid field.
func printError(w io.Writer, err error) {
	var apiErr *client.APIError
	var verrs core.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		fmt.Fprintln(w, "Erreur: certains champs sont invalides")
		for _, v := range verrs {
			fmt.Fprintf(w, "  - %s: %s\n", v.Field, v.Message)
		}
	case errors.As(err, &apiErr) && apiErr.Code != "":
		fmt.Fprintf(w, "Erreur: %s (Code: %s). %s\n", apiErr.Message, apiErr.Code, apiErr.Action)
	case core.IsUserFacing(err):
		fmt.Fprintln(w, "Erreur: "+core.FormatUserError(err))
	default:
		fmt.Fprintln(w, "Erreur: "+err.Error())
	}
}
