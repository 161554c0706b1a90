package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/dmitrijs2005/omnivault/internal/client/client"
	"github.com/dmitrijs2005/omnivault/internal/client/config"
	"github.com/dmitrijs2005/omnivault/internal/client/repositories/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// App carries the wiring shared by every command.
type App struct {
	out     io.Writer
	cfg     *config.Config
	svc     api.VaultServiceClient
	session *client.Session
	closers []func() error
}

func NewApp(out io.Writer) *App {
	return &App{out: out}
}

// connect loads configuration, opens the local state and dials the server.
// It is a no-op when the App was wired beforehand.
func (a *App) connect(cmd *cobra.Command) error {
	if a.svc != nil {
		return nil
	}

	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cmd.Flags(), file)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	ctx := cmd.Context()
	db, err := client.OpenLocalStore(ctx, cfg.State)
	if err != nil {
		return fmt.Errorf("open state %s: %w", cfg.State, err)
	}
	a.closers = append(a.closers, db.Close)
	a.session = client.NewSession(state.NewSQLiteRepository(db))

	tokens, err := a.session.Tokens(ctx)
	if err != nil {
		return err
	}

	onRefresh := func(t client.Tokens) {
		if err := a.session.SaveTokens(context.Background(), t); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to persist refreshed session: %v\n", err)
		}
	}

	c, err := client.NewGRPCClient(cfg.Server, tokens, onRefresh)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Server, err)
	}
	a.closers = append(a.closers, c.Close)
	a.svc = c.Service()
	return nil
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// rpcContext bounds a single command by the configured timeout.
func (a *App) rpcContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg == nil || a.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

// print writes v as YAML, keeping the field order of its JSON encoding.
func (a *App) print(v any) error {
	js, err := json.Marshal(v)
	if err != nil {
		return err
	}
	out, err := yaml.JSONToYAML(js)
	if err != nil {
		return err
	}
	_, err = a.out.Write(out)
	return err
}

// Execute runs vaultctl with os.Args.
func Execute(ctx context.Context) error {
	a := NewApp(os.Stdout)
	defer a.close()
	return NewRootCmd(a).ExecuteContext(ctx)
}
