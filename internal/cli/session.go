package cli

import (
	"context"
	"fmt"
	"strings"

	"example.com/charnotes/internal/notes"
	"example.com/charnotes/internal/store"
	"example.com/charnotes/pkg/config"
	"example.com/charnotes/pkg/logs"
)

var loadConfigFn = config.Load

// session holds what one command invocation needs: the resolved config, a
// logger, the open store and a view model over it.
type session struct {
	cfg    *config.Config
	logger *logs.Logger
	store  *store.Store
	notes  *notes.ViewModel
}

func withSession(cmdCtx context.Context, deps commandDeps, fn func(context.Context, *session) error) error {
	ctx := cmdCtx
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := resolveConfig(deps.globals)
	if err != nil {
		return mapCommandError(fmt.Errorf("load config: %w", err))
	}
	logger, err := logs.New(cfg.LogOptions())
	if err != nil {
		return mapCommandError(fmt.Errorf("open log: %w", err))
	}
	defer logger.Close()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("store.open.error", err, map[string]any{"db": cfg.Store.Path})
		return mapCommandError(err)
	}
	defer st.Close()
	logger.Event("store.open", map[string]any{"db": st.Path()})

	sess := &session{
		cfg:    cfg,
		logger: logger,
		store:  st,
		notes:  notes.New(st, logger),
	}
	return mapCommandError(fn(ctx, sess))
}

// resolveConfig loads the config file and environment, then applies flags.
func resolveConfig(g *globalOptions) (*config.Config, error) {
	if g == nil {
		g = &globalOptions{}
	}
	path := strings.TrimSpace(g.ConfigPath)
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := loadConfigFn(path)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(g.DBPath); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(g.LogFile); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(g.LogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
