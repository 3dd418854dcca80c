package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/autobooks/autobooks/internal/cli"
	"github.com/autobooks/autobooks/internal/config"
	"github.com/autobooks/autobooks/internal/engine"
	"github.com/autobooks/autobooks/internal/ledger"
	"github.com/autobooks/autobooks/internal/pattern"
	"github.com/autobooks/autobooks/internal/rules"
)

// app bundles the wired components a command needs.
type app struct {
	cfg    config.Config
	engine *engine.Engine
	rules  *rules.Store
	ledger *ledger.Store
}

// newApp assembles the full pipeline from configuration.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	ruleStore, err := rules.NewStore(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule store: %w", err)
	}

	index, err := pattern.NewIndex(cfg.PatternDBPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern index: %w", err)
	}

	ledgerStore, err := ledger.NewStore(cfg.LedgerDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := ledgerStore.Migrate(ctx); err != nil {
		_ = ledgerStore.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	prompter := cli.NewPrompter(cfg, nil, nil)

	return &app{
		cfg:    cfg,
		engine: engine.New(cfg, ruleStore, index, prompter),
		rules:  ruleStore,
		ledger: ledgerStore,
	}, nil
}

func (a *app) Close() {
	_ = a.ledger.Close()
}
