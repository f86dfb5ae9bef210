package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wjs2063/tripgraph/internal/capability"
	"github.com/wjs2063/tripgraph/internal/config"
	"github.com/wjs2063/tripgraph/internal/server"
	"github.com/wjs2063/tripgraph/internal/tools"
	"github.com/wjs2063/tripgraph/internal/workflow"
	"github.com/wjs2063/tripgraph/pkg/stategraph"
	"github.com/wjs2063/tripgraph/pkg/stategraph/checkpoint"
)

// application is everything the commands drive.
type application struct {
	workflows server.Workflows
	naverMap  *tools.NaverMap
	tmap      *tools.TMap
	wikipedia *tools.Wikipedia
	guide     server.Guide
	closers   []func() error
}

func (a *application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildApplication wires config into tool clients, model capabilities and
// the workflow service.
func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	client, err := tools.NewClient(cfg.HTTP.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	set := tools.Set{
		Search:    tools.NewNaverSearch(client, cfg.Naver.SearchBaseURL, cfg.Naver.SearchClientID, cfg.Naver.SearchClientSecret),
		Map:       tools.NewNaverMap(client, cfg.Naver.MapBaseURL, cfg.Naver.MapClientID, cfg.Naver.MapClientSecret),
		TMap:      tools.NewTMap(client, cfg.TMap.BaseURL, cfg.TMap.AppKey),
		Wikipedia: tools.NewWikipedia(client, cfg.Wikipedia.BaseURL, cfg.Wikipedia.UserAgent, cfg.Wikipedia.Languages, logger),
		Logger:    logger,
	}

	completer, err := capability.NewCompleter(ctx, cfg.Model, capability.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	agent, err := capability.NewAgent(ctx, completer.Model(), set.EinoTools(), cfg.Agent, capability.WithAgentLogger(logger))
	if err != nil {
		return nil, err
	}
	prompts, err := workflow.DefaultPrompts(cfg.Workflow.Language)
	if err != nil {
		return nil, err
	}

	guide, err := workflow.NewTravelGuide(completer, prompts, logger)
	if err != nil {
		return nil, err
	}

	app := &application{naverMap: set.Map, tmap: set.TMap, wikipedia: set.Wikipedia, guide: guide}

	svcOpts := []workflow.ServiceOption{
		workflow.WithServiceLogger(logger),
		workflow.WithDefaultMaxSteps(cfg.Engine.MaxSteps),
		workflow.WithRunOptions(
			stategraph.WithMetrics(cfg.Engine.Metrics),
			stategraph.WithTracing(cfg.Engine.Tracing),
		),
	}
	store, err := openAudit(cfg.Audit)
	if err != nil {
		return nil, err
	}
	if store != nil {
		svcOpts = append(svcOpts, workflow.WithAuditStore(store))
		app.closers = append(app.closers, store.Close)
	}

	svc, err := workflow.NewService(workflow.Deps{
		Completer: completer,
		Agent:     agent,
		Prompts:   prompts,
	}, svcOpts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.workflows = svc
	return app, nil
}

// openAudit returns nil when auditing is off.
func openAudit(cfg config.AuditConfig) (checkpoint.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := checkpoint.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open audit store %s: %w", cfg.Path, err)
	}
	return store, nil
}
