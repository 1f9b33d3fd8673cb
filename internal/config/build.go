package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/providers"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/storage"
)

// Runtime is the engine configuration built from a Config, plus the
// resources it opened.
type Runtime struct {
	Engine monitor.Config

	closers []func() error
}

// Close releases every resource opened by Build.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Build constructs providers and the engine configuration. Threshold and
// channel validation is left to monitor.New.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	registry := providers.NewRegistry()
	ledgers := make(map[string]storage.Storage)

	for _, pc := range cfg.Providers {
		p, err := rt.buildProvider(ctx, cfg, pc, ledgers)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("provider %q: %w", pc.Name, err)
		}
		if p.Name() == "" {
			_ = rt.Close()
			return nil, fmt.Errorf("provider of type %q has no name", pc.Type)
		}
		if err := registry.Register(p); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}

	engineCfg := monitor.Config{
		Providers:           registry.All(),
		Thresholds:          cfg.Thresholds,
		Channels:            cfg.Channels,
		Interval:            cfg.Monitor.Interval,
		RetentionDays:       cfg.Monitor.RetentionDays,
		ProviderTimeout:     cfg.Monitor.ProviderTimeout,
		NotificationTimeout: cfg.Monitor.NotificationTimeout,
		Logger:              logger,
	}
	if cfg.Monitor.Schedule != "" {
		sched, err := monitor.NewCronSchedule(cfg.Monitor.Schedule)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		engineCfg.Schedule = sched
	}

	rt.Engine = engineCfg
	return rt, nil
}

func (rt *Runtime) buildProvider(ctx context.Context, cfg *Config, pc ProviderConfig, ledgers map[string]storage.Storage) (providers.Provider, error) {
	switch pc.Type {
	case ProviderStatic:
		if pc.Path == "" {
			return nil, fmt.Errorf("static provider needs a path")
		}
		return providers.NewStaticFromFile(pc.Name, pc.Path)

	case ProviderLedger:
		if pc.Name == "" {
			return nil, fmt.Errorf("ledger provider needs a name")
		}
		path := pc.Path
		if path == "" {
			path = cfg.Storage.Path
		}
		path = filepath.Clean(path)
		store, ok := ledgers[path]
		if !ok {
			var err error
			store, err = storage.NewSQLite(path)
			if err != nil {
				return nil, err
			}
			ledgers[path] = store
			rt.closers = append(rt.closers, store.Close)
		}
		return providers.NewLedger(pc.Name, store, nil), nil

	case ProviderAWS:
		return providers.NewAWSCostExplorer(ctx, providers.AWSConfig{
			Name:            pc.Name,
			Profile:         pc.Profile,
			AccessKeyID:     pc.AccessKeyID,
			SecretAccessKey: pc.SecretAccessKey,
		})

	default:
		return nil, fmt.Errorf("unknown provider type %q", pc.Type)
	}
}
