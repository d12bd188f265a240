package ekidata2sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

type ImportOpts struct {
	// Store overrides the store selected by the config.
	Store    Store
	Progress Progress
}

// Import loads the ekidata CSV files in cfg.DataDir into a freshly recreated destination.
// Every input file is located, read and decoded before the destination is touched, so an
// input error leaves any existing database as it was. The load itself is one transaction.
func Import(ctx context.Context, cfg Config, opts *ImportOpts) (*Summary, error) {
	if opts == nil {
		opts = &ImportOpts{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info(fmt.Sprintf("Importing %s", cfg.DataDir))

	inputs, err := LocateInputs(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	for _, category := range Categories {
		slog.Debug("Located input", "category", category, "path", inputs[category])
	}

	in, err := ReadInput(inputs, cfg.Encoding)
	if err != nil {
		return nil, err
	}

	loadOpts := &LoadOpts{Progress: opts.Progress}
	if cfg.ClipFeature != "" {
		data, err := os.ReadFile(cfg.ClipFeature)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInput, err)
		}
		feature, err := ParseClipFeature(string(data))
		if err != nil {
			return nil, err
		}
		if _, err := newStationClip(feature, in.Station); err != nil {
			return nil, err
		}
		loadOpts.Clip = feature
	}

	store := opts.Store
	if store == nil {
		store = cfg.NewStore()
	}
	defer func() { _ = store.Close() }()

	if err := store.Recreate(ctx); err != nil {
		return nil, err
	}

	sess, err := store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := Load(ctx, sess, in, loadOpts)
	if err != nil {
		return nil, errors.Join(err, sess.Rollback())
	}
	if err := sess.Commit(); err != nil {
		return nil, errors.Join(err, sess.Rollback())
	}

	if err := store.Close(); err != nil {
		return nil, err
	}
	slog.Info("Committed")
	return summary, nil
}
