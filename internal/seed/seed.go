// Package seed loads providers and their weekly windows from a YAML file.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"appointment-service/api"
	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/sl"

	"github.com/ilyakaznacheev/cleanenv"
)

type File struct {
	Providers []Provider `yaml:"providers"`
}

type Provider struct {
	ID            string       `yaml:"id"`
	Name          string       `yaml:"name"`
	AvailableTime string       `yaml:"available_time"`
	Windows       []api.Window `yaml:"windows"`
}

type Store interface {
	UpsertProvider(ctx context.Context, p models.Provider) error
	ReplaceWeeklyWindows(ctx context.Context, providerID string, windows []schedule.Window) error
}

func Load(path string) (*File, error) {
	const op = "seed.Load"

	var f File
	if err := cleanenv.ReadConfig(path, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &f, nil
}

// Apply upserts every provider and replaces its week. Providers with invalid
// windows are logged and skipped; a store error stops the run. It returns the
// number of providers written.
func Apply(ctx context.Context, log *slog.Logger, store Store, f *File) (int, error) {
	const op = "seed.Apply"

	seeded := 0
	for _, p := range f.Providers {
		log := log.With(slog.String("provider_id", p.ID))

		if p.ID == "" {
			log.Warn("Provider without id skipped")
			continue
		}

		windows, err := api.ToWindows(p.Windows)
		if err == nil {
			err = schedule.ValidateWeek(windows)
		}
		if err != nil {
			log.Warn("Invalid windows, provider skipped", sl.Err(err))
			continue
		}

		if err := store.UpsertProvider(ctx, models.Provider{ID: p.ID, Name: p.Name, AvailableTime: p.AvailableTime}); err != nil {
			return seeded, fmt.Errorf("%s: provider %s: %w", op, p.ID, err)
		}
		if err := store.ReplaceWeeklyWindows(ctx, p.ID, windows); err != nil {
			return seeded, fmt.Errorf("%s: windows of %s: %w", op, p.ID, err)
		}

		log.Debug("Provider seeded", slog.Int("windows", len(windows)))
		seeded++
	}

	return seeded, nil
}
