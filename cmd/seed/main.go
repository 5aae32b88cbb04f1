// Command seed loads parks and their reviews from a JSON file into the catalogue.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/parks-catalog/db"
	"github.com/Clark-Hu/parks-catalog/internal/config"
	"github.com/Clark-Hu/parks-catalog/internal/domain"
	"github.com/Clark-Hu/parks-catalog/internal/logging"
	"github.com/Clark-Hu/parks-catalog/internal/repository"
	"github.com/Clark-Hu/parks-catalog/internal/service"
	"github.com/Clark-Hu/parks-catalog/internal/store"
)

//go:embed parks.json
var defaultData []byte

type seedReview struct {
	Author  *string `json:"author"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

type seedPark struct {
	Name        string       `json:"name"`
	City        *string      `json:"city"`
	Description *string      `json:"description"`
	ImageURL    *string      `json:"imageURL"`
	Reviews     []seedReview `json:"reviews"`
}

type catalog interface {
	CreatePark(ctx context.Context, input service.ParkInput) (domain.Park, error)
	CreateReview(ctx context.Context, parkID int64, input service.ReviewInput) (domain.Review, error)
}

func main() {
	data := flag.String("data", "", "path to seed data file (defaults to the bundled parks)")
	flag.Parse()

	if err := run(*data); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(path string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(config.ServiceName+"-seed", cfg.LogLevel)

	raw := defaultData
	if path != "" {
		if raw, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("read seed data: %w", err)
		}
	}
	entries, err := parseSeed(raw)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	st, err := store.New(ctx, cfg.DBURL, store.OptionsFromConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx, db.Migrations()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := service.NewFromRepository(repository.New(st), logger)
	parks, reviews, err := load(ctx, svc, entries)
	if err != nil {
		return err
	}
	logger.Info("seed complete", slog.Int("parks", parks), slog.Int("reviews", reviews))
	return nil
}

func parseSeed(raw []byte) ([]seedPark, error) {
	var entries []seedPark
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return entries, nil
}

// load creates each park followed by its reviews and stops at the first failure.
func load(ctx context.Context, svc catalog, entries []seedPark) (int, int, error) {
	var parks, reviews int
	for _, entry := range entries {
		park, err := svc.CreatePark(ctx, service.ParkInput{
			Name:        entry.Name,
			City:        entry.City,
			Description: entry.Description,
			ImageURL:    entry.ImageURL,
		})
		if err != nil {
			return parks, reviews, fmt.Errorf("create park %q: %w", entry.Name, err)
		}
		parks++

		for _, r := range entry.Reviews {
			rating := r.Rating
			if _, err := svc.CreateReview(ctx, park.ID, service.ReviewInput{
				Author:  r.Author,
				Rating:  &rating,
				Comment: r.Comment,
			}); err != nil {
				return parks, reviews, fmt.Errorf("create review for %q: %w", entry.Name, err)
			}
			reviews++
		}
	}
	return parks, reviews, nil
}
