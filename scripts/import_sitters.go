package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// Standalone importer: upserts sitters and their services from a seeds
// file into an existing database, keyed by email. Unlike the startup
// seeder it also refreshes profiles that are already present.

type SittersConfig struct {
	Sitters []struct {
		models.PetSitter `yaml:",inline"`
		Services         []models.Service `yaml:"services"`
	} `yaml:"sitters"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedsPath = flag.String("seeds", "configs/seeds.yaml", "path to seeds.yaml")
		dbPath    = flag.String("db", "./data/pawsit.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedsPath)
	if err != nil {
		return fmt.Errorf("read seeds: %w", err)
	}
	var cfg SittersConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse seeds: %w", err)
	}
	if len(cfg.Sitters) == 0 {
		return fmt.Errorf("no sitters in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	existing, err := db.GetAllPetSitters(ctx)
	if err != nil {
		return fmt.Errorf("list sitters: %w", err)
	}
	byEmail := make(map[string]*models.PetSitter, len(existing))
	for _, s := range existing {
		byEmail[s.Email] = s
	}

	created := 0
	updated := 0
	for _, seed := range cfg.Sitters {
		if seed.Email == "" {
			continue
		}
		sitter := seed.PetSitter
		if prev, ok := byEmail[sitter.Email]; ok {
			sitter.ID = prev.ID
			if err = db.UpdatePetSitter(ctx, &sitter); err != nil {
				return fmt.Errorf("update %s: %w", sitter.Email, err)
			}
			updated++
		} else {
			if err = db.CreatePetSitter(ctx, &sitter); err != nil {
				return fmt.Errorf("create %s: %w", sitter.Email, err)
			}
			created++
		}

		current, err := db.GetServicesBySitter(ctx, sitter.ID)
		if err != nil {
			return fmt.Errorf("list services for %s: %w", sitter.Email, err)
		}
		byName := make(map[string]*models.Service, len(current))
		for _, svc := range current {
			byName[svc.Name] = svc
		}
		for _, svc := range seed.Services {
			svc.SitterID = sitter.ID
			if prev, ok := byName[svc.Name]; ok {
				svc.ID = prev.ID
				if err = db.UpdateService(ctx, &svc); err != nil {
					return fmt.Errorf("update service %s/%s: %w", sitter.Email, svc.Name, err)
				}
			} else if err = db.CreateService(ctx, &svc); err != nil {
				return fmt.Errorf("create service %s/%s: %w", sitter.Email, svc.Name, err)
			}
		}
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
