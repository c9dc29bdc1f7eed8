// Package container wires application dependencies and manages their
// lifecycle.
package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"churnscope/adapters/blobstore"
	"churnscope/adapters/postgres"
	"churnscope/internal/config"
	"churnscope/internal/explain"
	"churnscope/internal/ingest"
	"churnscope/internal/predict"
	"churnscope/internal/report"
	"churnscope/internal/train"
	"churnscope/ports"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config

	DB       *sqlx.DB
	Files    *blobstore.LocalFileStore
	Models   *blobstore.GobModelStore
	Registry ports.RunRegistry

	Loader    *ingest.Loader
	Trainer   *train.Trainer
	Predictor *predict.Predictor
	Explainer *explain.Explainer
	Reports   *report.Generator
}

// New builds the full dependency graph. The training-run database is
// optional: with no DATABASE_URL the registry stays nil and runs are simply
// not recorded.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	files, err := blobstore.NewLocalFileStore(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("initializing file store: %w", err)
	}
	models, err := blobstore.NewGobModelStore(cfg.Storage.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("initializing model store: %w", err)
	}

	c := &Container{
		Config: cfg,
		Files:  files,
		Models: models,
	}

	if cfg.Database.URL != "" {
		db, err := connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		c.DB = db
		c.Registry = postgres.NewRunRepository(db)
		log.Printf("[Container] Training-run registry enabled")
	} else {
		log.Printf("[Container] No DATABASE_URL set, training runs will not be recorded")
	}

	c.Loader = ingest.NewLoader(files)
	trainCfg := train.DefaultConfig()
	trainCfg.Trees = cfg.Train.Trees
	trainCfg.TestFraction = cfg.Train.TestFraction
	trainCfg.SplitSeed = cfg.Train.Seed
	trainCfg.ForestSeed = cfg.Train.Seed
	c.Trainer = train.NewTrainer(c.Loader, models, c.Registry, trainCfg)
	c.Predictor = predict.NewPredictor(c.Loader, models, files)
	c.Explainer = explain.NewExplainer(c.Loader, models, files)
	c.Reports = report.NewGenerator(c.Loader, models, files)
	return c, nil
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}
