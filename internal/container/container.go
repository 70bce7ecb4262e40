// Package container provides dependency injection for the finledger
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"jmoretti/finledger/internal/categorizer"
	"jmoretti/finledger/internal/config"
	"jmoretti/finledger/internal/ingest"
	"jmoretti/finledger/internal/liability"
	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/ofxparser"
	"jmoretti/finledger/internal/parsers"
	"jmoretti/finledger/internal/pdfparser"
	"jmoretti/finledger/internal/pipeline"
	"jmoretti/finledger/internal/preferences"
	"jmoretti/finledger/internal/store"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation: all fields are private and
// only reachable through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       store.Store
	engine      *categorizer.Engine
	learner     *preferences.Learner
	liabilities *liability.Service
	ingest      *ingest.Service
	pipeline    *pipeline.Service

	closeStore func() error
}

// Options tweak container construction, mostly for tests.
type Options struct {
	// InMemory replaces the SQLite store with the in-memory store.
	InMemory bool
	// Extractor overrides the PDF text extractor (nil uses pdftotext).
	Extractor pdfparser.Extractor
	// AIClient overrides the Gemini client (nil follows configuration).
	AIClient categorizer.AIClient
}

// New creates and wires all application dependencies.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	logging.SetLogger(logger)

	c := &Container{logger: logger, config: cfg}

	if opts.InMemory {
		c.store = store.NewMemoryStore()
		c.closeStore = func() error { return nil }
	} else {
		path := filepath.Join(cfg.Data.Directory, cfg.Data.DatabaseFile)
		st, err := store.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		c.store = st
		c.closeStore = st.Close
	}

	rules, err := loadRules(cfg, logger)
	if err != nil {
		return nil, err
	}

	aiClient := opts.AIClient
	if aiClient == nil && cfg.AI.Enabled && cfg.AI.APIKey != "" {
		timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
		client, err := categorizer.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("creating AI client: %w", err)
		}
		aiClient = client
		logger.Info("AI categorization enabled")
	} else if aiClient == nil {
		logger.Info("AI categorization disabled")
	}

	c.learner = preferences.NewLearner(c.store, logger)
	cacheTTL := time.Duration(cfg.Categorization.CacheTTLMinutes) * time.Minute
	c.engine = categorizer.NewEngine(aiClient, categorizer.NewRuleCategorizer(rules), c.learner, cacheTTL, logger)

	c.liabilities = liability.NewService(c.store, logger)

	extractor := opts.Extractor
	if extractor == nil {
		extractor = pdfparser.NewPdftotextExtractor(cfg.PDF.PdftotextPath)
	}
	c.ingest = ingest.NewService(
		parsers.NewChain(logger),
		ofxparser.New(logger),
		pdfparser.New(extractor, logger),
		c.store,
		logger,
	)

	c.pipeline = pipeline.NewService(c.ingest, c.engine, c.learner, c.liabilities, c.store, logger)
	return c, nil
}

func loadRules(cfg *config.Config, logger logging.Logger) ([]categorizer.KeywordRule, error) {
	if cfg.Categorization.RulesFile == "" {
		return categorizer.DefaultKeywordRules(), nil
	}
	rules, err := categorizer.LoadKeywordRules(cfg.Categorization.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading keyword rules: %w", err)
	}
	logger.Info("loaded keyword rules",
		logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return rules, nil
}

// Close releases held resources, currently the database handle.
func (c *Container) Close() error {
	if c.closeStore == nil {
		return nil
	}
	return c.closeStore()
}

func (c *Container) Logger() logging.Logger           { return c.logger }
func (c *Container) Config() *config.Config           { return c.config }
func (c *Container) Store() store.Store               { return c.store }
func (c *Container) Engine() *categorizer.Engine      { return c.engine }
func (c *Container) Learner() *preferences.Learner    { return c.learner }
func (c *Container) Liabilities() *liability.Service  { return c.liabilities }
func (c *Container) Ingest() *ingest.Service          { return c.ingest }
func (c *Container) Pipeline() *pipeline.Service      { return c.pipeline }
