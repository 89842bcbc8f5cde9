package engine

import (
	"fmt"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/catalog"
	"github.com/kailas-cloud/recordex/internal/config"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	analyticsuc "github.com/kailas-cloud/recordex/internal/usecase/analytics"
)

// OptionsFromConfig maps the engine, analysis and limit settings of cfg to
// Options. Stores, sinks and subscribers are left to the caller.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	opts := Options{
		HistoryCap: cfg.Engine.HistoryCap,
		Limits: query.Limits{
			DefaultPageSize:      cfg.Engine.DefaultPageSize,
			MaxPageSize:          cfg.Engine.MaxPageSize,
			DefaultFuzzyDistance: cfg.Engine.FuzzyDistance,
			MaxFuzzyDistance:     cfg.Engine.MaxFuzzyDistance,
		},
		MinFuzzyTermLength: cfg.Engine.MinFuzzyTermLength,
		SuggestionLimit:    cfg.Engine.SuggestionLimit,
		Analytics: analyticsuc.Config{
			LatencyWindow:     cfg.Engine.LatencyWindow,
			TopQueries:        cfg.Engine.TopQueries,
			ZeroResultQueries: cfg.Engine.ZeroResultQueries,
		},
		MaxBatchSize:   cfg.Engine.MaxBatchSize,
		ReindexWorkers: cfg.Engine.ReindexWorkers,
	}
	if err := LoadResources(&opts, cfg.Analysis.LexiconPath, cfg.Analysis.SchemaPath, cfg.Analysis.DefaultLocale); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadResources reads optional lexicon and schema catalog files into opts.
// Empty paths keep the embedded defaults; defaultLocale overrides the
// lexicon's fallback locale when set.
func LoadResources(opts *Options, lexiconPath, schemaPath, defaultLocale string) error {
	if lexiconPath != "" || defaultLocale != "" {
		lex := analysis.DefaultLexicon()
		if lexiconPath != "" {
			loaded, err := analysis.LoadLexicon(lexiconPath)
			if err != nil {
				return fmt.Errorf("load lexicon: %w", err)
			}
			lex = loaded
		}
		if defaultLocale != "" {
			lex.DefaultLocale = defaultLocale
		}
		opts.Lexicon = &lex
	}
	if schemaPath != "" {
		schemas, err := catalog.Load(schemaPath)
		if err != nil {
			return fmt.Errorf("load schemas: %w", err)
		}
		opts.Schemas = schemas
	}
	return nil
}
