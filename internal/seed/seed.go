// Package seed loads fixture documents from YAML and indexes them.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	dombatch "github.com/kailas-cloud/recordex/internal/domain/batch"
	indexinguc "github.com/kailas-cloud/recordex/internal/usecase/indexing"
)

//go:embed default.yaml
var defaultFixture []byte

// File is the top-level fixture document.
type File struct {
	Documents []Document `yaml:"documents"`
}

// Document is one fixture document.
type Document struct {
	Type   string         `yaml:"type"`
	Tenant string         `yaml:"tenant"`
	Locale string         `yaml:"locale,omitempty"`
	Fields map[string]any `yaml:"fields"`
}

// Indexer is the bulk indexing contract.
type Indexer interface {
	BulkIndex(ctx context.Context, items []indexinguc.Input) []dombatch.Result
}

// Default returns the embedded sample fixture.
func Default() ([]indexinguc.Input, error) {
	return Parse(defaultFixture)
}

// Load reads a fixture file from disk.
func Load(path string) ([]indexinguc.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes fixture YAML into indexing inputs.
func Parse(data []byte) ([]indexinguc.Input, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	out := make([]indexinguc.Input, 0, len(f.Documents))
	for i, d := range f.Documents {
		if d.Type == "" {
			return nil, fmt.Errorf("fixture document %d: type is required", i)
		}
		out = append(out, indexinguc.Input{
			Type:   d.Type,
			Tenant: d.Tenant,
			Locale: d.Locale,
			Fields: d.Fields,
		})
	}
	return out, nil
}

// Apply indexes docs. Failed items are logged and joined into the returned
// error; the rest stay indexed.
func Apply(ctx context.Context, idx Indexer, docs []indexinguc.Input, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		indexed int
		errs    []error
	)
	for _, r := range idx.BulkIndex(ctx, docs) {
		if r.Err() != nil {
			logger.Warn("seed document rejected", zap.Int("index", r.Index()), zap.Error(r.Err()))
			errs = append(errs, fmt.Errorf("document %d: %w", r.Index(), r.Err()))
			continue
		}
		indexed++
	}
	logger.Info("seed applied", zap.Int("indexed", indexed), zap.Int("failed", len(errs)))
	return indexed, errors.Join(errs...)
}
