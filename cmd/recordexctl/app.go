package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/catalog"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	"github.com/kailas-cloud/recordex/internal/domain/search/result"
	"github.com/kailas-cloud/recordex/internal/engine"
	logpkg "github.com/kailas-cloud/recordex/internal/logger"
	"github.com/kailas-cloud/recordex/internal/seed"
	suggestuc "github.com/kailas-cloud/recordex/internal/usecase/suggest"
	"github.com/kailas-cloud/recordex/internal/version"
)

const loggerKey = "logger"

func newApp() *cli.App {
	return &cli.App{
		Name:    "recordexctl",
		Usage:   "Inspect schemas and run searches against an in-process recordex engine",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "lexicon",
				Usage:   "Path to a lexicon YAML file (default: embedded)",
				EnvVars: []string{"RECORDEX_LEXICON"},
			},
			&cli.StringFlag{
				Name:    "schemas",
				Usage:   "Path to a schema catalog YAML file (default: embedded)",
				EnvVars: []string{"RECORDEX_SCHEMAS"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "schemas",
				Usage:  "List registered document types and their fields",
				Action: schemasCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Show fields of a single type",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Index a fixture and run a search over it",
				Action: searchCommand,
				Flags: append(fixtureFlags(),
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Free-text query",
					},
					&cli.StringSliceFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Restrict to document types (repeatable)",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Results per page",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "fuzzy",
						Usage: "Enable fuzzy matching",
					},
					&cli.StringSliceFlag{
						Name:  "facet",
						Usage: "Facet field to count (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "highlight",
						Usage: "Include <em> highlights (JSON output only)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result page as JSON",
					},
				),
			},
			{
				Name:   "suggest",
				Usage:  "Index a fixture and print autocomplete suggestions",
				Action: suggestCommand,
				Flags: append(fixtureFlags(),
					&cli.StringFlag{
						Name:     "prefix",
						Aliases:  []string{"p"},
						Usage:    "Prefix to complete",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Restrict to one document type",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of suggestions",
						Value: suggestuc.DefaultLimit,
					},
					&cli.BoolFlag{
						Name:  "fuzzy",
						Usage: "Also match inside words",
					},
				),
			},
			{
				Name:      "validate-lexicon",
				Usage:     "Validate a lexicon YAML file",
				ArgsUsage: "<path>",
				Action:    validateLexiconCommand,
			},
		},
	}
}

func fixtureFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "fixture",
			Aliases: []string{"f"},
			Usage:   "Path to a seed fixture YAML file (default: embedded sample data)",
		},
		&cli.StringFlag{
			Name:  "tenant",
			Usage: "Tenant to search",
			Value: "demo",
		},
	}
}

func setupLogger(c *cli.Context) error {
	logger, err := logpkg.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	c.App.Metadata = map[string]any{loggerKey: logger}
	return nil
}

func loggerFrom(c *cli.Context) *zap.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// buildEngine creates an engine from the global flags and, when seeded is
// set, indexes the fixture named by --fixture.
func buildEngine(c *cli.Context, seeded bool) (*engine.Engine, error) {
	logger := loggerFrom(c)
	opts := engine.Options{Logger: logger}
	if err := engine.LoadResources(&opts, c.String("lexicon"), c.String("schemas"), ""); err != nil {
		return nil, err
	}
	eng, err := engine.New(opts)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	if !seeded {
		return eng, nil
	}

	docs, err := seed.Default()
	if path := c.String("fixture"); path != "" {
		docs, err = seed.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if _, err := seed.Apply(c.Context, eng.Indexing, docs, logger.Named("seed")); err != nil {
		logger.Warn("fixture indexed with errors", zap.Error(err))
	}
	return eng, nil
}

func schemasCommand(c *cli.Context) error {
	eng, err := buildEngine(c, false)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)

	if docType := c.String("type"); docType != "" {
		s, err := eng.Registry.Get(strings.ToUpper(docType))
		if err != nil {
			return fmt.Errorf("schema %s: %w", docType, err)
		}
		fmt.Fprintln(w, "FIELD\tTYPE\tCAPABILITIES\tBOOST\tLABEL")
		for _, f := range s.Fields() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\n",
				f.Name(), f.Type(), f.Capabilities(), f.Boost(), f.Labels().Get(s.Locale()))
		}
		return w.Flush()
	}

	fmt.Fprintln(w, "TYPE\tLOCALE\tFIELDS\tSEARCHABLE\tFACETABLE")
	for _, s := range eng.Registry.List() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			s.Type(), s.Locale(), len(s.Fields()), len(s.Searchable()), len(s.Facetable()))
	}
	return w.Flush()
}

func searchCommand(c *cli.Context) error {
	eng, err := buildEngine(c, true)
	if err != nil {
		return err
	}
	spec := query.Spec{
		Query:     c.String("query"),
		Types:     upper(c.StringSlice("type")),
		Page:      c.Int("page"),
		PageSize:  c.Int("page-size"),
		Fuzzy:     c.Bool("fuzzy"),
		Facets:    c.StringSlice("facet"),
		Highlight: c.Bool("highlight"),
		Tenant:    c.String("tenant"),
	}
	page, err := eng.Search.Search(contextOf(c), spec, "")
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(pageJSON(page))
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%d result(s), page %d/%d, locale %s\n", page.Total, page.Page, page.TotalPages, page.Locale)
	fmt.Fprintln(w, "SCORE\tTYPE\tID\tTITLE")
	for _, h := range page.Hits {
		fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\n", h.Score(), h.Type(), h.ID(), title(h.Fields()))
	}
	for _, f := range page.Facets {
		fmt.Fprintf(w, "facet %s:", f.Field())
		for _, v := range f.Values() {
			fmt.Fprintf(w, " %s=%d", v.Value, v.Count)
		}
		fmt.Fprintln(w)
	}
	if len(page.Suggestions) > 0 {
		fmt.Fprintf(w, "did you mean: %s\n", strings.Join(page.Suggestions, ", "))
	}
	return w.Flush()
}

func suggestCommand(c *cli.Context) error {
	eng, err := buildEngine(c, true)
	if err != nil {
		return err
	}
	list := eng.Suggest.Suggest(contextOf(c), suggestuc.Request{
		Prefix: c.String("prefix"),
		Type:   strings.ToUpper(c.String("type")),
		Tenant: c.String("tenant"),
		Limit:  c.Int("limit"),
		Fuzzy:  c.Bool("fuzzy"),
	})
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tSOURCE\tTEXT")
	for _, s := range list {
		fmt.Fprintf(w, "%.1f\t%s\t%s\n", s.Score, s.Source, s.Text)
	}
	return w.Flush()
}

func validateLexiconCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("lexicon path is required")
	}
	lex, err := analysis.LoadLexicon(path)
	if err != nil {
		return err
	}
	locales := make([]string, 0, len(lex.Locales))
	for l := range lex.Locales {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	fmt.Fprintf(c.App.Writer, "lexicon ok: version %d, locales %s (default %s), %d synonym groups\n",
		lex.Version, strings.Join(locales, ", "), lex.DefaultLocale, len(lex.Synonyms))

	// A custom lexicon must still cover the catalog locales the server will load.
	schemas, err := catalog.Default()
	if err != nil {
		return err
	}
	analyzer := analysis.New(lex)
	for _, s := range schemas {
		if !analyzer.Supports(s.Locale()) {
			fmt.Fprintf(c.App.Writer, "warning: default schema %s uses locale %s which the lexicon does not declare\n",
				s.Type(), s.Locale())
		}
	}
	return nil
}

func contextOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// title picks a human-readable field for the table view.
func title(fields map[string]any) string {
	for _, k := range []string{"name", "title", "number", "clientName", "description"} {
		if v, ok := fields[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

type hitJSON struct {
	ID         string            `json:"id"`
	Type       string            `json:"entityType"`
	Score      float64           `json:"score"`
	Fields     map[string]any    `json:"fields"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

type facetJSON struct {
	Field  string         `json:"field"`
	Values map[string]int `json:"values"`
}

type pageOutput struct {
	Total       int         `json:"total"`
	Page        int         `json:"page"`
	TotalPages  int         `json:"totalPages"`
	Locale      string      `json:"locale"`
	Results     []hitJSON   `json:"results"`
	Facets      []facetJSON `json:"facets,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

func pageJSON(p result.Page) pageOutput {
	out := pageOutput{
		Total:       p.Total,
		Page:        p.Page,
		TotalPages:  p.TotalPages,
		Locale:      string(p.Locale),
		Results:     make([]hitJSON, len(p.Hits)),
		Suggestions: p.Suggestions,
	}
	for i, h := range p.Hits {
		out.Results[i] = hitJSON{ID: h.ID(), Type: h.Type(), Score: h.Score(), Fields: h.Fields(), Highlights: h.Highlights()}
	}
	for _, f := range p.Facets {
		fj := facetJSON{Field: f.Field(), Values: make(map[string]int, len(f.Values()))}
		for _, v := range f.Values() {
			fj.Values[v.Value] = v.Count
		}
		out.Facets = append(out.Facets, fj)
	}
	return out
}
