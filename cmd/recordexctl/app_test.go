package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"recordexctl"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSchemasCommand(t *testing.T) {
	t.Run("lists every default type", func(t *testing.T) {
		out, err := run(t, "schemas")
		require.NoError(t, err)
		for _, typ := range []string{"INVOICE", "CLIENT", "PRODUCT", "DOCUMENT", "TRANSACTION", "EMPLOYEE", "REPORT"} {
			assert.Contains(t, out, typ)
		}
	})

	t.Run("fields of one type", func(t *testing.T) {
		out, err := run(t, "schemas", "--type", "client")
		require.NoError(t, err)
		assert.Contains(t, out, "FIELD")
		assert.Contains(t, out, "cui")
		assert.Contains(t, out, "searchable")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := run(t, "schemas", "--type", "VENDOR")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "VENDOR")
	})

	t.Run("custom catalog", func(t *testing.T) {
		path := writeFile(t, "schemas.yaml", `
schemas:
  - type: VENDOR
    locale: en
    fields:
      - name: name
        type: text
        labels: {en: Name, ro: Nume}
        capabilities: [searchable]
`)
		out, err := run(t, "--schemas", path, "schemas")
		require.NoError(t, err)
		assert.Contains(t, out, "VENDOR")
		assert.NotContains(t, out, "INVOICE")
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("table output over embedded fixture", func(t *testing.T) {
		out, err := run(t, "search", "--query", "laptop", "--type", "product")
		require.NoError(t, err)
		assert.Contains(t, out, "1 result(s)")
		assert.Contains(t, out, "Laptop Dell Inspiron 15")
	})

	t.Run("json output with facets", func(t *testing.T) {
		out, err := run(t, "search", "--type", "INVOICE", "--facet", "status", "--json")
		require.NoError(t, err)

		var page pageOutput
		require.NoError(t, json.Unmarshal([]byte(out), &page))
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Facets, 1)
		assert.Equal(t, "status", page.Facets[0].Field)
		assert.Equal(t, 2, page.Facets[0].Values["PAID"])
		assert.Equal(t, 1, page.Facets[0].Values["SENT"])
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		out, err := run(t, "search", "--query", "laptop", "--tenant", "other")
		require.NoError(t, err)
		assert.Contains(t, out, "0 result(s)")
	})

	t.Run("custom fixture", func(t *testing.T) {
		path := writeFile(t, "fixture.yaml", `
documents:
  - type: CLIENT
    tenant: demo
    fields:
      name: Acme Industries
`)
		out, err := run(t, "search", "--fixture", path, "--query", "acme")
		require.NoError(t, err)
		assert.Contains(t, out, "Acme Industries")
		assert.NotContains(t, out, "Laptop")
	})

	t.Run("invalid query", func(t *testing.T) {
		_, err := run(t, "search", "--type", "NOPE")
		require.Error(t, err)
	})
}

func TestSuggestCommand(t *testing.T) {
	t.Run("prefix is required", func(t *testing.T) {
		_, err := run(t, "suggest")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prefix")
	})

	t.Run("field values", func(t *testing.T) {
		out, err := run(t, "suggest", "--prefix", "lap", "--type", "PRODUCT")
		require.NoError(t, err)
		assert.Contains(t, out, "FIELD_VALUE")
		assert.Contains(t, out, "Laptop Dell Inspiron 15")
	})

	t.Run("limit has default value", func(t *testing.T) {
		app := newApp()
		cmd := app.Command("suggest")
		require.NotNil(t, cmd)
		for _, f := range cmd.Flags {
			if names := f.Names(); names[0] == "limit" {
				assert.Equal(t, "10", f.(interface{ GetValue() string }).GetValue())
				return
			}
		}
		t.Fatal("limit flag not found")
	})
}

func TestValidateLexiconCommand(t *testing.T) {
	t.Run("valid lexicon without ro warns about ro schemas", func(t *testing.T) {
		path := writeFile(t, "lexicon.yaml", `
version: 2
default_locale: en
locales:
  en:
    stop_words: [the, and]
    markers: [the]
`)
		out, err := run(t, "validate-lexicon", path)
		require.NoError(t, err)
		assert.Contains(t, out, "lexicon ok: version 2, locales en (default en), 0 synonym groups")
		assert.Contains(t, out, "warning: default schema INVOICE")
	})

	t.Run("invalid lexicon", func(t *testing.T) {
		path := writeFile(t, "lexicon.yaml", "version: 0\n")
		_, err := run(t, "validate-lexicon", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := run(t, "validate-lexicon")
		require.Error(t, err)
	})
}
