package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/engine"
)

func TestDefault_IndexesCleanly(t *testing.T) {
	docs, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	eng, err := engine.New(engine.Options{})
	require.NoError(t, err)

	n, err := Apply(context.Background(), eng.Indexing, docs, nil)
	require.NoError(t, err)
	assert.Equal(t, len(docs), n)

	stats := eng.Indexing.Stats(context.Background())
	assert.Equal(t, 3, stats.ByType["INVOICE"])
	assert.Equal(t, 2, stats.ByType["CLIENT"])
}

func TestParse(t *testing.T) {
	docs, err := Parse([]byte(`
documents:
  - type: CLIENT
    tenant: t1
    locale: en
    fields: {name: Acme, isActive: true}
`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "CLIENT", docs[0].Type)
	assert.Equal(t, "t1", docs[0].Tenant)
	assert.Equal(t, "en", docs[0].Locale)
	assert.Equal(t, "Acme", docs[0].Fields["name"])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("documents: [{tenant: t1}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("documents: {"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/fixture.yaml")
	assert.Error(t, err)
}

func TestApply_PartialFailure(t *testing.T) {
	docs, err := Parse([]byte(`
documents:
  - type: CLIENT
    tenant: t1
    fields: {name: Acme}
  - type: NOPE
    tenant: t1
    fields: {name: Ghost}
  - type: CLIENT
    tenant: t1
    fields: {city: Cluj}
`))
	require.NoError(t, err)

	eng, err := engine.New(engine.Options{})
	require.NoError(t, err)

	n, err := Apply(context.Background(), eng.Indexing, docs, nil)
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidType))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
