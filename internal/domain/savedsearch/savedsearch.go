// Package savedsearch defines named, persisted query definitions.
package savedsearch

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
)

// MinNameLocales is the number of locales a saved search name must cover.
const MinNameLocales = 2

// ParseName builds a bilingual saved search name from locale -> label pairs.
func ParseName(m map[string]string) (i18n.Labels, error) {
	return i18n.NewLabels(m, MinNameLocales)
}

// SavedSearch is a user's saved query (immutable value object).
type SavedSearch struct {
	id        string
	owner     string
	name      i18n.Labels
	query     query.Spec
	isDefault bool
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a SavedSearch with a fresh id.
// The query spec is expected to be validated by the caller.
func New(owner string, name i18n.Labels, spec query.Spec, isDefault bool, now time.Time) (SavedSearch, error) {
	if owner == "" {
		return SavedSearch{}, fmt.Errorf("owner is required")
	}
	if err := validateName(name); err != nil {
		return SavedSearch{}, err
	}
	return SavedSearch{
		id:        uuid.NewString(),
		owner:     owner,
		name:      name,
		query:     spec,
		isDefault: isDefault,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a SavedSearch without validation (storage hydration).
func Reconstruct(
	id, owner string, name i18n.Labels, spec query.Spec,
	isDefault bool, createdAt, updatedAt time.Time,
) SavedSearch {
	return SavedSearch{
		id: id, owner: owner, name: name, query: spec,
		isDefault: isDefault, createdAt: createdAt, updatedAt: updatedAt,
	}
}

func validateName(name i18n.Labels) error {
	if len(name) == 0 {
		return fmt.Errorf("name is required")
	}
	if len(name) < MinNameLocales {
		return fmt.Errorf("name needs labels in %d locales, got %d", MinNameLocales, len(name))
	}
	for loc, v := range name {
		if len(v) > 200 {
			return fmt.Errorf("name (%s) too long (max 200)", loc)
		}
	}
	return nil
}

// ID returns the identifier.
func (s SavedSearch) ID() string { return s.id }

// Owner returns the owning user id.
func (s SavedSearch) Owner() string { return s.owner }

// Name returns the localized names.
func (s SavedSearch) Name() i18n.Labels { return s.name }

// Query returns the stored query spec.
func (s SavedSearch) Query() query.Spec { return s.query }

// IsDefault reports whether this is the owner's default search.
func (s SavedSearch) IsDefault() bool { return s.isDefault }

// CreatedAt returns the creation time.
func (s SavedSearch) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last update time.
func (s SavedSearch) UpdatedAt() time.Time { return s.updatedAt }

// Changes lists the fields an update replaces. Nil fields are unchanged.
type Changes struct {
	Name      i18n.Labels
	Query     *query.Spec
	IsDefault *bool
}

// Apply returns a copy with the changes applied.
func (s SavedSearch) Apply(c Changes, now time.Time) (SavedSearch, error) {
	out := s
	if c.Name != nil {
		if err := validateName(c.Name); err != nil {
			return SavedSearch{}, err
		}
		out.name = c.Name
	}
	if c.Query != nil {
		out.query = *c.Query
	}
	if c.IsDefault != nil {
		out.isDefault = *c.IsDefault
	}
	out.updatedAt = now
	return out, nil
}

// WithDefault returns a copy with the default flag set; updatedAt is kept.
func (s SavedSearch) WithDefault(isDefault bool) SavedSearch {
	out := s
	out.isDefault = isDefault
	return out
}
