package savedsearch

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
)

// record is the stored JSON form of a saved search.
type record struct {
	ID        string      `json:"id"`
	Owner     string      `json:"owner"`
	Name      i18n.Labels `json:"name"`
	Query     query.Spec  `json:"query"`
	IsDefault bool        `json:"isDefault"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toRecord(s domsaved.SavedSearch) record {
	return record{
		ID:        s.ID(),
		Owner:     s.Owner(),
		Name:      s.Name(),
		Query:     s.Query(),
		IsDefault: s.IsDefault(),
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
	}
}

func (r record) toDomain() domsaved.SavedSearch {
	return domsaved.Reconstruct(r.ID, r.Owner, r.Name, r.Query, r.IsDefault, r.CreatedAt, r.UpdatedAt)
}

func marshal(s domsaved.SavedSearch) ([]byte, error) {
	data, err := json.Marshal(toRecord(s))
	if err != nil {
		return nil, fmt.Errorf("marshal saved search: %w", err)
	}
	return data, nil
}

func unmarshal(data []byte) (domsaved.SavedSearch, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("unmarshal saved search: %w", err)
	}
	return r.toDomain(), nil
}
