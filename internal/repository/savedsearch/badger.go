package savedsearch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain"
	domsaved "github.com/kailas-cloud/recordex/internal/domain/savedsearch"
)

const (
	savedPrefix = "saved:"
	ownerPrefix = "owner:"
)

func savedKey(id string) []byte { return []byte(savedPrefix + id) }

func ownerKey(owner, id string) []byte { return []byte(ownerPrefix + owner + ":" + id) }

func ownerScanPrefix(owner string) []byte { return []byte(ownerPrefix + owner + ":") }

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	log *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, args ...any)   { l.log.Errorf(msg, args...) }
func (l *badgerLogger) Warningf(msg string, args ...any) { l.log.Warnf(msg, args...) }
func (l *badgerLogger) Infof(msg string, args ...any)    { l.log.Debugf(msg, args...) }
func (l *badgerLogger) Debugf(msg string, args ...any)   { l.log.Debugf(msg, args...) }

// Badger is a badger-backed store. Records are JSON under saved:<id>, with an
// owner:<owner>:<id> index key per record.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) a badger database at path.
// inMemory ignores path.
func OpenBadger(path string, inMemory bool, logger *zap.Logger) (*Badger, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &badgerLogger{log: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

// Close closes the database.
func (b *Badger) Close() error { return b.db.Close() }

// Ping reports whether the database is open.
func (b *Badger) Ping(_ context.Context) error {
	if b.db.IsClosed() {
		return errors.New("badger is closed")
	}
	return nil
}

// Save upserts s. When s is the default, the owner's other defaults are
// cleared in the same transaction.
func (b *Badger) Save(_ context.Context, s domsaved.SavedSearch) error {
	data, err := marshal(s)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *badger.Txn) error {
		if s.IsDefault() {
			others, err := listOwner(tx, s.Owner())
			if err != nil {
				return err
			}
			for _, o := range others {
				if o.ID() == s.ID() || !o.IsDefault() {
					continue
				}
				od, err := marshal(o.WithDefault(false))
				if err != nil {
					return err
				}
				if err := tx.Set(savedKey(o.ID()), od); err != nil {
					return fmt.Errorf("clear default %s: %w", o.ID(), err)
				}
			}
		}
		if err := tx.Set(savedKey(s.ID()), data); err != nil {
			return fmt.Errorf("set saved search %s: %w", s.ID(), err)
		}
		return tx.Set(ownerKey(s.Owner(), s.ID()), []byte{})
	})
}

// Get returns a saved search by id.
func (b *Badger) Get(_ context.Context, id string) (domsaved.SavedSearch, error) {
	var out domsaved.SavedSearch
	err := b.db.View(func(tx *badger.Txn) error {
		var err error
		out, err = getRecord(tx, id)
		return err
	})
	return out, err
}

// ListByOwner returns the owner's saved searches, oldest first.
func (b *Badger) ListByOwner(_ context.Context, owner string) ([]domsaved.SavedSearch, error) {
	var out []domsaved.SavedSearch
	err := b.db.View(func(tx *badger.Txn) error {
		var err error
		out, err = listOwner(tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortByCreated(out)
	return out, nil
}

// Delete removes a saved search and its owner index key.
func (b *Badger) Delete(_ context.Context, id string) error {
	return b.db.Update(func(tx *badger.Txn) error {
		s, err := getRecord(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(savedKey(id)); err != nil {
			return fmt.Errorf("delete saved search %s: %w", id, err)
		}
		return tx.Delete(ownerKey(s.Owner(), id))
	})
}

func getRecord(tx *badger.Txn, id string) (domsaved.SavedSearch, error) {
	item, err := tx.Get(savedKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domsaved.SavedSearch{}, fmt.Errorf("saved search %s: %w", id, domain.ErrNotFound)
		}
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search %s: %w", id, err)
	}
	var out domsaved.SavedSearch
	err = item.Value(func(val []byte) error {
		var uerr error
		out, uerr = unmarshal(val)
		return uerr
	})
	return out, err
}

func listOwner(tx *badger.Txn, owner string) ([]domsaved.SavedSearch, error) {
	prefix := ownerScanPrefix(owner)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	var ids []string
	for iter.Rewind(); iter.Valid(); iter.Next() {
		id := string(iter.Item().Key()[len(prefix):])
		if strings.Contains(id, ":") {
			continue // belongs to an owner whose name extends this one
		}
		ids = append(ids, id)
	}
	iter.Close()

	out := make([]domsaved.SavedSearch, 0, len(ids))
	for _, id := range ids {
		s, err := getRecord(tx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
