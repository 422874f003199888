// Package store is an embedded key/value store that plays the primary
// (cache) side of a chained mapper: partial multi-get, best-effort refresh
// backfill, and a TransactionManager implementing the pipeline's transaction
// boundary on the same file.
package store

import (
	"context"
	"time"

	action "github.com/goliatone/go-action"
	"github.com/goliatone/go-action/mapper"
	"github.com/goliatone/go-errors"
	bolt "go.etcd.io/bbolt"
)

// Record is one stored entry.
type Record struct {
	Key   string
	Value []byte
}

// Store wraps a bbolt database with a single bucket.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open opens (creating if needed) the database at path with one bucket.
func Open(path, bucket string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("store requires a bucket name", errors.CategoryBadInput).
			WithTextCode("STORE_NO_BUCKET")
	}

	opts := &bolt.Options{Timeout: time.Second}
	db, err := bolt.Open(path, 0o644, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "store open failed").
			WithTextCode("STORE_OPEN_FAILED").
			WithMetadata(map[string]any{
				"path": path,
			})
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CategoryExternal, "store bucket creation failed").
			WithTextCode("STORE_BUCKET_FAILED")
	}

	return &Store{db: db, bucket: []byte(bucket)}, nil
}

// FromConfig opens the store located by cfg.
func FromConfig(cfg action.StoreConfig, bucket string) (*Store, error) {
	return Open(cfg.Path, bucket)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetMany returns the records found for keys, in key order. Missing keys are
// simply absent from the result.
func (s *Store) GetMany(ctx context.Context, keys []string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found := make([]Record, 0, len(keys))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, key := range keys {
			v := b.Get([]byte(key))
			if v == nil {
				continue
			}
			val := make([]byte, len(v))
			copy(val, v)
			found = append(found, Record{Key: key, Value: val})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PutMany writes records in one transaction.
func (s *Store) PutMany(ctx context.Context, recs []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, rec := range recs {
			if err := b.Put([]byte(rec.Key), rec.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes keys in one transaction.
func (s *Store) Delete(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, key := range keys {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Partial exposes the store as the primary side of a chained mapper: found
// records are the response, keys with no record the unhandled remainder.
func (s *Store) Partial() mapper.PartialMapper[[]string, []Record] {
	return mapper.KeyedPartial(
		mapper.Func[[]string, []Record](s.GetMany),
		func(r Record) string { return r.Key },
	)
}

// Refresh exposes the store as a chained mapper's refresh strategy,
// backfilling fallback results.
func (s *Store) Refresh() mapper.RefreshStrategy[[]string, []Record] {
	return mapper.RefreshFunc[[]string, []Record](func(ctx context.Context, _ []string, recs []Record) error {
		return s.PutMany(ctx, recs)
	})
}
