package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/storage"
)

// BriefingRepository implements storage.BriefingRepository for BadgerDB.
type BriefingRepository struct {
	backend *Backend
}

var _ storage.BriefingRepository = (*BriefingRepository)(nil)

// NewBriefingRepository creates a new BriefingRepository.
func NewBriefingRepository(backend *Backend) *BriefingRepository {
	return &BriefingRepository{backend: backend}
}

// Close releases repository resources. The shared backend stays open.
func (r *BriefingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *BriefingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddBriefing adds a briefing to storage.
func (r *BriefingRepository) AddBriefing(ctx context.Context, briefing *core.Briefing) (*core.Briefing, error) {
	if err := core.ValidateBriefing(briefing); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeBriefingKey(briefing.Id)

		existing, err := readBriefing(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}

		if briefing.CreatedAt.IsZero() {
			briefing.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
		}

		if err := tx.Set(key, storage.MarshalBriefing(briefing)); err != nil {
			return err
		}

		// Update creation-time index
		dateKey := makeBriefingDateKey(briefing.CreatedAt, briefing.Id)
		if err := tx.Set(dateKey, []byte(briefing.Id.String())); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return briefing, err
}

// UpdateBriefing updates an existing briefing. CreatedAt is immutable,
// so the creation-time index never needs rewriting.
func (r *BriefingRepository) UpdateBriefing(ctx context.Context, briefing *core.Briefing) (*core.Briefing, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeBriefingKey(briefing.Id)

		old, err := readBriefing(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}
		briefing.CreatedAt = old.CreatedAt

		if err := tx.Set(key, storage.MarshalBriefing(briefing)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return briefing, err
}

// GetBriefing retrieves a single briefing by ID.
func (r *BriefingRepository) GetBriefing(ctx context.Context, id uuid.UUID) (*core.Briefing, error) {
	var result *core.Briefing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readBriefing(tx, makeBriefingKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListBriefings retrieves briefings ordered by creation time descending.
func (r *BriefingRepository) ListBriefings(ctx context.Context, series string, limit int) ([]*core.Briefing, error) {
	var results []*core.Briefing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Walk the creation-time index backwards so the newest
		// briefings come first.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialBriefingDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(briefingDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var briefingID uuid.UUID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				briefingID, err = uuid.Parse(string(val))
				return err
			}); err != nil {
				return err
			}

			briefing, err := readBriefing(tx, makeBriefingKey(briefingID))
			if err != nil {
				return err
			}
			if briefing == nil {
				continue
			}
			if series != "" && briefing.Series != series {
				continue
			}

			results = append(results, briefing)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

// MostRecentBriefing returns the newest briefing in a series, excluding
// the given ID.
func (r *BriefingRepository) MostRecentBriefing(ctx context.Context, series string, excluding uuid.UUID) (*core.Briefing, error) {
	briefings, err := r.ListBriefings(ctx, series, 0)
	if err != nil {
		return nil, err
	}
	for _, briefing := range briefings {
		if briefing.Id != excluding {
			return briefing, nil
		}
	}
	return nil, storage.ErrNotFound
}

// readBriefing reads a briefing from the transaction.
// Returns nil without error when the key does not exist.
func readBriefing(tx *badger.Txn, key []byte) (*core.Briefing, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var briefing *core.Briefing
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		briefing, unmarshalErr = storage.UnmarshalBriefing(val)
		return unmarshalErr
	})
	return briefing, err
}
