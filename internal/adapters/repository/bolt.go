package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/pkg/logger"
)

const (
	// feedbackBucket stores FeedbackRecords keyed by created_at then sequence.
	feedbackBucket = "feedback"

	// userFeedbackBucket stores occupant votes in the same key layout.
	userFeedbackBucket = "user_feedback"

	// settingsBucket stores the singleton comfort range and controller state.
	settingsBucket = "settings"

	comfortKey    = "comfort_range"
	controllerKey = "controller_state"
)

// BoltStore is a bbolt implementation of Store.
type BoltStore struct {
	db   *bbolt.DB
	opts options
}

// NewBoltStore opens (or creates) the database at path and makes sure every bucket exists.
func NewBoltStore(path string, opts ...Option) (*BoltStore, error) {
	o := newOptions("store.bolt", opts)

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{feedbackBucket, userFeedbackBucket, settingsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	o.log.Info(context.Background(), "bolt store opened", logger.String("path", path))
	return &BoltStore{db: db, opts: o}, nil
}

func (s *BoltStore) Name() string { return "bolt" }

func (s *BoltStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(feedbackBucket)) == nil {
			return fmt.Errorf("%s bucket not found", feedbackBucket)
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// timeKey orders keys by time first; the bucket sequence breaks ties in insertion order.
func timeKey(t time.Time, seq uint64) []byte {
	return []byte(fmt.Sprintf("%020d-%020d", t.UnixNano(), seq))
}

func (s *BoltStore) AppendFeedback(ctx context.Context, rec model.FeedbackRecord) (model.FeedbackRecord, error) {
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	rec, err := prepareFeedback(rec, s.opts.now)
	if err != nil {
		return rec, err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return putSequenced(tx, feedbackBucket, rec.CreatedAt, rec)
	})
	if err != nil {
		return rec, fmt.Errorf("append feedback: %w", err)
	}
	return rec, nil
}

func (s *BoltStore) RecentFeedback(ctx context.Context, n int) ([]model.FeedbackRecord, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.FeedbackRecord, 0, n)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return scanNewest(tx, feedbackBucket, n, func(v []byte) error {
			var rec model.FeedbackRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal feedback record: %w", err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	return out, nil
}

func (s *BoltStore) ComfortRange(ctx context.Context) (model.ComfortRange, error) {
	var r model.ComfortRange
	if err := ctx.Err(); err != nil {
		return r, err
	}
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucket)).Get([]byte(comfortKey))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &r)
	})
	return r, err
}

func (s *BoltStore) SaveComfortRange(ctx context.Context, r model.ComfortRange) (model.ComfortRange, error) {
	if err := ctx.Err(); err != nil {
		return r, err
	}
	r, err := prepareRange(r, s.opts.now)
	if err != nil {
		return r, err
	}

	var existing model.ComfortRange
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(settingsBucket))
		if data := b.Get([]byte(comfortKey)); data != nil {
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("failed to unmarshal comfort range: %w", err)
			}
			return ErrAlreadyConfigured
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal comfort range: %w", err)
		}
		return b.Put([]byte(comfortKey), data)
	})
	if errors.Is(err, ErrAlreadyConfigured) {
		return existing, err
	}
	if err != nil {
		return r, fmt.Errorf("save comfort range: %w", err)
	}
	return r, nil
}

func (s *BoltStore) ResetComfortRange(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Delete([]byte(comfortKey))
	})
}

func (s *BoltStore) ControllerState(ctx context.Context) (model.ControllerState, error) {
	var st model.ControllerState
	if err := ctx.Err(); err != nil {
		return st, err
	}
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucket)).Get([]byte(controllerKey))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &st)
	})
	return st, err
}

func (s *BoltStore) SaveControllerState(ctx context.Context, st model.ControllerState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal controller state: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(controllerKey), data)
	})
}

func (s *BoltStore) AppendUserFeedback(ctx context.Context, f model.UserFeedback) (model.UserFeedback, error) {
	if err := ctx.Err(); err != nil {
		return f, err
	}
	f = prepareUserFeedback(f, s.opts.now)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return putSequenced(tx, userFeedbackBucket, f.CreatedAt, f)
	})
	if err != nil {
		return f, fmt.Errorf("append user feedback: %w", err)
	}
	return f, nil
}

func (s *BoltStore) RecentUserFeedback(ctx context.Context, n int) ([]model.UserFeedback, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.UserFeedback, 0, n)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return scanNewest(tx, userFeedbackBucket, n, func(v []byte) error {
			var f model.UserFeedback
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("failed to unmarshal user feedback: %w", err)
			}
			out = append(out, f)
			return nil
		})
	})
	return out, err
}

func putSequenced(tx *bbolt.Tx, bucket string, at time.Time, v any) error {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return fmt.Errorf("%s bucket not found", bucket)
	}
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s entry: %w", bucket, err)
	}
	return b.Put(timeKey(at, seq), data)
}

func scanNewest(tx *bbolt.Tx, bucket string, n int, fn func(v []byte) error) error {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return fmt.Errorf("%s bucket not found", bucket)
	}
	c := b.Cursor()
	count := 0
	for k, v := c.Last(); k != nil && count < n; k, v = c.Prev() {
		if err := fn(v); err != nil {
			return err
		}
		count++
	}
	return nil
}
