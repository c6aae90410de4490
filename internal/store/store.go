// Package store persists the anonymous allowance flag, the token balance and
// the analysis history in a BoltDB file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/repcheck/internal/apperr"
	"github.com/ayoisaiah/repcheck/internal/models"
	"github.com/ayoisaiah/repcheck/internal/osutil"
	"github.com/ayoisaiah/repcheck/internal/timeutil"
)

const (
	gateBucket     = "gate"
	accountBucket  = "account"
	analysisBucket = "analyses"

	exhaustedKey = "anonymous_exhausted"
	balanceKey   = "balance"
)

var errAlreadyRunning = &apperr.Error{
	Message: "is repcheck already running? Only one instance can use the database at a time",
}

// DB is the database storage interface.
type DB interface {
	// AnonymousExhausted reports whether the anonymous allowance has been
	// recorded as used.
	AnonymousExhausted() (bool, error)
	SetAnonymousExhausted(exhausted bool) error
	// Balance returns the last published balance, or nil if none was
	// recorded.
	Balance() (*models.Balance, error)
	SaveBalance(b models.Balance) error
	SaveAnalysis(a *models.Analysis) error
	// GetAnalyses returns the analyses completed between since and until,
	// oldest first. An empty exercises slice matches every exercise.
	GetAnalyses(since, until time.Time, exercises []string) ([]models.Analysis, error)
	Close() error
}

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// NewClient opens the database at dbPath, creating it and its buckets if
// needed.
func NewClient(dbPath string) (*Client, error) {
	db, err := bolt.Open(
		dbPath,
		osutil.FilePermission,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errAlreadyRunning
		}

		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{gateBucket, accountBucket, analysisBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Client{db}, nil
}

func (c *Client) AnonymousExhausted() (bool, error) {
	var exhausted bool

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(gateBucket)).Get([]byte(exhaustedKey))
		exhausted = bytes.Equal(v, []byte("1"))

		return nil
	})

	return exhausted, err
}

func (c *Client) SetAnonymousExhausted(exhausted bool) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(gateBucket))

		if !exhausted {
			return b.Delete([]byte(exhaustedKey))
		}

		return b.Put([]byte(exhaustedKey), []byte("1"))
	})
}

func (c *Client) Balance() (*models.Balance, error) {
	var bal *models.Balance

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(accountBucket)).Get([]byte(balanceKey))
		if len(v) == 0 {
			return nil
		}

		bal = &models.Balance{}

		return json.Unmarshal(v, bal)
	})

	return bal, err
}

func (c *Client) SaveBalance(b models.Balance) error {
	value, err := json.Marshal(b)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(accountBucket)).Put([]byte(balanceKey), value)
	})
}

func (c *Client) SaveAnalysis(a *models.Analysis) error {
	key := timeutil.ToKey(a.CompletedAt)

	value, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(analysisBucket)).Put(key, value)
	})
}

func (c *Client) GetAnalyses(
	since, until time.Time,
	exercises []string,
) ([]models.Analysis, error) {
	var analyses []models.Analysis

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(analysisBucket)).Cursor()

		lower := timeutil.ToKey(since)
		upper := timeutil.ToKey(until)

		for k, v := cur.Seek(lower); k != nil && bytes.Compare(k, upper) <= 0; k, v = cur.Next() {
			var a models.Analysis

			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}

			if len(exercises) != 0 && !slices.Contains(exercises, a.Exercise) {
				continue
			}

			analyses = append(analyses, a)
		}

		return nil
	})

	return analyses, err
}
