/*
Package journal keeps track of submissions whose fate is unknown (the
transaction was sent, but the connection was lost before the outcome was
received). Such transactions must be looked up by hash before any retry,
the journal remembers them across runs until they're resolved.
*/
package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/nspcc-dev/near-go/pkg/io"
	"github.com/nspcc-dev/near-go/pkg/util"
	"go.etcd.io/bbolt"
)

// Bucket is the bucket used in boltdb to store entries.
var Bucket = []byte("indeterminate")

// ErrNotFound is returned by Get for unknown hashes.
var ErrNotFound = errors.New("entry not found")

// Journal is the BoltDB-backed set of entries keyed by transaction hash.
// It's safe for concurrent use.
type Journal struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the journal file.
func Open(fileName string) (*Journal, error) {
	var opts = &bbolt.Options{Timeout: time.Second}
	fileMode := os.FileMode(0600)
	dir := filepath.Dir(fileName)
	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return nil, fmt.Errorf("could not create dir for journal: %w", err)
	}
	db, err := bbolt.Open(fileName, fileMode, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists(Bucket)
		if err != nil {
			return fmt.Errorf("could not create root bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			err = fmt.Errorf("%w, failed to close journal: %w", err, closeErr)
		}
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Put stores the entry replacing the previous one with the same hash.
func (j *Journal) Put(e Entry) error {
	val, err := io.ToBytes(&e)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(Bucket).Put(e.Hash[:], val)
	})
}

// Get returns the entry with the given hash.
func (j *Journal) Get(h util.CryptoHash) (Entry, error) {
	var e Entry
	err := j.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket(Bucket).Get(h[:])
		if val == nil {
			return ErrNotFound
		}
		return io.FromBytes(val, &e)
	})
	return e, err
}

// Delete removes the entry, deleting an unknown hash is not an error.
func (j *Journal) Delete(h util.CryptoHash) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(Bucket).Delete(h[:])
	})
}

// List returns all entries of the network (any network if empty) ordered by
// submission time.
func (j *Journal) List(network string) ([]Entry, error) {
	var res []Entry
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(Bucket).ForEach(func(k, v []byte) error {
			var e Entry
			if err := io.FromBytes(v, &e); err != nil {
				return fmt.Errorf("entry %x: %w", k, err)
			}
			if network == "" || e.Network == network {
				res = append(res, e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(res, func(a, b Entry) int {
		return a.Time.Compare(b.Time)
	})
	return res, nil
}

// Close releases all db resources.
func (j *Journal) Close() error {
	return j.db.Close()
}
