package corpus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"go.etcd.io/bbolt"
)

// Entry is the recorded outcome of one source.
type Entry struct {
	ID      string         `json:"id"`
	Example *types.Example `json:"example,omitempty"`
	Skip    types.SkipKind `json:"skip,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// Result converts the entry back into an item result.
func (e Entry) Result() types.ItemResult[types.Example] {
	if e.Example != nil {
		return types.ItemResult[types.Example]{ID: e.ID, Value: *e.Example}
	}
	return types.ItemResult[types.Example]{ID: e.ID, Skip: types.NewSkip(e.Skip, e.ID, fmt.Errorf("%s", e.Reason))}
}

func entryFrom(r types.ItemResult[types.Example]) Entry {
	if r.OK() {
		ex := r.Value
		return Entry{ID: r.ID, Example: &ex}
	}
	reason := ""
	if r.Skip.Err != nil {
		reason = r.Skip.Err.Error()
	}
	return Entry{ID: r.ID, Skip: r.Skip.Kind, Reason: reason}
}

// Ledger persists extraction outcomes in a bbolt file. Entries live in a bucket named by the
// caller, normally a fingerprint of the conditioning and feature settings, so a ledger
// written under other settings is never reused.
type Ledger struct {
	db     *bbolt.DB
	bucket []byte
}

// OpenLedger opens (or creates) the ledger at path using bucket namespace.
func OpenLedger(path, namespace string) (*Ledger, error) {
	if namespace == "" {
		return nil, fmt.Errorf("corpus: ledger namespace is required")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte(namespace)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db, bucket: bucket}, nil
}

// Get returns the entry for id, if any.
func (l *Ledger) Get(id string) (Entry, bool, error) {
	var e Entry
	found := false
	err := l.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(l.bucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &e)
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("corpus: ledger entry %s: %w", id, err)
	}
	return e, found, nil
}

// PutAll records entries in one transaction.
func (l *Ledger) PutAll(entries []Entry) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(l.bucket)
		for _, e := range entries {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(e.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() (int, error) {
	n := 0
	err := l.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(l.bucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
