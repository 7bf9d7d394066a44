package txstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fystack/radixium/pkg/logger"
	"github.com/fystack/radixium/pkg/types"
)

var ErrNotFound = errors.New("txstore: transaction not found")

const recordPrefix = "tx/"

// Record is the locally cached view of a submitted transaction, the source
// for the history command when the node is unreachable.
type Record struct {
	TxID        string               `json:"tx_id"`
	Sender      types.AccountAddress `json:"sender"`
	Status      types.TxStatus       `json:"status"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Message     string               `json:"message,omitempty"`
}

// Store is a BadgerDB-backed transaction cache.
type Store struct {
	db *badger.DB
}

// Open opens or creates the store at path. A non-empty encryptionKey turns
// on Badger's at-rest encryption.
func Open(path string, encryptionKey []byte) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithCompactL0OnClose(true).
		WithLogger(nil)
	if len(encryptionKey) > 0 {
		opts = opts.WithEncryptionKey(encryptionKey).
			WithIndexCacheSize(16 << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("txstore: open %s: %w", path, err)
	}
	logger.Info("Transaction store opened", "path", path)
	return &Store{db: db}, nil
}

func recordKey(txID string) []byte {
	return []byte(recordPrefix + txID)
}

// Put inserts or replaces the record for its transaction.
func (s *Store) Put(record Record) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("txstore: marshal %s: %w", record.TxID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(record.TxID), value)
	})
}

// UpdateStatus rewrites just the status of an existing record.
func (s *Store) UpdateStatus(txID string, status types.TxStatus) error {
	record, err := s.Get(txID)
	if err != nil {
		return err
	}
	record.Status = status
	return s.Put(*record)
}

// Get fetches one record by transaction identifier.
func (s *Store) Get(txID string) (*Record, error) {
	var record Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(txID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("txstore: get %s: %w", txID, err)
	}
	return &record, nil
}

// List returns every cached record.
func (s *Store) List() ([]Record, error) {
	var records []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record Record
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("txstore: list: %w", err)
	}
	return records, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
