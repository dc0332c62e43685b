// Package audit persists a trail of workstation sessions in a local BBolt
// database so operators can review who used the kiosk, for how long, and
// why each session ended.
package audit

import (
	"encoding/json"
	"time"

	"guarita/internal/domain/entity"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// Trail is a BBolt-backed session audit trail. It implements
// repository.AuditTrail.
type Trail struct {
	db *bolt.DB
}

// Open opens (or creates) the audit database at the given path.
func Open(path string) (*Trail, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open audit db")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "create sessions bucket")
	}

	return &Trail{db: db}, nil
}

// Close closes the underlying database.
func (t *Trail) Close() error {
	return t.db.Close()
}

// Record appends a session record. Keys sort chronologically so Recent can
// walk the bucket backwards.
func (t *Trail) Record(record entity.SessionRecord) error {
	return t.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)

		payload, err := json.Marshal(record)
		if err != nil {
			return errors.WithStack(err)
		}

		key := record.EndedAt.UTC().Format(time.RFC3339Nano) + "/" + record.ID

		return bucket.Put([]byte(key), payload)
	})
}

// Recent returns up to limit records, newest first.
func (t *Trail) Recent(limit int) ([]entity.SessionRecord, error) {
	var records []entity.SessionRecord

	err := t.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(sessionsBucket).Cursor()

		for key, value := cursor.Last(); key != nil && len(records) < limit; key, value = cursor.Prev() {
			var record entity.SessionRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return errors.Wrapf(err, "decode audit record %s", key)
			}
			records = append(records, record)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
