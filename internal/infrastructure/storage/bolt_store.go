package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "github.com/boltdb/bolt"
)

const (
	sessionBucket     = "session"
	preferencesBucket = "preferences"

	sessionKey = "current"
)

type sessionRecord struct {
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type preferencesRecord struct {
	ContactPhone string    `json:"contactPhone,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BoltStore keeps the logged-in identity and per-user preferences in a single
// local file.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{sessionBucket, preferencesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// LoadEmail returns "" when nobody is logged in.
func (s *BoltStore) LoadEmail() (string, error) {
	var rec sessionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(sessionBucket)).Get([]byte(sessionKey))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &rec)
	})
	return rec.Email, err
}

func (s *BoltStore) SaveEmail(email string) error {
	data, err := json.Marshal(sessionRecord{Email: email, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(sessionKey), data)
	})
}

// ClearEmail is a no-op when nothing is stored.
func (s *BoltStore) ClearEmail() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Delete([]byte(sessionKey))
	})
}

func (s *BoltStore) ContactPhone(email string) (string, error) {
	var rec preferencesRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(preferencesBucket)).Get(preferencesKey(email))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &rec)
	})
	return rec.ContactPhone, err
}

// SetContactPhone skips the write when the stored phone is unchanged.
func (s *BoltStore) SetContactPhone(email, phone string) error {
	phone = strings.TrimSpace(phone)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(preferencesBucket))
		key := preferencesKey(email)

		var rec preferencesRecord
		if v := b.Get(key); v != nil {
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.ContactPhone == phone {
				return nil
			}
		}

		rec.ContactPhone = phone
		rec.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func preferencesKey(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}
