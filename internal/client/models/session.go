package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// SessionRecord is the durable snapshot of an authenticated session.
// It is stored as a single JSON value under common.SessionStoreKey.
type SessionRecord struct {
	User     *User
	IssuedAt time.Time
}

// sessionRecordJSON is the wire form. IssuedAt travels as unix milliseconds.
type sessionRecordJSON struct {
	User     *User `json:"user"`
	IssuedAt int64 `json:"issuedAt"`
}

// NewSessionRecord snapshots u at issuedAt.
func NewSessionRecord(u User, issuedAt time.Time) SessionRecord {
	return SessionRecord{User: &u, IssuedAt: issuedAt}
}

// ExpiresAt returns issuedAt + d.
func (r SessionRecord) ExpiresAt(d time.Duration) time.Time {
	return r.IssuedAt.Add(d)
}

// Expired reports whether the record's expiry is at or before now.
func (r SessionRecord) Expired(now time.Time, d time.Duration) bool {
	return !r.ExpiresAt(d).After(now)
}

// Marshal serializes the record for the Session Store.
func (r SessionRecord) Marshal() (string, error) {
	b, err := json.Marshal(sessionRecordJSON{User: r.User, IssuedAt: r.IssuedAt.UnixMilli()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseSessionRecord decodes a stored record. A record without a user or
// without issuedAt is rejected with common.ErrInvalidSessionRecord.
func ParseSessionRecord(raw string) (SessionRecord, error) {
	var j sessionRecordJSON
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		return SessionRecord{}, fmt.Errorf("%w: %w", common.ErrInvalidSessionRecord, err)
	}
	if j.User == nil || j.IssuedAt <= 0 {
		return SessionRecord{}, common.ErrInvalidSessionRecord
	}
	return SessionRecord{User: j.User, IssuedAt: time.UnixMilli(j.IssuedAt)}, nil
}
