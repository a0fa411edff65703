package vault

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one stored credential record. ID and the timestamps are non-secret
// metadata; Service, Username and Password are only ever persisted inside the
// encrypted payload.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Service   string    `json:"service"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newEntry(service, username, password string) Entry {
	now := time.Now().UTC()

	return Entry{
		ID:        uuid.New(),
		Service:   service,
		Username:  username,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// updatePassword replaces the password and advances UpdatedAt. CreatedAt and
// ID never change after creation.
func (e *Entry) updatePassword(newPassword string) {
	now := time.Now().UTC()
	if !now.After(e.UpdatedAt) {
		// UpdatedAt must advance strictly even within clock resolution.
		now = e.UpdatedAt.Add(time.Nanosecond)
	}

	e.Password = newPassword
	e.UpdatedAt = now
}
