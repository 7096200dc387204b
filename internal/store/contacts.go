package store

import (
	"fmt"
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
	"github.com/meshcore-go/meshcore/internal/model"
)

// SaveContact upserts a contact record, preserving created_at across
// updates and refreshing updated_at to now.
func (db *DB) SaveContact(c model.Contact) error {
	now := time.Now().UTC().Unix()
	_, err := db.Exec(`
		INSERT OR REPLACE INTO contacts
			(public_key, name, type, flags, path_length, path,
			 last_advert_timestamp, last_modified, latitude, longitude,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT created_at FROM contacts WHERE public_key = ?), ?),
			?)`,
		c.PublicKey, c.Name, uint8(c.Type), c.Flags, c.PathLen, c.Path,
		c.LastAdvertTimestamp.Unix(), c.LastModified.Unix(),
		int32(c.Latitude*1e6), int32(c.Longitude*1e6),
		c.PublicKey, now,
		now,
	)
	if err != nil {
		return fmt.Errorf("store: save contact: %w", err)
	}
	return nil
}

// ListContacts returns every stored contact.
func (db *DB) ListContacts() ([]model.Contact, error) {
	rows, err := db.Query(`
		SELECT public_key, name, type, flags, path_length, path,
		       last_advert_timestamp, last_modified, latitude, longitude
		FROM contacts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		var (
			c                               model.Contact
			typ                             uint8
			lastAdvertTS, lastModified      int64
			lat, lon                        int32
		)
		if err := rows.Scan(&c.PublicKey, &c.Name, &typ, &c.Flags, &c.PathLen, &c.Path,
			&lastAdvertTS, &lastModified, &lat, &lon); err != nil {
			return nil, fmt.Errorf("store: scan contact: %w", err)
		}
		c.Type = codec.ContactType(typ)
		c.LastAdvertTimestamp = time.Unix(lastAdvertTS, 0).UTC()
		c.LastModified = time.Unix(lastModified, 0).UTC()
		c.Latitude = float64(lat) / 1e6
		c.Longitude = float64(lon) / 1e6
		out = append(out, c)
	}
	return out, rows.Err()
}
