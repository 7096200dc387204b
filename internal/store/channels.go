package store

import (
	"fmt"
	"time"

	"github.com/meshcore-go/meshcore/internal/model"
)

// SaveChannel upserts a channel record, preserving created_at across
// updates and refreshing updated_at to now.
func (db *DB) SaveChannel(c model.Channel) error {
	now := time.Now().UTC().Unix()
	_, err := db.Exec(`
		INSERT OR REPLACE INTO channels (idx, name, secret, created_at, updated_at)
		VALUES (?, ?, ?,
			COALESCE((SELECT created_at FROM channels WHERE idx = ?), ?),
			?)`,
		c.Idx, c.Name, c.Secret,
		c.Idx, now,
		now,
	)
	if err != nil {
		return fmt.Errorf("store: save channel: %w", err)
	}
	return nil
}

// ListChannels returns every stored channel, ordered by index.
func (db *DB) ListChannels() ([]model.Channel, error) {
	rows, err := db.Query(`SELECT idx, name, secret FROM channels ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("store: list channels: %w", err)
	}
	defer rows.Close()

	var out []model.Channel
	for rows.Next() {
		var c model.Channel
		if err := rows.Scan(&c.Idx, &c.Name, &c.Secret); err != nil {
			return nil, fmt.Errorf("store: scan channel: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
