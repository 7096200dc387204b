package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
	"github.com/meshcore-go/meshcore/internal/model"
)

// messageHash identifies a message for deduplication: the sender
// identity, the text, and the raw wire timestamp, hashed together. Two
// deliveries of the same mesh packet (a common occurrence on a flood
// network) hash identically and the second is a silent no-op.
func messageHash(m model.Message) string {
	h := sha256.New()
	if m.Type == model.ContactMessage {
		h.Write(m.SenderKeyPrefix)
	} else {
		h.Write([]byte(m.SenderName))
	}
	h.Write([]byte(m.Text))
	var ts [4]byte
	binary.LittleEndian.PutUint32(ts[:], uint32(m.Timestamp.Unix()))
	h.Write(ts[:])
	return hex.EncodeToString(h.Sum(nil))
}

// SaveMessage stores a message, skipping it silently if an identical
// message (by messageHash) has already been saved.
func (db *DB) SaveMessage(m model.Message) error {
	hash := messageHash(m)

	var exists int
	err := db.QueryRow(`SELECT 1 FROM message_hashes WHERE hash = ?`, hash).Scan(&exists)
	if err == nil {
		return nil // duplicate, no-op
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: save message: begin: %w", err)
	}
	defer tx.Rollback()

	var channelIdx any
	if m.Type == model.ChannelMessage {
		channelIdx = m.ChannelIdx
	}

	res, err := tx.Exec(`
		INSERT INTO messages
			(message_type, channel_idx, sender_pubkey_prefix, sender_name, text,
			 timestamp, received_at, path_length, txt_type, snr, is_sent_by_me)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int(m.Type), channelIdx, m.SenderKeyPrefix, m.SenderName, m.Text,
		m.Timestamp.Unix(), m.ReceivedAt.Unix(), m.PathLen, uint8(m.TxtType), m.SNR, boolToInt(m.IsSentByMe),
	)
	if err != nil {
		return fmt.Errorf("store: save message: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: save message: last insert id: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO message_hashes (hash, message_id, created_at) VALUES (?, ?, ?)`,
		hash, id, time.Now().UTC().Unix()); err != nil {
		return fmt.Errorf("store: save message: hash: %w", err)
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RecentMessages returns up to limit most recent messages, newest first.
// If channelIdx is non-nil, only messages on that channel are returned.
func (db *DB) RecentMessages(channelIdx *uint8, limit int) ([]model.Message, error) {
	query := `
		SELECT id, message_type, channel_idx, sender_pubkey_prefix, sender_name, text,
		       timestamp, received_at, path_length, txt_type, snr, is_sent_by_me
		FROM messages`
	args := []any{}
	if channelIdx != nil {
		query += ` WHERE channel_idx = ?`
		args = append(args, *channelIdx)
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	r, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: recent messages: %w", err)
	}
	defer r.Close()

	var out []model.Message
	for r.Next() {
		var (
			m                     model.Message
			msgType               int
			channelIdxN           *uint8
			timestamp, receivedAt int64
			txtType               uint8
			sentByMe              int
		)
		if err := r.Scan(&m.ID, &msgType, &channelIdxN, &m.SenderKeyPrefix, &m.SenderName, &m.Text,
			&timestamp, &receivedAt, &m.PathLen, &txtType, &m.SNR, &sentByMe); err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		m.Type = model.MessageType(msgType)
		if channelIdxN != nil {
			m.ChannelIdx = *channelIdxN
		}
		m.Timestamp = time.Unix(timestamp, 0).UTC()
		m.ReceivedAt = time.Unix(receivedAt, 0).UTC()
		m.TxtType = codec.TextType(txtType)
		m.IsSentByMe = sentByMe != 0
		out = append(out, m)
	}
	return out, r.Err()
}
