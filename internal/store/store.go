// Package store persists one device's contacts, channels and message
// history to a per-device SQLite file in WAL mode.
package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB wraps *sql.DB with the schema and queries for one device's scope.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the SQLite file for the device identified by
// publicKey inside dir, in WAL journal mode, and applies the schema.
func Open(dir string, publicKey []byte) (*DB, error) {
	path := DevicePath(dir, publicKey)
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000", path)
	raw, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := raw.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	raw.SetMaxOpenConns(1)
	db := &DB{raw}
	if err := db.migrate(); err != nil {
		raw.Close()
		return nil, err
	}
	return db, nil
}

// DevicePath is the per-device database file path: <dir>/device_<hex(pubkey)>.db.
func DevicePath(dir string, publicKey []byte) string {
	return filepath.Join(dir, fmt.Sprintf("device_%s.db", hex.EncodeToString(publicKey)))
}

// schemaVersion is the schema this build writes. minSupportedSchemaVersion
// is the oldest schema this build knows how to read; there is no
// migration path below it.
const (
	schemaVersion             = 1
	minSupportedSchemaVersion = 1
)

// ErrSchemaTooNew means the scope was written by a newer build than this
// one and this build doesn't know the schema. ErrSchemaTooOld means the
// scope predates minSupportedSchemaVersion and this build has no
// migration for it. Both are refused rather than risked against.
var (
	ErrSchemaTooNew = errors.New("store: schema version newer than this build supports")
	ErrSchemaTooOld = errors.New("store: schema version older than this build supports")
)

func (db *DB) migrate() error {
	existing, ok, err := db.currentSchemaVersion()
	if err != nil {
		return fmt.Errorf("store: migrate: read schema version: %w", err)
	}
	if ok {
		switch {
		case existing > schemaVersion:
			return fmt.Errorf("store: scope is schema version %d: %w", existing, ErrSchemaTooNew)
		case existing < minSupportedSchemaVersion:
			return fmt.Errorf("store: scope is schema version %d: %w", existing, ErrSchemaTooOld)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: migrate: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		ddlSchemaVersion,
		ddlDeviceInfo,
		ddlContacts,
		ddlChannels,
		ddlMessages,
		ddlMessageHashes,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, strftime('%s','now'))`, schemaVersion); err != nil {
		return fmt.Errorf("store: migrate: record version: %w", err)
	}
	return tx.Commit()
}

// currentSchemaVersion reads the highest recorded schema_version row, if
// the table already exists. ok is false for a brand new database file,
// which has no schema yet to be incompatible with.
func (db *DB) currentSchemaVersion() (version int, ok bool, err error) {
	var tableName string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`).Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return 0, false, err
	}
	if count == 0 {
		return 0, false, nil
	}

	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, false, err
	}
	return version, true, nil
}

const ddlSchemaVersion = `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

const ddlDeviceInfo = `
CREATE TABLE IF NOT EXISTS device_info (
    id                 INTEGER PRIMARY KEY CHECK (id = 1),
    public_key         BLOB    NOT NULL,
    node_name          TEXT    NOT NULL DEFAULT '',
    firmware_version   INTEGER NOT NULL DEFAULT 0,
    firmware_name      TEXT    NOT NULL DEFAULT '',
    protocol_version   INTEGER NOT NULL DEFAULT 0,
    contact_type       INTEGER NOT NULL DEFAULT 0,
    flags              INTEGER NOT NULL DEFAULT 0,
    last_connected_at  INTEGER,
    created_at         INTEGER NOT NULL
);
`

const ddlContacts = `
CREATE TABLE IF NOT EXISTS contacts (
    public_key            BLOB PRIMARY KEY,
    name                   TEXT NOT NULL,
    type                   INTEGER NOT NULL DEFAULT 0,
    flags                  INTEGER NOT NULL DEFAULT 0,
    path_length            INTEGER NOT NULL DEFAULT -1,
    path                   BLOB,
    last_advert_timestamp  INTEGER NOT NULL DEFAULT 0,
    last_modified          INTEGER NOT NULL DEFAULT 0,
    latitude               INTEGER NOT NULL DEFAULT 0,
    longitude              INTEGER NOT NULL DEFAULT 0,
    created_at             INTEGER NOT NULL,
    updated_at             INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts (name);
CREATE INDEX IF NOT EXISTS idx_contacts_updated_at ON contacts (updated_at DESC);
`

const ddlChannels = `
CREATE TABLE IF NOT EXISTS channels (
    idx        INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    secret     BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
`

const ddlMessages = `
CREATE TABLE IF NOT EXISTS messages (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    message_type         INTEGER NOT NULL,
    channel_idx          INTEGER,
    sender_pubkey_prefix BLOB,
    sender_name          TEXT NOT NULL DEFAULT '',
    text                 TEXT NOT NULL,
    timestamp            INTEGER NOT NULL,
    received_at          INTEGER NOT NULL,
    path_length          INTEGER NOT NULL DEFAULT -1,
    txt_type             INTEGER NOT NULL DEFAULT 0,
    snr                  REAL NOT NULL DEFAULT 0,
    is_sent_by_me        INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (channel_idx) REFERENCES channels(idx) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_channel_ts ON messages (channel_idx, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_messages_sender_ts ON messages (sender_pubkey_prefix, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_messages_received_at ON messages (received_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages (timestamp DESC);
`

const ddlMessageHashes = `
CREATE TABLE IF NOT EXISTS message_hashes (
    hash       TEXT PRIMARY KEY,
    message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_message_hashes_created_at ON message_hashes (created_at);
`

// ClearAllData wipes every table in this device's scope, transactionally.
func (db *DB) ClearAllData() error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: clear: begin: %w", err)
	}
	defer tx.Rollback()
	for _, table := range []string{"message_hashes", "messages", "channels", "contacts", "device_info"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("store: clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// GetMessageCount returns the total number of stored messages.
func (db *DB) GetMessageCount() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: message count: %w", err)
	}
	return n, nil
}

// GetChannelMessageCount returns the number of stored messages on a
// specific channel index.
func (db *DB) GetChannelMessageCount(idx uint8) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages WHERE channel_idx = ?`, idx).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: channel message count: %w", err)
	}
	return n, nil
}
