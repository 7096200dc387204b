package store

import (
	"errors"
	"testing"
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
	"github.com/meshcore-go/meshcore/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	pubKey := make([]byte, codec.PubKeySize)
	pubKey[0] = 0x42
	db, err := Open(dir, pubKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndListContact(t *testing.T) {
	db := openTestDB(t)
	c := model.Contact{
		PublicKey:           make([]byte, codec.PubKeySize),
		Name:                "Alice",
		Type:                codec.ContactChat,
		PathLen:             -1,
		LastAdvertTimestamp: time.Now().UTC(),
		LastModified:        time.Now().UTC(),
	}
	c.PublicKey[0] = 7

	if err := db.SaveContact(c); err != nil {
		t.Fatalf("SaveContact: %v", err)
	}
	contacts, err := db.ListContacts()
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "Alice" {
		t.Fatalf("contacts = %+v, want one named Alice", contacts)
	}
}

func TestSaveContactPreservesCreatedAt(t *testing.T) {
	db := openTestDB(t)
	c := model.Contact{PublicKey: make([]byte, codec.PubKeySize), Name: "Bob"}
	c.PublicKey[0] = 1

	if err := db.SaveContact(c); err != nil {
		t.Fatalf("first save: %v", err)
	}
	var firstCreatedAt int64
	if err := db.QueryRow(`SELECT created_at FROM contacts WHERE public_key = ?`, c.PublicKey).Scan(&firstCreatedAt); err != nil {
		t.Fatalf("query created_at: %v", err)
	}

	c.Name = "Bobby"
	if err := db.SaveContact(c); err != nil {
		t.Fatalf("second save: %v", err)
	}
	var secondCreatedAt int64
	if err := db.QueryRow(`SELECT created_at FROM contacts WHERE public_key = ?`, c.PublicKey).Scan(&secondCreatedAt); err != nil {
		t.Fatalf("query created_at: %v", err)
	}
	if firstCreatedAt != secondCreatedAt {
		t.Errorf("created_at changed across update: %d -> %d", firstCreatedAt, secondCreatedAt)
	}
}

func TestSaveChannel(t *testing.T) {
	db := openTestDB(t)
	ch := model.Channel{Idx: 0, Name: "Public", Secret: make([]byte, 16)}
	if err := db.SaveChannel(ch); err != nil {
		t.Fatalf("SaveChannel: %v", err)
	}
	channels, err := db.ListChannels()
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	if len(channels) != 1 || channels[0].Name != "Public" {
		t.Fatalf("channels = %+v, want one named Public", channels)
	}
}

func TestSaveMessageDeduplicates(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	msg := model.Message{
		Type:       model.ChannelMessage,
		SenderName: "Alice",
		Text:       "hello",
		Timestamp:  now,
		ReceivedAt: now,
	}

	if err := db.SaveMessage(msg); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := db.SaveMessage(msg); err != nil {
		t.Fatalf("second save: %v", err)
	}

	count, err := db.GetMessageCount()
	if err != nil {
		t.Fatalf("GetMessageCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("message count = %d, want 1 (duplicate should be a no-op)", count)
	}
}

func TestSaveDirectMessageDeduplicatesRegardlessOfResolvedSenderName(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	keyPrefix := []byte{1, 2, 3, 4, 5, 6}

	unresolved := model.Message{
		Type:            model.ContactMessage,
		SenderKeyPrefix: keyPrefix,
		Text:            "hello",
		Timestamp:       now,
		ReceivedAt:      now,
	}
	if err := db.SaveMessage(unresolved); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Same message, but the sender's contact has since been resolved —
	// this must still hash identically to the first save.
	resolved := unresolved
	resolved.SenderName = "Alice"
	if err := db.SaveMessage(resolved); err != nil {
		t.Fatalf("second save: %v", err)
	}

	count, err := db.GetMessageCount()
	if err != nil {
		t.Fatalf("GetMessageCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("message count = %d, want 1 (resolving SenderName must not change the dedup hash)", count)
	}
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	dir := t.TempDir()
	pubKey := make([]byte, codec.PubKeySize)
	pubKey[0] = 0x99

	db, err := Open(dir, pubKey)
	if err != nil {
		t.Fatalf("initial Open: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = ?`, schemaVersion+1); err != nil {
		t.Fatalf("bump schema_version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = Open(dir, pubKey)
	if !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("reopen with newer schema_version = %v, want ErrSchemaTooNew", err)
	}
}

func TestOpenRefusesOlderSchema(t *testing.T) {
	dir := t.TempDir()
	pubKey := make([]byte, codec.PubKeySize)
	pubKey[0] = 0x98

	db, err := Open(dir, pubKey)
	if err != nil {
		t.Fatalf("initial Open: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = 0`); err != nil {
		t.Fatalf("reset schema_version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = Open(dir, pubKey)
	if !errors.Is(err, ErrSchemaTooOld) {
		t.Fatalf("reopen with older schema_version = %v, want ErrSchemaTooOld", err)
	}
}

func TestClearAllData(t *testing.T) {
	db := openTestDB(t)
	c := model.Contact{PublicKey: make([]byte, codec.PubKeySize), Name: "X"}
	if err := db.SaveContact(c); err != nil {
		t.Fatalf("SaveContact: %v", err)
	}
	if err := db.ClearAllData(); err != nil {
		t.Fatalf("ClearAllData: %v", err)
	}
	contacts, err := db.ListContacts()
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("contacts after clear = %+v, want none", contacts)
	}
}
