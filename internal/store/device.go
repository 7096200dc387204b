package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
	"github.com/meshcore-go/meshcore/internal/model"
)

// SaveDeviceInfo upserts the single device metadata record for this
// scope's own radio, preserving created_at across updates and refreshing
// last_connected_at to now.
func (db *DB) SaveDeviceInfo(info model.DeviceInfo, self model.SelfInfo) error {
	now := time.Now().UTC().Unix()
	_, err := db.Exec(`
		INSERT OR REPLACE INTO device_info
			(id, public_key, node_name, firmware_version, firmware_name,
			 protocol_version, contact_type, flags, last_connected_at, created_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT created_at FROM device_info WHERE id = 1), ?))`,
		self.PublicKey, self.NodeName, info.FirmwareVersion, info.FirmwareVerStr,
		0, uint8(self.ContactType), 0, now,
		now,
	)
	if err != nil {
		return fmt.Errorf("store: save device info: %w", err)
	}
	return nil
}

// GetDeviceInfo returns the stored device metadata record, or
// sql.ErrNoRows if nothing has been saved yet.
func (db *DB) GetDeviceInfo() (model.DeviceInfo, model.SelfInfo, error) {
	var (
		info      model.DeviceInfo
		self      model.SelfInfo
		contactTy uint8
	)
	row := db.QueryRow(`
		SELECT public_key, node_name, firmware_version, firmware_name, contact_type
		FROM device_info WHERE id = 1`)
	if err := row.Scan(&self.PublicKey, &self.NodeName, &info.FirmwareVersion, &info.FirmwareVerStr, &contactTy); err != nil {
		if err == sql.ErrNoRows {
			return info, self, err
		}
		return info, self, fmt.Errorf("store: get device info: %w", err)
	}
	self.ContactType = codec.ContactType(contactTy)
	return info, self, nil
}
