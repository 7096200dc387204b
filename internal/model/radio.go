package model

import "fmt"

// RadioConfig is a LoRa radio parameter set: frequency, bandwidth,
// spreading factor and coding rate.
type RadioConfig struct {
	Name            string
	FrequencyKHz    uint32
	BandwidthHz     uint32
	SpreadingFactor uint8
	CodingRate      uint8
}

// Valid reports whether the parameters fall within the ranges the
// companion protocol's radio firmware accepts.
func (c RadioConfig) Valid() bool {
	switch {
	case c.FrequencyKHz < 300_000 || c.FrequencyKHz > 2_500_000:
		return false
	case c.BandwidthHz < 7_800 || c.BandwidthHz > 500_000:
		return false
	case c.SpreadingFactor < 5 || c.SpreadingFactor > 12:
		return false
	case c.CodingRate < 5 || c.CodingRate > 8:
		return false
	default:
		return true
	}
}

func (c RadioConfig) String() string {
	return fmt.Sprintf("%s (%d kHz, %d Hz, SF%d, CR%d)", c.Name, c.FrequencyKHz, c.BandwidthHz, c.SpreadingFactor, c.CodingRate)
}

// RadioPresets lists the named regional LoRa configurations the original
// client ships as quick-pick defaults.
var RadioPresets = []RadioConfig{
	{Name: "EU/UK Narrow", FrequencyKHz: 869618, BandwidthHz: 62500, SpreadingFactor: 8, CodingRate: 8},
	{Name: "EU/UK Wide", FrequencyKHz: 868000, BandwidthHz: 125000, SpreadingFactor: 11, CodingRate: 8},
	{Name: "USA/Canada Narrow", FrequencyKHz: 910525, BandwidthHz: 62500, SpreadingFactor: 7, CodingRate: 8},
	{Name: "USA/Canada Wide", FrequencyKHz: 915000, BandwidthHz: 125000, SpreadingFactor: 11, CodingRate: 8},
	{Name: "Australia/NZ Narrow", FrequencyKHz: 915800, BandwidthHz: 62500, SpreadingFactor: 8, CodingRate: 8},
	{Name: "Asia 433MHz", FrequencyKHz: 433000, BandwidthHz: 62500, SpreadingFactor: 9, CodingRate: 8},
}

// RadioPresetByName looks up a named preset, case-sensitive, matching the
// original client's combo-box labels.
func RadioPresetByName(name string) (RadioConfig, bool) {
	for _, p := range RadioPresets {
		if p.Name == name {
			return p, true
		}
	}
	return RadioConfig{}, false
}
