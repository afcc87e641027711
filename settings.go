package fractal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// SettingsKey is the key the settings record is stored under.
const SettingsKey = "fractal-explorer-settings"

var ErrBadSettings = errors.New("bad settings")

// SaveSettings writes p as a flat JSON record under SettingsKey.
func SaveSettings(w io.Writer, p Params) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]Params{SettingsKey: p}); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}

// LoadSettings reads a record written by SaveSettings. Fields missing from the
// record keep the defaults of the stored kind.
func LoadSettings(r io.Reader) (Params, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrBadSettings, err)
	}
	raw, ok := doc[SettingsKey]
	if !ok {
		return Params{}, fmt.Errorf("%w: no %q record", ErrBadSettings, SettingsKey)
	}

	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrBadSettings, err)
	}
	p := DefaultParams(head.Kind)
	if err := json.Unmarshal(raw, &p); err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrBadSettings, err)
	}
	return p, nil
}
