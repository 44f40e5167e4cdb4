// Package instagram implements the Instagram automation utilities: an
// explicit login session with file-persisted state, a private-API client,
// a browser login flow, scheduled video posting, and a cursor-based direct
// message poller.
//
// Everything here drives one external website whose API and DOM are not a
// published contract; endpoints, selectors, and timings are best-effort and
// kept in one place so breakage is cheap to fix.
package instagram

import (
	"encoding/json"
	"fmt"
	"os"
)

// Cookie is the serializable subset of an HTTP cookie the session needs to
// resume without re-authenticating.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// State is the serialized session blob written between runs: the device
// identity presented at login plus the cookies proving the login happened.
type State struct {
	Username string   `json:"username"`
	DeviceID string   `json:"deviceId"`
	Cookies  []Cookie `json:"cookies"`
}

// LoadState reads a previously saved session state file.
// Returns os.ErrNotExist (wrapped) when no state has been saved yet.
func LoadState(path string) (State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("instagram: read state %s: %w", path, err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("instagram: parse state %s: %w", path, err)
	}
	return st, nil
}

// SaveState writes the session state file with owner-only permissions,
// since it contains live credentials.
func SaveState(path string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("instagram: marshal state: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("instagram: write state %s: %w", path, err)
	}
	return nil
}

// RemoveState deletes the state file. Missing files are not an error, so it
// is safe to call on any failure path.
func RemoveState(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("instagram: remove state %s: %w", path, err)
	}
	return nil
}
