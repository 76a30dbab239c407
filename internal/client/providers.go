package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/DoyleJ11/skaters-limit/internal/engine"
)

// FileRoster reads a roster snapshot from a JSON file on every call:
//
//	{"blue": [{"team": "blue", "role": "attacker", "claimed": true}], "red": []}
type FileRoster struct {
	Path string
}

func (f FileRoster) Snapshot() (engine.Roster, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	r := engine.NewEmptyRoster()
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", f.Path, err)
	}
	return r, nil
}

type StaticIdentity string

func (s StaticIdentity) LocalIdentity() string { return string(s) }

// WriterNotifier prints notifications, one per line.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(msg string) {
	fmt.Fprintln(n.W, msg)
}
