package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lucidkb/logicore/pkg/logic"
)

// loadSession reads path as an exported knowledge base and imports it
// into a fresh Store. A missing file yields an empty Store rather than
// an error — the session file is a CLI convenience, not part of the
// core engine's contract (persistent on-disk storage is an explicit
// spec.md Non-goal for pkg/logic itself).
func loadSession(path string, store *logic.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("logicorerepl: reading session file: %w", err)
	}
	var exported logic.ExportedKB
	if err := json.Unmarshal(data, &exported); err != nil {
		return fmt.Errorf("logicorerepl: decoding session file: %w", err)
	}
	return store.Import(exported)
}

// saveSession exports store's current content to path as indented JSON.
func saveSession(path string, store *logic.Store) error {
	exported, err := store.Export()
	if err != nil {
		return fmt.Errorf("logicorerepl: exporting session: %w", err)
	}
	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return fmt.Errorf("logicorerepl: encoding session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("logicorerepl: writing session file: %w", err)
	}
	return nil
}
