// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/azure/teamsfx/pkg/osutil"
	"github.com/gofrs/flock"
)

// History is an append only list of turns, safe for concurrent use.
type History struct {
	mu    sync.Mutex
	turns []Turn
}

func NewHistory(turns ...Turn) *History {
	return &History{turns: append([]Turn(nil), turns...)}
}

func (h *History) Add(turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turns...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Turns returns a copy of all turns, oldest first.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Turn(nil), h.turns...)
}

// Last returns a copy of up to n trailing turns.
func (h *History) Last(n int) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Turn(nil), lastN(h.turns, n)...)
}

const historyFileName = "chat-history.json"

// HistoryStore persists conversation history per command inside a workspace, in .teamsfx/chat-history.json.
type HistoryStore struct {
	path string
}

func NewHistoryStore(workspaceFolder string) *HistoryStore {
	return &HistoryStore{path: filepath.Join(workspaceFolder, ".teamsfx", historyFileName)}
}

func (s *HistoryStore) Path() string {
	return s.path
}

type historyDocument map[string][]Turn

// Load returns the stored history of command. A missing store is an empty history.
func (s *HistoryStore) Load(command string) (*History, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	document, err := s.read()
	if err != nil {
		return nil, err
	}

	return NewHistory(document[command]...), nil
}

// Save replaces the stored history of command, keeping the history of other commands.
func (s *HistoryStore) Save(command string, history *History) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	document, err := s.read()
	if err != nil {
		return err
	}
	document[command] = history.Turns()

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling chat history: %w", err)
	}

	return osutil.WriteFileAtomic(s.path, data, osutil.PermissionFileOwnerOnly)
}

// Clear removes the stored history of command.
func (s *HistoryStore) Clear(command string) error {
	return s.Save(command, NewHistory())
}

func (s *HistoryStore) read() (historyDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return historyDocument{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading chat history: %w", err)
	}

	document := historyDocument{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parsing chat history '%s': %w", s.path, err)
	}
	return document, nil
}

func (s *HistoryStore) lock() (func(), error) {
	if err := osutil.EnsureParentDir(s.path); err != nil {
		return nil, fmt.Errorf("creating chat history directory: %w", err)
	}

	fl := flock.New(s.path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("locking chat history: %w", err)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			log.Printf("failed to unlock chat history: %v", err)
		}
	}, nil
}
