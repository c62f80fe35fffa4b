/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package entry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/odmedia/mjpegflow/logging"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound  = errors.New("entry not found")
	ErrDuplicate = errors.New("entry already configured")
)

type storeFile struct {
	Entries []Entry `yaml:"entries"`
}

// Store keeps entries in memory, and in a YAML file when a filename is set.
type Store struct {
	lock     sync.RWMutex
	entries  map[string]*Entry
	filename string
}

func NewStore(filename string) *Store {
	return &Store{
		entries:  make(map[string]*Entry),
		filename: filename,
	}
}

// Load replaces the in-memory entries with the file contents. A missing
// file is an empty store.
func (s *Store) Load() error {
	if s.filename == "" {
		return nil
	}
	data, err := os.ReadFile(s.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filename, err)
	}
	if err := checkDuplicates(f.Entries); err != nil {
		return err
	}
	entries := make(map[string]*Entry, len(f.Entries))
	for i := range f.Entries {
		e := f.Entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		entries[e.ID] = &e
	}
	s.lock.Lock()
	s.entries = entries
	s.lock.Unlock()
	logging.Log.Info().Int("count", len(entries)).Str("file", s.filename).Msg("loaded entries")
	return nil
}

func (s *Store) save() error {
	if s.filename == "" {
		return nil
	}
	data, err := yaml.Marshal(storeFile{Entries: s.sorted()})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.filename), ".entries-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.filename)
}

func (s *Store) sorted() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Entries returns a snapshot ordered by creation time.
func (s *Store) Entries() []Entry {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sorted()
}

func (s *Store) Get(id string) (Entry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return *e, nil
}

// Add creates an entry, refusing an address that is already configured.
func (s *Store) Add(title string, opts Options) (Entry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, e := range s.entries {
		if e.Matches(opts.Address) {
			return Entry{}, fmt.Errorf("%s: %w", opts.Address, ErrDuplicate)
		}
	}
	e := &Entry{
		ID:        uuid.NewString(),
		Title:     title,
		Options:   opts,
		CreatedAt: time.Now().UTC(),
	}
	s.entries[e.ID] = e
	if err := s.save(); err != nil {
		delete(s.entries, e.ID)
		return Entry{}, fmt.Errorf("saving entries: %w", err)
	}
	return *e, nil
}

// UpdateOptions replaces the options of an entry wholesale.
func (s *Store) UpdateOptions(id string, opts Options) (Entry, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	for oid, other := range s.entries {
		if oid != id && other.Matches(opts.Address) {
			return Entry{}, fmt.Errorf("%s: %w", opts.Address, ErrDuplicate)
		}
	}
	old := e.Options
	e.Options = opts
	if err := s.save(); err != nil {
		e.Options = old
		return Entry{}, fmt.Errorf("saving entries: %w", err)
	}
	return *e, nil
}

func (s *Store) Remove(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	delete(s.entries, id)
	if err := s.save(); err != nil {
		s.entries[id] = e
		return fmt.Errorf("saving entries: %w", err)
	}
	return nil
}

func checkDuplicates(entries []Entry) error {
	check := make(map[string]string)
	for _, e := range entries {
		if other, ok := check[e.Options.Address]; ok {
			return fmt.Errorf("duplicate url: %s in entries %s and %s: %w", e.Options.Address, other, e.Title, ErrDuplicate)
		}
		check[e.Options.Address] = e.Title
	}
	return nil
}
