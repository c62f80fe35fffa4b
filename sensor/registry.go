/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package sensor

import (
	"sort"
	"sync"

	"github.com/odmedia/mjpegflow/entry"
)

// State is how an entity is reported over the status API.
type State struct {
	EntryID string `json:"entry_id"`
	Name    string `json:"name"`
	Value   any    `json:"native_value"`
}

// Registry holds the entities per entry.
type Registry struct {
	lock     sync.Mutex
	entities map[string][]Entity
}

func NewRegistry() *Registry {
	return &Registry{entities: make(map[string][]Entity)}
}

// Setup (re)creates the entities for e.
func (r *Registry) Setup(e entry.Entry) {
	var added []Entity
	SetupEntry(e, func(ents ...Entity) {
		added = append(added, ents...)
	})
	r.lock.Lock()
	r.entities[e.ID] = added
	r.lock.Unlock()
}

func (r *Registry) Unload(entryID string) {
	r.lock.Lock()
	delete(r.entities, entryID)
	r.lock.Unlock()
}

func (r *Registry) States() []State {
	r.lock.Lock()
	defer r.lock.Unlock()
	var out []State
	for _, ents := range r.entities {
		for _, e := range ents {
			out = append(out, State{EntryID: e.EntryID(), Name: e.Name(), Value: e.NativeValue()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryID == out[j].EntryID {
			return out[i].Name < out[j].Name
		}
		return out[i].EntryID < out[j].EntryID
	})
	return out
}
