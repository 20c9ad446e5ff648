// Copyright (C) 2025 Tim Bastin, l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package utils

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

type errGroup[T any] struct {
	group   *errgroup.Group
	mut     sync.Mutex
	results []T
}

// ErrGroup is a bounded worker group which collects the results of all
// submitted functions. The first error cancels the collection.
func ErrGroup[T any](limit int) *errGroup[T] {
	group := &errgroup.Group{}
	group.SetLimit(limit)
	return &errGroup[T]{
		group: group,
	}
}

func (g *errGroup[T]) Go(fn func() (T, error)) {
	g.group.Go(func() error {
		res, err := fn()
		if err != nil {
			return err
		}
		g.mut.Lock()
		g.results = append(g.results, res)
		g.mut.Unlock()
		return nil
	})
}

func (g *errGroup[T]) WaitAndCollect() ([]T, error) {
	if err := g.group.Wait(); err != nil {
		return nil, err
	}
	return g.results, nil
}

// KeyedMutex serializes writes per key. Used to apply the raise-only risk
// aggregation atomically per component while different components proceed
// in parallel. Entries are freed once the last holder unlocks, the map
// does not grow with the number of keys ever seen.
type KeyedMutex struct {
	mut     sync.Mutex
	entries map[string]*keyedMutexEntry
}

type keyedMutexEntry struct {
	mut  sync.Mutex
	refs int
}

func (k *KeyedMutex) Lock(key string) func() {
	k.mut.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedMutexEntry)
	}
	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedMutexEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mut.Unlock()

	entry.mut.Lock()
	return func() {
		entry.mut.Unlock()
		k.mut.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mut.Unlock()
	}
}

type goroutineSynchronizer struct{}

func (goroutineSynchronizer) FireAndForget(fn func()) {
	go fn()
}

// NewFireAndForgetSynchronizer returns a synchronizer which just spawns a
// goroutine. During testing an inline implementation can be injected to wait
// for completion.
func NewFireAndForgetSynchronizer() goroutineSynchronizer {
	return goroutineSynchronizer{}
}

type inlineSynchronizer struct{}

func (inlineSynchronizer) FireAndForget(fn func()) {
	fn()
}

func NewInlineSynchronizer() inlineSynchronizer {
	return inlineSynchronizer{}
}
