// Package usermenu holds the entries of the user drop-down menu.
package usermenu

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrDuplicateItem is returned when an item key is registered twice.
var ErrDuplicateItem = errors.New("usermenu: duplicate item")

// Kind tells the layout how to render an item.
type Kind string

const (
	// KindLink is a plain navigation entry.
	KindLink Kind = "link"
	// KindSeparator is a visual divider.
	KindSeparator Kind = "separator"
	// KindLogout submits the logout form.
	KindLogout Kind = "logout"
)

// Item is a single entry of the user menu.
type Item struct {
	Key      string
	Label    string
	Href     string
	Sequence int
	Kind     Kind
	External bool
}

// A Registry is an ordered collection of user menu items. Keys listed as
// excluded at construction are never part of the collection, whatever the
// order in which items are added.
type Registry struct {
	mu       sync.RWMutex
	items    []Item
	byKey    map[string]int
	excluded map[string]struct{}
}

// New builds a registry from items, dropping every key in excluded.
// Excluded keys that match no item are ignored.
func New(items []Item, excluded ...string) (*Registry, error) {
	r := &Registry{
		byKey:    make(map[string]int),
		excluded: make(map[string]struct{}, len(excluded)),
	}
	for _, key := range excluded {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		r.excluded[key] = struct{}{}
	}
	for _, item := range items {
		if err := r.Add(item); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) reindex() {
	sort.SliceStable(r.items, func(i, j int) bool {
		return r.items[i].Sequence < r.items[j].Sequence
	})
	r.byKey = make(map[string]int, len(r.items))
	for i, item := range r.items {
		r.byKey[item.Key] = i
	}
}

// Add registers an item. Excluded keys are silently dropped.
func (r *Registry) Add(item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, skip := r.excluded[item.Key]; skip {
		return nil
	}
	if _, exists := r.byKey[item.Key]; exists {
		return ErrDuplicateItem
	}
	if item.Kind == "" {
		item.Kind = KindLink
	}
	r.items = append(r.items, item)
	r.reindex()
	return nil
}

// Remove deletes the item with key and reports whether it was present.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byKey[key]
	if !ok {
		return false
	}
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	r.reindex()
	return true
}

// Get returns the item with key.
func (r *Registry) Get(key string) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byKey[key]
	if !ok {
		return Item{}, false
	}
	return r.items[idx], true
}

// Items returns the entries ordered by sequence.
func (r *Registry) Items() []Item {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Keys returns the item keys ordered by sequence.
func (r *Registry) Keys() []string {
	items := r.Items()
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}
	return keys
}

// Excluded returns the configured exclusion list, sorted.
func (r *Registry) Excluded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.excluded))
	for key := range r.excluded {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
