package models

import "sync"

// OptionEntry is one row of a reference list (lab, class or user),
// used for filter dropdowns and id-to-name resolution.
type OptionEntry struct {
	ID   FlexID `json:"id"`
	Name string `json:"nama"`
}

// CatalogSnapshot is the read view handed to the serving layer.
type CatalogSnapshot struct {
	Labs    []OptionEntry `json:"labs"`
	Classes []OptionEntry `json:"classes"`
	Users   []OptionEntry `json:"users"`
}

// Catalog holds the three reference lists. Each list is set
// independently as its fetch completes; lookups against a list that
// has not arrived yet simply fail to resolve.
type Catalog struct {
	mu      sync.RWMutex
	labs    []OptionEntry
	classes []OptionEntry
	users   []OptionEntry
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) SetLabs(entries []OptionEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labs = entries
}

func (c *Catalog) SetClasses(entries []OptionEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes = entries
}

func (c *Catalog) SetUsers(entries []OptionEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = entries
}

func (c *Catalog) Snapshot() CatalogSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CatalogSnapshot{
		Labs:    copyEntries(c.labs),
		Classes: copyEntries(c.classes),
		Users:   copyEntries(c.users),
	}
}

func (c *Catalog) ClassName(id FlexID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lookup(c.classes, id)
}

func (c *Catalog) UserName(id FlexID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lookup(c.users, id)
}

func (c *Catalog) LabName(id FlexID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lookup(c.labs, id)
}

func lookup(entries []OptionEntry, id FlexID) (string, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e.Name, true
		}
	}
	return "", false
}

func copyEntries(entries []OptionEntry) []OptionEntry {
	out := make([]OptionEntry, len(entries))
	copy(out, entries)
	return out
}
