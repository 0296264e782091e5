package registry

import "sync/atomic"

// Catalog owns the current registry snapshot. Reload builds a complete new
// snapshot and swaps it in atomically, so concurrent readers never observe a
// partially rebuilt registry.
type Catalog struct {
	root string
	snap atomic.Pointer[Snapshot]
}

// Open builds the initial snapshot for a data root.
func Open(root string) (*Catalog, error) {
	c := &Catalog{root: root}
	if _, err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Root returns the data root the catalog scans.
func (c *Catalog) Root() string { return c.root }

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot { return c.snap.Load() }

// Reload rebuilds the snapshot from disk. On error the previous snapshot
// stays in place.
func (c *Catalog) Reload() (*Snapshot, error) {
	snap, err := Build(c.root)
	if err != nil {
		return nil, err
	}
	c.snap.Store(snap)
	return snap, nil
}
