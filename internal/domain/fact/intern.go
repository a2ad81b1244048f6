package fact

// Interner deduplicates field-path strings. Each file's extraction owns one
// shard and writes to it without locking; shards are merged once at the
// reconciliation barrier.
type Interner struct {
	paths map[string]string
}

// NewInterner creates an empty shard.
func NewInterner() *Interner {
	return &Interner{paths: make(map[string]string)}
}

// Intern returns the canonical instance of path.
func (i *Interner) Intern(path string) string {
	if canonical, ok := i.paths[path]; ok {
		return canonical
	}
	i.paths[path] = path
	return path
}

// Len returns the number of distinct paths in the shard.
func (i *Interner) Len() int { return len(i.paths) }

// MergeInterners copies per-file shards into a single read-only table.
// Called exactly once, after all extraction has completed.
func MergeInterners(shards ...*Interner) *Interner {
	merged := NewInterner()
	for _, s := range shards {
		if s == nil {
			continue
		}
		for p := range s.paths {
			merged.Intern(p)
		}
	}
	return merged
}
