package registry

import (
	"bytes"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// Snapshot persists registry assignments between runs in a local badger
// store. Identifiers are content-derived, so the snapshot is not required
// for identifier stability; it is what lets a rehydrated run honor the
// emit-descriptive-statements-at-most-once contract across runs and lets
// stats distinguish new entities from previously seen ones.
//
// Single-writer discipline: LoadInto runs before pass 1 starts, Save runs
// only after pass 2 completes, and the coordinator's run mutex guarantees no
// concurrent reader sees a partial write.
type Snapshot struct {
	db  *badger.DB
	log *slog.Logger
}

// OpenSnapshot opens (or creates) the snapshot store at dir.
func OpenSnapshot(dir string, log *slog.Logger) (*Snapshot, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry snapshot at %s: %w", dir, err)
	}
	return &Snapshot{db: db, log: log}, nil
}

// Close releases the underlying store.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// snapshotKey namespaces a natural key by kind. Natural keys are free text,
// so the separator is a NUL byte rather than anything printable.
func snapshotKey(kind Kind, key string) []byte {
	out := make([]byte, 0, len(kind)+1+len(key))
	out = append(out, []byte(kind)...)
	out = append(out, 0)
	out = append(out, []byte(key)...)
	return out
}

// LoadInto preloads every persisted assignment into the matching builder.
// Must complete before pass 1 of the run starts.
func (s *Snapshot) LoadInto(b *Builders) error {
	loaded := 0
	err := s.db.View(func(txn *badger.Txn) error {
		for _, builder := range b.All() {
			prefix := append([]byte(builder.Kind()), 0)
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
			for it.Rewind(); it.Valid(); it.Next() {
				item := it.Item()
				key := bytes.TrimPrefix(item.KeyCopy(nil), prefix)
				id, err := item.ValueCopy(nil)
				if err != nil {
					it.Close()
					return err
				}
				builder.Preload(string(key), string(id))
				loaded++
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load registry snapshot: %w", err)
	}
	if loaded > 0 {
		s.log.Info("rehydrated registry snapshot", "assignments", loaded)
	}
	return nil
}

// Save writes the full assignment maps of every builder. Called only after
// pass 2 completed and the run's output is durable downstream.
func (s *Snapshot) Save(b *Builders) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	total := 0
	for _, builder := range b.All() {
		for key, id := range builder.Assignments() {
			if err := wb.Set(snapshotKey(builder.Kind(), key), []byte(id)); err != nil {
				return fmt.Errorf("failed to stage registry snapshot entry: %w", err)
			}
			total++
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to persist registry snapshot: %w", err)
	}
	s.log.Info("persisted registry snapshot", "assignments", total)
	return nil
}
