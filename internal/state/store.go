package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketRuns = []byte("runs")

// Run is a summary of one completed collection run.
type Run struct {
	ID             uint64         `json:"id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Tool           string         `json:"tool"`
	Directory      string         `json:"directory"`
	Files          int            `json:"files"`
	Endpoints      int            `json:"endpoints"`
	UniquePatterns int            `json:"unique_patterns"`
	ByMethod       map[string]int `json:"by_method"`
	AuthTypes      []string       `json:"auth_types"`
}

// History stores run summaries.
type History interface {
	Save(run *Run) error
	List() ([]Run, error)
	Close() error
}

// BoltHistory implements History using BoltDB. Runs are keyed by a
// big-endian sequence number so iteration returns them in save order.
type BoltHistory struct {
	db   *bolt.DB
	path string
}

// NewBoltHistory opens (or creates) the history database at path.
func NewBoltHistory(path string) (*BoltHistory, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltHistory{db: db, path: path}, nil
}

// Save appends run and sets its ID.
func (h *BoltHistory) Save(run *Run) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		run.ID = id

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}
		return b.Put(itob(id), data)
	})
}

// List returns every saved run, oldest first.
func (h *BoltHistory) List() ([]Run, error) {
	var runs []Run
	err := h.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.ForEach(func(_, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("failed to unmarshal run: %w", err)
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Path returns the database file path.
func (h *BoltHistory) Path() string {
	return h.path
}

// Close closes the database.
func (h *BoltHistory) Close() error {
	return h.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// MemoryHistory implements History in memory.
type MemoryHistory struct {
	runs []Run
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Save appends run and sets its ID.
func (h *MemoryHistory) Save(run *Run) error {
	run.ID = uint64(len(h.runs) + 1)
	h.runs = append(h.runs, *run)
	return nil
}

// List returns every saved run, oldest first.
func (h *MemoryHistory) List() ([]Run, error) {
	out := make([]Run, len(h.runs))
	copy(out, h.runs)
	return out, nil
}

// Close is a no-op for MemoryHistory.
func (h *MemoryHistory) Close() error {
	return nil
}
