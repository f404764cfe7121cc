package state

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	defaultEstimate = 1000
	falsePositive   = 0.001
)

// Deduplicator keeps, per source document, the (method, path) pairs already
// accepted. Pairs are compared verbatim: /users/{id} and /users/{userId} are
// different endpoints.
type Deduplicator struct {
	mu       sync.RWMutex
	docs     map[string]*docSet
	order    []string
	estimate uint
	accepted int
	rejected int
}

// docSet is the seen-set of a single document. The bloom filter answers
// "definitely new" quickly; exact settles the maybes.
type docSet struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewDeduplicator creates a deduplicator sized for about estimatedPerDoc
// endpoints per document.
func NewDeduplicator(estimatedPerDoc int) *Deduplicator {
	if estimatedPerDoc < defaultEstimate {
		estimatedPerDoc = defaultEstimate
	}
	return &Deduplicator{
		docs:     make(map[string]*docSet),
		estimate: uint(estimatedPerDoc),
	}
}

// Accept records (method, path) for doc. It returns false when the pair was
// already accepted for the same document.
func (d *Deduplicator) Accept(doc, method, path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.docs[doc]
	if !ok {
		set = &docSet{
			filter: bloom.NewWithEstimates(d.estimate, falsePositive),
			exact:  make(map[string]struct{}),
		}
		d.docs[doc] = set
		d.order = append(d.order, doc)
	}

	key := method + " " + path
	if set.filter.TestString(key) {
		if _, seen := set.exact[key]; seen {
			d.rejected++
			return false
		}
	}

	set.filter.AddString(key)
	set.exact[key] = struct{}{}
	d.accepted++
	return true
}

// Count returns the number of accepted pairs across all documents.
func (d *Deduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.accepted
}

// Duplicates returns the number of rejected pairs across all documents.
func (d *Deduplicator) Duplicates() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rejected
}

// Documents returns the documents seen so far, in first-seen order.
func (d *Deduplicator) Documents() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Reset forgets every document.
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.docs = make(map[string]*docSet)
	d.order = nil
	d.accepted = 0
	d.rejected = 0
}
