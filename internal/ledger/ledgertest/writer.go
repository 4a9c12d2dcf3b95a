// Package ledgertest provides an in-memory ledger.Writer for service tests.
package ledgertest

import (
	"context"
	"sync"
	"time"

	"github.com/chromatex/dyehouse/internal/ledger"
)

// MemoryWriter records ledger mutations in memory, mirroring the row
// matching rules of the real store.
type MemoryWriter struct {
	mu      sync.Mutex
	nextID  int64
	entries []ledger.Entry
}

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{nextID: 1}
}

func (m *MemoryWriter) Insert(_ context.Context, e ledger.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryWriter) UpdateQuantity(_ context.Context, key ledger.Key, date time.Time, quantityIn, quantityOut float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if matches(e, key.Ref, key.RefCode, key.ProductID) && e.Location == key.Location {
			m.entries[i].QuantityIn = quantityIn
			m.entries[i].QuantityOut = quantityOut
			m.entries[i].Date = date
		}
	}
	return nil
}

func (m *MemoryWriter) Delete(_ context.Context, ref ledger.Ref, refCode string, productID int64, locations ...ledger.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep := m.entries[:0]
	for _, e := range m.entries {
		if matches(e, ref, refCode, productID) && locationMatch(e.Location, locations) {
			continue
		}
		keep = append(keep, e)
	}
	m.entries = keep
	return nil
}

// Entries returns a copy of all recorded rows.
func (m *MemoryWriter) Entries() []ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Find returns the rows matching the (ref, ref_code, product) triple.
func (m *MemoryWriter) Find(ref ledger.Ref, refCode string, productID int64) []ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Entry
	for _, e := range m.entries {
		if matches(e, ref, refCode, productID) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e ledger.Entry, ref ledger.Ref, refCode string, productID int64) bool {
	return e.Ref == ref && e.RefCode == refCode && e.ProductID == productID
}

func locationMatch(loc ledger.Location, locations []ledger.Location) bool {
	if len(locations) == 0 {
		return true
	}
	for _, l := range locations {
		if l == loc {
			return true
		}
	}
	return false
}
