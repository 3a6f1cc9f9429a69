// Package regnum mints registration numbers for newly enrolled agencies.
package regnum

import (
	"crypto/sha256"
	"encoding/binary"
	"sync/atomic"
	"time"

	id "attestry/pkg/domain"
)

// Generator produces registration numbers below the authority sentinel.
// Registration numbers are not security-sensitive; uniqueness for practical
// enrollment volumes is all that is required. The monotonic counter keeps
// repeated calls within one clock tick from colliding.
type Generator struct {
	counter atomic.Uint64
	now     func() time.Time
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock injects a clock for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns a registration number in [1, AuthoritySentinel). Zero marks
// "never enrolled" in agency records and the sentinel is reserved for the
// authority, so neither can ever be produced.
func (g *Generator) Next(caller id.AgencyID) id.RegistrationNumber {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], g.counter.Add(1))
	binary.BigEndian.PutUint64(buf[8:16], uint64(g.now().UnixNano()))

	h := sha256.New()
	h.Write(buf[:])
	h.Write([]byte(caller))
	sum := h.Sum(nil)

	n := binary.BigEndian.Uint64(sum[:8])
	return id.RegistrationNumber(n%(uint64(id.AuthoritySentinel)-1) + 1)
}
