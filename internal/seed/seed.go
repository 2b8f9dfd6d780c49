// Package seed derives reproducible per-component seeds from a single
// master seed, so the engine never touches a process-global RNG: every
// randomized decision (policy sampling, per-worker RNGs, analyzer
// tie-breaks) gets an explicit seed traced back to (master, tags...).
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Manager derives deterministic seeds from an optional master seed. The
// zero value (no master) is the "unseeded" manager: Derive then reports
// unseeded=true and callers must fall back to a nondeterministic source.
type Manager struct {
	master    string
	hasMaster bool
}

// New returns a Manager seeded by master. The tag sequence passed to
// Derive need not be requested in any particular order by callers: the
// derivation is a pure function of (master, tags).
func New(master string) *Manager {
	return &Manager{master: master, hasMaster: true}
}

// Unseeded returns a Manager with no master seed; Derive always reports
// unseeded=true and a zero value.
func Unseeded() *Manager {
	return &Manager{}
}

// HasMaster reports whether this manager was constructed with a master
// seed.
func (m *Manager) HasMaster() bool { return m.hasMaster }

// Derive computes s = SHA-256(master || ":" || tag1 || ":" || tag2 || ...),
// takes the first 4 bytes as a big-endian unsigned integer, and masks it to
// 31 bits. Identical (master, tags) always yields the identical seed,
// across processes and runs. If this manager has no master seed, unseeded
// is true and value is zero (meaningless).
func (m *Manager) Derive(tags ...any) (value uint32, unseeded bool) {
	if !m.hasMaster {
		return 0, true
	}
	h := sha256.New()
	h.Write([]byte(m.master))
	for _, tag := range tags {
		h.Write([]byte(":"))
		h.Write([]byte(fmt.Sprint(tag)))
	}
	sum := h.Sum(nil)
	raw := binary.BigEndian.Uint32(sum[:4])
	return raw & 0x7FFFFFFF, false
}
