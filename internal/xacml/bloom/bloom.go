// Package bloom implements a small Bloom filter used to skip
// Target-matching work for top-level policies that cannot possibly
// apply to a request. The PDP builds one filter per top-level root from
// the (category, attributeId) pairs referenced in that root's Target
// tree; at evaluation time a request none of whose own attribute keys
// tests as possibly present (MayContain) is guaranteed not to match,
// so the root can be
// reported NotApplicable without walking its Target or rule tree. A
// filter hit proves nothing — it only means Target evaluation must run
// as normal — so false positives cost time, never correctness: a miss
// only prunes, it never admits a false Applicable.
package bloom

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

const numHashes = 4

// Filter is a fixed-size Bloom filter over string keys.
type Filter struct {
	bits []uint64
	m    uint64
}

// New returns a Filter sized for roughly expectedKeys entries at a
// reasonable false-positive rate (8 bits per key).
func New(expectedKeys int) *Filter {
	m := uint64(expectedKeys*8 + 64)
	words := (m + 63) / 64
	return &Filter{bits: make([]uint64, words), m: words * 64}
}

func (f *Filter) positions(key string) [numHashes]uint64 {
	sum := blake3.Sum256([]byte(key))
	var pos [numHashes]uint64
	for i := 0; i < numHashes; i++ {
		v := binary.LittleEndian.Uint64(sum[i*8 : i*8+8])
		pos[i] = v % f.m
	}
	return pos
}

func (f *Filter) Add(key string) {
	for _, p := range f.positions(key) {
		f.bits[p/64] |= 1 << (p % 64)
	}
}

// MayContain reports whether key could have been added. false is a
// definite answer; true may be a false positive.
func (f *Filter) MayContain(key string) bool {
	for _, p := range f.positions(key) {
		if f.bits[p/64]&(1<<(p%64)) == 0 {
			return false
		}
	}
	return true
}

// Intersects reports whether any key in keys may be contained in f.
// An empty keys slice (a Target with no AttributeDesignator references,
// e.g. an empty or Selector-only Target) always reports true: the
// filter has no information to prune on, so evaluation must proceed.
func (f *Filter) Intersects(keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if f.MayContain(k) {
			return true
		}
	}
	return false
}
