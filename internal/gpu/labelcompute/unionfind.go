// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package labelcompute

import "sync/atomic"

// Every forest slot holds an index no greater than its own, so parent chains
// strictly decrease until they reach a root (L[n] == n). Walks are still
// bounded by the block count, matching the WGSL loops.

// find returns the root of n.
func find(labels []uint32, n, limit uint32) uint32 {
	for range limit {
		parent := atomic.LoadUint32(&labels[n])
		if parent == n {
			break
		}
		n = parent
	}
	return n
}

// findAndCompress walks from anchor a to its root, storing every step back
// into a's own slot.
func findAndCompress(labels []uint32, a, limit uint32) {
	id := a
	for range limit {
		parent := atomic.LoadUint32(&labels[id])
		if parent == id {
			return
		}
		id = parent
		atomic.StoreUint32(&labels[a], id)
	}
}

// atomicMin stores min(labels[i], v) and returns the previous value, like
// WGSL atomicMin.
func atomicMin(labels []uint32, i, v uint32) uint32 {
	for {
		old := atomic.LoadUint32(&labels[i])
		if old <= v {
			return old
		}
		if atomic.CompareAndSwapUint32(&labels[i], old, v) {
			return old
		}
	}
}

// union joins the trees of a and b by linking the larger root under the
// smaller one. A lost race shows up as atomicMin returning something other
// than the root it expected; the loop then retries from that value.
//
// Each retry moves a or b to a strictly smaller index, so the two walks
// together take at most 2*limit rounds.
func union(labels []uint32, a, b, limit uint32) {
	for range unionRetries(limit) {
		a = find(labels, a, limit)
		b = find(labels, b, limit)
		switch {
		case a < b:
			old := atomicMin(labels, b, a)
			if old == b {
				return
			}
			b = old
		case b < a:
			old := atomicMin(labels, a, b)
			if old == a {
				return
			}
			a = old
		default:
			return
		}
	}
}

// unionRetries bounds the union retry loop for a forest of limit blocks.
func unionRetries(limit uint32) uint32 { return 2 * limit }
