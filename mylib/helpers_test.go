// ABOUTME: Shared helpers for the runtime library tests
// ABOUTME: Provides roomy and tiny heaps plus a fatal-error catcher

package mylib

import (
	"github.com/prateek/gcheap/heap"
)

// testHeap is large enough that short tests never collect.
func testHeap() *heap.Heap {
	return heap.New(heap.Config{Verify: true})
}

// tinyHeap collects every kilobyte, so anything left unrooted is freed
// (and zeroed under Verify) almost immediately.
func tinyHeap() *heap.Heap {
	return heap.New(heap.Config{InitialBytes: heap.KiB(1), Verify: true})
}

// fatal runs fn and returns the FatalError it raised, if any.
func fatal(fn func()) (err error) {
	defer heap.Recover(&err)
	fn()
	return nil
}
