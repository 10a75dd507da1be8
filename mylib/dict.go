// ABOUTME: Open-addressing managed hash map with tombstone deletion
// ABOUTME: Tags, keys and values live in three parallel slabs

package mylib

import (
	"github.com/prateek/gcheap/heap"
)

// Dict object fields.
const (
	dictLen     = iota // live entries
	dictDeleted        // tombstones
	dictTags           // tag slab, traced
	dictKeys           // key slab, traced
	dictValues         // value slab, traced
	dictFields
)

const dictMask = heap.FieldMask(1<<dictTags | 1<<dictKeys | 1<<dictValues)

// Slot tags. The zero value of a fresh tag slab is tagEmpty.
const (
	tagEmpty uint64 = iota
	tagOccupied
	tagDeleted
)

const minDictCap = 8

// Dict is a handle to a hash map from K to V. Capacity is a power of two;
// the table is rebuilt once live entries plus tombstones reach 3/4 of it.
// Iteration follows slot order, which is unspecified.
type Dict[K Key[K], V Value[V]] struct {
	h   *heap.Heap
	ref heap.Ref
}

// NewDict returns an empty dict. Slabs are allocated by the first Set.
func NewDict[K Key[K], V Value[V]](h *heap.Heap) Dict[K, V] {
	return Dict[K, V]{h: h, ref: h.Allocate(heap.KindDict, dictFields*8, dictMask, false, 0)}
}

// Load implements heap.Slot.
func (d *Dict[K, V]) Load() heap.Ref {
	return d.ref
}

// Ref returns the dict's heap reference.
func (d Dict[K, V]) Ref() heap.Ref {
	return d.ref
}

// Word returns the dict's Ref as an arena word.
func (d Dict[K, V]) Word() uint64 {
	return uint64(d.ref)
}

// FromWord rebuilds a Dict handle from a stored Ref.
func (Dict[K, V]) FromWord(h *heap.Heap, w uint64) Dict[K, V] {
	return Dict[K, V]{h: h, ref: heap.Ref(w)}
}

// Traced is true: a stored Dict is followed by the collector.
func (Dict[K, V]) Traced() bool {
	return true
}

// Len returns the number of live entries.
func (d Dict[K, V]) Len() int {
	return int(d.h.Word(d.ref, dictLen))
}

// Cap returns the number of slots.
func (d Dict[K, V]) Cap() int {
	tags := d.h.RefAt(d.ref, dictTags)
	if tags == heap.Nil {
		return 0
	}
	return d.h.Header(tags).Len
}

func (d Dict[K, V]) deleted() int {
	return int(d.h.Word(d.ref, dictDeleted))
}

type dictSlabs struct {
	tags, keys, values []uint64
}

// slabs aliases the three slabs. Invalid after the next allocation.
func (d Dict[K, V]) slabs() dictSlabs {
	h := d.h
	return dictSlabs{
		tags:   h.Words(h.RefAt(d.ref, dictTags)),
		keys:   h.Words(h.RefAt(d.ref, dictKeys)),
		values: h.Words(h.RefAt(d.ref, dictValues)),
	}
}

// find probes for k. It returns k's slot and true, or the slot an insert
// should use (the first tombstone passed, else the empty slot that ended
// the probe) and false. The table must have at least one empty slot.
func (d Dict[K, V]) find(s dictSlabs, k K) (int, bool) {
	capMask := len(s.tags) - 1
	insert := -1
	var zero K
	for i, n := int(k.Hash())&capMask, 0; n <= capMask; i, n = (i+1)&capMask, n+1 {
		switch s.tags[i] {
		case tagEmpty:
			if insert < 0 {
				insert = i
			}
			return insert, false
		case tagDeleted:
			if insert < 0 {
				insert = i
			}
		case tagOccupied:
			if zero.FromWord(d.h, s.keys[i]).Equal(k) {
				return i, true
			}
		}
	}
	return insert, false
}

// Set inserts or overwrites the entry for k.
func (d Dict[K, V]) Set(k K, v V) {
	if d.Cap() == 0 || (d.Len()+d.deleted()+1)*4 > d.Cap()*3 {
		kr, vr := refOf(k), refOf(v)
		func() {
			defer d.h.PushRoots(&d, &kr, &vr).Pop()
			d.rehash()
		}()
	}
	s := d.slabs()
	i, found := d.find(s, k)
	if !found {
		if s.tags[i] == tagDeleted {
			d.h.SetWord(d.ref, dictDeleted, uint64(d.deleted()-1))
		}
		s.tags[i] = tagOccupied
		s.keys[i] = k.Word()
		d.h.SetWord(d.ref, dictLen, uint64(d.Len()+1))
	}
	s.values[i] = v.Word()
}

// rehash rebuilds the table, doubling it unless tombstones alone pushed it
// over the load limit. d must be rooted.
func (d Dict[K, V]) rehash() {
	h := d.h
	n, c := d.Len(), d.Cap()
	newCap := minDictCap
	if c > 0 {
		newCap = c
		if (n+1)*2 > c {
			newCap = c * 2
		}
	}

	var tags, keys, values heap.Ref
	defer h.PushRoots(&tags, &keys, &values).Pop()
	tags = newSlab[Int](h, newCap)
	keys = newSlab[K](h, newCap)
	values = newSlab[V](h, newCap)

	next := dictSlabs{tags: h.Words(tags), keys: h.Words(keys), values: h.Words(values)}
	if c > 0 {
		old := d.slabs()
		var zero K
		for i, tag := range old.tags {
			if tag != tagOccupied {
				continue
			}
			j, _ := d.find(next, zero.FromWord(h, old.keys[i]))
			next.tags[j] = tagOccupied
			next.keys[j] = old.keys[i]
			next.values[j] = old.values[i]
		}
	}
	h.SetRefAt(d.ref, dictTags, tags)
	h.SetRefAt(d.ref, dictKeys, keys)
	h.SetRefAt(d.ref, dictValues, values)
	h.SetWord(d.ref, dictDeleted, 0)
}

// Get returns the value for k and whether it was present.
func (d Dict[K, V]) Get(k K) (V, bool) {
	var zero V
	if d.Len() == 0 {
		return zero, false
	}
	s := d.slabs()
	i, found := d.find(s, k)
	if !found {
		return zero, false
	}
	return zero.FromWord(d.h, s.values[i]), true
}

// Contains reports whether k has an entry.
func (d Dict[K, V]) Contains(k K) bool {
	_, ok := d.Get(k)
	return ok
}

// Erase removes the entry for k. Erasing a missing key does nothing. The
// slot becomes a tombstone so later probes still walk past it, and its key
// and value words are cleared so the collector doesn't trace stale refs.
func (d Dict[K, V]) Erase(k K) {
	if d.Len() == 0 {
		return
	}
	s := d.slabs()
	i, found := d.find(s, k)
	if !found {
		return
	}
	s.tags[i] = tagDeleted
	s.keys[i] = 0
	s.values[i] = 0
	d.h.SetWord(d.ref, dictLen, uint64(d.Len()-1))
	d.h.SetWord(d.ref, dictDeleted, uint64(d.deleted()+1))
}

// Range calls fn for each entry in slot order until fn returns false. fn
// must not mutate d.
func (d Dict[K, V]) Range(fn func(k K, v V) bool) {
	if d.Cap() == 0 {
		return
	}
	var zk K
	var zv V
	s := d.slabs()
	for i, tag := range s.tags {
		if tag != tagOccupied {
			continue
		}
		if !fn(zk.FromWord(d.h, s.keys[i]), zv.FromWord(d.h, s.values[i])) {
			return
		}
	}
}

// Item is one dict entry.
type Item[K Key[K], V Value[V]] struct {
	Key   K
	Value V
}

// Items returns the entries in slot order. The result is not rooted.
func (d Dict[K, V]) Items() []Item[K, V] {
	items := make([]Item[K, V], 0, d.Len())
	d.Range(func(k K, v V) bool {
		items = append(items, Item[K, V]{Key: k, Value: v})
		return true
	})
	return items
}

// Keys returns the keys in slot order. The result is not rooted.
func (d Dict[K, V]) Keys() []K {
	keys := make([]K, 0, d.Len())
	d.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns the values in slot order. The result is not rooted.
func (d Dict[K, V]) Values() []V {
	values := make([]V, 0, d.Len())
	d.Range(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}
