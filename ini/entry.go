// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import "container/list"

// An Entry is a single key/value assignment. Every Entry belongs to at most
// one Group. Entries are immutable once created, with the exception of their
// membership.
type Entry struct {
	group *Group
	elem  *list.Element // position in group.entries; nil iff group == nil
	order uint64        // insertion order within group; breaks key ties

	key   []byte
	value []byte
}

// newEntry returns an unlinked entry holding copies of key and value.
func newEntry(key, value []byte) *Entry {
	return &Entry{
		key:   dup(key),
		value: dup(value),
	}
}

// link appends e to g's ordered list and key index.
func (e *Entry) link(g *Group) {
	if e.group != nil {
		panic("ini: link of an entry that is already linked")
	}
	g.linked++
	e.order = g.linked
	e.group = g
	e.elem = g.entries.PushBack(e)
	g.index.ReplaceOrInsert(e)
}

// unlink removes e from its group's list and key index in one step.
// It is a no-op for an unlinked entry.
func (e *Entry) unlink() {
	if e.group == nil {
		return
	}
	e.group.index.Delete(e)
	e.group.entries.Remove(e.elem)
	e.group = nil
	e.elem = nil
	e.order = 0
}

// Key returns the entry's key. The caller must not modify the returned slice.
func (e *Entry) Key() []byte {
	return e.key
}

// Value returns the entry's value. The caller must not modify the returned
// slice.
func (e *Entry) Value() []byte {
	return e.value
}

// Group returns the group e is listed in or nil if e has been discarded.
func (e *Entry) Group() *Group {
	return e.group
}

// Next returns the entry following e in its group or nil if e is the last one.
func (e *Entry) Next() *Entry {
	if e.elem == nil {
		return nil
	}
	return entryOf(e.elem.Next())
}

// Previous returns the entry preceding e in its group or nil if e is the
// first one.
func (e *Entry) Previous() *Entry {
	if e.elem == nil {
		return nil
	}
	return entryOf(e.elem.Prev())
}

func entryOf(elem *list.Element) *Entry {
	if elem == nil {
		return nil
	}
	return elem.Value.(*Entry)
}

// entryLess orders entries by key and then by insertion order.
func entryLess(a, b *Entry) bool {
	if c := compareBytes(a.key, b.key); c != 0 {
		return c < 0
	}
	return a.order < b.order
}
