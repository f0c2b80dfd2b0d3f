// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"container/list"

	"github.com/google/btree"
)

const indexDegree = 8

// A Group is a labeled section holding an ordered list of entries. Entries
// are additionally indexed by key for lookups.
//
// A Group may be reachable from a Domain, or it may be an unlisted duplicate
// that only a Reader still holds on to while parsing.
type Group struct {
	domain *Domain
	elem   *list.Element // position in domain.groups; nil iff domain == nil
	order  uint64        // insertion order within domain; breaks label ties

	label []byte // nil only for the null group

	entries *list.List
	index   *btree.BTreeG[*Entry]
	linked  uint64 // order handed to the most recently linked entry
}

// newGroup returns an unlinked, empty group. A nil label creates a null group.
func newGroup(label []byte) *Group {
	g := &Group{
		entries: list.New(),
		index:   btree.NewG(indexDegree, entryLess),
	}
	if label != nil {
		g.label = dup(label)
	}
	return g
}

// link appends g to d's ordered list and label index.
func (g *Group) link(d *Domain) {
	if g.domain != nil {
		panic("ini: link of a group that is already linked")
	}
	d.linked++
	g.order = d.linked
	g.domain = d
	g.elem = d.groups.PushBack(g)
	d.index.ReplaceOrInsert(g)
}

// unlink removes g from its domain's list and label index in one step.
// The group keeps its entries. It is a no-op for an unlinked group.
func (g *Group) unlink() {
	if g.domain == nil {
		return
	}
	g.domain.index.Delete(g)
	g.domain.groups.Remove(g.elem)
	g.domain = nil
	g.elem = nil
	g.order = 0
}

// clear unlinks every entry of g, last one first.
func (g *Group) clear() {
	for elem := g.entries.Back(); elem != nil; elem = g.entries.Back() {
		entryOf(elem).unlink()
	}
}

// Label returns the group's label, exactly as it appeared between the square
// brackets. The null group has a nil label. The caller must not modify the
// returned slice.
func (g *Group) Label() []byte {
	return g.label
}

// IsNull reports whether g is the null group of a domain, which collects the
// entries that precede the first group header.
func (g *Group) IsNull() bool {
	return g.label == nil
}

// Domain returns the domain g is listed in. It returns nil for the null group
// and for discarded duplicates.
func (g *Group) Domain() *Domain {
	return g.domain
}

// Next returns the group following g in its domain or nil if g is the last
// one.
func (g *Group) Next() *Group {
	if g.elem == nil {
		return nil
	}
	return groupOf(g.elem.Next())
}

// Previous returns the group preceding g in its domain or nil if g is the
// first one.
func (g *Group) Previous() *Group {
	if g.elem == nil {
		return nil
	}
	return groupOf(g.elem.Prev())
}

// First returns the first entry of g or nil if g is empty.
// Use Entry.Next to iterate the remaining entries.
func (g *Group) First() *Entry {
	return entryOf(g.entries.Front())
}

// Len returns the number of entries listed in g.
func (g *Group) Len() int {
	return g.entries.Len()
}

// Entries returns the entries of g in the order they were read.
func (g *Group) Entries() []*Entry {
	if g.entries.Len() == 0 {
		return nil
	}
	entries := make([]*Entry, 0, g.entries.Len())
	for e := g.First(); e != nil; e = e.Next() {
		entries = append(entries, e)
	}
	return entries
}

// Find returns the entry with the given key or nil if there is none. If
// several entries share the key, Find returns the one that was added first.
func (g *Group) Find(key []byte) *Entry {
	var found *Entry
	g.index.AscendGreaterOrEqual(&Entry{key: key}, func(e *Entry) bool {
		found = e
		return false
	})
	if found == nil || compareBytes(found.key, key) != 0 {
		return nil
	}
	return found
}

// FindString is like Find but takes the key as a string.
func (g *Group) FindString(key string) *Entry {
	return g.Find([]byte(key))
}

func groupOf(elem *list.Element) *Group {
	if elem == nil {
		return nil
	}
	return elem.Value.(*Group)
}

// groupLess orders groups by label and then by insertion order.
func groupLess(a, b *Group) bool {
	if c := compareBytes(a.label, b.label); c != 0 {
		return c < 0
	}
	return a.order < b.order
}
