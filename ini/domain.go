// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"container/list"

	"github.com/google/btree"
)

// A Domain is a parsed INI document: an ordered list of groups, a null group
// for entries that precede any group header, and the archived input lines.
//
// A Domain returned by Reader.Seal is owned by the caller and is never touched
// by the Reader again, so it can be read by multiple concurrent goroutines.
type Domain struct {
	null *Group

	groups *list.List
	index  *btree.BTreeG[*Group]
	linked uint64 // order handed to the most recently linked group

	raws []*raw
}

// A raw is the verbatim copy of one physical input line, including its line
// feed if it had one.
type raw struct {
	domain *Domain
	data   []byte
}

// NewDomain returns an empty domain. Its null group exists but has no entries.
func NewDomain() *Domain {
	return &Domain{
		null:   newGroup(nil),
		groups: list.New(),
		index:  btree.NewG(indexDegree, groupLess),
	}
}

func newRaw(data []byte) *raw {
	return &raw{data: dup(data)}
}

// link appends r to d's archived lines.
func (r *raw) link(d *Domain) {
	if r.domain != nil {
		panic("ini: link of a line that is already linked")
	}
	r.domain = d
	d.raws = append(d.raws, r)
}

// clear tears d down top-down: archived lines first, then groups and their
// entries, and finally the entries of the null group. Every collection is
// empty afterwards.
func (d *Domain) clear() {
	for i, r := range d.raws {
		r.domain = nil
		d.raws[i] = nil
	}
	d.raws = d.raws[:0]
	for elem := d.groups.Back(); elem != nil; elem = d.groups.Back() {
		g := groupOf(elem)
		g.unlink()
		g.clear()
	}
	d.null.clear()
	if d.groups.Len() != 0 || d.index.Len() != 0 {
		panic("ini: domain still has groups after teardown")
	}
}

// NullGroup returns the group that holds the entries preceding the first group
// header. It always exists, but is not listed among the domain's groups and
// cannot be found by label.
func (d *Domain) NullGroup() *Group {
	return d.null
}

// First returns the first listed group of d or nil if there are none.
// Use Group.Next to iterate the remaining groups.
func (d *Domain) First() *Group {
	return groupOf(d.groups.Front())
}

// Len returns the number of groups listed in d, not counting the null group.
func (d *Domain) Len() int {
	return d.groups.Len()
}

// Groups returns the listed groups of d in the order they were read.
// The null group is not included.
func (d *Domain) Groups() []*Group {
	if d.groups.Len() == 0 {
		return nil
	}
	groups := make([]*Group, 0, d.groups.Len())
	for g := d.First(); g != nil; g = g.Next() {
		groups = append(groups, g)
	}
	return groups
}

// Find returns the listed group with the given label or nil if there is none.
// If several groups share the label, Find returns the one that was added
// first. A nil label is the same as an empty one and matches a group read
// from "[]". Use NullGroup for the null group, which Find never returns.
func (d *Domain) Find(label []byte) *Group {
	var found *Group
	d.index.AscendGreaterOrEqual(&Group{label: label}, func(g *Group) bool {
		found = g
		return false
	})
	if found == nil || compareBytes(found.label, label) != 0 {
		return nil
	}
	return found
}

// FindString is like Find but takes the label as a string.
func (d *Domain) FindString(label string) *Group {
	return d.Find([]byte(label))
}

// Lines returns the physical lines d was parsed from, in input order and
// including their line feeds. Lines that were ignored as comments, discarded
// as duplicates or flagged as malformed are included. Input that ends with a
// line feed has no empty last line. The caller must not modify the returned
// slices.
func (d *Domain) Lines() [][]byte {
	if len(d.raws) == 0 {
		return nil
	}
	lines := make([][]byte, len(d.raws))
	for i, r := range d.raws {
		lines[i] = r.data
	}
	return lines
}
