// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"fmt"
	"os"
)

// DomainSet is a list of domains to obtain configuration from in descending
// order of precedence. Nil elements are permitted and ignored.
type DomainSet []*Domain

// ParseFiles parses the files at the given paths with the given mode and
// returns a DomainSet. If the returned error is nil, the returned set's length
// will be the same as the number of paths. ParseFiles stops on the first
// error, but ignores missing files, filling the corresponding element of the
// set with a nil *Domain.
func ParseFiles(mode Mode, paths ...string) (DomainSet, error) {
	r, err := NewReader(mode)
	if err != nil {
		return nil, fmt.Errorf("parse ini files: %w", err)
	}
	dset := make(DomainSet, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if os.IsNotExist(err) {
			dset = append(dset, nil)
			continue
		}
		if err != nil {
			return dset, fmt.Errorf("parse ini files: %w", err)
		}
		_, err = r.ReadFrom(f)
		f.Close() // Close errors irrelevant.
		if err != nil {
			r.Reset()
			return dset, fmt.Errorf("parse ini files: %s: %w", p, err)
		}
		dset = append(dset, r.Seal())
	}
	return dset, nil
}

// Find returns the entry with the given key in the first group with the given
// label, consulting the domains in order of precedence. It returns nil if no
// domain has such an entry.
func (dset DomainSet) Find(label, key string) *Entry {
	for _, d := range dset {
		if d == nil {
			continue
		}
		if g := d.FindString(label); g != nil {
			if e := g.FindString(key); e != nil {
				return e
			}
		}
	}
	return nil
}

// FindNull is like Find, but searches the null groups of the domains.
func (dset DomainSet) FindNull(key string) *Entry {
	for _, d := range dset {
		if d == nil {
			continue
		}
		if e := d.NullGroup().FindString(key); e != nil {
			return e
		}
	}
	return nil
}

// Values returns the values of all entries with the given key in all listed
// groups with the given label. Values from domains with higher precedence come
// first; within a domain, values are in input order.
func (dset DomainSet) Values(label, key string) [][]byte {
	var values [][]byte
	for _, d := range dset {
		if d == nil {
			continue
		}
		for g := d.FindString(label); g != nil; g = g.Next() {
			if string(g.label) != label {
				continue
			}
			for e := g.FindString(key); e != nil; e = e.Next() {
				if string(e.key) == key {
					values = append(values, e.value)
				}
			}
		}
	}
	return values
}
