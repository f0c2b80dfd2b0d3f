// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is a set of flags that select the dialect and the duplicate handling
// of a Reader. The zero Mode parses the plain desktop-entry format and keeps
// only the first of any duplicate groups or entries.
type Mode uint

const (
	// ExtendedWhitespace widens the whitespace set to tab, line feed, form feed,
	// carriage return and space. Leading whitespace of every line, a trailing
	// carriage return and trailing whitespace after a group header are ignored.
	// Whitespace around '=' is stripped, but trailing whitespace of a value is
	// kept.
	ExtendedWhitespace Mode = 1 << iota

	// KeepDuplicateGroups lists every group with a repeated label as a separate
	// group. It cannot be combined with MergeGroups.
	KeepDuplicateGroups

	// MergeGroups appends the entries under a repeated label to the first group
	// with that label. It cannot be combined with KeepDuplicateGroups.
	MergeGroups

	// KeepDuplicateEntries keeps every entry with a repeated key. It cannot be
	// combined with OverrideEntries.
	KeepDuplicateEntries

	// OverrideEntries replaces an earlier entry with a later one of the same
	// key. It cannot be combined with KeepDuplicateEntries.
	OverrideEntries
)

const allModes = ExtendedWhitespace |
	KeepDuplicateGroups |
	MergeGroups |
	KeepDuplicateEntries |
	OverrideEntries

// ErrInvalidMode is returned for unknown mode flags and for combinations of
// mutually exclusive flags.
var ErrInvalidMode = errors.New("invalid mode")

var modeNames = []struct {
	mode Mode
	name string
}{
	{ExtendedWhitespace, "extended-whitespace"},
	{KeepDuplicateGroups, "keep-duplicate-groups"},
	{MergeGroups, "merge-groups"},
	{KeepDuplicateEntries, "keep-duplicate-entries"},
	{OverrideEntries, "override-entries"},
}

// Validate returns an error wrapping ErrInvalidMode if m has unknown bits set
// or combines flags that exclude each other.
func (m Mode) Validate() error {
	if extra := m &^ allModes; extra != 0 {
		return fmt.Errorf("%w: unknown flags %#x", ErrInvalidMode, uint(extra))
	}
	if m&KeepDuplicateGroups != 0 && m&MergeGroups != 0 {
		return fmt.Errorf("%w: keep-duplicate-groups and merge-groups are exclusive", ErrInvalidMode)
	}
	if m&KeepDuplicateEntries != 0 && m&OverrideEntries != 0 {
		return fmt.Errorf("%w: keep-duplicate-entries and override-entries are exclusive", ErrInvalidMode)
	}
	return nil
}

// String returns the comma-separated flag names of m, or "default" for the
// zero Mode. Unknown bits are rendered in hex.
func (m Mode) String() string {
	if m == 0 {
		return "default"
	}
	var names []string
	for _, mn := range modeNames {
		if m&mn.mode != 0 {
			names = append(names, mn.name)
		}
	}
	if extra := m &^ allModes; extra != 0 {
		names = append(names, fmt.Sprintf("%#x", uint(extra)))
	}
	return strings.Join(names, ",")
}

// ParseMode parses a comma-separated list of flag names as produced by
// Mode.String. Surrounding spaces are ignored. The empty string and "default"
// yield the zero Mode. The result is validated.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" || name == "default" {
			continue
		}
		found := false
		for _, mn := range modeNames {
			if mn.name == name {
				m |= mn.mode
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("parse mode %q: %w: unknown flag %q", s, ErrInvalidMode, name)
		}
	}
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("parse mode %q: %w", s, err)
	}
	return m, nil
}
