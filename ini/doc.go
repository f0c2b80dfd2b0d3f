// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

/*
Package ini provides a streaming parser for INI files in the desktop-entry
format. See https://specifications.freedesktop.org/desktop-entry-spec/latest/.

The parser accepts input in chunks of any size and builds a Domain: an ordered
list of groups, each holding an ordered list of key/value entries, with sorted
indexes for lookups. Every input line is archived verbatim in the Domain, so no
information from the source is lost. This package does not serialize domains.

# Syntax

An INI file is a sequence of lines separated by line feeds ('\n'). The last
line does not need to be terminated. Keys, values and labels are arbitrary
bytes; they are not required to be valid UTF-8 and may contain NUL bytes.

Blank lines and lines starting with a hash ('#') are comments.

A line starting with '[' whose first ']' is its last byte is a group header.
Everything between the brackets is the group label, verbatim:

	[Desktop Entry]

A line containing an equals sign ('=') is an entry. The key is everything
before the first '=', the value everything after it. Spaces before the '=' and
after it are ignored:

	Name = Files

Entries that precede the first group header are collected in the null group of
the domain. Any other line is malformed: it is ignored, but reported by
Reader.Malformed.

# Extended whitespace

With the ExtendedWhitespace mode, the parser follows the quirks of the GLib
key-file parser. Tab, line feed, form feed, carriage return and space are
whitespace. Leading whitespace of every line is ignored, as is one trailing
carriage return and any trailing whitespace after a group header. Whitespace
around '=' is ignored, but whitespace at the end of a value is preserved.

# Repeated names

By default, only the first group with a given label is kept. Entries following
a repeated group header are attached to that repeated group, which is then
dropped. Likewise, only the first entry with a given key in a group is kept.
The KeepDuplicateGroups, MergeGroups, KeepDuplicateEntries and OverrideEntries
modes change this behavior. Lookups always return the earliest matching group
or entry.
*/
package ini
