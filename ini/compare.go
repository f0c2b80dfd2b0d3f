// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import "bytes"

// whitespace is the set of bytes treated as whitespace in extended mode.
// It is independent of any locale.
const whitespace = "\t\n\f\r "

// compareBytes orders byte strings by length first and then by content, so
// shorter strings always sort before longer ones. Group labels and entry keys
// are both indexed with this order.
func compareBytes(a, b []byte) int {
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return bytes.Compare(a, b)
	}
}

// dup returns a copy of b that does not alias the caller's memory.
// The copy is never nil so that empty labels and keys stay distinguishable
// from the absent label of the null group.
func dup(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
