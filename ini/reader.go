// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
)

// initialLineSize is the smallest capacity the line buffer grows to.
const initialLineSize = 4096

var (
	// ErrTooLarge is returned when a pending line grows beyond what an int
	// can represent.
	ErrTooLarge = errors.New("line too large")

	// ErrNoMemory is returned when the line buffer cannot be allocated.
	ErrNoMemory = errors.New("cannot allocate line buffer")
)

// A Reader parses INI data that is handed to it in chunks of any size. Data
// is split into lines as it arrives and every complete line is applied to the
// domain under construction immediately. Seal finishes the parse and hands
// the domain over to the caller, after which the Reader can be reused.
//
// The zero value is a Reader with the zero Mode. A Reader must not be used
// by multiple goroutines concurrently.
type Reader struct {
	mode Mode

	domain    *Domain
	current   *Group // may be an unlisted duplicate
	malformed bool

	line []byte // pending, not yet terminated line
}

// NewReader returns a Reader that parses with the given mode.
func NewReader(mode Mode) (*Reader, error) {
	if err := mode.Validate(); err != nil {
		return nil, fmt.Errorf("new ini reader: %w", err)
	}
	return &Reader{mode: mode}, nil
}

// Mode returns the mode r parses with.
func (r *Reader) Mode() Mode {
	return r.mode
}

// SetMode changes the mode r parses with. It takes effect with the next
// complete line. Invalid modes are rejected and leave r unchanged.
func (r *Reader) SetMode(mode Mode) error {
	if err := mode.Validate(); err != nil {
		return fmt.Errorf("set ini reader mode: %w", err)
	}
	r.mode = mode
	return nil
}

// Malformed reports whether a line since the last call to Seal could not be
// recognized as a comment, a group header or an assignment. Such lines are
// ignored, so the parse continues regardless.
func (r *Reader) Malformed() bool {
	return r.malformed
}

// Feed parses p. Complete lines are applied right away; a trailing partial
// line is buffered until more data arrives or Seal is called. Splitting the
// input differently never changes the result.
//
// If the line buffer cannot grow, Feed returns an error wrapping ErrTooLarge or
// ErrNoMemory. Lines committed before the failure stay in the domain and the
// buffered partial line is left as it was.
func (r *Reader) Feed(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if r.domain == nil {
		r.domain = NewDomain()
	}
	for {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			break
		}
		if err := r.append(p[:i+1]); err != nil {
			return fmt.Errorf("feed ini data: %w", err)
		}
		r.commit()
		p = p[i+1:]
	}
	if err := r.append(p); err != nil {
		return fmt.Errorf("feed ini data: %w", err)
	}
	return nil
}

// Write feeds p to r. It implements io.Writer.
func (r *Reader) Write(p []byte) (n int, err error) {
	if err := r.Feed(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ReadFrom feeds everything read from src to r until src returns io.EOF.
// It does not seal r. It implements io.ReaderFrom.
func (r *Reader) ReadFrom(src io.Reader) (n int64, err error) {
	buf := make([]byte, initialLineSize)
	for {
		nn, readErr := src.Read(buf)
		n += int64(nn)
		if err := r.Feed(buf[:nn]); err != nil {
			return n, err
		}
		if readErr == io.EOF {
			return n, nil
		}
		if readErr != nil {
			return n, fmt.Errorf("read ini data: %w", readErr)
		}
	}
}

// Flush applies the buffered partial line as if it were terminated, so that
// Malformed reflects it. Data fed afterward starts a new line.
func (r *Reader) Flush() {
	if r.domain != nil && len(r.line) > 0 {
		r.commit()
	}
}

// Seal commits the pending last line, which does not need a trailing line
// feed, and returns the finished domain. The caller owns the domain from then
// on. If nothing was fed, Seal returns an empty domain.
//
// Seal resets the current group and the malformed flag. The Reader keeps its
// mode and buffer and is ready for an independent parse.
func (r *Reader) Seal() *Domain {
	if r.domain == nil {
		r.domain = NewDomain()
	}
	r.Flush()
	d := r.domain
	r.domain = nil
	r.current = nil
	r.malformed = false
	return d
}

// Reset discards the parse in progress, including any buffered partial line.
// The Reader keeps its mode and buffer.
func (r *Reader) Reset() {
	if r.domain != nil {
		r.domain.clear()
	}
	r.domain = nil
	r.current = nil
	r.malformed = false
	r.line = r.line[:0]
}

// append adds p to the line buffer, growing it as needed. On error, the buffer
// is unchanged.
func (r *Reader) append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	line, err := growLine(r.line, len(p))
	if err != nil {
		return err
	}
	r.line = append(line, p...)
	return nil
}

// growLine returns line with room for at least n more bytes. A newly
// allocated buffer is never smaller than initialLineSize and at least doubles
// the capacity, so a long line fed in small pieces is copied only a
// logarithmic number of times.
func growLine(line []byte, n int) (_ []byte, err error) {
	if cap(line)-len(line) >= n {
		return line, nil
	}
	need := len(line) + n
	if need < len(line) {
		return nil, ErrTooLarge
	}
	size := initialLineSize
	if c := cap(line); c <= math.MaxInt/2 && 2*c > size {
		size = 2 * c
	}
	if need > size {
		size = need
	}
	defer func() {
		if v := recover(); v != nil {
			if _, ok := v.(runtime.Error); !ok {
				panic(v)
			}
			err = ErrNoMemory
		}
	}()
	grown := make([]byte, len(line), size)
	copy(grown, line)
	return grown, nil
}

// commit archives the buffered line in the domain and applies it.
func (r *Reader) commit() {
	raw := newRaw(r.line)
	r.line = r.line[:0]
	raw.link(r.domain)
	r.parseLine(raw.data)
}

// parseLine classifies a single line and applies it to the domain.
func (r *Reader) parseLine(data []byte) {
	extended := r.mode&ExtendedWhitespace != 0

	// Lines end at a line feed, and only there. The last line of the input
	// may lack it.
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}
	if extended {
		if n := len(data); n > 0 && data[n-1] == '\r' {
			data = data[:n-1]
		}
		data = bytes.TrimLeft(data, whitespace)
	}

	if len(data) == 0 || data[0] == '#' {
		return
	}

	// A line that starts with '[' and ends with the first ']' opens a group,
	// whatever the label contains. Otherwise a broken header would silently
	// merge its entries into the previous group.
	if data[0] == '[' {
		rest := data[1:]
		if end := bytes.IndexByte(rest, ']'); end >= 0 {
			if extended {
				rest = bytes.TrimRight(rest, whitespace)
			}
			if end+1 == len(rest) {
				r.openGroup(rest[:end])
				return
			}
		}
	}

	if i := bytes.IndexByte(data, '='); i >= 0 {
		r.assign(data[:i], data[i+1:])
		return
	}

	// Unrecognized lines stay archived but have no effect.
	r.malformed = true
}

// openGroup makes the group with the given label current.
func (r *Reader) openGroup(label []byte) {
	dup := r.domain.Find(label)
	if dup != nil && r.mode&MergeGroups != 0 {
		r.current = dup
		return
	}

	// A rejected duplicate still becomes current, so that the entries that
	// follow it are attached to it rather than to the previous group.
	g := newGroup(label)
	if dup == nil || r.mode&KeepDuplicateGroups != 0 {
		g.link(r.domain)
	}
	r.current = g
}

// assign adds an entry to the current group, or to the null group before the
// first group header.
func (r *Reader) assign(key, value []byte) {
	// Only whitespace next to '=' is stripped. Leading whitespace of the line
	// was handled by the caller; trailing whitespace of the value is kept.
	if r.mode&ExtendedWhitespace != 0 {
		key = bytes.TrimRight(key, whitespace)
		value = bytes.TrimLeft(value, whitespace)
	} else {
		key = bytes.TrimRight(key, " ")
		value = bytes.TrimLeft(value, " ")
	}

	e := newEntry(key, value)
	g := r.current
	if g == nil {
		g = r.domain.null
	}
	dup := g.Find(e.key)
	switch {
	case dup != nil && r.mode&OverrideEntries != 0:
		dup.unlink()
		e.link(g)
	case dup == nil || r.mode&KeepDuplicateEntries != 0:
		e.link(g)
	}
}

// Parse parses data in one go. It is equivalent to feeding all of data to a
// new Reader with the given mode and sealing it.
func Parse(mode Mode, data []byte) (*Domain, error) {
	r, err := NewReader(mode)
	if err != nil {
		return nil, fmt.Errorf("parse ini data: %w", err)
	}
	if err := r.Feed(data); err != nil {
		return nil, fmt.Errorf("parse ini data: %w", err)
	}
	return r.Seal(), nil
}

// Load parses everything read from src.
func Load(src io.Reader, mode Mode) (*Domain, error) {
	r, err := NewReader(mode)
	if err != nil {
		return nil, fmt.Errorf("load ini data: %w", err)
	}
	if _, err := r.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("load ini data: %w", err)
	}
	return r.Seal(), nil
}
