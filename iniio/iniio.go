// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package iniio loads INI domains from byte streams and WebSockets, honoring
// Context cancellation while waiting for data.
package iniio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yourbase/keyfile/ini"
	"zombiezen.com/go/log"
)

// DefaultChunkSize is the read size used when LoadOptions.ChunkSize is not set.
const DefaultChunkSize = 4096

// ErrMalformed is returned by Load and ReadWebSocket in strict mode when the
// source has lines that are neither comments, group headers nor entries.
var ErrMalformed = errors.New("malformed lines")

// maxEmptyReads is the number of consecutive empty reads tolerated before
// giving up with io.ErrNoProgress.
const maxEmptyReads = 100

// LoadOptions holds optional parameters for Load and ReadWebSocket.
type LoadOptions struct {
	// Mode is the mode the data is parsed with.
	Mode ini.Mode

	// Name identifies the source in errors and log messages.
	// If empty, "ini data" is used.
	Name string

	// ChunkSize is the size of the reads from the source. If it is not
	// positive, DefaultChunkSize is used. It has no effect on the result.
	ChunkSize int

	// If Strict is true, a source with malformed lines is an error wrapping
	// ErrMalformed. Otherwise, malformed lines are logged and ignored.
	Strict bool
}

func (opts *LoadOptions) mode() ini.Mode {
	if opts == nil {
		return 0
	}
	return opts.Mode
}

func (opts *LoadOptions) name() string {
	if opts == nil || opts.Name == "" {
		return "ini data"
	}
	return opts.Name
}

func (opts *LoadOptions) strict() bool {
	return opts != nil && opts.Strict
}

func (opts *LoadOptions) chunkSize() int {
	if opts == nil || opts.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return opts.ChunkSize
}

// Load parses everything read from r. Nil options are treated identically as
// passing the zero value.
//
// If the Context is Done while Load is waiting on r, Load returns the
// Context's error without waiting for the pending read to finish. In that
// case, r must not be used afterward.
func Load(ctx context.Context, r io.Reader, opts *LoadOptions) (*ini.Domain, error) {
	name := opts.name()
	reader, err := ini.NewReader(opts.mode())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	emptyReads := 0
	for {
		// Each read gets a fresh buffer: an abandoned read may still write
		// into the previous one.
		buf := make([]byte, opts.chunkSize())
		n, readErr := readChunk(ctx, r, buf)
		if err := reader.Feed(buf[:n]); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("load %s: %w", name, readErr)
		}
		if n > 0 {
			emptyReads = 0
		} else if emptyReads++; emptyReads >= maxEmptyReads {
			return nil, fmt.Errorf("load %s: %w", name, io.ErrNoProgress)
		}
	}
	return seal(ctx, reader, name, opts.strict())
}

type readResult struct {
	n   int
	err error
}

// readChunk reads once from r into buf, returning early if the Context is
// Done.
func readChunk(ctx context.Context, r io.Reader, buf []byte) (int, error) {
	ctxDone := ctx.Done()
	if ctxDone == nil {
		return r.Read(buf)
	}
	select {
	case <-ctxDone:
		return 0, ctx.Err()
	default:
	}
	read := make(chan readResult, 1)
	go func() {
		n, err := r.Read(buf)
		read <- readResult{n, err}
	}()
	select {
	case res := <-read:
		return res.n, res.err
	case <-ctxDone:
		return 0, ctx.Err()
	}
}

// seal finishes the parse. Malformed lines, including an unterminated last
// one, fail the load in strict mode and are logged otherwise.
func seal(ctx context.Context, reader *ini.Reader, name string, strict bool) (*ini.Domain, error) {
	reader.Flush()
	malformed := reader.Malformed()
	d := reader.Seal()
	if malformed {
		if strict {
			return nil, fmt.Errorf("load %s: %w", name, ErrMalformed)
		}
		log.Warnf(ctx, "%s contains malformed lines; ignoring them", name)
	}
	log.Debugf(ctx, "Loaded %s: %d lines, %d groups", name, len(d.Lines()), d.Len())
	return d, nil
}
