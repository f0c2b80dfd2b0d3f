// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package iniio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"zombiezen.com/go/log"
)

// Backoff is an exponential backoff strategy for Dial. The zero value waits
// 100ms after the first failure, doubling up to 5 seconds.
type Backoff struct {
	// Initial is the wait after the first failed attempt.
	Initial time.Duration
	// Max caps the wait between attempts.
	Max time.Duration

	next time.Duration
}

// Duration returns the wait before the next attempt and advances b.
func (b *Backoff) Duration() time.Duration {
	if b.next == 0 {
		b.next = b.Initial
		if b.next <= 0 {
			b.next = 100 * time.Millisecond
		}
	}
	max := b.Max
	if max <= 0 {
		max = 5 * time.Second
	}
	d := b.next
	if d > max {
		d = max
	}
	b.next = d * 2
	return d
}

// Dial connects to the WebSocket at url, retrying with the given backoff until
// the Context is Done. Handshakes that the server rejects with a client error
// status are not retried. A nil backoff uses the zero Backoff.
func Dial(ctx context.Context, dialer *websocket.Dialer, url string, backoff *Backoff) (*websocket.Conn, error) {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	if backoff == nil {
		backoff = new(Backoff)
	}
	var t *time.Timer
	for {
		conn, resp, err := dialer.DialContext(ctx, url, nil)
		if err == nil {
			return conn, nil
		}
		err = fmt.Errorf("dial %s: %w", url, err)
		if resp != nil {
			resp.Body.Close()
			if resp.StatusCode < http.StatusInternalServerError {
				return nil, fmt.Errorf("%w (http %d)", err, resp.StatusCode)
			}
		}
		if ctx.Err() != nil {
			return nil, withContextError(ctx, err)
		}
		d := backoff.Duration()
		log.Warnf(ctx, "Error connecting to %s (will retry in %v): %v", url, d, err)
		if t == nil {
			t = time.NewTimer(d)
			defer t.Stop()
		} else {
			t.Reset(d)
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, withContextError(ctx, err)
		}
	}
}

// withContextError makes sure that err matches the Context's error.
func withContextError(ctx context.Context, err error) error {
	if errors.Is(err, ctx.Err()) {
		return err
	}
	return errors.Join(err, ctx.Err())
}
