// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package iniio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourbase/keyfile/ini"
	"zombiezen.com/go/log"
)

// ReadWebSocket parses the text and binary messages received on conn until
// the peer closes the connection normally. Message boundaries have no meaning:
// a line may span several messages. Nil options are treated identically as
// passing the zero value. LoadOptions.ChunkSize is not used.
//
// If the Context is Done before the peer closes the connection, ReadWebSocket
// returns the Context's error and conn should be closed.
func ReadWebSocket(ctx context.Context, conn *websocket.Conn, opts *LoadOptions) (*ini.Domain, error) {
	name := opts.name()
	reader, err := ini.NewReader(opts.mode())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	for {
		typ, p, err := readMessage(ctx, conn)
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			break
		}
		if err != nil {
			reader.Reset()
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
			continue
		}
		log.Debugf(ctx, "Received %d bytes of %s", len(p), name)
		if err := reader.Feed(p); err != nil {
			reader.Reset()
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}
	return seal(ctx, reader, name, opts.strict())
}

// Send writes everything read from src to conn as binary messages of at most
// opts.ChunkSize bytes, then closes the WebSocket normally. It does not close
// the underlying connection. Only LoadOptions.ChunkSize is used.
func Send(ctx context.Context, conn *websocket.Conn, src io.Reader, opts *LoadOptions) error {
	buf := make([]byte, opts.chunkSize())
	emptyReads := 0
	for {
		n, readErr := readChunk(ctx, src, buf)
		if n > 0 {
			emptyReads = 0
			if err := writeMessage(ctx, conn, websocket.BinaryMessage, buf[:n]); err != nil {
				return fmt.Errorf("send ini data: %w", err)
			}
			// An abandoned read may still write into buf.
			buf = make([]byte, len(buf))
		} else if emptyReads++; emptyReads >= maxEmptyReads && readErr == nil {
			readErr = io.ErrNoProgress
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("send ini data: %w", readErr)
		}
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := writeMessage(ctx, conn, websocket.CloseMessage, msg); err != nil {
		return fmt.Errorf("send ini data: %w", err)
	}
	return nil
}

// readMessage reads the next message from the connection, interrupting the
// read if the Context is Done.
func readMessage(ctx context.Context, conn *websocket.Conn) (messageType int, p []byte, err error) {
	ctxDone := ctx.Done()
	if ctxDone == nil {
		return conn.ReadMessage()
	}
	select {
	case <-ctxDone:
		return 0, nil, fmt.Errorf("read websocket message: %w", ctx.Err())
	default:
	}
	read := make(chan struct{})
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-read:
		case <-ctxDone:
			conn.SetReadDeadline(time.Now())
		}
	}()
	messageType, p, err = conn.ReadMessage()
	close(read)
	<-watchDone
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		err = fmt.Errorf("read websocket message: %w", ctx.Err())
	}
	return
}

// writeMessage writes a message to the connection, interrupting the write if
// the Context is Done.
func writeMessage(ctx context.Context, conn *websocket.Conn, messageType int, data []byte) error {
	ctxDone := ctx.Done()
	if ctxDone == nil {
		return conn.WriteMessage(messageType, data)
	}
	select {
	case <-ctxDone:
		return fmt.Errorf("write websocket message: %w", ctx.Err())
	default:
	}
	written := make(chan struct{})
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-written:
		case <-ctxDone:
			// XXX This is racy because WriteMessage will unconditionally call
			// SetWriteDeadline.
			conn.UnderlyingConn().SetWriteDeadline(time.Now())
		}
	}()
	err := conn.WriteMessage(messageType, data)
	close(written)
	<-watchDone
	return err
}
