// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// inidump parses INI files and prints the groups and entries it finds, as
// text or as YAML. It is mostly useful for checking how a file is understood
// under the different parse modes.
//
// Usage:
//
//	inidump [options] [FILE [...]]
//
// With no files, or with "-", inidump reads standard input. With --websocket,
// it reads a single source from a WebSocket peer instead. The default mode and
// read size come from the INIDUMP_MODE and INIDUMP_CHUNK_SIZE environment
// variables.
package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/yourbase/keyfile/envvar"
	"github.com/yourbase/keyfile/ini"
	"github.com/yourbase/keyfile/iniio"
	"zombiezen.com/go/log"
)

func main() {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("inidump: ")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Errorf(ctx, "%v", err)
		os.Exit(1)
	}
}

type options struct {
	mode      ini.Mode
	chunkSize int
	format    string
	websocket string
	dialTime  time.Duration
	group     string
	key       string
	all       bool
	lines     bool
	strict    bool
}

func run(ctx context.Context, args []string) error {
	defaultMode, err := envvar.Mode("INIDUMP_MODE", 0)
	if err != nil {
		return err
	}
	defaultChunkSize, err := envvar.Int("INIDUMP_CHUNK_SIZE", iniio.DefaultChunkSize)
	if err != nil {
		return err
	}

	opts := new(options)
	var modeString string
	flagSet := pflag.NewFlagSet("inidump", pflag.ContinueOnError)
	flagSet.StringVarP(&modeString, "mode", "m", defaultMode.String(), "comma-separated parse `flags`")
	flagSet.IntVar(&opts.chunkSize, "chunk-size", defaultChunkSize, "read size in `bytes`")
	flagSet.StringVarP(&opts.format, "format", "f", "text", "output `format` (text or yaml)")
	flagSet.StringVar(&opts.websocket, "websocket", "", "read from the WebSocket at `url`")
	flagSet.DurationVar(&opts.dialTime, "dial-timeout", 10*time.Second, "how long to keep trying to connect to --websocket")
	flagSet.StringVarP(&opts.group, "group", "g", "", "group `label` to look up with --key")
	flagSet.StringVarP(&opts.key, "key", "k", "", "print only the value of `key`")
	flagSet.BoolVarP(&opts.all, "all", "a", false, "print every value of --key across sources")
	flagSet.BoolVar(&opts.lines, "lines", false, "print the lines read instead of the parsed groups")
	flagSet.BoolVar(&opts.strict, "strict", false, "fail on malformed lines instead of ignoring them")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: inidump [options] [FILE [...]]")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	opts.mode, err = ini.ParseMode(modeString)
	if err != nil {
		return fmt.Errorf("--mode: %w", err)
	}
	switch opts.format {
	case "text", "yaml":
	default:
		return fmt.Errorf("--format: unknown format %q", opts.format)
	}
	if opts.chunkSize <= 0 {
		return fmt.Errorf("--chunk-size: must be positive")
	}
	if opts.websocket != "" && flagSet.NArg() > 0 {
		return fmt.Errorf("cannot read files and --websocket together")
	}

	srcs, err := load(ctx, opts, flagSet.Args())
	if err != nil {
		return err
	}
	switch {
	case opts.key != "":
		return lookup(os.Stdout, srcs, opts.group, flagSet.Changed("group"), opts.key, opts.all)
	case opts.lines:
		return writeLines(os.Stdout, srcs)
	case opts.format == "yaml":
		return writeYAML(os.Stdout, srcs)
	default:
		return writeText(os.Stdout, srcs)
	}
}

// A source is a parsed domain along with the name it was read from.
type source struct {
	name   string
	domain *ini.Domain
}

func load(ctx context.Context, opts *options, paths []string) ([]source, error) {
	if opts.websocket != "" {
		d, err := loadWebSocket(ctx, opts)
		if err != nil {
			return nil, err
		}
		return []source{{name: opts.websocket, domain: d}}, nil
	}
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	srcs := make([]source, 0, len(paths))
	for _, path := range paths {
		d, err := loadFile(ctx, opts, path)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, source{name: path, domain: d})
	}
	return srcs, nil
}

func loadFile(ctx context.Context, opts *options, path string) (*ini.Domain, error) {
	loadOpts := &iniio.LoadOptions{
		Mode:      opts.mode,
		Name:      path,
		ChunkSize: opts.chunkSize,
		Strict:    opts.strict,
	}
	if path == "-" {
		loadOpts.Name = "standard input"
		return iniio.Load(ctx, os.Stdin, loadOpts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return iniio.Load(ctx, f, loadOpts)
}

func loadWebSocket(ctx context.Context, opts *options) (*ini.Domain, error) {
	dialCtx, cancel := context.WithTimeout(ctx, opts.dialTime)
	conn, err := iniio.Dial(dialCtx, nil, opts.websocket, nil)
	cancel()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	log.Debugf(ctx, "Connected to %s", opts.websocket)
	return iniio.ReadWebSocket(ctx, conn, &iniio.LoadOptions{
		Mode:   opts.mode,
		Name:   opts.websocket,
		Strict: opts.strict,
	})
}
