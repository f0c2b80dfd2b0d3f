// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/yourbase/keyfile/ini"
	"github.com/yourbase/keyfile/iniio"
	"gopkg.in/yaml.v3"
	"zombiezen.com/go/log/testlog"
)

func parseSources(t *testing.T, mode ini.Mode, sources ...string) []source {
	t.Helper()
	var srcs []source
	for i, s := range sources {
		d, err := ini.Parse(mode, []byte(s))
		if err != nil {
			t.Fatal(err)
		}
		srcs = append(srcs, source{name: string(rune('a'+i)) + ".ini", domain: d})
	}
	return srcs
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		want    string
	}{
		{
			name:    "Single",
			sources: []string{"top=1\n[g]\nk = v\n# comment\n[h]\n"},
			want:    "top=1\n[g]\nk=v\n[h]\n",
		},
		{
			name:    "Multiple",
			sources: []string{"[g]\nk=v\n", "x=y\n"},
			want:    "# a.ini\n[g]\nk=v\n\n# b.ini\nx=y\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sb := new(strings.Builder)
			if err := writeText(sb, parseSources(t, 0, test.sources...)); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, sb.String()); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteLines(t *testing.T) {
	const source = "[g]\r\nbogus\nk=v"
	sb := new(strings.Builder)
	if err := writeLines(sb, parseSources(t, 0, source)); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != source {
		t.Errorf("output = %q; want %q", got, source)
	}
}

func TestWriteYAML(t *testing.T) {
	srcs := parseSources(t, ini.KeepDuplicateGroups, "top=1\n[g]\nk=v\n[g]\n", "[h]\nempty=\n")
	sb := new(strings.Builder)
	if err := writeYAML(sb, srcs); err != nil {
		t.Fatal(err)
	}

	var got []domainDoc
	dec := yaml.NewDecoder(strings.NewReader(sb.String()))
	for {
		var doc domainDoc
		if err := dec.Decode(&doc); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			t.Fatalf("decode output: %v\n%s", err, sb)
		}
		got = append(got, doc)
	}
	want := []domainDoc{
		{
			Source: "a.ini",
			Null:   []entryDoc{{Key: "top", Value: "1"}},
			Groups: []groupDoc{
				{Label: "g", Entries: []entryDoc{{Key: "k", Value: "v"}}},
				{Label: "g"},
			},
		},
		{
			Source: "b.ini",
			Groups: []groupDoc{
				{Label: "h", Entries: []entryDoc{{Key: "empty", Value: ""}}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded output (-want +got):\n%s", diff)
	}
}

func TestLookup(t *testing.T) {
	srcs := parseSources(t, ini.KeepDuplicateEntries,
		"k=null1\n[g]\nk=1\nk=2\n",
		"k=null2\n[g]\nk=3\n",
	)
	tests := []struct {
		name     string
		label    string
		hasGroup bool
		key      string
		all      bool
		want     string
		wantErr  bool
	}{
		{name: "Null", key: "k", want: "null1\n"},
		{name: "NullAll", key: "k", all: true, want: "null1\nnull2\n"},
		{name: "Group", label: "g", hasGroup: true, key: "k", want: "1\n"},
		{name: "GroupAll", label: "g", hasGroup: true, key: "k", all: true, want: "1\n2\n3\n"},
		{name: "MissingKey", label: "g", hasGroup: true, key: "nope", wantErr: true},
		{name: "MissingGroup", label: "nope", hasGroup: true, key: "k", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sb := new(strings.Builder)
			err := lookup(sb, srcs, test.label, test.hasGroup, test.key, test.all)
			if err != nil {
				if !test.wantErr {
					t.Error("lookup:", err)
				}
				return
			}
			if test.wantErr {
				t.Fatalf("lookup succeeded with %q; want error", sb)
			}
			if got := sb.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

func TestLoadFiles(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	dir := t.TempDir()
	path := filepath.Join(dir, "app.desktop")
	if err := os.WriteFile(path, []byte("\t[Desktop Entry]\r\nName = Files\r\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	opts := &options{mode: ini.ExtendedWhitespace, chunkSize: 2}
	srcs, err := load(ctx, opts, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(srcs) != 1 || srcs[0].name != path {
		t.Fatalf("load(...) = %d sources; want 1 named %q", len(srcs), path)
	}
	e := srcs[0].domain.FindString("Desktop Entry").FindString("Name")
	if e == nil || string(e.Value()) != "Files" {
		t.Error("Name entry not parsed from file")
	}

	if _, err := load(ctx, opts, []string{filepath.Join(dir, "missing")}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("load(<missing file>) = _, %v; want %v", err, os.ErrNotExist)
	}

	bad := filepath.Join(dir, "bad.desktop")
	if err := os.WriteFile(bad, []byte("[Desktop Entry]\nbogus"), 0o666); err != nil {
		t.Fatal(err)
	}
	if _, err := load(ctx, opts, []string{bad}); err != nil {
		t.Error("load(<malformed file>):", err)
	}
	opts.strict = true
	if _, err := load(ctx, opts, []string{bad}); !errors.Is(err, iniio.ErrMalformed) {
		t.Errorf("strict load(<malformed file>) = _, %v; want %v", err, iniio.ErrMalformed)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "BadMode", args: []string{"--mode=bogus"}},
		{name: "ExclusiveMode", args: []string{"--mode=merge-groups,keep-duplicate-groups"}},
		{name: "BadFormat", args: []string{"--format=json"}},
		{name: "BadChunkSize", args: []string{"--chunk-size=0"}},
		{name: "FilesAndWebSocket", args: []string{"--websocket=ws://localhost/", "a.ini"}},
		{name: "BadModeEnv", env: map[string]string{"INIDUMP_MODE": "bogus"}},
		{name: "BadChunkSizeEnv", env: map[string]string{"INIDUMP_CHUNK_SIZE": "big"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("INIDUMP_MODE", "")
			t.Setenv("INIDUMP_CHUNK_SIZE", "")
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			ctx := testlog.WithTB(context.Background(), t)
			err := run(ctx, test.args)
			if err == nil || errors.Is(err, pflag.ErrHelp) {
				t.Errorf("run(ctx, %q) = %v; want error", test.args, err)
			}
		})
	}
}

func TestMain(m *testing.M) {
	testlog.Main(nil)
	os.Exit(m.Run())
}
