// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNilDomainSet(t *testing.T) {
	for _, dset := range []DomainSet{nil, {nil, nil}} {
		if got := dset.Find("foo", "bar"); got != nil {
			t.Errorf("Find(...) = %q; want nil", got.Value())
		}
		if got := dset.FindNull("bar"); got != nil {
			t.Errorf("FindNull(...) = %q; want nil", got.Value())
		}
		if got := dset.Values("foo", "bar"); len(got) > 0 {
			t.Errorf("Values(...) = %q; want empty", got)
		}
	}
}

func TestDomainSetAccess(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		sources    []string
		label      string
		key        string
		wantFind   string
		wantValues []string
	}{
		{
			name:       "ExistsInFirst",
			sources:    []string{"[g]\nFOO=bar\n", "[g]\nBAZ=quux\n"},
			label:      "g",
			key:        "FOO",
			wantFind:   "bar",
			wantValues: []string{"bar"},
		},
		{
			name:       "ExistsInSecond",
			sources:    []string{"[g]\nFOO=bar\n", "[g]\nBAZ=quux\n"},
			label:      "g",
			key:        "BAZ",
			wantFind:   "quux",
			wantValues: []string{"quux"},
		},
		{
			name:    "DoesNotExist",
			sources: []string{"[g]\nFOO=bar\n", "[g]\nBAZ=quux\n"},
			label:   "g",
			key:     "bork",
		},
		{
			name:       "MultipleValues",
			sources:    []string{"[g]\nFOO=bar\n", "[g]\nFOO=baz\n"},
			label:      "g",
			key:        "FOO",
			wantFind:   "bar",
			wantValues: []string{"bar", "baz"},
		},
		{
			name: "KeptDuplicates",
			mode: KeepDuplicateGroups | KeepDuplicateEntries,
			sources: []string{
				"[g]\nk=1\nk=2\n[h]\nk=x\n[g]\nk=3\n",
				"[g]\nk=4\n",
			},
			label:      "g",
			key:        "k",
			wantFind:   "1",
			wantValues: []string{"1", "2", "3", "4"},
		},
		{
			name: "OtherGroup",
			sources: []string{
				"[foo]\nbar=baz\n[xyzzy]\nbork=bork\n",
				"[foo]\nsomething=else\n",
			},
			label:      "xyzzy",
			key:        "bork",
			wantFind:   "bork",
			wantValues: []string{"bork"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var dset DomainSet
			for _, src := range test.sources {
				d, err := Parse(test.mode, []byte(src))
				if err != nil {
					t.Fatal(err)
				}
				dset = append(dset, d)
			}
			got := ""
			if e := dset.Find(test.label, test.key); e != nil {
				got = string(e.Value())
			}
			if got != test.wantFind {
				t.Errorf("dset.Find(%q, %q) = %q; want %q", test.label, test.key, got, test.wantFind)
			}
			var values []string
			for _, v := range dset.Values(test.label, test.key) {
				values = append(values, string(v))
			}
			if diff := cmp.Diff(test.wantValues, values, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("dset.Values(%q, %q) (-want +got):\n%s", test.label, test.key, diff)
			}
		})
	}
}

func TestDomainSetFindNull(t *testing.T) {
	a, err := Parse(0, []byte("x=1\n[g]\ny=2\n"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(0, []byte("x=3\ny=4\n"))
	if err != nil {
		t.Fatal(err)
	}
	dset := DomainSet{a, nil, b}
	if e := dset.FindNull("x"); e == nil || string(e.Value()) != "1" {
		t.Error("FindNull(\"x\") did not return the value from the first domain")
	}
	if e := dset.FindNull("y"); e == nil || string(e.Value()) != "4" {
		t.Error("FindNull(\"y\") did not fall back to the last domain")
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user.desktop")
	system := filepath.Join(dir, "system.desktop")
	missing := filepath.Join(dir, "missing.desktop")
	if err := os.WriteFile(user, []byte("[Desktop Entry]\r\nName=Mine\r\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(system, []byte("[Desktop Entry]\nName=Files\nExec=nautilus\nbogus"), 0o666); err != nil {
		t.Fatal(err)
	}

	dset, err := ParseFiles(ExtendedWhitespace, user, missing, system)
	if err != nil {
		t.Fatal(err)
	}
	if len(dset) != 3 {
		t.Fatalf("len(dset) = %d; want 3", len(dset))
	}
	if dset[1] != nil {
		t.Error("missing file has a domain")
	}
	for _, test := range []struct{ key, want string }{
		{"Name", "Mine"},
		{"Exec", "nautilus"},
	} {
		e := dset.Find("Desktop Entry", test.key)
		if e == nil {
			t.Errorf("dset.Find(\"Desktop Entry\", %q) = nil", test.key)
			continue
		}
		if got := string(e.Value()); got != test.want {
			t.Errorf("dset.Find(\"Desktop Entry\", %q) = %q; want %q", test.key, got, test.want)
		}
	}
	if got := len(dset[2].Lines()); got != 4 {
		t.Errorf("system file has %d lines; want 4", got)
	}
}

func TestParseFilesErrors(t *testing.T) {
	if _, err := ParseFiles(MergeGroups | KeepDuplicateGroups); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("ParseFiles(<invalid mode>) = _, %v; want %v", err, ErrInvalidMode)
	}
	// A directory can be opened but not read.
	dir := t.TempDir()
	dset, err := ParseFiles(0, dir)
	if err == nil {
		t.Error("ParseFiles(<directory>) did not return an error")
	}
	if len(dset) != 0 {
		t.Errorf("len(dset) = %d; want 0", len(dset))
	}
}
