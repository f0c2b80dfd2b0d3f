// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/yourbase/keyfile/ini"
	"gopkg.in/yaml.v3"
)

// writeText prints each source in INI syntax. Entries of the null group come
// first. Sources are preceded by a header when there is more than one.
func writeText(w io.Writer, srcs []source) error {
	bw := bufio.NewWriter(w)
	for i, src := range srcs {
		if len(srcs) > 1 {
			if i > 0 {
				bw.WriteString("\n")
			}
			fmt.Fprintf(bw, "# %s\n", src.name)
		}
		writeEntries(bw, src.domain.NullGroup())
		for g := src.domain.First(); g != nil; g = g.Next() {
			fmt.Fprintf(bw, "[%s]\n", g.Label())
			writeEntries(bw, g)
		}
	}
	return bw.Flush()
}

func writeEntries(bw *bufio.Writer, g *ini.Group) {
	for e := g.First(); e != nil; e = e.Next() {
		fmt.Fprintf(bw, "%s=%s\n", e.Key(), e.Value())
	}
}

// writeLines prints every line each source was parsed from, as it was read.
func writeLines(w io.Writer, srcs []source) error {
	bw := bufio.NewWriter(w)
	for _, src := range srcs {
		for _, line := range src.domain.Lines() {
			bw.Write(line)
		}
	}
	return bw.Flush()
}

type domainDoc struct {
	Source string     `yaml:"source"`
	Null   []entryDoc `yaml:"null,omitempty"`
	Groups []groupDoc `yaml:"groups,omitempty"`
}

type groupDoc struct {
	Label   string     `yaml:"label"`
	Entries []entryDoc `yaml:"entries,omitempty"`
}

type entryDoc struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

func newDomainDoc(src source) *domainDoc {
	doc := &domainDoc{
		Source: src.name,
		Null:   newEntryDocs(src.domain.NullGroup()),
	}
	for _, g := range src.domain.Groups() {
		doc.Groups = append(doc.Groups, groupDoc{
			Label:   string(g.Label()),
			Entries: newEntryDocs(g),
		})
	}
	return doc
}

func newEntryDocs(g *ini.Group) []entryDoc {
	var docs []entryDoc
	for _, e := range g.Entries() {
		docs = append(docs, entryDoc{
			Key:   string(e.Key()),
			Value: string(e.Value()),
		})
	}
	return docs
}

// writeYAML prints each source as a separate YAML document.
func writeYAML(w io.Writer, srcs []source) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, src := range srcs {
		if err := enc.Encode(newDomainDoc(src)); err != nil {
			return fmt.Errorf("write yaml: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return nil
}

// lookup prints the value of key in the group with the given label, or in the
// null group if hasGroup is false. Earlier sources take precedence unless all
// is set, in which case every value is printed in order.
func lookup(w io.Writer, srcs []source, label string, hasGroup bool, key string, all bool) error {
	dset := make(ini.DomainSet, 0, len(srcs))
	for _, src := range srcs {
		dset = append(dset, src.domain)
	}

	var values [][]byte
	switch {
	case all && hasGroup:
		values = dset.Values(label, key)
	case all:
		for _, d := range dset {
			for _, e := range d.NullGroup().Entries() {
				if string(e.Key()) == key {
					values = append(values, e.Value())
				}
			}
		}
	case hasGroup:
		if e := dset.Find(label, key); e != nil {
			values = append(values, e.Value())
		}
	default:
		if e := dset.FindNull(key); e != nil {
			values = append(values, e.Value())
		}
	}
	if len(values) == 0 {
		if hasGroup {
			return fmt.Errorf("%s not found in [%s]", key, label)
		}
		return fmt.Errorf("%s not found", key)
	}

	bw := bufio.NewWriter(w)
	for _, v := range values {
		bw.Write(v)
		bw.WriteString("\n")
	}
	return bw.Flush()
}
