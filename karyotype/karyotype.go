// Package karyotype maps contig names to their baseline copy number in the
// sample, e.g. 2 for human autosomes, 1 for chrY in a male sample, 0 for
// contigs that should never be genotyped.
package karyotype

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grailbio/base/file"
)

// Karyotype is a contig -> baseline copy number lookup.  Immutable after
// Load and safe for concurrent readers.
type Karyotype struct {
	ploidies map[string]int
}

// New returns a Karyotype over the given mapping.
func New(ploidies map[string]int) (*Karyotype, error) {
	for contig, cn := range ploidies {
		if cn < 0 {
			return nil, fmt.Errorf("karyotype: negative copy number %d for contig %s", cn, contig)
		}
	}
	return &Karyotype{ploidies: ploidies}, nil
}

// Load reads a karyotype from a JSON document mapping contig names to
// nonnegative integer copy numbers, e.g. {"chr1": 2, "chrY": 0}.
func Load(ctx context.Context, path string) (*Karyotype, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("karyotype: open %s: %v", path, err)
	}
	defer in.Close(ctx) // nolint: errcheck
	var raw map[string]int
	if err := json.NewDecoder(in.Reader(ctx)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("karyotype: parse %s: %v", path, err)
	}
	k, err := New(raw)
	if err != nil {
		return nil, fmt.Errorf("karyotype: %s: %v", path, err)
	}
	return k, nil
}

// Get returns the baseline copy number for contig.  ok is false when the
// karyotype has no entry for the contig.
func (k *Karyotype) Get(contig string) (cn int, ok bool) {
	cn, ok = k.ploidies[contig]
	return cn, ok
}

// Len returns the number of contigs in the karyotype.
func (k *Karyotype) Len() int { return len(k.ploidies) }
