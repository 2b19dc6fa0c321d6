package genotyping

import (
	"fmt"

	"github.com/acg-team/ConSTRain/partition"
)

// Opts configures extraction and estimation.
type Opts struct {
	// FlankSize is the number of reference bases on each side of a locus
	// that a read must cover, in addition to the locus itself, to count as
	// spanning evidence.
	FlankSize int
	// MinNormDepth is the minimum reads-per-copy required to attempt
	// estimation.
	MinNormDepth float64
	// MaxNormDepth, when positive, is the maximum reads-per-copy allowed;
	// loci above it are tagged DP_OOR.  Zero means no upper bound.
	MaxNormDepth float64
	// MaxCN drops loci with a copy number above this value from partition
	// table construction.  Bounded by partition.MaxN.
	MaxCN int
	// Parallelism is the number of workers; each worker owns a contiguous
	// chunk of loci and its own read fetcher.
	Parallelism int
}

// DefaultOpts holds the default extraction and estimation parameters.
var DefaultOpts = Opts{
	FlankSize:    5,
	MinNormDepth: 1.0,
	MaxNormDepth: 0,
	MaxCN:        20,
	Parallelism:  1,
}

// Check validates opts, applying no defaults: the zero value of a field is
// not necessarily valid.
func (o Opts) Check() error {
	if o.FlankSize < 0 {
		return fmt.Errorf("genotyping: flank size %d must be nonnegative", o.FlankSize)
	}
	if o.MinNormDepth < 1.0 {
		return fmt.Errorf("genotyping: minimum normalized depth %g must be at least 1", o.MinNormDepth)
	}
	if o.MaxNormDepth != 0 && o.MaxNormDepth <= o.MinNormDepth {
		return fmt.Errorf("genotyping: maximum normalized depth %g must exceed minimum %g", o.MaxNormDepth, o.MinNormDepth)
	}
	if o.MaxCN < 1 || o.MaxCN > partition.MaxN {
		return fmt.Errorf("genotyping: max copy number %d out of range [1, %d]", o.MaxCN, partition.MaxN)
	}
	if o.Parallelism < 1 {
		return fmt.Errorf("genotyping: parallelism %d must be at least 1", o.Parallelism)
	}
	return nil
}
