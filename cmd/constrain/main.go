package main

/*
constrain genotypes short tandem repeats from an indexed alignment, guided
by the copy number of each locus: the baseline karyotype of the sample,
optionally overridden by per-region copy-number alteration calls.  Variant
calls are emitted as VCF.
*/

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/acg-team/ConSTRain/encoding/vcf"
	"github.com/acg-team/ConSTRain/genotyping"
	"github.com/acg-team/ConSTRain/interval"
	"github.com/acg-team/ConSTRain/karyotype"
	"github.com/acg-team/ConSTRain/partition"
	"github.com/acg-team/ConSTRain/repeats"
)

var (
	repeatsPath   = flag.String("repeats", "", "Repeat loci to genotype. BED3+2 (contig, start, end, period, motif), or VCF with END/RU/PERIOD INFO fields; required")
	karyotypePath = flag.String("karyotype", "", "JSON document mapping contig names to baseline copy numbers; required")
	alignmentPath = flag.String("alignment", "", "Indexed, coordinate-sorted BAM to extract allele lengths from; required")
	indexPath     = flag.String("index", "", "Alignment index path. Defaults to the alignment path + .bai")
	cnvsPath      = flag.String("cnvs", "", "Copy-number alteration calls for this sample. BED3+1 (contig, start, end, copy number)")
	referencePath = flag.String("reference", "", "Reference genome FASTA; when set, alignment contigs are checked against it")
	sampleName    = flag.String("sample", "", "Sample name for the VCF output. Defaults to the alignment file name without its extension")
	outPath       = flag.String("out", "", "Output VCF path. Defaults to stdout")
	threads       = flag.Int("threads", 1, "Number of genotyping workers")
	flankSize     = flag.Int("flank-size", genotyping.DefaultOpts.FlankSize, "Reference bases on each side of a locus a read must cover to span it")
	minNormDepth  = flag.Float64("min-norm-depth", genotyping.DefaultOpts.MinNormDepth, "Minimum reads per copy required to estimate a genotype")
	maxNormDepth  = flag.Float64("max-norm-depth", genotyping.DefaultOpts.MaxNormDepth, "Maximum reads per copy allowed; 0 means unbounded")
	maxCN         = flag.Int("max-cn", genotyping.DefaultOpts.MaxCN, fmt.Sprintf("Skip loci with copy number above this value (at most %d)", partition.MaxN))
	sortBy        = flag.String("sort-by", "length", "Order of the FREQS output field: 'length' or 'freq'")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -repeats <bed|vcf> -karyotype <json> -alignment <bam> [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *repeatsPath == "" || *karyotypePath == "" || *alignmentPath == "" {
		flag.Usage()
		log.Fatalf("-repeats, -karyotype and -alignment are required")
	}
	freqsOrder, err := repeats.ParseSortBy(*sortBy)
	if err != nil {
		log.Fatalf("-sort-by: %v", err)
	}

	ctx := vcontext.Background()
	k, err := karyotype.Load(ctx, *karyotypePath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var loci []*repeats.Locus
	copyNumbers := make(map[int]bool)
	if err := repeatSource(*repeatsPath).Load(k, &loci, copyNumbers); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("read %d repeat loci from %s", len(loci), *repeatsPath)

	if *cnvsPath != "" {
		var regions []interval.CopyNumberRegion
		if err := (repeats.BEDCNVSource{Path: *cnvsPath}).Load(&regions, copyNumbers); err != nil {
			log.Fatalf("%v", err)
		}
		overlay, err := interval.NewOverlay(regions)
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("read %d copy-number regions from %s", overlay.Len(), *cnvsPath)
		for _, l := range loci {
			if l.Filter != repeats.FilterPass {
				continue
			}
			repeats.ApplyCNV(l, overlay.ForContig(l.Contig))
		}
	}

	var buildList []int
	for cn := range copyNumbers {
		if cn > 0 && cn <= *maxCN {
			buildList = append(buildList, cn)
		}
	}
	sort.Ints(buildList)
	log.Printf("building partition tables for copy numbers %v", buildList)
	table, err := partition.Build(buildList)
	if err != nil {
		log.Fatalf("%v", err)
	}

	src, err := genotyping.NewBAMSource(*alignmentPath, *indexPath, *referencePath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer src.Close() // nolint: errcheck

	opts := genotyping.Opts{
		FlankSize:    *flankSize,
		MinNormDepth: *minNormDepth,
		MaxNormDepth: *maxNormDepth,
		MaxCN:        *maxCN,
		Parallelism:  *threads,
	}
	log.Printf("genotyping %d loci with %d worker(s)", len(loci), opts.Parallelism)
	if err := genotyping.Genotype(ctx, loci, table, src, opts); err != nil {
		log.Fatalf("%v", err)
	}

	header, err := src.Header()
	if err != nil {
		log.Fatalf("%v", err)
	}
	sample := *sampleName
	if sample == "" {
		sample = sampleNameFromPath(*alignmentPath)
		log.Printf("no sample name given, using %s", sample)
	}

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := file.Create(ctx, *outPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer func() {
			if err := f.Close(ctx); err != nil {
				log.Fatalf("close %s: %v", *outPath, err)
			}
		}()
		out = f.Writer(ctx)
	}
	if err := vcf.Write(out, header, sample, freqsOrder, loci); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("done")
}

// repeatSource picks the loader matching the locus table's format.
func repeatSource(path string) repeats.Source {
	base := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if strings.HasSuffix(base, ".vcf") {
		return vcf.Source{Path: path}
	}
	return repeats.BEDSource{Path: path}
}

// sampleNameFromPath infers a sample name from the alignment file name.
func sampleNameFromPath(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
