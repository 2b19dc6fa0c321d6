package genotyping

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf/index"
	"github.com/grailbio/hts/fai"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// BAMSource implements ReadSource for indexed, coordinate-sorted BAM files.
// Both the BAM and its index may be local paths or S3 URLs.  Each worker
// gets its own fetcher, so no synchronization happens on the read path.
type BAMSource struct {
	path  string
	index string

	mu     sync.Mutex
	header *sam.Header
}

// NewBAMSource opens a BAM source.  index defaults to path + ".bai".  When
// reference is nonempty it names a FASTA whose index is used to verify that
// the BAM header's contigs match the reference; a mismatch is an error.
// CRAM input is rejected: decoding it requires the external reference at
// every record, which this reader does not implement.
func NewBAMSource(path, index, reference string) (*BAMSource, error) {
	if strings.HasSuffix(strings.ToLower(path), ".cram") {
		return nil, fmt.Errorf("genotyping: %s: CRAM input is not supported, realign to BAM", path)
	}
	s := &BAMSource{path: path, index: index}
	header, err := s.Header()
	if err != nil {
		return nil, err
	}
	if reference != "" {
		if err := checkReference(header, reference); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *BAMSource) indexPath() string {
	if s.index == "" {
		return s.path + ".bai"
	}
	return s.index
}

// Header implements ReadSource.  The header is read once and cached.
func (s *BAMSource) Header() (*sam.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header != nil {
		return s.header, nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, s.path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, fmt.Errorf("genotyping: read header of %s: %v", s.path, err)
	}
	defer reader.Close() // nolint: errcheck
	s.header = reader.Header()
	return s.header, nil
}

// NewFetcher implements ReadSource.  It opens an independent file handle
// and loads the index, so the returned fetcher shares no state with any
// other.
func (s *BAMSource) NewFetcher() (ReadFetcher, error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, s.path)
	if err != nil {
		return nil, err
	}
	indexIn, err := file.Open(ctx, s.indexPath())
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, err
	}
	defer indexIn.Close(ctx) // nolint: errcheck
	idx, err := bam.ReadIndex(indexIn.Reader(ctx))
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, fmt.Errorf("genotyping: read index %s: %v", s.indexPath(), err)
	}
	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, fmt.Errorf("genotyping: open %s: %v", s.path, err)
	}
	f := &bamFetcher{in: in, reader: reader, index: idx, refs: make(map[string]*sam.Reference)}
	for _, ref := range reader.Header().Refs() {
		f.refs[ref.Name()] = ref
	}
	return f, nil
}

// Close implements ReadSource.  Fetchers hold their own handles, so there
// is nothing shared to release.
func (s *BAMSource) Close() error { return nil }

// checkReference verifies that every contig in the BAM header appears in
// the reference FASTA's index with the same length.  The .fai next to the
// FASTA is used when present; otherwise the FASTA itself is scanned.
func checkReference(header *sam.Header, reference string) error {
	ctx := vcontext.Background()
	var idx fai.Index
	faiIn, err := file.Open(ctx, reference+".fai")
	if err == nil {
		idx, err = fai.ReadFrom(faiIn.Reader(ctx))
		faiIn.Close(ctx) // nolint: errcheck
		if err != nil {
			return fmt.Errorf("genotyping: parse %s.fai: %v", reference, err)
		}
	} else {
		fastaIn, err := file.Open(ctx, reference)
		if err != nil {
			return fmt.Errorf("genotyping: open reference %s: %v", reference, err)
		}
		defer fastaIn.Close(ctx) // nolint: errcheck
		if idx, err = fai.NewIndex(fastaIn.Reader(ctx)); err != nil {
			return fmt.Errorf("genotyping: index reference %s: %v", reference, err)
		}
	}
	for _, ref := range header.Refs() {
		rec, ok := idx[ref.Name()]
		if !ok {
			return fmt.Errorf("genotyping: contig %s in alignment but not in reference %s", ref.Name(), reference)
		}
		if rec.Length != ref.Len() {
			return fmt.Errorf("genotyping: contig %s length mismatch: alignment %d, reference %d", ref.Name(), ref.Len(), rec.Length)
		}
	}
	return nil
}

// bamFetcher is a single-owner handle on one BAM file + index.
type bamFetcher struct {
	in     file.File
	reader *bam.Reader
	index  *bam.Index
	refs   map[string]*sam.Reference
	active bool
}

// Fetch implements ReadFetcher.
func (f *bamFetcher) Fetch(contig string, start, end int) ReadIterator {
	if f.active {
		vlog.Fatal("genotyping: Fetch called before the previous iterator was closed")
	}
	ref, ok := f.refs[contig]
	if !ok {
		return &bamIterator{f: f, err: fmt.Errorf("genotyping: contig %s not in alignment header", contig)}
	}
	if start < 0 {
		start = 0
	}
	if end > ref.Len() {
		end = ref.Len()
	}
	if start >= end {
		return &bamIterator{f: f, done: true}
	}
	chunks, err := f.index.Chunks(ref, start, end)
	if err == index.ErrInvalid || len(chunks) == 0 {
		// No reads indexed for the interval.
		return &bamIterator{f: f, done: true}
	}
	if err != nil {
		return &bamIterator{f: f, err: fmt.Errorf("genotyping: index lookup %s:%d-%d: %v", contig, start, end, err)}
	}
	if err := f.reader.Seek(chunks[0].Begin); err != nil {
		return &bamIterator{f: f, err: fmt.Errorf("genotyping: seek %s:%d-%d: %v", contig, start, end, err)}
	}
	f.active = true
	return &bamIterator{f: f, ref: ref, start: start, end: end, tracked: true}
}

// Close implements ReadFetcher.
func (f *bamFetcher) Close() error {
	ctx := vcontext.Background()
	err := f.reader.Close()
	if cerr := f.in.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// bamIterator reads records sequentially from the seek point, yielding the
// ones overlapping [start, end) on ref and stopping at the first record at
// or beyond end.  Records are coordinate sorted, so nothing after the stop
// point can overlap.
type bamIterator struct {
	f          *bamFetcher
	ref        *sam.Reference
	start, end int
	tracked    bool

	rec  *sam.Record
	err  error
	done bool
}

// Scan implements ReadIterator.  The previously yielded record is recycled,
// so callers must not retain records across calls.
func (i *bamIterator) Scan() bool {
	if i.rec != nil {
		sam.PutInFreePool(i.rec)
		i.rec = nil
	}
	if i.err != nil || i.done {
		return false
	}
	for {
		rec, err := i.f.reader.Read()
		if err == io.EOF {
			i.done = true
			return false
		}
		if err != nil {
			i.err = err
			return false
		}
		if rec.Ref == nil || rec.Ref.ID() > i.ref.ID() {
			// Sorted order: moved past the requested contig.
			sam.PutInFreePool(rec)
			i.done = true
			return false
		}
		if rec.Ref.ID() < i.ref.ID() {
			sam.PutInFreePool(rec)
			continue
		}
		if rec.Pos >= i.end {
			sam.PutInFreePool(rec)
			i.done = true
			return false
		}
		if rec.End() <= i.start {
			sam.PutInFreePool(rec)
			continue
		}
		i.rec = rec
		return true
	}
}

// Record implements ReadIterator.
func (i *bamIterator) Record() *sam.Record { return i.rec }

// Err implements ReadIterator.
func (i *bamIterator) Err() error { return i.err }

// Close implements ReadIterator.
func (i *bamIterator) Close() error {
	if i.rec != nil {
		sam.PutInFreePool(i.rec)
		i.rec = nil
	}
	if i.tracked {
		if !i.f.active {
			vlog.Fatal("genotyping: iterator closed twice")
		}
		i.f.active = false
		i.tracked = false
	}
	return i.err
}
