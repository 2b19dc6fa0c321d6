// Package bed provides a minimal reader for tab-separated BED-style files:
// one record per line, no header, a fixed number of leading columns followed
// by caller-interpreted extra columns.  Gzip-compressed inputs are detected
// from the path suffix.
package bed

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// Record is one parsed BED line: the three mandatory columns plus any
// trailing columns, unparsed.
type Record struct {
	Contig string
	Start  int
	End    int
	Extra  []string
}

// maxFields caps the number of columns split per line.  BED files often
// carry annotation columns beyond the ones a caller asked for; those are
// ignored.
const maxFields = 16

// splitFields identifies up to maxFields tokens in line, treating any run of
// characters <= ' ' as a delimiter, and appends them to fields.
func splitFields(fields []string, line string) []string {
	pos := 0
	for len(fields) < maxFields {
		for pos < len(line) && line[pos] <= ' ' {
			pos++
		}
		if pos == len(line) {
			break
		}
		start := pos
		for pos < len(line) && line[pos] > ' ' {
			pos++
		}
		fields = append(fields, line[start:pos])
	}
	return fields
}

// ReadFunc is invoked once per record, in file order.  rec.Extra aliases a
// reused buffer and is only valid for the duration of the call.
type ReadFunc func(rec Record) error

// ReadPath reads BED records from path, requiring at least minExtra columns
// after the three coordinate columns.  Malformed rows are an error; a BED
// describing repeat loci or copy-number calls is authored once and consumed
// many times, so a bad row means the file is wrong, not the run.
func ReadPath(path string, minExtra int, fn ReadFunc) (err error) {
	ctx := vcontext.Background()
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(in.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return err
		}
	}
	return Read(reader, path, minExtra, fn)
}

// Read is the io.Reader core of ReadPath; name is used in error messages.
func Read(reader io.Reader, name string, minExtra int, fn ReadFunc) error {
	scanner := bufio.NewScanner(reader)
	fields := make([]string, 0, maxFields)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Text()
		fields = splitFields(fields[:0], line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3+minExtra {
			return fmt.Errorf("bed: %s line %d: expected at least %d columns, got %d", name, lineIdx, 3+minExtra, len(fields))
		}
		rec := Record{Contig: fields[0]}
		var err error
		if rec.Start, err = strconv.Atoi(fields[1]); err != nil {
			return fmt.Errorf("bed: %s line %d: bad start %q: %v", name, lineIdx, fields[1], err)
		}
		if rec.End, err = strconv.Atoi(fields[2]); err != nil {
			return fmt.Errorf("bed: %s line %d: bad end %q: %v", name, lineIdx, fields[2], err)
		}
		if rec.Start < 0 || rec.End < rec.Start {
			return fmt.Errorf("bed: %s line %d: malformed interval [%d, %d)", name, lineIdx, rec.Start, rec.End)
		}
		rec.Extra = fields[3:]
		if err = fn(rec); err != nil {
			return fmt.Errorf("bed: %s line %d: %v", name, lineIdx, err)
		}
	}
	return scanner.Err()
}
