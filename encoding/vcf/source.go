package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"

	"github.com/acg-team/ConSTRain/karyotype"
	"github.com/acg-team/ConSTRain/repeats"
)

// Source loads repeat loci from a VCF whose records carry END, RU and
// PERIOD INFO fields, the convention used by repeat catalogs distributed as
// VCF.  It implements repeats.Source.
type Source struct {
	Path string
}

// Load implements repeats.Source.
func (s Source) Load(k *karyotype.Karyotype, loci *[]*repeats.Locus, copyNumbers map[int]bool) (err error) {
	ctx := vcontext.Background()
	var in file.File
	if in, err = file.Open(ctx, s.Path); err != nil {
		return err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(in.Reader(ctx))
	switch fileio.DetermineType(s.Path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(reader)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l, err := parseRecord(line)
		if err != nil {
			return fmt.Errorf("vcf: %s line %d: %v", s.Path, lineIdx, err)
		}
		repeats.ApplyKaryotype(l, k)
		copyNumbers[l.CopyNumber] = true
		*loci = append(*loci, l)
	}
	return scanner.Err()
}

func parseRecord(line string) (*repeats.Locus, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, fmt.Errorf("expected at least 8 columns, got %d", len(fields))
	}
	contig := fields[0]
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad POS %q: %v", fields[1], err)
	}
	info, err := parseInfo(fields[7])
	if err != nil {
		return nil, err
	}
	end, err := strconv.Atoi(info["END"])
	if err != nil {
		return nil, fmt.Errorf("bad INFO END %q: %v", info["END"], err)
	}
	period, err := strconv.Atoi(info["PERIOD"])
	if err != nil {
		return nil, fmt.Errorf("bad INFO PERIOD %q: %v", info["PERIOD"], err)
	}
	motif, ok := info["RU"]
	if !ok {
		return nil, fmt.Errorf("missing INFO RU")
	}
	// VCF positions are 1-based.
	return repeats.NewLocus(contig, pos-1, end, period, motif)
}

func parseInfo(s string) (map[string]string, error) {
	info := make(map[string]string)
	for _, kv := range strings.Split(s, ";") {
		if kv == "" {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			info[kv] = ""
			continue
		}
		info[kv[:eq]] = kv[eq+1:]
	}
	for _, key := range []string{"END", "RU", "PERIOD"} {
		if _, ok := info[key]; !ok {
			return nil, fmt.Errorf("missing INFO %s", key)
		}
	}
	return info, nil
}
