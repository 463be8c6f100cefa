package seqio

import (
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/seqio/fastq"
	"github.com/grailbio/seqio/seq"
)

// FastqReaderOpts configures a FastqReader.
type FastqReaderOpts struct {
	// Colorspace selects the colorspace record constructor.
	Colorspace bool

	// SRA marks colorspace input produced by fastq-dump, which carries one
	// leading quality value too many; that value is discarded. Only
	// meaningful together with Colorspace.
	SRA bool
}

// FastqReader adapts the raw 4-line tokenizer in package fastq to sequence
// records. Tokenization and structural validation of the "@" and "+" lines
// happen in the tokenizer; this reader selects which record constructor to
// apply.
type FastqReader struct {
	sc      *fastq.Scanner
	newRead newReadFunc
	raw     fastq.Read
	cur     seq.Read
	err     error
	closeOnce
}

// NewFastqReader returns a reader for FASTQ data from r.
func NewFastqReader(r io.Reader, opts FastqReaderOpts) *FastqReader {
	newRead := seq.New
	switch {
	case opts.Colorspace && opts.SRA:
		newRead = seq.NewSRAColorspace
	case opts.Colorspace:
		newRead = seq.NewColorspace
	}
	return &FastqReader{sc: fastq.NewScanner(r), newRead: newRead}
}

// Scan advances to the next record.
func (r *FastqReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.sc.Scan(&r.raw) {
		r.err = r.sc.Err()
		return false
	}
	name := strings.TrimPrefix(r.raw.ID, "@")
	// An empty quality line is a truncated record, not a record without
	// qualities: FASTQ always carries them.
	if r.raw.Qual == "" && r.raw.Seq != "" {
		r.err = &seq.FormatError{
			Name: name,
			Msg:  fmt.Sprintf("quality length (0) and sequence length (%d) do not match", len(r.raw.Seq)),
		}
		return false
	}
	rec, err := r.newRead(
		name,
		r.raw.Seq,
		r.raw.Qual,
		strings.TrimPrefix(r.raw.Plus, "+"),
	)
	if err != nil {
		r.err = err
		return false
	}
	r.cur = rec
	return true
}

// Record returns the current record.
func (r *FastqReader) Record() seq.Read { return r.cur }

// DeliversQualities implements Reader.
func (r *FastqReader) DeliversQualities() bool { return true }

// Err returns the error that stopped iteration, if any.
func (r *FastqReader) Err() error { return r.err }
