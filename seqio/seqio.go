// Package seqio reads and writes biological sequence records stored as
// FASTA, FASTQ, their colorspace variants, FASTA/QUAL file pairs, and
// name-sorted alignment streams. It autodetects the input format from the
// file name or, failing that, from the first significant byte of the stream,
// and keeps paired and interleaved read streams in lock step, failing
// precisely when they diverge.
//
// Readers are lazy, single-pass and non-restartable: the caller drives
// iteration with Scan and must Close the reader when done, even after early
// termination. Closing is idempotent. Decompression of .gz/.bz2/.xz inputs
// and decoding of alignment records are delegated to external collaborators
// (github.com/grailbio/base/compress and github.com/grailbio/hts).
package seqio

import (
	"fmt"
	"io"

	"github.com/grailbio/seqio/seq"
)

// Reader is a stream of sequence records. A Reader yields each record
// exactly once, in input order.
type Reader interface {
	// Scan advances to the next record, returning false at end of input or
	// on error. Once Scan returns false, it never returns true again.
	Scan() bool

	// Record returns the current record. It must be called only after a
	// call to Scan returns true.
	Record() seq.Read

	// DeliversQualities reports whether records from this reader carry
	// quality values.
	DeliversQualities() bool

	// Err returns the error that stopped iteration, or nil if the stream
	// was exhausted normally.
	Err() error

	// Close releases the underlying stream. It is safe to call more than
	// once and after partial consumption.
	Close() error
}

// PairReader is a stream of read pairs.
type PairReader interface {
	Scan() bool
	Pair() seq.Pair
	DeliversQualities() bool
	Err() error
	Close() error
}

// PairError reports two read streams that have fallen out of step: unequal
// record counts, mismatched names, or a dangling interleaved record.
type PairError struct {
	Read1, Read2 string
	Msg          string
}

func (e *PairError) Error() string {
	return "reads are improperly paired: " + e.Msg
}

// UnknownFormatError is returned when a format cannot be resolved from a
// format name, a file extension, or stream content.
type UnknownFormatError struct {
	Value string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown file format %q (expected fasta, fastq, sra-fastq, sam, or bam)", e.Value)
}

// FirstMates flattens a pair stream, exposing only the first mate of each
// pair. Closing the returned reader closes p.
func FirstMates(p PairReader) Reader { return &mateReader{p: p, mate: 1} }

// SecondMates flattens a pair stream, exposing only the second mate of each
// pair. Closing the returned reader closes p.
func SecondMates(p PairReader) Reader { return &mateReader{p: p, mate: 2} }

type mateReader struct {
	p    PairReader
	mate int
	cur  seq.Read
}

func (r *mateReader) Scan() bool {
	if !r.p.Scan() {
		return false
	}
	pair := r.p.Pair()
	if r.mate == 1 {
		r.cur = pair.R1
	} else {
		r.cur = pair.R2
	}
	return true
}

func (r *mateReader) Record() seq.Read        { return r.cur }
func (r *mateReader) DeliversQualities() bool { return r.p.DeliversQualities() }
func (r *mateReader) Err() error              { return r.p.Err() }
func (r *mateReader) Close() error            { return r.p.Close() }

// closeOnce holds a reader's underlying closer and makes Close idempotent.
type closeOnce struct {
	c      io.Closer
	closed bool
}

func (c *closeOnce) Close() error {
	if c.closed || c.c == nil {
		c.closed = true
		return nil
	}
	c.closed = true
	return c.c.Close()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
