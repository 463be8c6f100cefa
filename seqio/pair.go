package seqio

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/seqio/seq"
)

// PairedReader advances two single-end readers in lock step. Iteration fails
// when one stream exhausts before the other, or when the names of a pulled
// pair do not match under the mate-suffix-insensitive comparison of
// seq.NamesMatch.
type PairedReader struct {
	r1, r2 Reader
	pair   seq.Pair
	err    error
}

// NewPairedReader pairs r1 and r2. The returned reader owns both and closes
// them when it is closed.
func NewPairedReader(r1, r2 Reader) *PairedReader {
	return &PairedReader{r1: r1, r2: r2}
}

// Scan advances to the next pair.
func (r *PairedReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.r1.Scan() {
		if err := r.r1.Err(); err != nil {
			r.err = err
			return false
		}
		// End of file 1. File 2 must be at its end as well.
		if r.r2.Scan() {
			r.err = &PairError{
				Read2: r.r2.Record().Name,
				Msg:   "there are more reads in file 2 than in file 1",
			}
		} else if err := r.r2.Err(); err != nil {
			r.err = err
		}
		return false
	}
	if !r.r2.Scan() {
		if err := r.r2.Err(); err != nil {
			r.err = err
			return false
		}
		r.err = &PairError{
			Read1: r.r1.Record().Name,
			Msg:   "there are more reads in file 1 than in file 2",
		}
		return false
	}
	pair := seq.Pair{R1: r.r1.Record(), R2: r.r2.Record()}
	if !seq.NamesMatch(pair.R1, pair.R2) {
		r.err = &PairError{
			Read1: pair.R1.Name,
			Read2: pair.R2.Name,
			Msg:   fmt.Sprintf("read name %q in file 1 does not match %q in file 2", pair.R1.Name, pair.R2.Name),
		}
		return false
	}
	r.pair = pair
	return true
}

// Pair returns the current pair.
func (r *PairedReader) Pair() seq.Pair { return r.pair }

// DeliversQualities implements PairReader.
func (r *PairedReader) DeliversQualities() bool { return r.r1.DeliversQualities() }

// Err returns the error that stopped iteration, if any.
func (r *PairedReader) Err() error { return r.err }

// Close closes both underlying readers.
func (r *PairedReader) Close() error {
	once := errors.Once{}
	once.Set(r.r1.Close())
	once.Set(r.r2.Close())
	return once.Err()
}

// InterleavedReader reads consecutive mates of each pair from one stream. An
// odd number of records is an error: the dangling last record is never
// silently dropped.
type InterleavedReader struct {
	r    Reader
	pair seq.Pair
	err  error
}

// NewInterleavedReader wraps r, which must yield both mates of each pair
// consecutively. The returned reader owns r.
func NewInterleavedReader(r Reader) *InterleavedReader {
	return &InterleavedReader{r: r}
}

// Scan advances to the next pair.
func (r *InterleavedReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.r.Scan() {
		r.err = r.r.Err()
		return false
	}
	r1 := r.r.Record()
	if !r.r.Scan() {
		if err := r.r.Err(); err != nil {
			r.err = err
			return false
		}
		r.err = &PairError{
			Read1: r1.Name,
			Msg:   "interleaved input incomplete: last record has no partner",
		}
		return false
	}
	r2 := r.r.Record()
	if !seq.NamesMatch(r1, r2) {
		r.err = &PairError{
			Read1: r1.Name,
			Read2: r2.Name,
			Msg:   fmt.Sprintf("name %q (first) does not match %q (second)", r1.Name, r2.Name),
		}
		return false
	}
	r.pair = seq.Pair{R1: r1, R2: r2}
	return true
}

// Pair returns the current pair.
func (r *InterleavedReader) Pair() seq.Pair { return r.pair }

// DeliversQualities implements PairReader.
func (r *InterleavedReader) DeliversQualities() bool { return r.r.DeliversQualities() }

// Err returns the error that stopped iteration, if any.
func (r *InterleavedReader) Err() error { return r.err }

// Close closes the underlying reader.
func (r *InterleavedReader) Close() error { return r.r.Close() }
