package seqio

import (
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/seqio/seq"
)

// AlignmentIterator iterates over decoded alignment records. Decoding is the
// collaborator's concern: any SAM/BAM reader can be injected by wrapping it
// in this shape.
type AlignmentIterator interface {
	// Scan advances to the next record, returning false at end of stream
	// or on error.
	Scan() bool

	// Record returns the current record. It must be called only after a
	// call to Scan returns true.
	Record() *sam.Record

	// Err returns the error encountered during iteration, or nil. End of
	// stream is not an error.
	Err() error

	// Close releases the decoder. It is safe to call more than once.
	Close() error
}

// NewSAMIterator returns an AlignmentIterator decoding SAM text from r.
func NewSAMIterator(r io.Reader) (AlignmentIterator, error) {
	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &samIterator{read: sr.Read}, nil
}

// NewBAMIterator returns an AlignmentIterator decoding BAM data from r.
func NewBAMIterator(r io.Reader) (AlignmentIterator, error) {
	br, err := bam.NewReader(r, 1)
	if err != nil {
		return nil, err
	}
	return &samIterator{read: br.Read, close: br.Close}, nil
}

// samIterator adapts the pull-style Read of the hts readers.
type samIterator struct {
	read   func() (*sam.Record, error)
	close  func() error
	rec    *sam.Record
	err    error
	closed bool
}

func (it *samIterator) Scan() bool {
	if it.err != nil {
		return false
	}
	rec, err := it.read()
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		return false
	}
	it.rec = rec
	return true
}

func (it *samIterator) Record() *sam.Record { return it.rec }

func (it *samIterator) Err() error { return it.err }

func (it *samIterator) Close() error {
	if it.closed || it.close == nil {
		it.closed = true
		return nil
	}
	it.closed = true
	return it.close()
}

// alignmentRead converts a decoded alignment record to a sequence record.
// Qualities are stored as raw phred values by the decoder and are re-encoded
// with the usual +33 offset.
func alignmentRead(rec *sam.Record) (seq.Read, error) {
	qual := make([]byte, len(rec.Qual))
	for i, q := range rec.Qual {
		qual[i] = q + 33
	}
	return seq.New(rec.Name, string(rec.Seq.Expand()), string(qual), "")
}

// SAMReader yields alignment records as single-end reads, optionally
// restricted to first-of-pair or second-of-pair records.
type SAMReader struct {
	it   AlignmentIterator
	mate int
	cur  seq.Read
	err  error
	closeOnce
}

// NewSAMReader yields every record of the stream.
func NewSAMReader(it AlignmentIterator) *SAMReader {
	return &SAMReader{it: it}
}

// NewRead1SAMReader yields only first-of-pair records, presenting a
// paired-end stream as if it were single-end.
func NewRead1SAMReader(it AlignmentIterator) *SAMReader {
	return &SAMReader{it: it, mate: 1}
}

// NewRead2SAMReader yields only second-of-pair records.
func NewRead2SAMReader(it AlignmentIterator) *SAMReader {
	return &SAMReader{it: it, mate: 2}
}

// Scan advances to the next record.
func (r *SAMReader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.it.Scan() {
		rec := r.it.Record()
		if r.mate == 1 && rec.Flags&sam.Read1 == 0 {
			continue
		}
		if r.mate == 2 && rec.Flags&sam.Read2 == 0 {
			continue
		}
		cur, err := alignmentRead(rec)
		if err != nil {
			r.err = err
			return false
		}
		r.cur = cur
		return true
	}
	r.err = r.it.Err()
	return false
}

// Record returns the current record.
func (r *SAMReader) Record() seq.Read { return r.cur }

// DeliversQualities implements Reader.
func (r *SAMReader) DeliversQualities() bool { return true }

// Err returns the error that stopped iteration, if any.
func (r *SAMReader) Err() error { return r.err }

// Close closes the underlying iterator and, when the reader was produced by
// a factory, the file it opened.
func (r *SAMReader) Close() error {
	once := errors.Once{}
	once.Set(r.it.Close())
	once.Set(r.closeOnce.Close())
	return once.Err()
}

// PairedSAMReader yields consecutive record pairs from a name-sorted
// alignment stream containing no secondary or supplementary records. The
// first-of-pair read is always returned first, regardless of on-stream
// order.
type PairedSAMReader struct {
	it   AlignmentIterator
	pair seq.Pair
	err  error
	closeOnce
}

// NewPairedSAMReader wraps it, which must yield both mates of each pair
// consecutively.
func NewPairedSAMReader(it AlignmentIterator) *PairedSAMReader {
	return &PairedSAMReader{it: it}
}

// Scan advances to the next pair.
func (r *PairedSAMReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.it.Scan() {
		r.err = r.it.Err()
		return false
	}
	rec1 := r.it.Record()
	read1, err := alignmentRead(rec1)
	if err != nil {
		r.err = err
		return false
	}
	if !r.it.Scan() {
		if err := r.it.Err(); err != nil {
			r.err = err
			return false
		}
		r.err = &PairError{
			Read1: read1.Name,
			Msg:   "alignment stream ends with an unpaired record",
		}
		return false
	}
	rec2 := r.it.Record()
	read2, err := alignmentRead(rec2)
	if err != nil {
		r.err = err
		return false
	}
	if rec1.Name != rec2.Name {
		r.err = &PairError{
			Read1: rec1.Name,
			Read2: rec2.Name,
			Msg: fmt.Sprintf("consecutive reads %q, %q do not have the same name; make sure the file is name-sorted and contains no secondary or supplementary alignments",
				rec1.Name, rec2.Name),
		}
		return false
	}
	switch {
	case rec1.Flags&sam.Read1 != 0 && rec2.Flags&sam.Read2 != 0:
		r.pair = seq.Pair{R1: read1, R2: read2}
	case rec1.Flags&sam.Read2 != 0 && rec2.Flags&sam.Read1 != 0:
		r.pair = seq.Pair{R1: read2, R2: read1}
	default:
		r.err = &PairError{
			Read1: rec1.Name,
			Read2: rec2.Name,
			Msg:   fmt.Sprintf("consecutive reads %q, %q are not a first/second mate pair", rec1.Name, rec2.Name),
		}
		return false
	}
	return true
}

// Pair returns the current pair.
func (r *PairedSAMReader) Pair() seq.Pair { return r.pair }

// DeliversQualities implements PairReader.
func (r *PairedSAMReader) DeliversQualities() bool { return true }

// Err returns the error that stopped iteration, if any.
func (r *PairedSAMReader) Err() error { return r.err }

// Close closes the underlying iterator and any file opened by the factory.
func (r *PairedSAMReader) Close() error {
	once := errors.Once{}
	once.Set(r.it.Close())
	once.Set(r.closeOnce.Close())
	return once.Err()
}
