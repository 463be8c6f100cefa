package seqio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/seqio/seq"
)

// qualTable maps the decimal string form of a quality value in [-5, 222] to
// its ASCII-offset-by-33 character. Built once, never mutated.
var qualTable = make(map[string]byte)

func init() {
	for i := -5; i < 256-33; i++ {
		qualTable[strconv.Itoa(i)] = byte(i + 33)
	}
}

// FastaQualReader reads records whose sequences and qualities are stored in
// separate FASTA-shaped files, as produced by SOLiD instruments. The two
// files are traversed in lock step; record names must be identical on both
// sides.
type FastaQualReader struct {
	fasta   *FastaReader
	qual    *FastaReader
	newRead newReadFunc
	cur     seq.Read
	err     error
}

// NewFastaQualReader returns a reader combining sequences from fastaIn with
// quality values from qualIn. When colorspace is set, records are built with
// the colorspace constructor, splitting the primer base off each sequence.
func NewFastaQualReader(fastaIn, qualIn io.Reader, colorspace bool) *FastaQualReader {
	newRead := seq.New
	if colorspace {
		newRead = seq.NewColorspace
	}
	return &FastaQualReader{
		// Quality tokens are whitespace-separated, so line breaks must
		// survive the join.
		fasta:   NewFastaReader(fastaIn, FastaReaderOpts{}),
		qual:    NewFastaReader(qualIn, FastaReaderOpts{KeepLinebreaks: true}),
		newRead: newRead,
	}
}

// Scan advances to the next record.
func (r *FastaQualReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.fasta.Scan() {
		r.err = r.fasta.Err()
		return false
	}
	if !r.qual.Scan() {
		r.err = r.qual.Err()
		return false
	}
	fr := r.fasta.Record()
	qr := r.qual.Record()
	if fr.Name != qr.Name {
		r.err = &seq.FormatError{
			Name: fr.Name,
			Msg:  fmt.Sprintf("read names in the FASTA and QUAL file do not match (%q != %q)", fr.Name, qr.Name),
		}
		return false
	}
	qual := make([]byte, 0, len(fr.Seq))
	for _, token := range strings.Fields(qr.Seq) {
		c, ok := qualTable[token]
		if !ok {
			r.err = &seq.FormatError{
				Name: fr.Name,
				Msg:  fmt.Sprintf("invalid quality value %q", token),
			}
			return false
		}
		qual = append(qual, c)
	}
	rec, err := r.newRead(fr.Name, fr.Seq, string(qual), "")
	if err != nil {
		r.err = err
		return false
	}
	r.cur = rec
	return true
}

// Record returns the current record.
func (r *FastaQualReader) Record() seq.Read { return r.cur }

// DeliversQualities implements Reader.
func (r *FastaQualReader) DeliversQualities() bool { return true }

// Err returns the error that stopped iteration, if any.
func (r *FastaQualReader) Err() error { return r.err }

// Close closes both underlying files.
func (r *FastaQualReader) Close() error {
	once := errors.Once{}
	once.Set(r.fasta.Close())
	once.Set(r.qual.Close())
	return once.Err()
}
