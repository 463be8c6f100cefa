package seqio

import (
	"context"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Opts configures Open and OpenPair. The zero value reads a single-end file
// with autodetected format.
type Opts struct {
	// Path2 names the file holding the second mate of each pair. Mutually
	// exclusive with QualPath and Interleaved.
	Path2 string

	// QualPath names a QUAL file whose quality values are combined with
	// the (CS)FASTA records of the primary path. Mutually exclusive with
	// Path2 and Interleaved.
	QualPath string

	// Format overrides autodetection. Colorspace is never autodetected and
	// must always be requested explicitly.
	Format Format

	// Colorspace selects colorspace record handling.
	Colorspace bool

	// Interleaved marks the primary path as interleaved paired-end data
	// (or, for SAM/BAM, as a name-sorted paired stream).
	Interleaved bool

	// Mate restricts paired input to the first (1) or second (2) mate.
	// Zero keeps both; Open requires a nonzero Mate for paired input.
	Mate int
}

func (o Opts) validate() error {
	if o.Interleaved && (o.Path2 != "" || o.QualPath != "") {
		return errors.New("interleaved input cannot be combined with a second file or a quality file")
	}
	if o.Path2 != "" && o.QualPath != "" {
		return errors.New("cannot set both a second file and a quality file")
	}
	if o.Mate < 0 || o.Mate > 2 {
		return errors.Errorf("invalid mate selector %d (must be 1 or 2)", o.Mate)
	}
	return nil
}

// paired reports whether the options describe paired-end input.
func (o Opts) paired() bool { return o.Path2 != "" || o.Interleaved }

// Open opens path as a single-end stream of records. Format resolution
// tries, in order: the explicit override in o.Format, the file name
// extension, and the first significant byte of the content. Paired input
// (a second file, or the interleaved flag) is projected down to one mate and
// requires o.Mate to be 1 or 2.
func Open(ctx context.Context, path string, o Opts) (Reader, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.QualPath != "" {
		return openFastaQual(ctx, path, o.QualPath, o.Colorspace)
	}
	if o.paired() {
		if o.Mate == 0 {
			return nil, errors.New("paired input needs a mate selector (or OpenPair)")
		}
		p, err := OpenPair(ctx, path, o)
		if err != nil {
			return nil, err
		}
		if o.Mate == 1 {
			return FirstMates(p), nil
		}
		return SecondMates(p), nil
	}
	return openSingle(ctx, path, o)
}

// OpenPair opens paired-end input: two parallel files when o.Path2 is set,
// or one interleaved file (or name-sorted SAM/BAM stream) when
// o.Interleaved is set.
func OpenPair(ctx context.Context, path string, o Opts) (PairReader, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.QualPath != "" {
		return nil, errors.New("a quality file cannot be combined with paired input")
	}
	if o.Path2 != "" {
		single := o
		single.Path2 = ""
		single.Mate = 0
		r1, err := openSingle(ctx, path, single)
		if err != nil {
			return nil, err
		}
		r2, err := openSingle(ctx, o.Path2, single)
		if err != nil {
			r1.Close() // nolint: errcheck
			return nil, err
		}
		return NewPairedReader(r1, r2), nil
	}
	if !o.Interleaved {
		return nil, errors.New("paired reading needs a second file or interleaved input")
	}

	format, rd, closer, err := resolveInput(ctx, path, o.Format)
	if err != nil {
		return nil, err
	}
	switch format {
	case SAM, BAM:
		if o.Colorspace {
			closer.Close() // nolint: errcheck
			return nil, errors.New("SAM/BAM input is not supported for colorspace reads")
		}
		it, err := newAlignmentIterator(format, rd)
		if err != nil {
			closer.Close() // nolint: errcheck
			return nil, err
		}
		r := NewPairedSAMReader(it)
		r.closeOnce.c = closer
		return r, nil
	}
	inner, err := newSingleReader(format, rd, o, path)
	if err != nil {
		closer.Close() // nolint: errcheck
		return nil, err
	}
	inner.setCloser(closer)
	return NewInterleavedReader(inner), nil
}

// singleReader is the subset of concrete readers a factory can attach an
// owned file handle to.
type singleReader interface {
	Reader
	setCloser(io.Closer)
}

func (r *FastaReader) setCloser(c io.Closer) { r.closeOnce.c = c }
func (r *FastqReader) setCloser(c io.Closer) { r.closeOnce.c = c }
func (r *SAMReader) setCloser(c io.Closer)   { r.closeOnce.c = c }

// openSingle opens one file as a flat record stream.
func openSingle(ctx context.Context, path string, o Opts) (singleReader, error) {
	format, rd, closer, err := resolveInput(ctx, path, o.Format)
	if err != nil {
		return nil, err
	}
	r, err := newSingleReader(format, rd, o, path)
	if err != nil {
		closer.Close() // nolint: errcheck
		return nil, err
	}
	r.setCloser(closer)
	return r, nil
}

// newSingleReader dispatches a resolved format to the matching reader type.
func newSingleReader(format Format, rd io.Reader, o Opts, path string) (singleReader, error) {
	switch format {
	case FASTA:
		return NewFastaReader(rd, FastaReaderOpts{Colorspace: o.Colorspace}), nil
	case FASTQ:
		return NewFastqReader(rd, FastqReaderOpts{Colorspace: o.Colorspace}), nil
	case SRAFastq:
		if !o.Colorspace {
			// sra-fastq exists only as a colorspace variant.
			return nil, &UnknownFormatError{Value: format.String()}
		}
		return NewFastqReader(rd, FastqReaderOpts{Colorspace: true, SRA: true}), nil
	case SAM, BAM:
		if o.Colorspace {
			return nil, errors.New("SAM/BAM input is not supported for colorspace reads")
		}
		it, err := newAlignmentIterator(format, rd)
		if err != nil {
			return nil, err
		}
		switch o.Mate {
		case 1:
			return NewRead1SAMReader(it), nil
		case 2:
			return NewRead2SAMReader(it), nil
		}
		return NewSAMReader(it), nil
	}
	return nil, &UnknownFormatError{Value: path}
}

func newAlignmentIterator(format Format, rd io.Reader) (AlignmentIterator, error) {
	if format == BAM {
		return NewBAMIterator(rd)
	}
	return NewSAMIterator(rd)
}

// openFastaQual opens a (CS)FASTA/QUAL file pair.
func openFastaQual(ctx context.Context, fastaPath, qualPath string, colorspace bool) (Reader, error) {
	fastaIn, fastaCloser, err := openPath(ctx, fastaPath)
	if err != nil {
		return nil, err
	}
	qualIn, qualCloser, err := openPath(ctx, qualPath)
	if err != nil {
		fastaCloser.Close() // nolint: errcheck
		return nil, err
	}
	r := NewFastaQualReader(fastaIn, qualIn, colorspace)
	r.fasta.closeOnce.c = fastaCloser
	r.qual.closeOnce.c = qualCloser
	return r, nil
}

// resolveInput opens path, arranges transparent decompression, and resolves
// the format: explicit override first, then the extension table, then
// content sniffing. The returned reader replays any line consumed while
// sniffing.
func resolveInput(ctx context.Context, path string, format Format) (Format, io.Reader, io.Closer, error) {
	rd, closer, err := openPath(ctx, path)
	if err != nil {
		return UnknownFormat, nil, nil, err
	}
	if format == UnknownFormat {
		format = DetectFormat(path)
	}
	if format == UnknownFormat {
		if format, rd, err = detectContent(rd); err != nil {
			closer.Close() // nolint: errcheck
			return UnknownFormat, nil, nil, err
		}
		if format == UnknownFormat {
			closer.Close() // nolint: errcheck
			return UnknownFormat, nil, nil, &UnknownFormatError{Value: path}
		}
	}
	return format, rd, closer, nil
}

// openPath opens a possibly compressed file for reading. The caller owns the
// returned closer.
func openPath(ctx context.Context, path string) (io.Reader, io.Closer, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	var rd io.Reader = f.Reader(ctx)
	if u := compress.NewReaderPath(rd, path); u != nil {
		rd = u
	}
	return rd, closerFunc(func() error { return f.Close(ctx) }), nil
}
