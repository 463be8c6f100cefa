// seqio-convert reads sequence records in any supported input encoding
// (FASTA, FASTQ, colorspace variants, FASTA/QUAL pairs, name-sorted SAM/BAM)
// and rewrites them as FASTA or FASTQ. Examples:
//
//	seqio-convert -in reads.fastq.gz -out reads.fasta
//	seqio-convert -in r1.fq -in2 r2.fq -out out1.fq -out2 out2.fq
//	seqio-convert -in aln.bam -interleaved-in -out interleaved.fastq -interleaved-out
package main

import (
	"bufio"
	"flag"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seqio/fastq"
	"github.com/grailbio/seqio/seq"
	"github.com/grailbio/seqio/seqio"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/vlog"
)

var (
	inFlag         = flag.String("in", "", "Input file (required).")
	in2Flag        = flag.String("in2", "", "Second input file for paired-end data.")
	qualFlag       = flag.String("qual", "", "QUAL file paired with a (CS)FASTA input.")
	formatFlag     = flag.String("format", "", "Input format (fasta, fastq, sra-fastq, sam, bam). Autodetected when empty.")
	colorspaceFlag = flag.Bool("colorspace", false, "Treat reads as colorspace.")
	interleavedIn  = flag.Bool("interleaved-in", false, "Input holds interleaved pairs (or name-sorted SAM/BAM pairs).")
	mateFlag       = flag.Int("mate", 0, "Keep only mate 1 or 2 of paired input; 0 keeps both.")
	outFlag        = flag.String("out", "", "Output file (required).")
	out2Flag       = flag.String("out2", "", "Second output file for paired-end data.")
	outFormatFlag  = flag.String("out-format", "", "Output format (fasta or fastq). Derived from -out when empty.")
	interleavedOut = flag.Bool("interleaved-out", false, "Interleave pairs into one output file.")
	lineWidthFlag  = flag.Int("line-width", 0, "Wrap FASTA sequence lines to this width; 0 disables wrapping.")
	flushEveryFlag = flag.Int("flush-every", 4096, "Flush output buffers after this many records.")
)

// sink owns the opened output writers, keyed by destination path.
type sink struct {
	order   []string
	writers map[string]io.Writer
	closers []io.Closer
}

func newSink(paths ...string) (*sink, error) {
	ctx := vcontext.Background()
	s := &sink{writers: make(map[string]io.Writer)}
	for _, path := range paths {
		if path == "" {
			continue
		}
		f, err := file.Create(ctx, path)
		if err != nil {
			s.close() // nolint: errcheck
			return nil, err
		}
		s.closers = append(s.closers, closerFunc(func() error { return f.Close(ctx) }))
		var w io.Writer = f.Writer(ctx)
		if strings.HasSuffix(path, ".gz") {
			zw := gzip.NewWriter(w)
			s.closers = append(s.closers, zw)
			w = zw
		}
		bw := bufio.NewWriter(w)
		s.closers = append(s.closers, flusher{bw})
		s.order = append(s.order, path)
		s.writers[path] = bw
	}
	return s, nil
}

// flush drains out into the destination writers and clears it.
func (s *sink) flush(out seqio.Output) error {
	for _, path := range s.order {
		w := s.writers[path]
		for _, rec := range out[path] {
			if _, err := io.WriteString(w, rec); err != nil {
				return err
			}
		}
		out[path] = out[path][:0]
	}
	return nil
}

func (s *sink) close() error {
	once := errors.Once{}
	// Closers nest (bufio inside gzip inside file); unwind in reverse.
	for i := len(s.closers) - 1; i >= 0; i-- {
		once.Set(s.closers[i].Close())
	}
	return once.Err()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type flusher struct{ b *bufio.Writer }

func (f flusher) Close() error { return f.b.Flush() }

func parseFormat(s string) seqio.Format {
	if s == "" {
		return seqio.UnknownFormat
	}
	format, err := seqio.ParseFormat(s)
	if err != nil {
		log.Fatalf("-format: %v", err)
	}
	return format
}

// rawFastq reports whether the conversion is a plain FASTQ-to-FASTQ copy:
// single-end, no colorspace, and both sides resolve to FASTQ by flag or
// extension. Such a copy can go straight through the raw tokenizer without
// rebuilding records.
func rawFastq() bool {
	if *in2Flag != "" || *qualFlag != "" || *interleavedIn || *interleavedOut ||
		*out2Flag != "" || *mateFlag != 0 || *colorspaceFlag {
		return false
	}
	in := parseFormat(*formatFlag)
	if in == seqio.UnknownFormat {
		in = seqio.DetectFormat(*inFlag)
	}
	out := parseFormat(*outFormatFlag)
	if out == seqio.UnknownFormat {
		out = seqio.DetectFormat(*outFlag)
	}
	return in == seqio.FASTQ && out == seqio.FASTQ
}

// convertRaw copies FASTQ records verbatim: the "@", "+" and quality lines
// pass through untouched.
func convertRaw() error {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, *inFlag)
	if err != nil {
		return err
	}
	var rd io.Reader = f.Reader(ctx)
	if u := compress.NewReaderPath(rd, *inFlag); u != nil {
		rd = u
	}
	dst, err := newSink(*outFlag)
	if err != nil {
		f.Close(ctx) // nolint: errcheck
		return err
	}
	var (
		sc = fastq.NewScanner(rd)
		w  = fastq.NewWriter(dst.writers[*outFlag])
		r  fastq.Read
		n  int64
	)
	for sc.Scan(&r) {
		if err := w.Write(&r); err != nil {
			dst.close()  // nolint: errcheck
			f.Close(ctx) // nolint: errcheck
			return err
		}
		n++
	}
	once := errors.Once{}
	once.Set(sc.Err())
	once.Set(dst.close())
	once.Set(f.Close(ctx))
	if err := once.Err(); err != nil {
		return err
	}
	vlog.Infof("Wrote %d records", n)
	return nil
}

func convert() error {
	ctx := vcontext.Background()
	opts := seqio.Opts{
		Path2:       *in2Flag,
		QualPath:    *qualFlag,
		Format:      parseFormat(*formatFlag),
		Colorspace:  *colorspaceFlag,
		Interleaved: *interleavedIn,
		Mate:        *mateFlag,
	}
	paired := (opts.Path2 != "" || opts.Interleaved) && opts.Mate == 0

	var (
		reader     seqio.Reader
		pairReader seqio.PairReader
		qualities  bool
		err        error
	)
	if paired {
		if pairReader, err = seqio.OpenPair(ctx, *inFlag, opts); err != nil {
			return err
		}
		defer pairReader.Close() // nolint: errcheck
		qualities = pairReader.DeliversQualities()
	} else {
		if reader, err = seqio.Open(ctx, *inFlag, opts); err != nil {
			return err
		}
		defer reader.Close() // nolint: errcheck
		qualities = reader.DeliversQualities()
	}

	qhint := seqio.QualitiesMissing
	if qualities {
		qhint = seqio.QualitiesAvailable
	}
	fopts := seqio.FormatterOpts{
		Format:     parseFormat(*outFormatFlag),
		Colorspace: *colorspaceFlag,
		Qualities:  qhint,
		LineWidth:  *lineWidthFlag,
	}
	formatter, err := seqio.NewFormatter(*outFlag, *out2Flag, *interleavedOut, fopts)
	if err != nil {
		return err
	}
	dst, err := newSink(*outFlag, *out2Flag)
	if err != nil {
		return err
	}

	out := make(seqio.Output)
	var pending int
	emit := func(r1 seq.Read, r2 *seq.Read) error {
		formatter.Append(out, r1, r2)
		if pending++; pending >= *flushEveryFlag {
			pending = 0
			return dst.flush(out)
		}
		return nil
	}
	if paired {
		for pairReader.Scan() {
			pair := pairReader.Pair()
			if err := emit(pair.R1, &pair.R2); err != nil {
				return err
			}
		}
		err = pairReader.Err()
	} else {
		for reader.Scan() {
			if err := emit(reader.Record(), nil); err != nil {
				return err
			}
		}
		err = reader.Err()
	}
	if err != nil {
		dst.close() // nolint: errcheck
		return err
	}
	if err := dst.flush(out); err != nil {
		return err
	}
	if err := dst.close(); err != nil {
		return err
	}
	bp1, bp2 := formatter.WrittenBP()
	vlog.Infof("Wrote %d records (%d + %d bp)", formatter.Written(), bp1, bp2)
	return nil
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *inFlag == "" || *outFlag == "" {
		log.Fatal("-in and -out are required")
	}
	if *out2Flag != "" && !(*in2Flag != "" || *interleavedIn) {
		log.Fatal("-out2 needs paired input (-in2 or -interleaved-in)")
	}
	if (*in2Flag != "" || *interleavedIn) && *mateFlag == 0 && *out2Flag == "" && !*interleavedOut {
		log.Fatal("paired input needs -out2, -interleaved-out, or -mate")
	}
	run := convert
	if rawFastq() {
		run = convertRaw
	}
	if err := run(); err != nil {
		log.Fatalf("convert: %v", err)
	}
}
