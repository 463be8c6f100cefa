package seqio

import (
	"strings"

	"github.com/grailbio/seqio/seq"
	"github.com/pkg/errors"
)

// RecordFormat renders one record in a concrete file format.
type RecordFormat interface {
	Format(r seq.Read) string
}

// FastaFormat renders records as FASTA.
type FastaFormat struct {
	// Width wraps sequence lines to the given number of characters.
	// Zero disables wrapping.
	Width int

	// Colorspace prepends the primer base to the rendered sequence.
	Colorspace bool
}

// Format implements RecordFormat.
func (f *FastaFormat) Format(r seq.Read) string {
	s := r.Seq
	if f.Colorspace && r.Primer != 0 {
		s = string(r.Primer) + s
	}
	if f.Width > 0 {
		s = wrap(s, f.Width)
	}
	return ">" + r.Name + "\n" + s + "\n"
}

// FastqFormat renders records as FASTQ. The "+" line is always written; it
// carries the secondary header when the record has one.
type FastqFormat struct {
	// Colorspace prepends the primer base to the rendered sequence.
	Colorspace bool
}

// Format implements RecordFormat.
func (f *FastqFormat) Format(r seq.Read) string {
	s := r.Seq
	if f.Colorspace && r.Primer != 0 {
		s = string(r.Primer) + s
	}
	return "@" + r.Name + "\n" + s + "\n+" + r.Name2 + "\n" + r.Qual + "\n"
}

func wrap(s string, width int) string {
	if len(s) <= width {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/width)
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteByte('\n')
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

// Output collects formatted records keyed by destination path. One Output is
// typically shared by all formatters of a pipeline pass; the surrounding
// code decides when and how to flush it.
type Output map[string][]string

// Formatter renders reads into an Output buffer and tracks what was
// written: the number of Append calls and the base-pair count per mate.
type Formatter interface {
	// Append renders the read(s) into out. Single-end formatters ignore
	// r2; paired-end and interleaved formatters require it.
	Append(out Output, r1 seq.Read, r2 *seq.Read)

	// Written returns the number of records (or record pairs) appended.
	Written() int64

	// WrittenBP returns the per-mate base-pair counts.
	WrittenBP() (read1, read2 int64)
}

// SingleEndFormatter appends single-end reads to one destination.
type SingleEndFormatter struct {
	format  RecordFormat
	path    string
	written int64
	bp1     int64
	bp2     int64
}

// NewSingleEndFormatter returns a Formatter writing to path.
func NewSingleEndFormatter(format RecordFormat, path string) *SingleEndFormatter {
	return &SingleEndFormatter{format: format, path: path}
}

// Append implements Formatter. r2 is ignored.
func (f *SingleEndFormatter) Append(out Output, r1 seq.Read, r2 *seq.Read) {
	out[f.path] = append(out[f.path], f.format.Format(r1))
	f.written++
	f.bp1 += int64(r1.Len())
}

// Written implements Formatter.
func (f *SingleEndFormatter) Written() int64 { return f.written }

// WrittenBP implements Formatter.
func (f *SingleEndFormatter) WrittenBP() (int64, int64) { return f.bp1, f.bp2 }

// PairedEndFormatter appends each mate of a pair to its own destination.
type PairedEndFormatter struct {
	format       RecordFormat
	path1, path2 string
	written      int64
	bp1          int64
	bp2          int64
}

// NewPairedEndFormatter returns a Formatter writing first mates to path1 and
// second mates to path2.
func NewPairedEndFormatter(format RecordFormat, path1, path2 string) *PairedEndFormatter {
	return &PairedEndFormatter{format: format, path1: path1, path2: path2}
}

// Append implements Formatter. r2 must not be nil.
func (f *PairedEndFormatter) Append(out Output, r1 seq.Read, r2 *seq.Read) {
	out[f.path1] = append(out[f.path1], f.format.Format(r1))
	out[f.path2] = append(out[f.path2], f.format.Format(*r2))
	f.written++
	f.bp1 += int64(r1.Len())
	f.bp2 += int64(r2.Len())
}

// Written implements Formatter.
func (f *PairedEndFormatter) Written() int64 { return f.written }

// WrittenBP implements Formatter.
func (f *PairedEndFormatter) WrittenBP() (int64, int64) { return f.bp1, f.bp2 }

// InterleavedFormatter appends both mates of each pair, in order, to one
// destination.
type InterleavedFormatter struct {
	format  RecordFormat
	path    string
	written int64
	bp1     int64
	bp2     int64
}

// NewInterleavedFormatter returns a Formatter interleaving pairs into path.
func NewInterleavedFormatter(format RecordFormat, path string) *InterleavedFormatter {
	return &InterleavedFormatter{format: format, path: path}
}

// Append implements Formatter. r2 must not be nil.
func (f *InterleavedFormatter) Append(out Output, r1 seq.Read, r2 *seq.Read) {
	out[f.path] = append(out[f.path], f.format.Format(r1), f.format.Format(*r2))
	f.written++
	f.bp1 += int64(r1.Len())
	f.bp2 += int64(r2.Len())
}

// Written implements Formatter.
func (f *InterleavedFormatter) Written() int64 { return f.written }

// WrittenBP implements Formatter.
func (f *InterleavedFormatter) WrittenBP() (int64, int64) { return f.bp1, f.bp2 }

// Qualities tells GetFormat whether quality values will be available for the
// records to be written.
type Qualities int

const (
	// QualitiesUnknown gives no hint; format resolution failures are
	// reported as errors.
	QualitiesUnknown Qualities = iota
	// QualitiesAvailable makes FASTQ the fallback format.
	QualitiesAvailable
	// QualitiesMissing makes FASTA the fallback format and rejects an
	// explicit FASTQ request.
	QualitiesMissing
)

// FormatterOpts configures GetFormat and NewFormatter.
type FormatterOpts struct {
	// Format overrides extension-based detection.
	Format Format

	// Colorspace selects the colorspace renderings.
	Colorspace bool

	// Qualities states whether quality values will be available.
	Qualities Qualities

	// LineWidth wraps FASTA sequence lines. Zero disables wrapping.
	LineWidth int
}

// GetFormat resolves an output path and options into a RecordFormat. When
// the extension is unrecognized but a Qualities hint was given, the format
// falls back to FASTQ (qualities available) or FASTA (missing) instead of
// failing. Requesting FASTQ while stating that qualities are missing is an
// error, not a silent downgrade.
func GetFormat(path string, o FormatterOpts) (RecordFormat, error) {
	format := o.Format
	if format == UnknownFormat {
		format = DetectFormat(path)
	}
	if format == UnknownFormat {
		switch o.Qualities {
		case QualitiesAvailable:
			format = FASTQ
		case QualitiesMissing:
			format = FASTA
		default:
			return nil, &UnknownFormatError{Value: path}
		}
	}
	if format == FASTQ && o.Qualities == QualitiesMissing {
		return nil, errors.New("output format cannot be FASTQ since no quality values are available")
	}
	switch format {
	case FASTA:
		return &FastaFormat{Width: o.LineWidth, Colorspace: o.Colorspace}, nil
	case FASTQ:
		return &FastqFormat{Colorspace: o.Colorspace}, nil
	}
	return nil, &UnknownFormatError{Value: format.String()}
}

// NewFormatter resolves output configuration into a Formatter: paired-end
// when path2 is set, interleaved when requested, single-end otherwise.
func NewFormatter(path1, path2 string, interleaved bool, o FormatterOpts) (Formatter, error) {
	if interleaved && path2 != "" {
		return nil, errors.New("interleaved output cannot be combined with a second file")
	}
	format, err := GetFormat(path1, o)
	if err != nil {
		return nil, err
	}
	if path2 != "" {
		return NewPairedEndFormatter(format, path1, path2), nil
	}
	if interleaved {
		return NewInterleavedFormatter(format, path1), nil
	}
	return NewSingleEndFormatter(format, path1), nil
}
