// Package seq defines the sequence record model shared by the readers and
// formatters in this repository: a read name, a residue string, optional
// per-residue qualities, and, for colorspace reads, the primer base that
// precedes the first color.
package seq

import "fmt"

// maxNameLen limits read names quoted in error messages.
const maxNameLen = 100

// A Read is a single sequence record. Qual, when nonempty, has exactly one
// character per residue of Seq. Name2 holds the remainder of the FASTQ "+"
// line. Primer is nonzero only for colorspace reads. Aux is an opaque
// payload attached by external trimming code; it is carried through slicing
// and reformatting but never interpreted here.
type Read struct {
	Name   string
	Seq    string
	Qual   string
	Name2  string
	Primer byte
	Aux    interface{}
}

// FormatError describes a structurally invalid record or input line. It
// carries the read name or the 1-based line number when either is known.
type FormatError struct {
	Name string
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("read %q: %s", truncate(e.Name), e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// New builds a plain read. An empty qual means no quality values; a nonempty
// qual must have the same length as sequence.
func New(name, sequence, qual, name2 string) (Read, error) {
	if qual != "" && len(qual) != len(sequence) {
		return Read{}, &FormatError{
			Name: name,
			Msg: fmt.Sprintf("quality length (%d) and sequence length (%d) do not match",
				len(qual), len(sequence)),
		}
	}
	return Read{Name: name, Seq: sequence, Qual: qual, Name2: name2}, nil
}

// NewColorspace builds a colorspace read from a raw sequence whose first
// character is the primer base. The primer must be one of A, C, G, T, and a
// nonempty qual must match the length of the sequence that remains after the
// primer is split off.
func NewColorspace(name, sequence, qual, name2 string) (Read, error) {
	var primer byte
	if len(sequence) > 0 {
		primer = sequence[0]
		sequence = sequence[1:]
	}
	if qual != "" && len(qual) != len(sequence) {
		return Read{}, &FormatError{
			Name: name,
			Msg: fmt.Sprintf("length of colorspace quality sequence (%d) and length of read (%d) do not match (primer is %q)",
				len(qual), len(sequence), string(primer)),
		}
	}
	switch primer {
	case 'A', 'C', 'G', 'T':
	default:
		return Read{}, &FormatError{
			Name: name,
			Msg:  fmt.Sprintf("primer base is %q, but it should be one of A, C, G, T", string(primer)),
		}
	}
	return Read{Name: name, Seq: sequence, Qual: qual, Name2: name2, Primer: primer}, nil
}

// NewSRAColorspace builds a colorspace read from SRA-formatted input, which
// carries one quality value too many: the leading quality character is
// discarded before construction.
func NewSRAColorspace(name, sequence, qual, name2 string) (Read, error) {
	if qual != "" {
		qual = qual[1:]
	}
	return NewColorspace(name, sequence, qual, name2)
}

// Slice returns a derived read covering residues [i, j) of r. The name,
// secondary name, primer and auxiliary payload are retained.
func (r Read) Slice(i, j int) Read {
	s := r
	s.Seq = r.Seq[i:j]
	if r.Qual != "" {
		s.Qual = r.Qual[i:j]
	}
	return s
}

// Len returns the number of residues in the read.
func (r Read) Len() int { return len(r.Seq) }

// A Pair holds the two mates of one fragment.
type Pair struct {
	R1, R2 Read
}

func truncate(s string) string {
	if len(s) > maxNameLen {
		return s[:maxNameLen-3] + "..."
	}
	return s
}
