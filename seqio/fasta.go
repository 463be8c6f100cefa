package seqio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/seqio/seq"
)

// newReadFunc builds a record from its parsed fields. The concrete function
// decides between plain, colorspace and SRA-colorspace construction.
type newReadFunc func(name, sequence, qual, name2 string) (seq.Read, error)

// FastaReaderOpts configures a FastaReader.
type FastaReaderOpts struct {
	// Colorspace selects the colorspace record constructor: the first
	// character of each sequence is split off as the primer base.
	Colorspace bool

	// KeepLinebreaks joins wrapped sequence lines with newlines instead of
	// concatenating them. The QUAL half of a FASTA/QUAL pair needs this,
	// since its quality tokens are whitespace-separated integers rather
	// than fixed-width characters.
	KeepLinebreaks bool
}

// FastaReader streams records from a FASTA file: a ">" line starts a record,
// "#" lines are comments, blank lines are ignored, and any other line is
// sequence content belonging to the open record.
type FastaReader struct {
	sc      *bufio.Scanner
	delim   string
	newRead newReadFunc
	line    int
	name    string
	open    bool
	buf     []string
	cur     seq.Read
	err     error
	eof     bool
	closeOnce
}

// NewFastaReader returns a reader for FASTA data from r.
func NewFastaReader(r io.Reader, opts FastaReaderOpts) *FastaReader {
	newRead := seq.New
	if opts.Colorspace {
		newRead = seq.NewColorspace
	}
	delim := ""
	if opts.KeepLinebreaks {
		delim = "\n"
	}
	return &FastaReader{
		sc:      bufio.NewScanner(r),
		delim:   delim,
		newRead: newRead,
	}
}

// Scan advances to the next record.
func (r *FastaReader) Scan() bool {
	if r.err != nil || r.eof {
		return false
	}
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		switch line[0] {
		case '>':
			if r.open {
				rec, err := r.emit()
				r.name = line[1:]
				r.buf = r.buf[:0]
				if err != nil {
					r.err = err
					return false
				}
				r.cur = rec
				return true
			}
			r.open = true
			r.name = line[1:]
			r.buf = r.buf[:0]
		case '#':
			// comment
		default:
			if !r.open {
				r.err = &seq.FormatError{
					Line: r.line,
					Msg:  fmt.Sprintf("expected '>' at beginning of FASTA record, but got %q", line),
				}
				return false
			}
			r.buf = append(r.buf, line)
		}
	}
	if err := r.sc.Err(); err != nil {
		r.err = err
		return false
	}
	r.eof = true
	if !r.open {
		return false
	}
	rec, err := r.emit()
	if err != nil {
		r.err = err
		return false
	}
	r.cur = rec
	return true
}

func (r *FastaReader) emit() (seq.Read, error) {
	return r.newRead(r.name, strings.Join(r.buf, r.delim), "", "")
}

// Record returns the current record.
func (r *FastaReader) Record() seq.Read { return r.cur }

// DeliversQualities implements Reader. FASTA carries no quality values.
func (r *FastaReader) DeliversQualities() bool { return false }

// Err returns the error that stopped iteration, if any.
func (r *FastaReader) Err() error { return r.err }
