package seqio

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"
)

// Format identifies one of the supported file encodings.
type Format int

const (
	// UnknownFormat means the format has not been resolved yet.
	UnknownFormat Format = iota
	// FASTA is ">"-delimited records without quality values.
	FASTA
	// FASTQ is 4-line records with quality values.
	FASTQ
	// SRAFastq is colorspace FASTQ as produced by fastq-dump, which carries
	// one leading quality value too many.
	SRAFastq
	// SAM is the text alignment format.
	SAM
	// BAM is the binary alignment format.
	BAM
)

func (f Format) String() string {
	switch f {
	case FASTA:
		return "fasta"
	case FASTQ:
		return "fastq"
	case SRAFastq:
		return "sra-fastq"
	case SAM:
		return "sam"
	case BAM:
		return "bam"
	}
	return "unknown"
}

// ParseFormat maps a format name to its Format. Matching is
// case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "fasta":
		return FASTA, nil
	case "fastq":
		return FASTQ, nil
	case "sra-fastq":
		return SRAFastq, nil
	case "sam":
		return SAM, nil
	case "bam":
		return BAM, nil
	}
	return UnknownFormat, &UnknownFormatError{Value: s}
}

// DetectFormat guesses a format from a file name. A recognized compression
// suffix (.gz, .bz2, .xz) is stripped first; the remaining extension is
// matched case-insensitively. DetectFormat returns UnknownFormat when the
// extension is not recognized, leaving content sniffing to the caller.
func DetectFormat(path string) Format {
	name := path
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".bz2", ".xz":
		name = name[:len(name)-len(filepath.Ext(name))]
	}
	ext := strings.ToLower(filepath.Ext(name))
	stem := name[:len(name)-len(ext)]
	switch ext {
	case ".fasta", ".fa", ".fna", ".csfasta", ".csfa":
		return FASTA
	case ".fastq", ".fq":
		return FASTQ
	case ".txt":
		if strings.HasSuffix(stem, "_sequence") {
			return FASTQ
		}
	case ".sam":
		return SAM
	case ".bam":
		return BAM
	}
	return UnknownFormat
}

// detectContent classifies an already-opened stream by its first significant
// line: leading "#" comment lines are skipped (csfasta carries them), then
// ">" means FASTA and "@" means FASTQ. The line consumed for classification
// is reinjected into the returned reader, so the chosen parser still
// observes it as the first record line. UnknownFormat is returned when the
// first significant line matches neither marker or the stream is empty.
func detectContent(r io.Reader) (Format, io.Reader, error) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line == "" {
			if err == io.EOF {
				return UnknownFormat, br, nil
			}
			return UnknownFormat, br, err
		}
		if line[0] == '#' {
			if err == io.EOF {
				return UnknownFormat, br, nil
			}
			continue
		}
		format := UnknownFormat
		switch line[0] {
		case '>':
			format = FASTA
		case '@':
			format = FASTQ
		}
		return format, newPrependReader(line, br), nil
	}
}

// prependReader is a stream with one pushed-back line: reads drain the line
// first, then delegate to the wrapped stream. Close closes the wrapped
// stream when it is a Closer.
type prependReader struct {
	r     io.Reader
	under io.Reader
}

func newPrependReader(line string, under io.Reader) *prependReader {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return &prependReader{
		r:     io.MultiReader(strings.NewReader(line), under),
		under: under,
	}
}

func (p *prependReader) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *prependReader) Close() error {
	if c, ok := p.under.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
