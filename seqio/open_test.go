package seqio

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/klauspost/compress/gzip"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func writeGzFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	assert.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, f.Close())
	return path
}

func drain(t *testing.T, r Reader) []string {
	t.Helper()
	var names []string
	for r.Scan() {
		names = append(names, r.Record().Name)
	}
	assert.NoError(t, r.Err())
	assert.NoError(t, r.Close())
	return names
}

func TestOpenFasta(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeFile(t, dir, "reads.fasta", ">r1\nACGT\n>r2\nTT\n")
	r, err := Open(ctx, path, Opts{})
	assert.NoError(t, err)
	names := drain(t, r)
	assert.EQ(t, names, []string{"r1", "r2"})
}

func TestOpenFastqGz(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeGzFile(t, dir, "reads.fastq.gz", "@r1\nACGT\n+\nFFFF\n")
	r, err := Open(ctx, path, Opts{})
	assert.NoError(t, err)
	names := drain(t, r)
	assert.EQ(t, names, []string{"r1"})
}

func TestOpenSniffsContent(t *testing.T) {
	// Unrecognized extension: the format comes from the first significant
	// byte, and the sniffed line is still delivered as the first record.
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeFile(t, dir, "reads.dat", "# comment\n>r1\nACGT\n")
	r, err := Open(ctx, path, Opts{})
	assert.NoError(t, err)
	names := drain(t, r)
	assert.EQ(t, names, []string{"r1"})

	path = writeFile(t, dir, "reads2.dat", "@r1\nACGT\n+\nFFFF\n")
	r, err = Open(ctx, path, Opts{})
	assert.NoError(t, err)
	if !r.DeliversQualities() {
		t.Error("sniffed FASTQ must deliver qualities")
	}
	names = drain(t, r)
	assert.EQ(t, names, []string{"r1"})
}

func TestOpenUnknownFormat(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeFile(t, dir, "reads.dat", "neither fasta\nnor fastq\n")
	_, err := Open(ctx, path, Opts{})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*UnknownFormatError); !ok {
		t.Errorf("got %T (%v), want *UnknownFormatError", err, err)
	}
}

func TestOpenExplicitFormat(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	// The extension lies; the explicit override wins.
	path := writeFile(t, dir, "reads.fasta", "@r1\nACGT\n+\nFFFF\n")
	r, err := Open(ctx, path, Opts{Format: FASTQ})
	assert.NoError(t, err)
	names := drain(t, r)
	assert.EQ(t, names, []string{"r1"})
}

func TestOpenFastaQual(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	fasta := writeFile(t, dir, "reads.csfasta", ">r1\nT0123\n")
	qual := writeFile(t, dir, "reads.qual", ">r1\n10 20 30 40\n")
	r, err := Open(ctx, fasta, Opts{QualPath: qual, Colorspace: true})
	assert.NoError(t, err)
	if !r.Scan() {
		t.Fatal(r.Err())
	}
	rec := r.Record()
	assert.EQ(t, rec.Primer, byte('T'))
	assert.EQ(t, rec.Seq, "0123")
	assert.NoError(t, r.Close())
}

func TestOpenPairTwoFiles(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	p1 := writeFile(t, dir, "r1.fastq", "@frag/1\nACGT\n+\nFFFF\n")
	p2 := writeFile(t, dir, "r2.fastq", "@frag/2\nTTGG\n+\nHHHH\n")
	r, err := OpenPair(ctx, p1, Opts{Path2: p2})
	assert.NoError(t, err)
	if !r.Scan() {
		t.Fatal(r.Err())
	}
	pair := r.Pair()
	assert.EQ(t, pair.R1.Name, "frag/1")
	assert.EQ(t, pair.R2.Name, "frag/2")
	if r.Scan() {
		t.Error("expected end of input")
	}
	assert.NoError(t, r.Err())
	assert.NoError(t, r.Close())
}

func TestOpenPairInterleaved(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeFile(t, dir, "reads.fastq",
		"@frag/1\nACGT\n+\nFFFF\n@frag/2\nTTGG\n+\nHHHH\n")
	r, err := OpenPair(ctx, path, Opts{Interleaved: true})
	assert.NoError(t, err)
	if !r.Scan() {
		t.Fatal(r.Err())
	}
	assert.NoError(t, r.Err())
	assert.NoError(t, r.Close())
}

func TestOpenMateProjection(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeFile(t, dir, "reads.fastq",
		"@frag/1\nACGT\n+\nFFFF\n@frag/2\nTTGG\n+\nHHHH\n")
	r, err := Open(ctx, path, Opts{Interleaved: true, Mate: 2})
	assert.NoError(t, err)
	names := drain(t, r)
	assert.EQ(t, names, []string{"frag/2"})
}

func TestOpenSAM(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeFile(t, dir, "aln.sam",
		"@HD\tVN:1.6\tSO:queryname\n"+
			"frag1\t77\t*\t0\t0\t*\t*\t0\t0\tACGT\t????\n"+
			"frag1\t141\t*\t0\t0\t*\t*\t0\t0\tTTTT\t????\n")

	r, err := Open(ctx, path, Opts{})
	assert.NoError(t, err)
	names := drain(t, r)
	assert.EQ(t, names, []string{"frag1", "frag1"})

	r, err = Open(ctx, path, Opts{Mate: 1})
	assert.NoError(t, err)
	names = drain(t, r)
	assert.EQ(t, names, []string{"frag1"})

	p, err := OpenPair(ctx, path, Opts{Interleaved: true})
	assert.NoError(t, err)
	if !p.Scan() {
		t.Fatal(p.Err())
	}
	assert.NoError(t, p.Err())
	assert.NoError(t, p.Close())
}

func TestOpenConfigErrors(t *testing.T) {
	ctx := vcontext.Background()
	// All of these must fail before any I/O is attempted, so the paths do
	// not need to exist.
	cases := []Opts{
		{Interleaved: true, Path2: "b.fastq"},
		{Interleaved: true, QualPath: "a.qual"},
		{Path2: "b.fastq", QualPath: "a.qual"},
		{Mate: 3},
	}
	for _, o := range cases {
		if _, err := Open(ctx, "a.fastq", o); err == nil {
			t.Errorf("opts %+v: expected configuration error", o)
		}
		if _, err := OpenPair(ctx, "a.fastq", o); err == nil {
			t.Errorf("opts %+v: expected configuration error", o)
		}
	}
	if _, err := Open(ctx, "a.fastq", Opts{Path2: "b.fastq"}); err == nil {
		t.Error("expected error: paired input without a mate selector")
	}
	if _, err := OpenPair(ctx, "a.fastq", Opts{}); err == nil {
		t.Error("expected error: pair reading without paired input")
	}
}

func TestOpenSAMColorspaceRejected(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	path := writeFile(t, dir, "aln.sam", "@HD\tVN:1.6\n")
	if _, err := Open(ctx, path, Opts{Colorspace: true}); err == nil {
		t.Error("expected error: colorspace SAM input")
	}
}
