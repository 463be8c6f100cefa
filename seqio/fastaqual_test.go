package seqio

import (
	"strings"
	"testing"

	"github.com/grailbio/seqio/seq"
)

func TestFastaQualReader(t *testing.T) {
	fasta := ">r1\nACGT\n>r2\nGG\n"
	qual := ">r1\n10 20\n30 40\n>r2\n0 -5\n"
	r := NewFastaQualReader(strings.NewReader(fasta), strings.NewReader(qual), false)
	if !r.DeliversQualities() {
		t.Error("FASTA/QUAL reader must deliver qualities")
	}
	if !r.Scan() {
		t.Fatal(r.Err())
	}
	rec := r.Record()
	if got, want := rec.Seq, "ACGT"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := rec.Qual, string([]byte{43, 53, 63, 73}); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !r.Scan() {
		t.Fatal(r.Err())
	}
	if got, want := r.Record().Qual, string([]byte{33, 28}); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if r.Scan() {
		t.Error("expected end of input")
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestFastaQualReaderColorspace(t *testing.T) {
	fasta := ">r1\nT0123\n"
	qual := ">r1\n10 20 30 40\n"
	r := NewFastaQualReader(strings.NewReader(fasta), strings.NewReader(qual), true)
	if !r.Scan() {
		t.Fatal(r.Err())
	}
	rec := r.Record()
	if got, want := rec.Primer, byte('T'); got != want {
		t.Errorf("got %c, want %c", got, want)
	}
	if got, want := rec.Seq, "0123"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := len(rec.Qual), 4; got != want {
		t.Errorf("got %v qualities, want %v", got, want)
	}
}

func TestFastaQualReaderNameMismatch(t *testing.T) {
	r := NewFastaQualReader(
		strings.NewReader(">r1\nACGT\n"),
		strings.NewReader(">other\n10 20 30 40\n"),
		false)
	if r.Scan() {
		t.Fatal("expected scan failure")
	}
	err := r.Err()
	if _, ok := err.(*seq.FormatError); !ok {
		t.Fatalf("got %T (%v), want *seq.FormatError", err, err)
	}
	if !strings.Contains(err.Error(), "other") {
		t.Errorf("error %q does not name both reads", err.Error())
	}
}

func TestFastaQualReaderBadQualityValue(t *testing.T) {
	for _, bad := range []string{"223", "-6", "abc", "1.5"} {
		r := NewFastaQualReader(
			strings.NewReader(">r1\nAC\n"),
			strings.NewReader(">r1\n10 "+bad+"\n"),
			false)
		if r.Scan() {
			t.Fatalf("quality %q: expected scan failure", bad)
		}
		err := r.Err()
		if _, ok := err.(*seq.FormatError); !ok {
			t.Fatalf("quality %q: got %T, want *seq.FormatError", bad, err)
		}
		if !strings.Contains(err.Error(), bad) {
			t.Errorf("error %q does not name the bad token %q", err.Error(), bad)
		}
		if !strings.Contains(err.Error(), "r1") {
			t.Errorf("error %q does not name the read", err.Error())
		}
	}
}

func TestQualTableRange(t *testing.T) {
	if got, want := qualTable["-5"], byte(28); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := qualTable["0"], byte(33); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := qualTable["222"], byte(255); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, ok := qualTable["223"]; ok {
		t.Error("223 must not decode")
	}
}
