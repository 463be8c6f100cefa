package seqio

import (
	"strings"
	"testing"
)

func fastqOf(names ...string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString("@" + name + "\nACGT\n+\nFFFF\n")
	}
	return b.String()
}

func pairedFrom(in1, in2 string) *PairedReader {
	return NewPairedReader(
		NewFastqReader(strings.NewReader(in1), FastqReaderOpts{}),
		NewFastqReader(strings.NewReader(in2), FastqReaderOpts{}),
	)
}

func TestPairedReader(t *testing.T) {
	r := pairedFrom(fastqOf("read1/1", "read2/1"), fastqOf("read1/2", "read2/2"))
	var n int
	for r.Scan() {
		pair := r.Pair()
		if got, want := pair.R1.Name[len(pair.R1.Name)-1], byte('1'); got != want {
			t.Errorf("got mate %c, want %c", got, want)
		}
		n++
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if got, want := n, 2; got != want {
		t.Errorf("got %v pairs, want %v", got, want)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err) // closing twice is a no-op
	}
}

func TestPairedReaderMoreReadsInFile1(t *testing.T) {
	r := pairedFrom(fastqOf("read1/1", "read2/1", "read3/1"), fastqOf("read1/2", "read2/2"))
	var n int
	for r.Scan() {
		n++
	}
	if got, want := n, 2; got != want {
		t.Errorf("got %v pairs, want %v", got, want)
	}
	err := r.Err()
	pe, ok := err.(*PairError)
	if !ok {
		t.Fatalf("got %T (%v), want *PairError", err, err)
	}
	if !strings.Contains(pe.Error(), "file 1") {
		t.Errorf("error %q does not blame file 1", pe.Error())
	}
}

func TestPairedReaderMoreReadsInFile2(t *testing.T) {
	r := pairedFrom(fastqOf("read1/1"), fastqOf("read1/2", "read2/2"))
	for r.Scan() {
	}
	err := r.Err()
	pe, ok := err.(*PairError)
	if !ok {
		t.Fatalf("got %T (%v), want *PairError", err, err)
	}
	if !strings.Contains(pe.Error(), "file 2") {
		t.Errorf("error %q does not blame file 2", pe.Error())
	}
}

func TestPairedReaderNameMismatch(t *testing.T) {
	r := pairedFrom(fastqOf("read1/1"), fastqOf("other/2"))
	if r.Scan() {
		t.Fatal("expected scan failure")
	}
	err := r.Err()
	pe, ok := err.(*PairError)
	if !ok {
		t.Fatalf("got %T (%v), want *PairError", err, err)
	}
	if !strings.Contains(pe.Error(), "read1/1") || !strings.Contains(pe.Error(), "other/2") {
		t.Errorf("error %q does not name both reads", pe.Error())
	}
}

func TestInterleavedReader(t *testing.T) {
	in := fastqOf("read1/1", "read1/2", "read2/1", "read2/2")
	r := NewInterleavedReader(NewFastqReader(strings.NewReader(in), FastqReaderOpts{}))
	var n int
	for r.Scan() {
		n++
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if got, want := n, 2; got != want {
		t.Errorf("got %v pairs, want %v", got, want)
	}
}

func TestInterleavedReaderOddCount(t *testing.T) {
	// floor(n/2) pairs come out, then the dangling record is an error.
	in := fastqOf("read1/1", "read1/2", "read2/1")
	r := NewInterleavedReader(NewFastqReader(strings.NewReader(in), FastqReaderOpts{}))
	var n int
	for r.Scan() {
		n++
	}
	if got, want := n, 1; got != want {
		t.Errorf("got %v pairs, want %v", got, want)
	}
	err := r.Err()
	pe, ok := err.(*PairError)
	if !ok {
		t.Fatalf("got %T (%v), want *PairError", err, err)
	}
	if !strings.Contains(pe.Error(), "incomplete") {
		t.Errorf("unexpected message %q", pe.Error())
	}
}

func TestInterleavedReaderNameMismatch(t *testing.T) {
	in := fastqOf("read1/1", "read2/2")
	r := NewInterleavedReader(NewFastqReader(strings.NewReader(in), FastqReaderOpts{}))
	if r.Scan() {
		t.Fatal("expected scan failure")
	}
	if _, ok := r.Err().(*PairError); !ok {
		t.Fatalf("got %T (%v), want *PairError", r.Err(), r.Err())
	}
}

func TestMateProjection(t *testing.T) {
	in := fastqOf("read1/1", "read1/2", "read2/1", "read2/2")
	first := FirstMates(NewInterleavedReader(NewFastqReader(strings.NewReader(in), FastqReaderOpts{})))
	var names []string
	for first.Scan() {
		names = append(names, first.Record().Name)
	}
	if err := first.Err(); err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Join(names, ","), "read1/1,read2/1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	second := SecondMates(NewInterleavedReader(NewFastqReader(strings.NewReader(in), FastqReaderOpts{})))
	names = names[:0]
	for second.Scan() {
		names = append(names, second.Record().Name)
	}
	if got, want := strings.Join(names, ","), "read1/2,read2/2"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
