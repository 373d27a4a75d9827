package pathbuf

import (
	"bytes"
	"strings"
	"testing"
)

func TestPushChildPopToRoundTrip(t *testing.T) {
	b, err := New([]byte("/r"))
	if err != nil {
		t.Fatal(err)
	}
	before := append([]byte(nil), b.Bytes()...)

	prev, err := b.PushChild([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "/r/a" {
		t.Fatalf("got %q", got)
	}

	prev2, err := b.PushChild([]byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "/r/a/b" {
		t.Fatalf("got %q", got)
	}

	b.PopTo(prev2)
	if got := b.String(); got != "/r/a" {
		t.Fatalf("after pop2, got %q", got)
	}

	b.PopTo(prev)
	if !bytes.Equal(b.Bytes(), before) {
		t.Fatalf("round trip mismatch: got %q want %q", b.Bytes(), before)
	}
}

func TestPushChildTrailingSlashRoot(t *testing.T) {
	b, err := New([]byte("/"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.PushChild([]byte("etc")); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "/etc" {
		t.Fatalf("got %q", got)
	}
}

func TestPathTooLong(t *testing.T) {
	long := strings.Repeat("a", PathMax)
	if _, err := New([]byte(long)); err != ErrTooLong {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}

	b, err := New([]byte("/r"))
	if err != nil {
		t.Fatal(err)
	}
	hugeName := strings.Repeat("b", PathMax)
	if _, err := b.PushChild([]byte(hugeName)); err != ErrTooLong {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	// buffer must be unmodified on overflow
	if got := b.String(); got != "/r" {
		t.Fatalf("buffer mutated on overflow: %q", got)
	}
}

func TestFilenameAtHostMaximumAccepted(t *testing.T) {
	b, err := New([]byte("/r"))
	if err != nil {
		t.Fatal(err)
	}
	name := strings.Repeat("n", PathMax-len("/r/")-1)
	if _, err := b.PushChild([]byte(name)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAsCStrNullTerminates(t *testing.T) {
	b, _ := New([]byte("/tmp"))
	ptr := b.AsCStr()
	if *ptr != '/' {
		t.Fatalf("expected first byte '/', got %q", *ptr)
	}
	// the byte one past len must be NUL
	if b.buf[b.len] != 0 {
		t.Fatalf("expected NUL terminator at len")
	}
}
