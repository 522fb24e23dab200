package pdf

import (
	"bytes"
	"strings"
	"testing"
)

func TestHashBytes_KnownVector(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashBytes([]byte("abc")); got != want {
		t.Fatalf("HashBytes = %s, want %s", got, want)
	}
	got, err := HashReader(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	if got != want {
		t.Fatalf("HashReader = %s, want %s", got, want)
	}
}

func TestHashReader_MatchesHashBytes(t *testing.T) {
	// Larger than one 64 KiB chunk so the streaming path is exercised.
	data := bytes.Repeat([]byte("studybuddy"), 20000)
	got, err := HashReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	if want := HashBytes(data); got != want {
		t.Fatalf("HashReader = %s, want %s", got, want)
	}
	if len(got) != 64 || strings.ToLower(got) != got {
		t.Fatalf("hash is not lowercase hex: %s", got)
	}
}
