package main

import "testing"

func TestReadVarint(t *testing.T) {
	cases := []struct {
		name  string
		bytes []byte
		want  uint64
		n     int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"127", []byte{0x7F}, 127, 1},
		{"128", []byte{0x81, 0x00}, 128, 2},
		{"16383", []byte{0xFF, 0x7F}, 16383, 2},
		{"16384", []byte{0x81, 0x80, 0x00}, 16384, 3},
		{"2^31-1", []byte{0x87, 0xFF, 0xFF, 0xFF, 0x7F}, 1<<31 - 1, 5},
		{
			"2^63-1 (9-byte form)",
			[]byte{0xBF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			1<<63 - 1,
			9,
		},
		{
			"2^64-1 (9-byte form, all continuation bits set)",
			[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			1<<64 - 1, // 9th byte contributes all 8 bits: result is all-ones
			9,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, n, err := readVarint(c.bytes, 0)
			if err != nil {
				t.Fatalf("readVarint() error = %v", err)
			}
			if got != c.want {
				t.Errorf("readVarint() = %d, want %d", got, c.want)
			}
			if n != c.n {
				t.Errorf("readVarint() consumed %d bytes, want %d", n, c.n)
			}
		})
	}
}

func TestReadVarintTruncated(t *testing.T) {
	_, _, err := readVarint([]byte{0x81}, 0)
	if err == nil {
		t.Fatal("expected an error for a truncated varint")
	}
	var de *dbError
	if !asDBError(err, &de) {
		t.Fatalf("expected a *dbError, got %T", err)
	}
	if de.Kind != Malformed {
		t.Errorf("Kind = %v, want Malformed", de.Kind)
	}
}

func TestReadVarintAtOffset(t *testing.T) {
	data := []byte{0xAA, 0xAA, 0x05, 0xBB}
	got, n, err := readVarint(data, 2)
	if err != nil {
		t.Fatalf("readVarint() error = %v", err)
	}
	if got != 5 || n != 1 {
		t.Errorf("readVarint() = (%d, %d), want (5, 1)", got, n)
	}
}

// asDBError is a small errors.As shim kept local to the test so the test
// file has no extra import beyond testing.
func asDBError(err error, target **dbError) bool {
	if de, ok := err.(*dbError); ok {
		*target = de
		return true
	}
	return false
}
