package main

import (
	"encoding/binary"
	"os"
	"testing"
)

// This file hand-builds minimal synthetic SQLite-format byte buffers so
// the traversal and catalog tests are fully self-contained: nothing here
// shells out to sqlite3 or depends on a generated fixture file, since
// this environment has neither a toolchain nor a network available.

// encodeVarint is the forward direction of readVarint, used only to
// construct fixtures; production code never needs to encode a varint.
func encodeVarint(x uint64) []byte {
	if x == 0 {
		return []byte{0}
	}
	var b []byte
	for x > 0 {
		b = append([]byte{byte(x & 0x7F)}, b...)
		x >>= 7
	}
	for i := 0; i < len(b)-1; i++ {
		b[i] |= 0x80
	}
	return b
}

// encodeColumn picks a serial type for a fixture value. nil -> NULL,
// int64 0/1 -> the zero/one serial types, other int64 -> a 4-byte
// integer, string -> text.
func encodeColumn(v interface{}) (serialType uint64, body []byte) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		switch val {
		case 0:
			return 8, nil
		case 1:
			return 9, nil
		default:
			body := make([]byte, 4)
			binary.BigEndian.PutUint32(body, uint32(int32(val)))
			return 4, body
		}
	case string:
		b := []byte(val)
		return uint64(13 + 2*len(b)), b
	default:
		panic("unsupported fixture column type")
	}
}

// encodeRecord builds a record body (header_size, serial types, column
// bodies) for a small number of columns whose header fits in one byte.
func encodeRecord(cols []interface{}) []byte {
	serialTypes := make([]byte, 0, len(cols))
	var bodies []byte
	for _, c := range cols {
		st, body := encodeColumn(c)
		serialTypes = append(serialTypes, encodeVarint(st)...)
		bodies = append(bodies, body...)
	}
	headerSize := 1 + len(serialTypes)
	if headerSize >= 128 {
		panic("fixture header too large for a one-byte header_size varint")
	}
	out := append([]byte{byte(headerSize)}, serialTypes...)
	return append(out, bodies...)
}

func encodeLeafTableCell(rowid int64, cols []interface{}) []byte {
	record := encodeRecord(cols)
	cell := encodeVarint(uint64(len(record)))
	cell = append(cell, encodeVarint(uint64(rowid))...)
	return append(cell, record...)
}

func encodeInteriorTableCell(leftChild uint32, key int64) []byte {
	cell := make([]byte, 4)
	binary.BigEndian.PutUint32(cell, leftChild)
	return append(cell, encodeVarint(uint64(key))...)
}

func encodeLeafIndexCell(value string, rowid int64) []byte {
	record := encodeRecord([]interface{}{value, rowid})
	cell := encodeVarint(uint64(len(record)))
	return append(cell, record...)
}

func encodeInteriorIndexCell(leftChild uint32, value string, rowid int64) []byte {
	record := encodeRecord([]interface{}{value, rowid})
	cell := make([]byte, 4)
	binary.BigEndian.PutUint32(cell, leftChild)
	cell = append(cell, encodeVarint(uint64(len(record)))...)
	return append(cell, record...)
}

// buildPage lays cells out from the end of the page backward (as real
// SQLite pages do) and writes the header and cell-pointer array at base
// (0 for ordinary pages, 100 for page 1, which shares its page with the
// file header).
func buildPage(pageSize int, base int, kind pageKind, rightMostChild uint32, cells [][]byte) []byte {
	buf := make([]byte, pageSize)
	buf[base] = byte(kind)

	contentStart := pageSize
	pointers := make([]uint16, len(cells))
	for i, cell := range cells {
		contentStart -= len(cell)
		copy(buf[contentStart:], cell)
		pointers[i] = uint16(contentStart)
	}

	binary.BigEndian.PutUint16(buf[base+1:base+3], 0)
	binary.BigEndian.PutUint16(buf[base+3:base+5], uint16(len(cells)))
	binary.BigEndian.PutUint16(buf[base+5:base+7], uint16(contentStart))
	buf[base+7] = 0

	headerLen := kind.headerLen()
	if kind.isInterior() {
		binary.BigEndian.PutUint32(buf[base+8:base+12], rightMostChild)
	}

	ptrOffset := base + headerLen
	for i, ptr := range pointers {
		binary.BigEndian.PutUint16(buf[ptrOffset+i*2:ptrOffset+i*2+2], ptr)
	}
	return buf
}

// writeFixtureDB concatenates 1-based pages (pages[0] is page 1, already
// carrying the 100-byte file header at its start) into a temp file and
// returns a pager over it. The file is removed via t.Cleanup.
func writeFixtureDB(t *testing.T, pageSize int, pages [][]byte) *pager {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	for _, page := range pages {
		if len(page) != pageSize {
			t.Fatalf("page length %d != pageSize %d", len(page), pageSize)
		}
		if _, err := f.Write(page); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	t.Cleanup(func() { f.Close() })
	return newPager(f, pageSize, DefaultConfig())
}

// withFileHeader stamps the 16-bit big-endian page size at offset 16 of
// a page-1 buffer that buildPage already produced with base=100.
func withFileHeader(page1 []byte, pageSize int) []byte {
	binary.BigEndian.PutUint16(page1[16:18], uint16(pageSize))
	return page1
}
