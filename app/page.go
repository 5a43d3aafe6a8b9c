package main

import (
	"encoding/binary"
	"os"
)

const fileHeaderSize = 100

// pageKind tags the four B-tree page shapes this core understands.
type pageKind uint8

const (
	kindInteriorIndex pageKind = 0x02
	kindInteriorTable pageKind = 0x05
	kindLeafIndex     pageKind = 0x0A
	kindLeafTable     pageKind = 0x0D
)

func (k pageKind) isInterior() bool {
	return k == kindInteriorIndex || k == kindInteriorTable
}

func (k pageKind) headerLen() int {
	if k.isInterior() {
		return 12
	}
	return 8
}

// pageHeader is the decoded B-tree page header. rightMostChild is only
// meaningful when kind.isInterior() (populated for both interior table and
// interior index pages).
type pageHeader struct {
	kind             pageKind
	firstFreeBlock   uint16
	cellCount        uint16
	contentAreaStart uint16
	fragmentedBytes  uint8
	rightMostChild   uint32
}

// decodePageHeader reads a B-tree page header from buf starting at
// offset, using plain offset reads into the big-endian accessors rather
// than binary.Read into a struct, so the layout is explicit at the call
// site instead of hidden in field tags.
func decodePageHeader(buf []byte, offset int) (pageHeader, error) {
	if offset+8 > len(buf) {
		return pageHeader{}, errorf("decodePageHeader", Malformed, "page too short for header")
	}
	kind := pageKind(buf[offset])
	switch kind {
	case kindInteriorIndex, kindInteriorTable, kindLeafIndex, kindLeafTable:
	default:
		return pageHeader{}, errorf("decodePageHeader", Malformed, "unrecognized page type 0x%02x", buf[offset])
	}

	h := pageHeader{
		kind:             kind,
		firstFreeBlock:   binary.BigEndian.Uint16(buf[offset+1 : offset+3]),
		cellCount:        binary.BigEndian.Uint16(buf[offset+3 : offset+5]),
		contentAreaStart: binary.BigEndian.Uint16(buf[offset+5 : offset+7]),
		fragmentedBytes:  buf[offset+7],
	}

	if h.kind.isInterior() {
		if offset+12 > len(buf) {
			return pageHeader{}, errorf("decodePageHeader", Malformed, "interior page too short for header")
		}
		h.rightMostChild = binary.BigEndian.Uint32(buf[offset+8 : offset+12])
	}
	return h, nil
}

// cellPointers reads the cellCount 2-byte big-endian offsets that follow
// a page header, each relative to the start of the page.
func cellPointers(buf []byte, headerEnd int, count uint16) ([]uint16, error) {
	end := headerEnd + int(count)*2
	if end > len(buf) {
		return nil, errorf("cellPointers", Malformed, "cell pointer array overruns page")
	}
	out := make([]uint16, count)
	for i := 0; i < int(count); i++ {
		out[i] = binary.BigEndian.Uint16(buf[headerEnd+i*2 : headerEnd+i*2+2])
	}
	return out, nil
}

// databaseHeader is the decoded 100-byte file header; only the fields the
// core needs are kept.
type databaseHeader struct {
	pageSize int
}

func decodeDatabaseHeader(buf []byte, cfg *Config) (databaseHeader, error) {
	if len(buf) < fileHeaderSize {
		return databaseHeader{}, errorf("decodeDatabaseHeader", Io, "file shorter than the 100-byte header")
	}
	raw := binary.BigEndian.Uint16(buf[16:18])
	pageSize := int(raw)
	if raw == 1 {
		pageSize = 65536
	}
	if cfg.Validation >= ValidationBasic && pageSize == 0 {
		return databaseHeader{}, errorf("decodeDatabaseHeader", Malformed, "page size is zero")
	}
	if cfg.Validation >= ValidationStrict {
		if pageSize < 512 || pageSize > 65536 || pageSize&(pageSize-1) != 0 {
			return databaseHeader{}, errorf("decodeDatabaseHeader", Malformed, "page size %d is not a valid power of two", pageSize)
		}
	}
	return databaseHeader{pageSize: pageSize}, nil
}

// pager resolves page numbers to bytes and tracks how many distinct pages
// have been read, so tests (and curious callers) can observe the
// page-touch difference between an index-driven lookup and a full scan.
// It holds no cache: every readPage issues a fresh seek and read.
type pager struct {
	f        *os.File
	pageSize int
	touched  map[int]bool
}

func newPager(f *os.File, pageSize int, cfg *Config) *pager {
	return &pager{f: f, pageSize: pageSize, touched: make(map[int]bool, cfg.PageCacheHint)}
}

// readPage returns the full contents of 1-based page n.
func (p *pager) readPage(n int) ([]byte, error) {
	if n < 1 {
		return nil, errorf("readPage", Malformed, "page number %d is not valid", n)
	}
	buf := make([]byte, p.pageSize)
	offset := int64(n-1) * int64(p.pageSize)
	if _, err := p.f.ReadAt(buf, offset); err != nil {
		return nil, newError("readPage", Io, err)
	}
	p.touched[n] = true
	return buf, nil
}

// pageHeaderOffset returns where a page's B-tree header begins within the
// bytes readPage returns: page 1 carries the 100-byte file header first.
func pageHeaderOffset(n int) int {
	if n == 1 {
		return fileHeaderSize
	}
	return 0
}

// PagesTouched reports the number of distinct pages read since the pager
// was created.
func (p *pager) PagesTouched() int {
	return len(p.touched)
}
