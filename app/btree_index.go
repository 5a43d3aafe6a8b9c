package main

// searchIndex runs an exact-equality search against an index B-tree
// rooted at rootPage, looking for rows whose indexed value equals
// target (already stripped of quotes and encoded as bytes by the caller).
// Every index page's record is two columns: (indexed_value, rowid).
//
// Unlike the table-tree traversal, this walks the tree with ordinary
// recursion rather than an explicit stack: the per-node decision of
// whether to keep scanning, stop, or descend into a child depends on
// flags (matchedInNode, trailingMismatch, stoppedOnGreater) scoped to a
// single call frame, and index trees are shallow (O(log n) pages) so the
// recursion depth this adds is negligible.
func searchIndex(p *pager, rootPage int, target []byte) ([]int64, error) {
	var rowids []int64
	if err := searchIndexPage(p, rootPage, target, &rowids); err != nil {
		return nil, err
	}
	return rowids, nil
}

func searchIndexPage(p *pager, page int, target []byte, out *[]int64) error {
	buf, err := p.readPage(page)
	if err != nil {
		return err
	}
	hdrOffset := pageHeaderOffset(page)
	hdr, err := decodePageHeader(buf, hdrOffset)
	if err != nil {
		return err
	}
	if hdr.kind != kindLeafIndex && hdr.kind != kindInteriorIndex {
		return errorf("searchIndex", Malformed, "unexpected page type for index tree")
	}
	pointers, err := cellPointers(buf, hdrOffset+hdr.kind.headerLen(), hdr.cellCount)
	if err != nil {
		return err
	}
	interior := hdr.kind == kindInteriorIndex

	matchedInNode := false
	trailingMismatch := false
	stoppedOnGreater := false

	for _, ptr := range pointers {
		offset := int(ptr)
		var leftChild uint32
		if interior {
			if offset+4 > len(buf) {
				return errorf("searchIndex", Malformed, "interior index cell truncated")
			}
			leftChild = beUint32(buf[offset : offset+4])
			offset += 4
		}
		_, n, err := readVarint(buf, offset) // payload size
		if err != nil {
			return err
		}
		offset += n
		values, _, err := decodeRecord(buf, offset, 2)
		if err != nil {
			return err
		}
		value := values[0].Raw
		rowid := values[1].Integer

		if matchedInNode && !bytesEqual(value, target) {
			trailingMismatch = true
			break
		}

		cmp := bytesCompare(value, target)
		switch {
		case cmp == 0:
			matchedInNode = true
			if interior {
				if err := searchIndexPage(p, int(leftChild), target, out); err != nil {
					return err
				}
			}
			*out = append(*out, rowid)
		case cmp > 0:
			// This cell's key is an upper bound on its left subtree; V
			// can only live there, never further right on this page.
			if interior {
				if err := searchIndexPage(p, int(leftChild), target, out); err != nil {
					return err
				}
			}
			stoppedOnGreater = true
		}
		if stoppedOnGreater {
			break
		}
		// cmp < 0: this cell's left subtree only holds keys <= its own
		// value, which is already < V, so it cannot contain V either.
	}

	if !interior {
		return nil
	}
	if stoppedOnGreater || trailingMismatch {
		return nil
	}
	// Either nothing on this page matched or exceeded V (V may live in
	// the right-most child), or a match run reached the end of the
	// page's cells without a mismatch terminating it (the run may
	// continue into the right-most child).
	return searchIndexPage(p, int(hdr.rightMostChild), target, out)
}

func bytesEqual(a, b []byte) bool {
	return string(a) == string(b)
}

// bytesCompare orders two byte strings lexicographically: <0, 0, >0.
func bytesCompare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
