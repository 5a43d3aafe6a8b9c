package main

// predicate is the single equality filter the executor can push into a
// table scan: column name compared for byte-equality against a literal
// (with "id" special-cased to the cell's rowid).
type predicate struct {
	column  string
	literal []byte
}

func (pr *predicate) matches(rowid int64, columns []string, values []Value) bool {
	if pr == nil {
		return true
	}
	if pr.column == "id" {
		n, err := parseIntLiteral(string(pr.literal))
		return err == nil && n == rowid
	}
	for i, name := range columns {
		if name == pr.column {
			if i >= len(values) {
				return false
			}
			return values[i].equalsBytes(pr.literal)
		}
	}
	return false
}

func fmtInt(i int64) string {
	v := Value{Kind: KindInteger, Integer: i}
	return v.String()
}

// tableRow is a decoded row bound to its rowid, prior to projection.
type tableRow struct {
	rowid  int64
	values []Value
}

// scanTable performs a full, in-order traversal of a table B-tree rooted
// at rootPage, applying an optional equality filter during the scan. It
// uses an explicit page-number stack rather than recursion so traversal
// depth never grows the Go call stack.
func scanTable(p *pager, rootPage int, columns []string, filter *predicate) ([]tableRow, error) {
	var rows []tableRow
	type frame struct{ page int }
	stack := []frame{{rootPage}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		buf, err := p.readPage(f.page)
		if err != nil {
			return nil, err
		}
		hdrOffset := pageHeaderOffset(f.page)
		hdr, err := decodePageHeader(buf, hdrOffset)
		if err != nil {
			return nil, err
		}
		pointers, err := cellPointers(buf, hdrOffset+hdr.kind.headerLen(), hdr.cellCount)
		if err != nil {
			return nil, err
		}

		switch hdr.kind {
		case kindLeafTable:
			for _, ptr := range pointers {
				offset := int(ptr)
				_, n, err := readVarint(buf, offset)
				if err != nil {
					return nil, err
				}
				offset += n
				rowid, n, err := readVarint(buf, offset)
				if err != nil {
					return nil, err
				}
				offset += n
				values, _, err := decodeRecord(buf, offset, len(columns))
				if err != nil {
					return nil, err
				}
				if filter.matches(int64(rowid), columns, values) {
					rows = append(rows, tableRow{rowid: int64(rowid), values: values})
				}
			}
		case kindInteriorTable:
			// Push in reverse so the leftmost child is processed (popped)
			// first, preserving in-order output.
			stack = append(stack, frame{int(hdr.rightMostChild)})
			for i := len(pointers) - 1; i >= 0; i-- {
				offset := int(pointers[i])
				if offset+4 > len(buf) {
					return nil, errorf("scanTable", Malformed, "interior cell truncated")
				}
				leftChild := beUint32(buf[offset : offset+4])
				stack = append(stack, frame{int(leftChild)})
			}
		default:
			return nil, errorf("scanTable", Malformed, "unexpected page type for table tree")
		}
	}
	return rows, nil
}

// lookupRowid finds the single row with the given rowid, using the
// invariant that an interior cell's key is an upper bound on its left
// subtree: descend into the first cell whose key is >= target, else the
// right-most child. Uses an explicit loop (bounded by tree height)
// instead of recursion.
func lookupRowid(p *pager, rootPage int, target int64, numCols int) (tableRow, bool, error) {
	page := rootPage
	for {
		buf, err := p.readPage(page)
		if err != nil {
			return tableRow{}, false, err
		}
		hdrOffset := pageHeaderOffset(page)
		hdr, err := decodePageHeader(buf, hdrOffset)
		if err != nil {
			return tableRow{}, false, err
		}
		pointers, err := cellPointers(buf, hdrOffset+hdr.kind.headerLen(), hdr.cellCount)
		if err != nil {
			return tableRow{}, false, err
		}

		if hdr.kind == kindLeafTable {
			for _, ptr := range pointers {
				offset := int(ptr)
				_, n, err := readVarint(buf, offset)
				if err != nil {
					return tableRow{}, false, err
				}
				offset += n
				rowid, n, err := readVarint(buf, offset)
				if err != nil {
					return tableRow{}, false, err
				}
				if int64(rowid) == target {
					offset += n
					values, _, err := decodeRecord(buf, offset, numCols)
					if err != nil {
						return tableRow{}, false, err
					}
					return tableRow{rowid: int64(rowid), values: values}, true, nil
				}
			}
			return tableRow{}, false, nil
		}

		if hdr.kind != kindInteriorTable {
			return tableRow{}, false, errorf("lookupRowid", Malformed, "unexpected page type for table tree")
		}

		next := int(hdr.rightMostChild)
		for _, ptr := range pointers {
			offset := int(ptr)
			if offset+4 > len(buf) {
				return tableRow{}, false, errorf("lookupRowid", Malformed, "interior cell truncated")
			}
			leftChild := beUint32(buf[offset : offset+4])
			key, _, err := readVarint(buf, offset+4)
			if err != nil {
				return tableRow{}, false, err
			}
			if int64(key) >= target {
				next = int(leftChild)
				break
			}
		}
		page = next
	}
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
