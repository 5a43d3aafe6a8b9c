package main

import "strings"

// schemaEntry is one row of sqlite_schema.
type schemaEntry struct {
	typ      string
	name     string
	tblName  string
	rootPage int64
	sql      string
}

// tableInfo is what the catalog resolves a table name to.
type tableInfo struct {
	rootPage int
	columns  []string
}

// catalog is the materialized, read-only contents of sqlite_schema (page
// 1), built once per command.
type catalog struct {
	entries []schemaEntry
	indexes map[string]map[string]int // tblName -> column -> index rootpage
}

// loadCatalog reads page 1's leaf-table cells and decodes each as the
// 5-column sqlite_schema record (type, name, tbl_name, rootpage, sql).
func loadCatalog(p *pager) (*catalog, error) {
	buf, err := p.readPage(1)
	if err != nil {
		return nil, err
	}
	hdrOffset := pageHeaderOffset(1)
	hdr, err := decodePageHeader(buf, hdrOffset)
	if err != nil {
		return nil, err
	}
	if hdr.kind != kindLeafTable {
		return nil, errorf("loadCatalog", Malformed, "page 1 is not a leaf table page")
	}
	pointers, err := cellPointers(buf, hdrOffset+hdr.kind.headerLen(), hdr.cellCount)
	if err != nil {
		return nil, err
	}

	c := &catalog{indexes: make(map[string]map[string]int)}
	for _, ptr := range pointers {
		offset := int(ptr)
		_, n, err := readVarint(buf, offset) // payload size, unused for in-page records
		if err != nil {
			return nil, err
		}
		offset += n
		rowid, n, err := readVarint(buf, offset)
		if err != nil {
			return nil, err
		}
		offset += n
		values, _, err := decodeRecord(buf, offset, 5)
		if err != nil {
			return nil, err
		}
		entry := schemaEntry{
			typ:     string(values[0].Raw),
			name:    string(values[1].Raw),
			tblName: string(values[2].Raw),
			sql:     string(values[4].Raw),
		}
		if values[3].Kind == KindInteger {
			entry.rootPage = values[3].Integer
		}
		_ = rowid
		c.entries = append(c.entries, entry)

		if entry.typ == "index" && entry.sql != "" {
			if col := indexedColumn(entry.sql); col != "" {
				if c.indexes[entry.tblName] == nil {
					c.indexes[entry.tblName] = make(map[string]int)
				}
				c.indexes[entry.tblName][col] = int(entry.rootPage)
			}
		}
	}
	return c, nil
}

// CountTables returns the number of catalog entries whose type is "table".
func (c *catalog) CountTables() int {
	n := 0
	for _, e := range c.entries {
		if e.typ == "table" {
			n++
		}
	}
	return n
}

// ListTables returns tbl_name for every table entry except sqlite_sequence,
// in catalog order.
func (c *catalog) ListTables() []string {
	var out []string
	for _, e := range c.entries {
		if e.typ == "table" && e.tblName != "sqlite_sequence" {
			out = append(out, e.tblName)
		}
	}
	return out
}

// ResolveTable looks up a table's root page and column list.
func (c *catalog) ResolveTable(name string) (tableInfo, error) {
	for _, e := range c.entries {
		if e.typ == "table" && e.tblName == name {
			return tableInfo{rootPage: int(e.rootPage), columns: naiveColumnList(e.sql)}, nil
		}
	}
	return tableInfo{}, errorf("ResolveTable", UnknownTable, "no such table: %s", name)
}

// IndexRootPage reports the root page of an index over (table, column), if
// one exists.
func (c *catalog) IndexRootPage(table, column string) (int, bool) {
	cols, ok := c.indexes[table]
	if !ok {
		return 0, false
	}
	rp, ok := cols[column]
	return rp, ok
}

// naiveColumnList derives a table's column names from its CREATE TABLE
// statement by locating the substring between the first '(' and the last
// ')', splitting on every comma, and taking the first
// whitespace-delimited token of each piece. This is deliberately naive: it
// does not understand nested parentheses in type declarations, quoted
// identifiers, or comments. A tokenizer-based replacement is out of scope
// for this core.
func naiveColumnList(sql string) []string {
	open := strings.Index(sql, "(")
	close := strings.LastIndex(sql, ")")
	if open < 0 || close < 0 || close <= open {
		return nil
	}
	body := sql[open+1 : close]
	parts := strings.Split(body, ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		columns = append(columns, fields[0])
	}
	return columns
}

// recordColumns returns the subset of a table's declared columns that are
// actually stored in each row's record body. A column literally named
// "id" is treated as the rowid alias (see predicate.matches and
// projectRows) and occupies no record slot, so it must be excluded
// before its position is used as a decodeRecord column count or a
// row.values index.
func recordColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == "id" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// indexedColumn derives the column an index covers the same naive way:
// the substring between the outermost parentheses of its CREATE INDEX
// statement, stripped of whitespace.
func indexedColumn(sql string) string {
	open := strings.Index(sql, "(")
	close := strings.LastIndex(sql, ")")
	if open < 0 || close < 0 || close <= open {
		return ""
	}
	return strings.TrimSpace(sql[open+1 : close])
}
