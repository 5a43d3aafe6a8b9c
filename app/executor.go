package main

import "context"

// queryResult is what the executor hands to the formatter: either a
// scalar count or a set of rendered row values, never both.
type queryResult struct {
	isCount bool
	count   int
	columns []string
	rows    [][]Value
}

// execute binds a parsed plan to the catalog and the B-tree traversals,
// preferring an index-driven lookup over a full scan whenever the
// predicate's column has a matching index.
func execute(ctx context.Context, p *pager, cat *catalog, plan *queryPlan) (*queryResult, error) {
	info, err := cat.ResolveTable(plan.table)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, newError("execute", Io, err)
	}

	columns := recordColumns(info.columns)
	rows, err := gatherRows(p, cat, info.rootPage, columns, plan)
	if err != nil {
		return nil, err
	}

	switch plan.projection {
	case projectCount:
		return &queryResult{isCount: true, count: len(rows)}, nil
	case projectColumn, projectColumnList:
		return projectRows(columns, rows, plan.columns)
	default:
		return nil, errorf("execute", ParseError, "unrecognized projection kind")
	}
}

// gatherRows runs either the index path or the full-scan path. columns
// must already have its "id" alias stripped (see recordColumns): it is
// used both as the decodeRecord column count and as the row.values
// index map, neither of which has a slot for "id".
func gatherRows(p *pager, cat *catalog, tableRoot int, columns []string, plan *queryPlan) ([]tableRow, error) {
	if plan.where != nil {
		if indexRoot, ok := cat.IndexRootPage(plan.table, plan.where.column); ok {
			rowids, err := searchIndex(p, indexRoot, plan.where.literal)
			if err != nil {
				return nil, err
			}
			rows := make([]tableRow, 0, len(rowids))
			for _, rowid := range rowids {
				row, found, err := lookupRowid(p, tableRoot, rowid, len(columns))
				if err != nil {
					return nil, err
				}
				if found {
					rows = append(rows, row)
				}
			}
			return rows, nil
		}
	}
	return scanTable(p, tableRoot, columns, plan.where)
}

// projectRows renders the requested columns, with "id" resolved from the
// row's rowid rather than from the decoded record body.
func projectRows(schemaColumns []string, rows []tableRow, want []string) (*queryResult, error) {
	indices := make([]int, len(want))
	isID := make([]bool, len(want))
	for i, name := range want {
		if name == "id" {
			isID[i] = true
			continue
		}
		idx := -1
		for j, col := range schemaColumns {
			if col == name {
				idx = j
				break
			}
		}
		if idx == -1 {
			return nil, errorf("projectRows", UnknownColumn, "no such column: %s", name)
		}
		indices[i] = idx
	}

	out := make([][]Value, 0, len(rows))
	for _, row := range rows {
		rendered := make([]Value, len(want))
		for i := range want {
			if isID[i] {
				rendered[i] = intValue(row.rowid)
			} else {
				rendered[i] = row.values[indices[i]]
			}
		}
		out = append(out, rendered)
	}
	return &queryResult{columns: want, rows: out}, nil
}
