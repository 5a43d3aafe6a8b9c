package main

import (
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// projectionKind tags the three shapes of projection the restricted
// grammar this front-end recognizes.
type projectionKind uint8

const (
	projectCount projectionKind = iota
	projectColumn
	projectColumnList
)

// queryPlan is the small plan the front-end hands the executor: a
// target table, a projection, and at most one equality predicate.
type queryPlan struct {
	table      string
	projection projectionKind
	columns    []string
	where      *predicate
}

// parseSelect tokenizes a SELECT statement with github.com/xwb1989/sqlparser
// and recognizes only a handful of AST shapes: COUNT(*), a
// bare column, or a comma-separated column list as the projection; a
// single table in FROM; and at most one `col = literal` predicate in
// WHERE. Every other shape (joins, OR, functions other than COUNT,
// multiple predicates) is rejected with ParseError, even though the
// underlying library can parse far more than this core exposes.
func parseSelect(sql string) (*queryPlan, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, newError("parseSelect", ParseError, err)
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errorf("parseSelect", ParseError, "only SELECT statements are supported")
	}

	table, err := extractTableName(sel)
	if err != nil {
		return nil, err
	}

	plan := &queryPlan{table: table}
	if err := extractProjection(sel, plan); err != nil {
		return nil, err
	}
	if err := extractWhere(sel, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func extractTableName(sel *sqlparser.Select) (string, error) {
	if len(sel.From) != 1 {
		return "", errorf("extractTableName", ParseError, "exactly one table is required in FROM")
	}
	aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", errorf("extractTableName", ParseError, "unsupported FROM expression")
	}
	name, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return "", errorf("extractTableName", ParseError, "unsupported FROM expression")
	}
	return name.Name.String(), nil
}

func extractProjection(sel *sqlparser.Select, plan *queryPlan) error {
	if len(sel.SelectExprs) == 1 {
		if fn, ok := isCountStar(sel.SelectExprs[0]); ok && fn {
			plan.projection = projectCount
			return nil
		}
	}

	var columns []string
	for _, expr := range sel.SelectExprs {
		aliased, ok := expr.(*sqlparser.AliasedExpr)
		if !ok {
			return errorf("extractProjection", ParseError, "unsupported select expression %T", expr)
		}
		col, ok := aliased.Expr.(*sqlparser.ColName)
		if !ok {
			return errorf("extractProjection", ParseError, "unsupported select expression %T", aliased.Expr)
		}
		columns = append(columns, col.Name.String())
	}
	if len(columns) == 0 {
		return errorf("extractProjection", ParseError, "no columns in projection")
	}
	plan.columns = columns
	if len(columns) == 1 {
		plan.projection = projectColumn
	} else {
		plan.projection = projectColumnList
	}
	return nil
}

func isCountStar(expr sqlparser.SelectExpr) (isCount bool, ok bool) {
	aliased, isAliased := expr.(*sqlparser.AliasedExpr)
	if !isAliased {
		return false, false
	}
	fn, isFn := aliased.Expr.(*sqlparser.FuncExpr)
	if !isFn {
		return false, false
	}
	if !strings.EqualFold(fn.Name.String(), "count") {
		return false, false
	}
	if len(fn.Exprs) != 1 {
		return false, false
	}
	_, isStar := fn.Exprs[0].(*sqlparser.StarExpr)
	return true, isStar
}

func extractWhere(sel *sqlparser.Select, plan *queryPlan) error {
	if sel.Where == nil {
		return nil
	}
	comp, ok := sel.Where.Expr.(*sqlparser.ComparisonExpr)
	if !ok {
		return errorf("extractWhere", ParseError, "only a single col = literal predicate is supported")
	}
	if comp.Operator != sqlparser.EqualStr {
		return errorf("extractWhere", ParseError, "only the = operator is supported")
	}
	col, ok := comp.Left.(*sqlparser.ColName)
	if !ok {
		return errorf("extractWhere", ParseError, "left side of WHERE must be a column")
	}
	sqlVal, ok := comp.Right.(*sqlparser.SQLVal)
	if !ok {
		return errorf("extractWhere", ParseError, "right side of WHERE must be a literal")
	}
	plan.where = &predicate{column: col.Name.String(), literal: stripQuotes(sqlVal)}
	return nil
}

// stripQuotes renders a literal's bytes the way comparisons against column
// values expect: sqlparser already removes the surrounding quote pair for
// string literals, and integer literals pass through as their decimal
// text.
func stripQuotes(v *sqlparser.SQLVal) []byte {
	switch v.Type {
	case sqlparser.StrVal:
		return v.Val
	case sqlparser.IntVal:
		return v.Val
	default:
		return v.Val
	}
}

// looksLikeSelect reports whether a raw command should be routed through
// the SQL front-end instead of being treated as a dot-command.
func looksLikeSelect(command string) bool {
	trimmed := strings.TrimSpace(command)
	return len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "select")
}

// parseIntLiteral parses the decimal text of an integer literal as used
// for the id pseudo-column. Index lookups compare the literal's bytes
// directly and do not parse it.
func parseIntLiteral(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
