package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// OutputFormatter renders a query result or dot-command output to a sink.
// The executor and CLI never call fmt.Println directly; they go through
// this interface so result rendering can be swapped or tested against an
// in-memory sink.
type OutputFormatter interface {
	FormatResult(result *queryResult) string
	FormatTableList(names []string) string
	FormatDBInfo(pageSize int, tableCount int) string
}

// ConsoleFormatter renders plain, pipe-delimited text matching sqlite3's
// own CLI output.
type ConsoleFormatter struct {
	w io.Writer
}

func NewConsoleFormatter(w io.Writer) *ConsoleFormatter {
	return &ConsoleFormatter{w: w}
}

func (cf *ConsoleFormatter) FormatResult(result *queryResult) string {
	if result.isCount {
		return strconv.Itoa(result.count) + "\n"
	}
	var b strings.Builder
	for _, row := range result.rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = v.String()
		}
		b.WriteString(strings.Join(parts, "|"))
		b.WriteByte('\n')
	}
	return b.String()
}

func (cf *ConsoleFormatter) FormatTableList(names []string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(' ')
	}
	b.WriteByte('\n')
	return b.String()
}

func (cf *ConsoleFormatter) FormatDBInfo(pageSize int, tableCount int) string {
	return fmt.Sprintf("database page size: %d\nnumber of tables: %d\n", pageSize, tableCount)
}

func (cf *ConsoleFormatter) Write(s string) {
	fmt.Fprint(cf.w, s)
}
