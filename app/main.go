package main

import (
	"context"
	"fmt"
	"os"
)

// Usage: <database_path> <command>
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: <database_path> <command>")
		os.Exit(1)
	}
	databaseFilePath := os.Args[1]
	command := os.Args[2]

	if !looksLikeSelect(command) && command != ".dbinfo" && command != ".tables" {
		fmt.Printf("Invalid command: %s\n", command)
		os.Exit(1)
	}

	opts := optionsFromEnvironment()
	if err := run(databaseFilePath, command, os.Stdout, opts...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// optionsFromEnvironment builds the Option set main passes to run. The
// CLI has no flag parser of its own, so SQLITE_READER_STRICT is the one
// escape hatch a caller has for asking for ValidationStrict instead of
// the default ValidationBasic.
func optionsFromEnvironment() []Option {
	var opts []Option
	if os.Getenv("SQLITE_READER_STRICT") != "" {
		opts = append(opts, WithValidation(ValidationStrict))
	}
	return opts
}

func run(path, command string, stdout *os.File, opts ...Option) error {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	rm := newResourceManager()
	defer rm.Close()

	f, err := os.Open(path)
	if err != nil {
		return newError("run", Io, err)
	}
	rm.add(f)

	headerBuf := make([]byte, fileHeaderSize)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		return newError("run", Io, err)
	}
	dbHeader, err := decodeDatabaseHeader(headerBuf, cfg)
	if err != nil {
		return err
	}

	p := newPager(f, dbHeader.pageSize, cfg)
	cat, err := loadCatalog(p)
	if err != nil {
		return err
	}

	formatter := NewConsoleFormatter(stdout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CommandTimeout)
	defer cancel()

	switch {
	case command == ".dbinfo":
		fmt.Fprintln(os.Stderr, "Logs from your program will appear here!")
		formatter.Write(formatter.FormatDBInfo(dbHeader.pageSize, cat.CountTables()))
		return nil
	case command == ".tables":
		formatter.Write(formatter.FormatTableList(cat.ListTables()))
		return nil
	case looksLikeSelect(command):
		plan, err := parseSelect(command)
		if err != nil {
			return err
		}
		result, err := execute(ctx, p, cat, plan)
		if err != nil {
			return err
		}
		formatter.Write(formatter.FormatResult(result))
		return nil
	default:
		return errorf("run", ParseError, "invalid command: %s", command)
	}
}
