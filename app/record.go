package main

import "fmt"

// ValueKind tags the four shapes a decoded column value can take.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindInteger
	KindText
	KindBlob
)

// Value is a decoded column value. Integer holds the numeric value when
// Kind is KindInteger; Raw holds the column's body bytes for text and
// blob columns (and is nil for NULL and integer columns).
type Value struct {
	Kind    ValueKind
	Integer int64
	Raw     []byte
}

func nullValue() Value           { return Value{Kind: KindNull} }
func intValue(i int64) Value     { return Value{Kind: KindInteger, Integer: i} }
func textValue(b []byte) Value   { return Value{Kind: KindText, Raw: b} }
func blobValue(b []byte) Value   { return Value{Kind: KindBlob, Raw: b} }

// String renders a value the way the console formatter emits it: empty
// for NULL, decimal digits for integers, raw bytes as characters for text
// and blobs.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInteger:
		return fmt.Sprintf("%d", v.Integer)
	default:
		return string(v.Raw)
	}
}

// equalsBytes reports whether a value's textual content matches b exactly.
// NULL never equals anything.
func (v Value) equalsBytes(b []byte) bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindInteger:
		return fmt.Sprintf("%d", v.Integer) == string(b)
	default:
		return string(v.Raw) == string(b)
	}
}

// serialTypeBodySize returns the number of body bytes a serial type
// occupies, or -1 for a type this core does not decode (5, 6, 7, and even
// types >=12 are out of the supported subset).
func serialTypeBodySize(serialType uint64) int {
	switch serialType {
	case 0, 8, 9:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 3
	case 4:
		return 4
	default:
		if serialType >= 13 && serialType%2 == 1 {
			return int((serialType - 13) / 2)
		}
		return -1
	}
}

// decodeSerialValue consumes a value body of the size serialTypeBodySize
// reports and produces its typed Value.
func decodeSerialValue(serialType uint64, body []byte) (Value, error) {
	switch serialType {
	case 0:
		return nullValue(), nil
	case 8:
		return intValue(0), nil
	case 9:
		return intValue(1), nil
	case 1, 2, 3, 4:
		n := len(body)
		var v int64
		if body[0]&0x80 != 0 {
			v = -1 // sign-extend
		}
		for _, b := range body {
			v = (v << 8) | int64(b)
		}
		_ = n
		return intValue(v), nil
	default:
		if serialType >= 13 && serialType%2 == 1 {
			return textValue(body), nil
		}
		return Value{}, errorf("decodeSerialValue", UnsupportedSerialType, "serial type %d is not supported", serialType)
	}
}

// decodeRecord decodes a record of numCols columns starting at offset in
// data: read the self-inclusive header size, read numCols serial-type
// varints, reposition to start+header_size (discarding any header slack),
// then decode each column body in order. It returns the decoded values
// and the offset immediately past the record.
func decodeRecord(data []byte, offset int, numCols int) ([]Value, int, error) {
	start := offset
	headerSize, n, err := readVarint(data, offset)
	if err != nil {
		return nil, 0, err
	}
	cursor := offset + n

	serialTypes := make([]uint64, 0, numCols)
	for len(serialTypes) < numCols {
		if cursor >= start+int(headerSize) {
			return nil, 0, errorf("decodeRecord", Malformed, "record header too short for %d columns", numCols)
		}
		st, n, err := readVarint(data, cursor)
		if err != nil {
			return nil, 0, err
		}
		serialTypes = append(serialTypes, st)
		cursor += n
	}

	// Trust the declared header size; any slack between the last serial
	// type and the declared end is padding, not an error.
	bodyCursor := start + int(headerSize)
	if bodyCursor < cursor || bodyCursor > len(data) {
		return nil, 0, errorf("decodeRecord", Malformed, "header_size %d places body cursor out of range", headerSize)
	}

	values := make([]Value, numCols)
	for i, st := range serialTypes {
		size := serialTypeBodySize(st)
		if size < 0 {
			return nil, 0, errorf("decodeRecord", UnsupportedSerialType, "column %d has serial type %d", i, st)
		}
		if bodyCursor+size > len(data) {
			return nil, 0, errorf("decodeRecord", Malformed, "column %d body overflows available payload", i)
		}
		val, err := decodeSerialValue(st, data[bodyCursor:bodyCursor+size])
		if err != nil {
			return nil, 0, err
		}
		values[i] = val
		bodyCursor += size
	}

	return values, bodyCursor, nil
}
