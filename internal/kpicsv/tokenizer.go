package kpicsv

import "strings"

// ParseRows splits raw CSV text into rows of string fields.
//
// Single left-to-right scan with one character of lookahead. A double quote
// toggles quoted mode unless followed by another quote, which is an escaped
// literal quote. Commas split fields only outside quotes; CR, CRLF or LF
// outside quotes ends a row. Rows whose fields are all empty are dropped.
// Unterminated quotes consume to end of input without erroring; this parser
// is deliberately permissive, not RFC-strict, because spreadsheet exports
// in the wild are not either.
func ParseRows(text string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder

	inQuotes := false
	flushField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	flushRow := func() {
		flushField()
		if !rowIsBlank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); {
		c := text[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			field.WriteByte(c)
			i++
			continue
		}
		switch c {
		case '"':
			inQuotes = true
			i++
		case ',':
			flushField()
			i++
		case '\r':
			flushRow()
			if i+1 < len(text) && text[i+1] == '\n' {
				i += 2
			} else {
				i++
			}
		case '\n':
			flushRow()
			i++
		default:
			field.WriteByte(c)
			i++
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}
	return rows
}

func rowIsBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
