package vault

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LegacySeparator splits the fields of the old line-per-record text format.
const LegacySeparator = " | "

// LegacyLineError reports a line of a legacy file that is not a valid record.
type LegacyLineError struct {
	Line   int
	Reason string
}

func (e *LegacyLineError) Error() string {
	return fmt.Sprintf("legacy line %d: %s", e.Line, e.Reason)
}

// ParseLegacy reads records in the old append-only format, one
// "website | username | password" line each. The password is everything
// after the second separator. Blank lines are skipped. Duplicate websites are
// returned in file order.
func ParseLegacy(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, LegacySeparator, 3)
		if len(parts) != 3 {
			return nil, &LegacyLineError{Line: lineNo, Reason: "expected 3 fields separated by \" | \""}
		}
		if err := Validate(parts[0], parts[1], parts[2]); err != nil {
			return nil, &LegacyLineError{Line: lineNo, Reason: err.Error()}
		}
		entries = append(entries, Entry{
			Website: parts[0],
			Record:  Record{Identity: parts[1], Secret: parts[2]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading legacy file: %w", err)
	}
	return entries, nil
}

// ImportLegacy parses a legacy file and merges its records into store in a
// single write, so the last line for a website wins. It returns the number of
// lines imported. Nothing is written if any line is invalid.
func ImportLegacy(store Store, r io.Reader) (int, error) {
	entries, err := ParseLegacy(r)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := store.Merge(entries); err != nil {
		return 0, fmt.Errorf("merging legacy records: %w", err)
	}
	return len(entries), nil
}
