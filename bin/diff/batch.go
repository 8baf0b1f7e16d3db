package main

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/xerrors"
)

type pair struct {
	Before string
	After  string
	Output string
}

// readBatch reads one "before after [output]" triple per line. Blank lines and
// lines starting with # are skipped.
func readBatch(r io.Reader) ([]pair, error) {
	var pairs []pair

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch len(fields) {
		case 2:
			pairs = append(pairs, pair{Before: fields[0], After: fields[1]})
		case 3:
			pairs = append(pairs, pair{Before: fields[0], After: fields[1], Output: fields[2]})
		default:
			return nil, xerrors.Errorf("line %d: want 2 or 3 fields, got %d", lineNumber, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("failed to read batch: %w", err)
	}

	return pairs, nil
}

// checkDestinations rejects batches where two comparisons would write the
// same file. destination maps a pair to the path it writes, "" for none.
func checkDestinations(pairs []pair, destination func(pair) string) error {
	seen := make(map[string]int, len(pairs))
	for i, p := range pairs {
		path := destination(p)
		if path == "" {
			continue
		}
		if j, ok := seen[path]; ok {
			return xerrors.Errorf("entries %d and %d both write %s", j+1, i+1, path)
		}
		seen[path] = i
	}
	return nil
}
