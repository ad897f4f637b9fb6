// Package keywords reads the search terms of a crawl.
//
// A keywords file is CSV. Every non-empty field of every row is one keyword,
// so both one-per-line files and single-row comma lists work. Order is
// preserved and duplicates are kept; deduplication is left to the caller.
package keywords

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	errs "flickrcrawler/pkg/errors"
)

// Read parses keywords from r.
func Read(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeInvalidInput, err, "malformed keywords file")
		}
		for _, field := range record {
			if kw := strings.TrimSpace(field); kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out, nil
}

// ReadFile parses the keywords file at path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeInvalidInput, err, "cannot open keywords file "+path)
	}
	defer f.Close()
	return Read(f)
}

// Merge appends the keywords loaded from path (if set) to explicit ones.
func Merge(explicit []string, path string) ([]string, error) {
	out := make([]string, 0, len(explicit))
	for _, kw := range explicit {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	if path == "" {
		return out, nil
	}
	fromFile, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return append(out, fromFile...), nil
}
