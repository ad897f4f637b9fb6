// Package manifest records the outcome of every download job of a run.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/storage"
)

// Entry is a successful download. Failed jobs are stored as nil and
// serialised as null.
type Entry struct {
	URL     string `json:"url"`
	Keyword string `json:"keyword"`
	Index   int64  `json:"index"`
}

// Manifest is the document written at the end of a run.
type Manifest struct {
	Images []*Entry `json:"images"`
}

// Builder collects job results keyed by sequence index. It is not safe for
// concurrent use; results are added after the pool has been drained.
type Builder struct {
	results map[int64]*Entry
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{results: make(map[int64]*Entry)}
}

// Add records the result for index. A nil entry marks a failed job.
func (b *Builder) Add(index int64, entry *Entry) error {
	if index < 0 {
		return errs.Newf(errs.ErrorTypeInvalidInput, "negative sequence index %d", index)
	}
	if _, dup := b.results[index]; dup {
		return errs.Newf(errs.ErrorTypeInvalidInput, "duplicate result for sequence index %d", index)
	}
	if entry != nil && entry.Index != index {
		return errs.Newf(errs.ErrorTypeInvalidInput, "entry index %d recorded under %d", entry.Index, index)
	}
	b.results[index] = entry
	return nil
}

// Len returns the number of recorded results.
func (b *Builder) Len() int {
	return len(b.results)
}

// Build returns the manifest ordered by sequence index.
func (b *Builder) Build() *Manifest {
	indices := make([]int64, 0, len(b.results))
	for idx := range b.results {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	m := &Manifest{Images: make([]*Entry, 0, len(indices))}
	for _, idx := range indices {
		m.Images = append(m.Images, b.results[idx])
	}
	return m
}

// Encode writes m as indented JSON.
func (m *Manifest) Encode(w io.Writer) error {
	if m.Images == nil {
		m = &Manifest{Images: []*Entry{}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Write serialises m to path atomically.
func Write(path string, m *Manifest) error {
	return storage.WriteAtomic(path, m.Encode)
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to read manifest")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, err, fmt.Sprintf("manifest %s is not valid JSON", path))
	}
	if m.Images == nil {
		m.Images = []*Entry{}
	}
	return &m, nil
}

// Stats summarises a manifest.
type Stats struct {
	Total      int
	Succeeded  int
	Failed     int
	PerKeyword map[string]int
}

// Stats counts successes, failures and successes per keyword.
func (m *Manifest) Stats() Stats {
	s := Stats{Total: len(m.Images), PerKeyword: make(map[string]int)}
	for _, e := range m.Images {
		if e == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.PerKeyword[e.Keyword]++
	}
	return s
}
