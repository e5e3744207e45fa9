package xlstyle

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type resolvedStyle struct {
	set    StyleSet
	handle int
}

// ResolverStats counts native styles created and cache hits.
type ResolverStats struct {
	Created int
	Hits    int
}

// Resolver deduplicates StyleSets against the native styles already created
// in one workbook. A Resolver belongs to a single export and is not safe for
// concurrent use.
type Resolver struct {
	file  *excelize.File
	arena map[uint64][]resolvedStyle
	stats ResolverStats
}

// NewResolver returns an empty resolver bound to f.
func NewResolver(f *excelize.File) *Resolver {
	return &Resolver{
		file:  f,
		arena: make(map[uint64][]resolvedStyle),
	}
}

// Resolve returns the native style id for s, creating it on first use.
// A nil style resolves to 0, the workbook default.
func (r *Resolver) Resolve(s *StyleSet) (int, error) {
	if s == nil {
		return 0, nil
	}

	h := s.Hash()
	for _, rs := range r.arena[h] {
		if rs.set.Equal(*s) {
			r.stats.Hits++
			return rs.handle, nil
		}
	}

	id, err := r.file.NewStyle(s.Native())
	if err != nil {
		return 0, fmt.Errorf("creating style %q: %w", s.Name, err)
	}
	r.arena[h] = append(r.arena[h], resolvedStyle{set: *s, handle: id})
	r.stats.Created++
	return id, nil
}

// Len returns the number of distinct styles resolved so far.
func (r *Resolver) Len() int {
	n := 0
	for _, b := range r.arena {
		n += len(b)
	}
	return n
}

func (r *Resolver) Stats() ResolverStats {
	return r.stats
}
