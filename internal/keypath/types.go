// internal/keypath/types.go
package keypath

// Segment represents a single component of a key path, e.g. `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a new path segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewSegmentWithIndex creates a new path segment that includes an index.
func NewSegmentWithIndex(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

// HasIndex returns true if the segment has an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Path is the structured representation of a key path.
type Path struct {
	Segments []Segment
}

// Head returns the first segment and the remaining path. The remaining path
// is nil when the receiver has a single segment.
func (p *Path) Head() (Segment, *Path) {
	if len(p.Segments) == 1 {
		return p.Segments[0], nil
	}
	return p.Segments[0], &Path{Segments: p.Segments[1:]}
}
