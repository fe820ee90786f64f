package world

import (
	"sync"

	roaring "github.com/RoaringBitmap/roaring/v2"
)

// tagRegistry assigns each tag name a monotonically increasing index on
// first registration; tags are never unregistered, matching the
// "indices are permanent" rule the wire format's sparse block encoding
// depends on.
type tagRegistry struct {
	mu      sync.Mutex
	indices map[string]uint32
	names   []string
}

var globalTags = &tagRegistry{indices: make(map[string]uint32)}

// RegisterTag returns name's index, assigning the next free one if this
// is the first time name has been seen.
func RegisterTag(name string) uint32 {
	globalTags.mu.Lock()
	defer globalTags.mu.Unlock()
	if idx, ok := globalTags.indices[name]; ok {
		return idx
	}
	idx := uint32(len(globalTags.names))
	globalTags.indices[name] = idx
	globalTags.names = append(globalTags.names, name)
	return idx
}

// TagName returns the name registered at idx, or "" if none.
func TagName(idx uint32) string {
	globalTags.mu.Lock()
	defer globalTags.mu.Unlock()
	if int(idx) >= len(globalTags.names) {
		return ""
	}
	return globalTags.names[idx]
}

// TagSet is a sparse bitset over registered tag indices, backed by a
// compressed roaring bitmap so sets like "every enemy" (index 3) and
// "every boss" (index 200) coexist without the dense-array storage a
// plain []uint64 would need to span both.
type TagSet struct {
	mu  sync.RWMutex
	bits *roaring.Bitmap
}

func NewTagSet() *TagSet {
	return &TagSet{bits: roaring.New()}
}

// Set marks tag as present.
func (s *TagSet) Set(tag uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bits.Add(tag)
}

// Remove clears tag.
func (s *TagSet) Remove(tag uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bits.Remove(tag)
}

// Contains reports whether tag is set.
func (s *TagSet) Contains(tag uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bits.Contains(tag)
}

// IsAnySet reports whether s and other share any set tag; it only
// scans blocks where both bitmaps have content, never materializing
// the full intersection.
func (s *TagSet) IsAnySet(other *TagSet) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	return s.bits.Intersects(other.bits)
}

// Union returns a new TagSet containing every tag set in s or other.
func (s *TagSet) Union(other *TagSet) *TagSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	return &TagSet{bits: roaring.Or(s.bits, other.bits)}
}

// Clone returns an independent copy of s.
func (s *TagSet) Clone() *TagSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &TagSet{bits: s.bits.Clone()}
}

// ToSlice returns every set tag index in ascending order.
func (s *TagSet) ToSlice() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bits.ToArray()
}

// Count returns the number of set tags.
func (s *TagSet) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.bits.GetCardinality())
}
