package core

// MaxTags is the size of the tag universe. Tag indices are 1-based up to
// MaxTags; masks use one bit per tag.
const MaxTags = 32

// Tag is a bitmask over the workspace tag universe. A window may carry
// several tags at once; a display shows the union of its visible tags.
type Tag uint32

// TagFromIndex returns the single-tag mask for a 1-based tag number.
// Index validity (1..MaxTags) is checked at the command boundary, not here.
func TagFromIndex(n uint) Tag {
	return Tag(1) << (n - 1)
}

// Intersects reports whether the two masks share any tag.
func (t Tag) Intersects(other Tag) bool {
	return t&other != 0
}

// Union returns the combined mask.
func (t Tag) Union(other Tag) Tag {
	return t | other
}

// Toggle flips every tag of other in t.
func (t Tag) Toggle(other Tag) Tag {
	return t ^ other
}

// IsEmpty reports whether no tag is set.
func (t Tag) IsEmpty() bool {
	return t == 0
}

// FirstIndex returns the 1-based index of the lowest set tag, or 0 when the
// mask is empty. Used to pick the layout slot for a multi-tag view.
func (t Tag) FirstIndex() uint {
	if t == 0 {
		return 0
	}
	n := uint(1)
	for t&1 == 0 {
		t >>= 1
		n++
	}
	return n
}
