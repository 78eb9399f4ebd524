package comment

// Collection holds the three independently fetched comment lists.
type Collection struct {
	Discussion []Discussion
	Reviews    []Review
	Inline     []Inline
}

// Total counts the raw comments across all three lists.
func (c *Collection) Total() int {
	return len(c.Discussion) + len(c.Reviews) + len(c.Inline)
}

// All flattens the collection: discussion, then reviews, then inline.
func (c *Collection) All() []Comment {
	out := make([]Comment, 0, c.Total())
	for _, d := range c.Discussion {
		out = append(out, d)
	}
	for _, r := range c.Reviews {
		out = append(out, r)
	}
	for _, i := range c.Inline {
		out = append(out, i)
	}
	return out
}

// Grouped is All with inline comments sharing a path and effective line
// collapsed into a single InlineGroup. A group takes the position of its
// first member; everything else keeps its relative order.
func (c *Collection) Grouped() []Comment {
	out := make([]Comment, 0, c.Total())
	for _, d := range c.Discussion {
		out = append(out, d)
	}
	for _, r := range c.Reviews {
		out = append(out, r)
	}
	return append(out, GroupInline(c.Inline)...)
}

type locationKey struct {
	path    string
	line    int
	hasLine bool
}

func keyOf(c Inline) locationKey {
	k := locationKey{path: c.Path}
	if l := c.EffectiveLine(); l != nil {
		k.line = *l
		k.hasLine = true
	}
	return k
}

// GroupInline groups inline comments by location. Locations with a single
// comment stay as a plain Inline.
func GroupInline(comments []Inline) []Comment {
	var order []locationKey
	members := make(map[locationKey][]Inline)
	for _, c := range comments {
		k := keyOf(c)
		if _, ok := members[k]; !ok {
			order = append(order, k)
		}
		members[k] = append(members[k], c)
	}

	out := make([]Comment, 0, len(order))
	for _, k := range order {
		m := members[k]
		if len(m) == 1 {
			out = append(out, m[0])
			continue
		}
		out = append(out, InlineGroup{
			Path:     k.path,
			Line:     m[0].EffectiveLine(),
			Comments: m,
		})
	}
	return out
}
