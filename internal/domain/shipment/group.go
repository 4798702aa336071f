package shipment

// Group is a non-empty, ordered list of records sharing one grouping key.
// The first member is the representative and supplies header fields.
type Group struct {
	Key     string
	Records []OrderRecord
}

// Representative returns the first record of the group.
func (g *Group) Representative() OrderRecord {
	if g == nil || len(g.Records) == 0 {
		return OrderRecord{}
	}
	return g.Records[0]
}

// Size returns the number of records in the group.
func (g *Group) Size() int {
	if g == nil {
		return 0
	}
	return len(g.Records)
}

// Grouping is the result of partitioning a batch of records.
type Grouping struct {
	// Keys lists group keys in first-seen order.
	Keys   []string
	Groups map[string]*Group
	// Dropped counts records that had no usable key.
	Dropped int
}

// Ordered returns the groups in first-seen order.
func (g Grouping) Ordered() []*Group {
	out := make([]*Group, 0, len(g.Keys))
	for _, k := range g.Keys {
		out = append(out, g.Groups[k])
	}
	return out
}

// Get returns the group for key.
func (g Grouping) Get(key string) (*Group, bool) {
	grp, ok := g.Groups[key]
	return grp, ok
}

// Len returns the number of groups.
func (g Grouping) Len() int {
	return len(g.Keys)
}

// GroupRecords partitions records by GroupKey, preserving input order.
// Records without a usable key are dropped and counted, never merged into
// a catch-all bucket.
func GroupRecords(records []OrderRecord) Grouping {
	out := Grouping{
		Keys:   make([]string, 0),
		Groups: make(map[string]*Group),
	}
	for _, r := range records {
		key, ok := r.GroupKey()
		if !ok {
			out.Dropped++
			continue
		}
		grp, exists := out.Groups[key]
		if !exists {
			grp = &Group{Key: key}
			out.Groups[key] = grp
			out.Keys = append(out.Keys, key)
		}
		grp.Records = append(grp.Records, r)
	}
	return out
}
