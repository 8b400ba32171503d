package entangled

// ReferenceMap owns all code blocks of one tangle session. It keeps three
// indices: the primary insertion-ordered id index, a name index, and the
// target-path registry. Maps are rebuilt fresh per session; blocks are never
// removed.
type ReferenceMap struct {
	order       []ReferenceID
	blocks      map[ReferenceID]*CodeBlock
	names       map[ReferenceName][]ReferenceID
	targets     map[string]ReferenceName
	targetOrder []string
	counters    map[ReferenceName]int
}

// NewReferenceMap creates an empty map.
func NewReferenceMap() *ReferenceMap {
	return &ReferenceMap{
		blocks:   map[ReferenceID]*CodeBlock{},
		names:    map[ReferenceName][]ReferenceID{},
		targets:  map[string]ReferenceName{},
		counters: map[ReferenceName]int{},
	}
}

// Insert adds a block, assigning the next ordinal for its name, and returns
// the assigned id. Two blocks may not claim the same target path under
// different names.
func (m *ReferenceMap) Insert(block *CodeBlock) (ReferenceID, error) {
	name := block.ID.Name
	id := ReferenceID{Name: name, Ordinal: m.counters[name]}

	if block.Target != "" {
		if prev, ok := m.targets[block.Target]; ok && prev != name {
			return ReferenceID{}, &ReferenceError{
				Name: name,
				Msg:  "target " + block.Target + " already composed by " + string(prev),
			}
		} else if !ok {
			m.targets[block.Target] = name
			m.targetOrder = append(m.targetOrder, block.Target)
		}
	}

	m.counters[name] = id.Ordinal + 1
	block.ID = id
	m.order = append(m.order, id)
	m.blocks[id] = block
	m.names[name] = append(m.names[name], id)
	return id, nil
}

// InsertWithID adds a block under a specific id (used when deriving a map
// whose blocks keep the ids of an existing one, as the pre-tangle hook pass
// does). The per-name counter is advanced past the ordinal.
func (m *ReferenceMap) InsertWithID(id ReferenceID, block *CodeBlock) {
	if id.Ordinal >= m.counters[id.Name] {
		m.counters[id.Name] = id.Ordinal + 1
	}
	if block.Target != "" {
		if _, ok := m.targets[block.Target]; !ok {
			m.targets[block.Target] = id.Name
			m.targetOrder = append(m.targetOrder, block.Target)
		}
	}
	block.ID = id
	m.order = append(m.order, id)
	m.blocks[id] = block
	m.names[id.Name] = append(m.names[id.Name], id)
}

// Get returns the block for id, or nil.
func (m *ReferenceMap) Get(id ReferenceID) *CodeBlock { return m.blocks[id] }

// ByName returns the ids sharing name, in insertion order.
func (m *ReferenceMap) ByName(name ReferenceName) []ReferenceID {
	return m.names[name]
}

// BlocksByName returns the blocks sharing name, in insertion order.
func (m *ReferenceMap) BlocksByName(name ReferenceName) []*CodeBlock {
	ids := m.names[name]
	out := make([]*CodeBlock, 0, len(ids))
	for _, id := range ids {
		if b := m.blocks[id]; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// ContainsName reports whether any block uses name.
func (m *ReferenceMap) ContainsName(name ReferenceName) bool {
	return len(m.names[name]) > 0
}

// Targets returns the registered output paths in first-seen order.
func (m *ReferenceMap) Targets() []string {
	return append([]string(nil), m.targetOrder...)
}

// TargetName returns the name composing the given output path.
func (m *ReferenceMap) TargetName(path string) (ReferenceName, bool) {
	n, ok := m.targets[path]
	return n, ok
}

// Blocks returns all blocks in insertion order.
func (m *ReferenceMap) Blocks() []*CodeBlock {
	out := make([]*CodeBlock, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.blocks[id])
	}
	return out
}

// Len returns the number of blocks.
func (m *ReferenceMap) Len() int { return len(m.order) }
