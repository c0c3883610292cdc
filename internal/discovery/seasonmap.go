// seasonmap.go: insertion ordered name to season mapping
package discovery

// SeasonMap maps canonical entity names to an optional season number.
// Iteration follows first insertion order; re-inserting a name updates its
// season in place.
type SeasonMap struct {
	order   []string
	seasons map[string]*int
}

// NewSeasonMap returns an empty map
func NewSeasonMap() *SeasonMap {
	return &SeasonMap{seasons: make(map[string]*int)}
}

// Put records name with a known season, overwriting any previous season
func (m *SeasonMap) Put(name string, season int) {
	m.put(name, &season)
}

// PutUnknown records name without a season
func (m *SeasonMap) PutUnknown(name string) {
	m.put(name, nil)
}

func (m *SeasonMap) put(name string, season *int) {
	if _, ok := m.seasons[name]; !ok {
		m.order = append(m.order, name)
	}
	m.seasons[name] = season
}

// Season returns the season of name, if one is known
func (m *SeasonMap) Season(name string) (int, bool) {
	if m == nil {
		return 0, false
	}
	s, ok := m.seasons[name]
	if !ok || s == nil {
		return 0, false
	}
	return *s, true
}

// SeasonPtr returns a copy of the season of name, or nil when absent
func (m *SeasonMap) SeasonPtr(name string) *int {
	s, ok := m.Season(name)
	if !ok {
		return nil
	}
	return &s
}

// Contains reports whether name was discovered
func (m *SeasonMap) Contains(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.seasons[name]
	return ok
}

// Names returns a copy of the names in insertion order
func (m *SeasonMap) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}

// Len returns the number of distinct names
func (m *SeasonMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}
