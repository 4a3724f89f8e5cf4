package card

// LinkEntry is one anchor on the card. Order is significant and entries need
// not be unique.
type LinkEntry struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Metadata is everything a card displays.
type Metadata struct {
	Title       string      `json:"title"`
	Owner       string      `json:"owner"`
	Links       []LinkEntry `json:"links"`
	Description string      `json:"description"`
}

// New returns empty metadata holding a single blank link, the shape a fresh
// form starts with.
func New() Metadata {
	return Metadata{Links: []LinkEntry{{}}}
}

// Clone returns a deep copy so callers can never alias the link slice.
func (m Metadata) Clone() Metadata {
	out := m
	out.Links = make([]LinkEntry, len(m.Links))
	copy(out.Links, m.Links)
	return out
}
