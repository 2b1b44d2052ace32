package marker

// Marker is a location or reference occurrence found in a document.
type Marker struct {
	Kind     Kind
	Interval Interval
	UUID     string
}

// New builds a marker of the given kind over iv. The interval's current text
// must match the kind's grammar exactly.
func New(kind Kind, iv Interval) (Marker, error) {
	text := iv.Text()
	id, ok := kind.matchExact(text)
	if !ok {
		return Marker{}, &ValidationError{
			Err:    ErrNoMatch,
			Start:  iv.Start(),
			End:    iv.End(),
			Detail: kind.String() + " " + quoteShort(text),
		}
	}
	return Marker{Kind: kind, Interval: iv, UUID: id}, nil
}

// NewLocation builds a location marker over iv.
func NewLocation(iv Interval) (Marker, error) {
	return New(Location, iv)
}

// NewReference builds a reference marker over iv.
func NewReference(iv Interval) (Marker, error) {
	return New(Reference, iv)
}

// PartnerPattern returns the search pattern for this marker's partners:
// markers of the complementary kind that share its UUID.
func (m Marker) PartnerPattern() string {
	return m.Kind.Complement().PatternFor(m.UUID)
}

// Literal returns the canonical text of the marker.
func (m Marker) Literal() string {
	return m.Kind.Literal(m.UUID)
}

// Equal reports whether two markers have the same kind, UUID and range in the
// same document.
func (m Marker) Equal(o Marker) bool {
	if m.Kind != o.Kind || m.UUID != o.UUID {
		return false
	}
	if m.Interval.Start() != o.Interval.Start() || m.Interval.End() != o.Interval.End() {
		return false
	}
	a, b := m.Interval.Document(), o.Interval.Document()
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func quoteShort(s string) string {
	const limit = 60
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return "\"" + s + "\""
}
