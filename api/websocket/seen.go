package websocket

const defaultSeenLimit = 1000

// seenSet remembers which anomaly identities a client has already received,
// so repeat snapshots of a persisting anomaly are not re-sent. Once the set
// grows past its limit it is cleared wholesale; a long-lived anomaly may then
// be delivered once more, which is preferable to unbounded growth.
type seenSet struct {
	ids   map[string]struct{}
	limit int
}

func newSeenSet(limit int) *seenSet {
	if limit <= 0 {
		limit = defaultSeenLimit
	}
	return &seenSet{
		ids:   make(map[string]struct{}),
		limit: limit,
	}
}

// add records the identity and reports whether it was new.
func (s *seenSet) add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}

	s.ids[id] = struct{}{}
	if len(s.ids) > s.limit {
		s.ids = make(map[string]struct{})
		s.ids[id] = struct{}{}
	}
	return true
}

func (s *seenSet) size() int {
	return len(s.ids)
}
