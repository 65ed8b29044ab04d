package memory

// cardSet is a set of card ids. The zero value is not usable; use newCardSet.
type cardSet map[int]struct{}

func newCardSet() cardSet {
	return make(cardSet, 2)
}

func (s cardSet) add(id int) {
	s[id] = struct{}{}
}

func (s cardSet) remove(ids ...int) {
	for _, id := range ids {
		delete(s, id)
	}
}

func (s cardSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s cardSet) clear() {
	clear(s)
}

// selection keeps the cards face-up in the current turn, in the order they
// were picked. It never holds more than two.
type selection struct {
	ids []int
}

func (s *selection) len() int {
	return len(s.ids)
}

func (s *selection) has(id int) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// add appends id; it reports false when the selection is already full.
func (s *selection) add(id int) bool {
	if len(s.ids) >= 2 {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// takePair drains a full selection into an immutable pair.
func (s *selection) takePair() (pair, bool) {
	if len(s.ids) != 2 {
		return pair{}, false
	}
	p := pair{first: s.ids[0], second: s.ids[1]}
	s.ids = s.ids[:0]
	return p, true
}

func (s *selection) clear() {
	s.ids = s.ids[:0]
}

type pair struct {
	first  int
	second int
}
