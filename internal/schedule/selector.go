package schedule

// SlotPill is one selectable slot in the day view.
type SlotPill struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// SlotSelector renders a fetched slot list as selectable pills and enforces
// at most one selection. Re-rendering always clears the prior selection: a
// previously chosen slot does not survive a date change even if the same
// label re-appears.
type SlotSelector struct {
	pills    []SlotPill
	selected int // index into pills, -1 when nothing is chosen
}

func NewSlotSelector() *SlotSelector {
	return &SlotSelector{selected: -1}
}

// Render replaces the pill list with a freshly fetched slot list and clears
// any prior selection.
func (s *SlotSelector) Render(slots []string) {
	s.pills = make([]SlotPill, 0, len(slots))
	for _, slot := range slots {
		s.pills = append(s.pills, SlotPill{Label: slot})
	}
	s.selected = -1
}

// Select marks the pill with the given label as chosen, deselecting all
// others. Equality is exact label match. Returns false if no pill matches.
func (s *SlotSelector) Select(label string) bool {
	idx := -1
	for i := range s.pills {
		if s.pills[i].Label == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	for i := range s.pills {
		s.pills[i].Selected = i == idx
	}
	s.selected = idx
	return true
}

// Selected returns the currently chosen slot label, if any.
func (s *SlotSelector) Selected() (string, bool) {
	if s.selected < 0 || s.selected >= len(s.pills) {
		return "", false
	}
	return s.pills[s.selected].Label, true
}

// Pills returns a copy of the rendered pill list.
func (s *SlotSelector) Pills() []SlotPill {
	out := make([]SlotPill, len(s.pills))
	copy(out, s.pills)
	return out
}

// Clear drops both the pill list and the selection.
func (s *SlotSelector) Clear() {
	s.pills = nil
	s.selected = -1
}
