package schedule

import "testing"

func TestSelectorSingleSelection(t *testing.T) {
	s := NewSlotSelector()
	s.Render([]string{"09:00 AM", "10:00 AM", "11:00 AM"})

	if !s.Select("09:00 AM") {
		t.Fatal("expected select to succeed")
	}
	if !s.Select("10:00 AM") {
		t.Fatal("expected second select to succeed")
	}

	selected := 0
	for _, p := range s.Pills() {
		if p.Selected {
			selected++
			if p.Label != "10:00 AM" {
				t.Fatalf("wrong pill selected: %s", p.Label)
			}
		}
	}
	if selected != 1 {
		t.Fatalf("expected exactly one selected pill, got %d", selected)
	}
	if slot, ok := s.Selected(); !ok || slot != "10:00 AM" {
		t.Fatalf("Selected() = %q, %v", slot, ok)
	}
}

func TestSelectorUnknownLabel(t *testing.T) {
	s := NewSlotSelector()
	s.Render([]string{"09:00 AM"})
	if s.Select("09:00 PM") {
		t.Fatal("expected exact-label match only")
	}
	if _, ok := s.Selected(); ok {
		t.Fatal("nothing should be selected")
	}
}

func TestSelectorRerenderClearsSelection(t *testing.T) {
	s := NewSlotSelector()
	s.Render([]string{"09:00 AM", "10:00 AM"})
	s.Select("09:00 AM")

	// Fresh fetch re-renders; the same label re-appearing does not keep
	// the old selection.
	s.Render([]string{"09:00 AM", "02:00 PM"})
	if _, ok := s.Selected(); ok {
		t.Fatal("re-render must clear selection")
	}
	for _, p := range s.Pills() {
		if p.Selected {
			t.Fatalf("pill %s should not be selected after re-render", p.Label)
		}
	}
}
