package selection

import "github.com/UnknownOlympus/icarus/internal/models"

// State tracks which flight, if any, is currently chosen. The selection is keyed by
// flight ID, so it survives the wholesale replacement of the FlightSet on every fetch.
type State struct {
	id       string
	selected bool
}

// Select replaces any prior selection unconditionally.
func (s *State) Select(id string) {
	s.id = id
	s.selected = true
}

// Clear resets the selection to none.
func (s *State) Clear() {
	s.id = ""
	s.selected = false
}

// SelectedID returns the selected flight ID, if any.
func (s *State) SelectedID() (string, bool) {
	return s.id, s.selected
}

// Resolve looks the selected ID up in set. It reports false when nothing is selected or when
// the selected flight is no longer in set; callers treat the latter as an implicit close.
func (s *State) Resolve(set models.FlightSet) (models.FlightRecord, bool) {
	if !s.selected {
		return models.FlightRecord{}, false
	}

	return set.Find(s.id)
}
