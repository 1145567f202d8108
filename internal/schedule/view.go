package schedule

// CalendarView is the rendered month calendar. When Error is set the grid
// carries no day cells; the widget shows the inline error instead.
type CalendarView struct {
	Weekdays []string  `json:"weekdays"`
	Grid     MonthGrid `json:"grid"`
	Error    string    `json:"error,omitempty"`
}

// SlotsView is the rendered slot list for the active date. Empty is set
// when a fetch succeeded with zero slots, which the widget must present as
// a "no slots" affordance distinct from Error.
type SlotsView struct {
	Date    string     `json:"date"`
	Loading bool       `json:"loading"`
	Pills   []SlotPill `json:"pills"`
	Empty   bool       `json:"empty"`
	Error   string     `json:"error,omitempty"`
}

// FormView is the rendered booking form state.
type FormView struct {
	SelectedSlotDisplay string `json:"selectedSlotDisplay"`
	SubmitEnabled       bool   `json:"submitEnabled"`
	Submitting          bool   `json:"submitting"`
	SubmitLabel         string `json:"submitLabel"`
	Message             string `json:"message,omitempty"`
	MessageKind         string `json:"messageKind,omitempty"` // "error" or "success"
}

// View is the complete widget view model emitted after every state change.
type View struct {
	State    State        `json:"state"`
	Calendar CalendarView `json:"calendar"`
	Slots    SlotsView    `json:"slots"`
	Form     FormView     `json:"form"`
}
