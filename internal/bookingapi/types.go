package bookingapi

// DaySummary is the aggregate availability for one calendar date within a
// month. Dates are YYYY-MM-DD strings; the service returns a sparse set, so
// days without a record have unknown availability.
type DaySummary struct {
	Date           string `json:"date"`
	AvailableSlots int    `json:"availableSlots"`
}

// BookingRequest is the payload submitted to the booking endpoint. Name and
// email are required; phone and reason may be empty.
type BookingRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Reason string `json:"reason"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

// BookingResult is the outcome of a booking submission.
type BookingResult struct {
	Success   bool   `json:"success"`
	BookingID string `json:"bookingId"`
	Error     string `json:"error,omitempty"`
}

type slotsResponse struct {
	AvailableSlots []string `json:"availableSlots"`
}

type monthSummaryResponse struct {
	Days []DaySummary `json:"days"`
}
