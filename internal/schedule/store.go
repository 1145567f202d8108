package schedule

import (
	"time"

	"github.com/zintasclinic/booking-widget/internal/bookingapi"
)

// DaySummaryStore holds the day-level availability records for the
// currently displayed month. It is owned by the controller loop and is
// replaced wholesale whenever a month summary arrives; it carries no
// behavior beyond lookup.
type DaySummaryStore struct {
	year   int
	month  time.Month
	byDate map[string]bookingapi.DaySummary
}

func NewDaySummaryStore() *DaySummaryStore {
	return &DaySummaryStore{byDate: map[string]bookingapi.DaySummary{}}
}

// Replace swaps in the records for a freshly fetched month.
func (s *DaySummaryStore) Replace(year int, month time.Month, days []bookingapi.DaySummary) {
	s.year = year
	s.month = month
	s.byDate = make(map[string]bookingapi.DaySummary, len(days))
	for _, d := range days {
		s.byDate[d.Date] = d
	}
}

// Clear drops all records, e.g. after a failed month fetch. Stale data is
// never kept behind an error.
func (s *DaySummaryStore) Clear() {
	s.year = 0
	s.month = 0
	s.byDate = map[string]bookingapi.DaySummary{}
}

// Lookup returns the summary for a YYYY-MM-DD date, if the service reported
// one. Absent dates have unknown availability.
func (s *DaySummaryStore) Lookup(date string) (bookingapi.DaySummary, bool) {
	d, ok := s.byDate[date]
	return d, ok
}

// Month returns the year/month the store currently describes.
func (s *DaySummaryStore) Month() (int, time.Month) {
	return s.year, s.month
}

// Len returns the number of day records held.
func (s *DaySummaryStore) Len() int {
	return len(s.byDate)
}
