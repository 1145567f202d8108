package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintasclinic/booking-widget/internal/bookingapi"
	"github.com/zintasclinic/booking-widget/internal/schedule"
	"github.com/zintasclinic/booking-widget/pkg/logging"
)

type fakeBookingService struct {
	mu    sync.Mutex
	slots map[string][]string
}

func (f *fakeBookingService) GetSlots(_ context.Context, date string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[date], nil
}

func (f *fakeBookingService) GetMonthSummary(_ context.Context, year, month int) ([]bookingapi.DaySummary, error) {
	return nil, nil
}

func (f *fakeBookingService) CreateBooking(_ context.Context, req bookingapi.BookingRequest) (*bookingapi.BookingResult, error) {
	return &bookingapi.BookingResult{Success: true, BookingID: "B-1"}, nil
}

func newTestHandler() *Handler {
	svc := &fakeBookingService{slots: map[string][]string{}}
	svc.slots[time.Now().Format("2006-01-02")] = []string{"09:00 AM", "10:00 AM"}
	return NewHandler(svc, nil, logging.New("error"))
}

// pollView polls the view endpoint until the session reaches the wanted
// state or the deadline passes.
func pollView(t *testing.T, h *Handler, sessionID string, want schedule.State) schedule.View {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		req := httptest.NewRequest(http.MethodGet, "/widget/view?session="+sessionID, nil)
		rec := httptest.NewRecorder()
		h.HandleView(rec, req)
		if rec.Code == http.StatusOK {
			var v schedule.View
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
			if v.State == want {
				return v
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session %s never reached state %q", sessionID, want)
	return schedule.View{}
}

func postIntent(t *testing.T, h *Handler, msg InboundMessage) map[string]string {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/widget/intent", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleIntent(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleIntentStartsSession(t *testing.T) {
	h := newTestHandler()
	defer h.Close()

	today := time.Now().Format("2006-01-02")
	resp := postIntent(t, h, InboundMessage{Type: "select_date", Date: today})
	assert.Equal(t, "accepted", resp["status"])
	require.NotEmpty(t, resp["session_id"])

	view := pollView(t, h, resp["session_id"], schedule.StateSlotsReady)
	assert.Equal(t, today, view.Slots.Date)
	assert.Len(t, view.Slots.Pills, 2)
}

func TestHandleIntentReusesSession(t *testing.T) {
	h := newTestHandler()
	defer h.Close()

	today := time.Now().Format("2006-01-02")
	resp := postIntent(t, h, InboundMessage{Type: "select_date", Date: today})
	sessionID := resp["session_id"]
	pollView(t, h, sessionID, schedule.StateSlotsReady)

	resp2 := postIntent(t, h, InboundMessage{
		Type:      "select_slot",
		SessionID: sessionID,
		Slot:      "10:00 AM",
	})
	assert.Equal(t, sessionID, resp2["session_id"])

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		v := pollView(t, h, sessionID, schedule.StateSlotsReady)
		if v.Form.SubmitEnabled {
			assert.Contains(t, v.Form.SelectedSlotDisplay, "10:00 AM")
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("slot selection never reflected in view")
}

func TestHandleIntentRejectsBadInput(t *testing.T) {
	h := newTestHandler()
	defer h.Close()

	req := httptest.NewRequest(http.MethodPost, "/widget/intent", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.HandleIntent(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ := json.Marshal(InboundMessage{Type: "launch_missiles"})
	req = httptest.NewRequest(http.MethodPost, "/widget/intent", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h.HandleIntent(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleViewErrors(t *testing.T) {
	h := newTestHandler()
	defer h.Close()

	req := httptest.NewRequest(http.MethodGet, "/widget/view", nil)
	rec := httptest.NewRecorder()
	h.HandleView(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/widget/view?session=nope", nil)
	rec = httptest.NewRecorder()
	h.HandleView(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateSessionID(t *testing.T) {
	id1 := generateSessionID()
	id2 := generateSessionID()
	assert.NotEqual(t, id1, id2)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id1)
}

func TestIntentEventMapping(t *testing.T) {
	ev, ok := intentEvent(InboundMessage{Type: "select_date", Date: "2024-06-10"})
	require.True(t, ok)
	assert.Equal(t, schedule.LoadRequested{Date: "2024-06-10"}, ev)

	ev, ok = intentEvent(InboundMessage{Type: "calendar_click", Date: "2024-06-11"})
	require.True(t, ok)
	assert.Equal(t, schedule.CalendarDayClicked{Date: "2024-06-11"}, ev)

	ev, ok = intentEvent(InboundMessage{Type: "select_slot", Slot: "09:00 AM"})
	require.True(t, ok)
	assert.Equal(t, schedule.SlotPicked{Label: "09:00 AM"}, ev)

	ev, ok = intentEvent(InboundMessage{Type: "submit", Form: schedule.FormSubmission{Name: "Jane"}})
	require.True(t, ok)
	assert.Equal(t, schedule.SubmitRequested{Form: schedule.FormSubmission{Name: "Jane"}}, ev)

	_, ok = intentEvent(InboundMessage{Type: "ping"})
	assert.False(t, ok)
}
