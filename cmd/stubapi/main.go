// Command stubapi is a development stand-in for the clinic's booking
// service. It serves deterministic slot data out of memory so the widget
// can be exercised locally without the real backend.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	appconfig "github.com/zintasclinic/booking-widget/internal/config"
	"github.com/zintasclinic/booking-widget/pkg/logging"
)

type stubServer struct {
	logger    *logging.Logger
	slotTimes []string

	mu     sync.Mutex
	booked map[string]map[string]bool // date -> slot -> taken
}

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	s := &stubServer{
		logger:    logger,
		slotTimes: cfg.StubSlotTimes,
		booked:    make(map[string]map[string]bool),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/api/slots", s.handleSlots)
	r.Get("/api/month-summary", s.handleMonthSummary)
	r.Post("/api/book", s.handleBook)

	addr := ":" + cfg.StubPort
	logger.Info("stub booking service listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("stub booking service failed", "error", err)
		os.Exit(1)
	}
}

// openSlots returns the slot labels still free on a date. Weekends and past
// dates have none, so the widget's empty and full paths are reachable in dev.
func (s *stubServer) openSlots(date string) []string {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	today, _ := time.Parse("2006-01-02", time.Now().Format("2006-01-02"))
	if day.Before(today) {
		return nil
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return []string{}
	}

	s.mu.Lock()
	taken := s.booked[date]
	s.mu.Unlock()

	open := make([]string, 0, len(s.slotTimes))
	for _, slot := range s.slotTimes {
		if !taken[slot] {
			open = append(open, slot)
		}
	}
	return open
}

func (s *stubServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date parameter required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]interface{}{"availableSlots": s.openSlots(date)})
}

func (s *stubServer) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		http.Error(w, "year and month parameters required", http.StatusBadRequest)
		return
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := []map[string]interface{}{}
	for d := first; d.Month() == time.Month(month); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		days = append(days, map[string]interface{}{
			"date":           date,
			"availableSlots": len(s.openSlots(date)),
		})
	}
	writeJSON(w, map[string]interface{}{"days": days})
}

func (s *stubServer) handleBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Date  string `json:"date"`
		Time  string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		writeJSON(w, map[string]interface{}{"success": false, "error": "Name and email are required."})
		return
	}

	open := false
	for _, slot := range s.openSlots(req.Date) {
		if slot == req.Time {
			open = true
			break
		}
	}
	if !open {
		writeJSON(w, map[string]interface{}{"success": false, "error": "That slot is no longer available."})
		return
	}

	s.mu.Lock()
	if s.booked[req.Date] == nil {
		s.booked[req.Date] = make(map[string]bool)
	}
	s.booked[req.Date][req.Time] = true
	s.mu.Unlock()

	bookingID := fmt.Sprintf("BK-%s", uuid.NewString()[:8])
	s.logger.Info("booking created", "booking_id", bookingID, "date", req.Date, "slot", req.Time)
	writeJSON(w, map[string]interface{}{"success": true, "bookingId": bookingID})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
