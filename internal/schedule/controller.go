package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zintasclinic/booking-widget/internal/bookingapi"
	"github.com/zintasclinic/booking-widget/internal/observability/metrics"
	"github.com/zintasclinic/booking-widget/pkg/logging"
)

// State is the controller's position in the booking flow.
type State string

const (
	StateIdle         State = "idle"
	StateSlotsLoading State = "slots_loading"
	StateSlotsReady   State = "slots_ready"
	StateSlotsEmpty   State = "slots_empty"
	StateSlotsError   State = "slots_error"
	StateSubmitting   State = "submitting"
)

const (
	submitLabelIdle = "Confirm Appointment"
	submitLabelBusy = "Booking..."
)

// BookingService is the remote scheduling backend the controller talks to.
// *bookingapi.Client satisfies it.
type BookingService interface {
	GetSlots(ctx context.Context, date string) ([]string, error)
	GetMonthSummary(ctx context.Context, year, month int) ([]bookingapi.DaySummary, error)
	CreateBooking(ctx context.Context, req bookingapi.BookingRequest) (*bookingapi.BookingResult, error)
}

// FormSubmission carries the booking form fields as the user typed them.
type FormSubmission struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Reason string `json:"reason"`
}

// Event is a user intent or fetch completion consumed by the controller
// loop. Renderers never mutate controller state directly; they emit these.
type Event interface{ isEvent() }

// LoadRequested is the explicit load action: it sets the active date and
// refreshes both the slot list and the month summary.
type LoadRequested struct {
	Date string
}

// CalendarDayClicked sets the active date from a calendar cell and
// refreshes the slot list; the displayed month stays as it is.
type CalendarDayClicked struct {
	Date string
}

// SlotPicked selects a slot pill by label.
type SlotPicked struct {
	Label string
}

// SubmitRequested asks the controller to validate and submit the booking.
type SubmitRequested struct {
	Form FormSubmission
}

type slotsLoaded struct {
	date  string
	slots []string
	err   error
}

type monthLoaded struct {
	year  int
	month time.Month
	days  []bookingapi.DaySummary
	err   error
}

type bookingFinished struct {
	result *bookingapi.BookingResult
	err    error
}

func (LoadRequested) isEvent()      {}
func (CalendarDayClicked) isEvent() {}
func (SlotPicked) isEvent()         {}
func (SubmitRequested) isEvent()    {}
func (slotsLoaded) isEvent()        {}
func (monthLoaded) isEvent()        {}
func (bookingFinished) isEvent()    {}

type command interface{ isCommand() }

type cmdLoadSlots struct{ date string }

type cmdLoadMonth struct {
	year  int
	month time.Month
}

type cmdSubmit struct{ req bookingapi.BookingRequest }

func (cmdLoadSlots) isCommand() {}
func (cmdLoadMonth) isCommand() {}
func (cmdSubmit) isCommand()    {}

// Controller owns the widget's SelectionState and is the single writer of
// it. All mutation happens on the Run loop: user intents and fetch
// completions arrive as events, renders leave as view models through
// onUpdate.
//
// The two fetches triggered by a date change are independent and may
// complete in either order. There is deliberately no cancellation or
// request fencing: a late-arriving slot response for a previously selected
// date overwrites the displayed list, matching the behavior this widget
// replaces.
type Controller struct {
	svc      BookingService
	logger   *logging.Logger
	metrics  *metrics.SchedulingMetrics
	onUpdate func(View)
	now      func() time.Time

	events chan Event

	// Everything below is owned by the Run loop.
	state        State
	selectedDate string
	slotsDate    string
	slotsErr     string
	selector     *SlotSelector
	summaries    *DaySummaryStore
	calYear      int
	calMonth     time.Month
	calErr       string
	formMsg      string
	formMsgKind  string
}

// NewController creates a controller in the Idle state. onUpdate receives a
// fresh view model after every applied event; metrics may be nil.
func NewController(svc BookingService, onUpdate func(View), m *metrics.SchedulingMetrics, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		svc:       svc,
		logger:    logger,
		metrics:   m,
		onUpdate:  onUpdate,
		now:       time.Now,
		events:    make(chan Event, 64),
		state:     StateIdle,
		selector:  NewSlotSelector(),
		summaries: NewDaySummaryStore(),
	}
}

// Dispatch enqueues an event for the Run loop.
func (c *Controller) Dispatch(ev Event) {
	c.events <- ev
}

// Run processes events until ctx is cancelled. It is the only goroutine
// that touches controller state; fetches run as child goroutines that post
// completion events back through the same channel.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			cmds := c.step(ev)
			if c.onUpdate != nil {
				c.onUpdate(c.View())
			}
			for _, cmd := range cmds {
				go c.execute(ctx, cmd)
			}
		}
	}
}

// step applies one event and returns the fetch/submit commands it implies.
func (c *Controller) step(ev Event) []command {
	switch ev := ev.(type) {
	case LoadRequested:
		if !c.beginDate(ev.Date) {
			return nil
		}
		ref, _ := ParseDate(ev.Date)
		return []command{
			cmdLoadSlots{date: ev.Date},
			cmdLoadMonth{year: ref.Year(), month: ref.Month()},
		}

	case CalendarDayClicked:
		if !c.beginDate(ev.Date) {
			return nil
		}
		return []command{cmdLoadSlots{date: ev.Date}}

	case SlotPicked:
		if c.state != StateSlotsReady {
			return nil
		}
		if !c.selector.Select(ev.Label) {
			c.logger.Debug("ignoring pick of unknown slot", "slot", ev.Label)
		}
		return nil

	case SubmitRequested:
		return c.beginSubmit(ev.Form)

	case slotsLoaded:
		c.applySlots(ev)
		return nil

	case monthLoaded:
		c.applyMonth(ev)
		return nil

	case bookingFinished:
		return c.applyBooking(ev)
	}
	return nil
}

// beginDate validates the chosen date and enters SlotsLoading, resetting
// the selection. Returns false when the date is rejected.
func (c *Controller) beginDate(date string) bool {
	if strings.TrimSpace(date) == "" {
		c.setMessage("Please choose a date first.", "error")
		return false
	}
	if _, err := ParseDate(date); err != nil {
		c.setMessage("Please choose a valid date.", "error")
		return false
	}
	c.selectedDate = date
	c.slotsDate = date
	c.slotsErr = ""
	c.selector.Clear()
	c.state = StateSlotsLoading
	c.setMessage("", "")
	return true
}

func (c *Controller) beginSubmit(form FormSubmission) []command {
	if c.state == StateSubmitting {
		// Single-flight guard by state: the submit control is disabled
		// while a submission is in flight.
		return nil
	}

	slot, hasSlot := c.selector.Selected()
	if !hasSlot || c.selectedDate == "" {
		c.observeBooking("validation")
		c.setMessage("Please select a date and time slot.", "error")
		return nil
	}

	req := bookingapi.BookingRequest{
		Name:   strings.TrimSpace(form.Name),
		Email:  strings.TrimSpace(form.Email),
		Phone:  strings.TrimSpace(form.Phone),
		Reason: strings.TrimSpace(form.Reason),
		Date:   c.selectedDate,
		Time:   slot,
	}
	if req.Name == "" || req.Email == "" {
		c.observeBooking("validation")
		c.setMessage("Name and email are required.", "error")
		return nil
	}

	c.state = StateSubmitting
	c.setMessage("", "")
	return []command{cmdSubmit{req: req}}
}

func (c *Controller) applySlots(ev slotsLoaded) {
	// Applied regardless of which date is currently selected: see the
	// fencing note on Controller.
	c.slotsDate = ev.date
	if ev.err != nil {
		c.logger.Warn("slot fetch failed", "date", ev.date, "error", ev.err)
		c.selector.Clear()
		c.slotsErr = "Error loading slots. Please try again."
		c.state = StateSlotsError
		return
	}
	c.slotsErr = ""
	c.selector.Render(ev.slots)
	if len(ev.slots) == 0 {
		c.state = StateSlotsEmpty
	} else {
		c.state = StateSlotsReady
	}
}

func (c *Controller) applyMonth(ev monthLoaded) {
	if ev.err != nil {
		c.logger.Warn("month summary fetch failed", "year", ev.year, "month", int(ev.month), "error", ev.err)
		c.summaries.Clear()
		c.calYear, c.calMonth = 0, 0
		c.calErr = "Error loading calendar"
		return
	}
	c.summaries.Replace(ev.year, ev.month, ev.days)
	c.calYear, c.calMonth = ev.year, ev.month
	c.calErr = ""
}

func (c *Controller) applyBooking(ev bookingFinished) []command {
	if ev.err != nil {
		// Back to SlotsReady with the prior slot list intact; the user can
		// retry without a reload.
		c.state = StateSlotsReady
		c.setMessage(submitErrorMessage(ev.err), "error")
		return nil
	}

	c.setMessage(fmt.Sprintf("Appointment booked successfully! Booking ID: %s", ev.result.BookingID), "success")

	// Refresh both views so the just-consumed slot disappears. The fresh
	// slot fetch also resets the selection.
	date := c.selectedDate
	c.slotsErr = ""
	c.selector.Clear()
	c.state = StateSlotsLoading
	cmds := []command{cmdLoadSlots{date: date}}
	if ref, err := ParseDate(date); err == nil {
		cmds = append(cmds, cmdLoadMonth{year: ref.Year(), month: ref.Month()})
	}
	return cmds
}

func (c *Controller) setMessage(msg, kind string) {
	c.formMsg = msg
	c.formMsgKind = kind
}

func submitErrorMessage(err error) string {
	var svcErr *bookingapi.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return "Booking failed. Please try again."
}

// View renders the current state as a view model. Only called from the Run
// loop (and from tests driving step directly).
func (c *Controller) View() View {
	v := View{
		State: c.state,
		Calendar: CalendarView{
			Weekdays: WeekdayHeaders,
			Error:    c.calErr,
		},
		Slots: SlotsView{
			Date:    c.slotsDate,
			Loading: c.state == StateSlotsLoading,
			Pills:   c.selector.Pills(),
			Empty:   c.state == StateSlotsEmpty,
			Error:   c.slotsErr,
		},
		Form: FormView{
			SubmitLabel: submitLabelIdle,
			Message:     c.formMsg,
			MessageKind: c.formMsgKind,
		},
	}

	if c.calErr == "" && c.calYear != 0 {
		ref := time.Date(c.calYear, c.calMonth, 1, 0, 0, 0, 0, time.Local)
		v.Calendar.Grid = BuildMonthGrid(ref, c.now(), c.summaries)
	}

	if slot, ok := c.selector.Selected(); ok {
		v.Form.SelectedSlotDisplay = fmt.Sprintf("%s at %s", c.slotsDate, slot)
		v.Form.SubmitEnabled = true
	}
	if c.state == StateSubmitting {
		v.Form.Submitting = true
		v.Form.SubmitEnabled = false
		v.Form.SubmitLabel = submitLabelBusy
	}
	return v
}

func (c *Controller) execute(ctx context.Context, cmd command) {
	switch cmd := cmd.(type) {
	case cmdLoadSlots:
		start := time.Now()
		slots, err := c.svc.GetSlots(ctx, cmd.date)
		c.metrics.ObserveFetch("slots", outcomeLabel(err))
		c.metrics.ObserveFetchLatency("slots", time.Since(start).Seconds())
		c.post(ctx, slotsLoaded{date: cmd.date, slots: slots, err: err})

	case cmdLoadMonth:
		start := time.Now()
		days, err := c.svc.GetMonthSummary(ctx, cmd.year, int(cmd.month))
		c.metrics.ObserveFetch("month_summary", outcomeLabel(err))
		c.metrics.ObserveFetchLatency("month_summary", time.Since(start).Seconds())
		c.post(ctx, monthLoaded{year: cmd.year, month: cmd.month, days: days, err: err})

	case cmdSubmit:
		result, err := c.svc.CreateBooking(ctx, cmd.req)
		c.observeBooking(outcomeLabel(err))
		c.post(ctx, bookingFinished{result: result, err: err})
	}
}

// post delivers a completion event unless the loop has shut down.
func (c *Controller) post(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

func (c *Controller) observeBooking(outcome string) {
	c.metrics.ObserveBooking(outcome)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var svcErr *bookingapi.ServiceError
	if errors.As(err, &svcErr) {
		return "service_error"
	}
	return "network_error"
}
