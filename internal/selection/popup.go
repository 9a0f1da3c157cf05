package selection

import (
	"log/slog"

	"github.com/UnknownOlympus/icarus/internal/models"
)

// PopupState is the lifecycle state of the flight detail popup.
type PopupState int

const (
	// Closed is the initial and terminal state; nothing is selected.
	Closed PopupState = iota
	// Open shows the selected flight.
	Open
	// Closing plays the exit animation; the selection is retained until it completes.
	Closing
)

func (p PopupState) String() string {
	switch p {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Event is an input of the popup state machine.
type Event int

const (
	EventSelectFlight Event = iota
	EventOutsideInteraction
	EventAnimationComplete
	EventRefresh
)

func (e Event) String() string {
	switch e {
	case EventSelectFlight:
		return "select_flight"
	case EventOutsideInteraction:
		return "outside_interaction"
	case EventAnimationComplete:
		return "animation_complete"
	case EventRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Transition describes one state change of the popup.
type Transition struct {
	Event    Event
	From     PopupState
	To       PopupState
	FlightID string
}

// Subscription is a handle on an active boundary listener.
type Subscription interface {
	Release()
}

// BoundaryDetector reports pointer-downs outside the rendered popup bounds.
type BoundaryDetector interface {
	Subscribe(onOutside func()) Subscription
}

// Controller is the popup lifecycle state machine.
//
//	Closed  --SelectFlight(id)-->   Open     select id, acquire boundary listener
//	Open    --SelectFlight(id)-->   Open     replace selection (same id is a no-op)
//	Open    --OutsideInteraction--> Closing  selection kept for the exit animation
//	Open    --Refresh(id gone)-->   Closing  same exit path as an outside interaction
//	Closing --SelectFlight(id)-->   Open     close cancelled, listener kept
//	Closing --AnimationComplete-->  Closed   selection cleared, listener released
//
// Every other event is a no-op. The boundary listener is held exactly while the state is
// Open or Closing. A Controller is not safe for concurrent use; its owner serializes access.
type Controller struct {
	state     PopupState
	selection State
	last      *models.FlightRecord // last resolved record, rendered while closing

	boundary  BoundaryDetector
	onOutside func()
	sub       Subscription

	observers []func(Transition)
	log       *slog.Logger
}

// NewController creates a Closed controller. onOutside is handed to the boundary detector
// whenever a listener is acquired. A nil boundary disables outside detection.
func NewController(log *slog.Logger, boundary BoundaryDetector, onOutside func()) *Controller {
	return &Controller{
		state:     Closed,
		boundary:  boundary,
		onOutside: onOutside,
		log:       log,
	}
}

// OnTransition registers fn to be called after every state-changing transition.
func (c *Controller) OnTransition(fn func(Transition)) {
	c.observers = append(c.observers, fn)
}

// State returns the current popup state.
func (c *Controller) State() PopupState {
	return c.state
}

// SelectedID returns the selected flight ID. It is present only while Open or Closing.
func (c *Controller) SelectedID() (string, bool) {
	return c.selection.SelectedID()
}

// SelectFlight handles a marker click.
func (c *Controller) SelectFlight(id string) (Transition, bool) {
	switch c.state {
	case Closed:
		c.selection.Select(id)
		c.acquire()
		return c.move(EventSelectFlight, Open), true
	case Open:
		if current, _ := c.selection.SelectedID(); current == id {
			return Transition{Event: EventSelectFlight, From: Open, To: Open, FlightID: id}, false
		}
		c.selection.Select(id)
		c.last = nil
		return c.move(EventSelectFlight, Open), true
	case Closing:
		c.selection.Select(id)
		c.last = nil
		return c.move(EventSelectFlight, Open), true
	}

	return c.noop(EventSelectFlight), false
}

// OutsideInteraction starts the exit animation. It only has an effect while Open.
func (c *Controller) OutsideInteraction() (Transition, bool) {
	if c.state != Open {
		return c.noop(EventOutsideInteraction), false
	}

	return c.move(EventOutsideInteraction, Closing), true
}

// AnimationComplete finishes the exit animation. It is the only event that clears the selection.
func (c *Controller) AnimationComplete() (Transition, bool) {
	if c.state != Closing {
		return c.noop(EventAnimationComplete), false
	}

	tr := c.move(EventAnimationComplete, Closed)
	c.selection.Clear()
	c.last = nil
	c.release()

	return tr, true
}

// Refresh re-resolves the selection against a freshly replaced FlightSet. A selected flight
// that left the set closes an Open popup.
func (c *Controller) Refresh(set models.FlightSet) (Transition, bool) {
	if c.state == Closed {
		return c.noop(EventRefresh), false
	}

	record, ok := c.selection.Resolve(set)
	if ok {
		c.last = &record
		return c.noop(EventRefresh), false
	}

	if c.state == Open {
		id, _ := c.selection.SelectedID()
		c.log.Debug("Selected flight left the area, closing popup", "id", id)
		return c.move(EventRefresh, Closing), true
	}

	return c.noop(EventRefresh), false
}

// Popup returns the record to render. While Closing it falls back to the last resolved
// record so the content is never torn down before the exit animation ends.
func (c *Controller) Popup(set models.FlightSet) (models.FlightRecord, bool) {
	if c.state == Closed {
		return models.FlightRecord{}, false
	}

	if record, ok := c.selection.Resolve(set); ok {
		return record, true
	}
	if c.state == Closing && c.last != nil {
		return *c.last, true
	}

	return models.FlightRecord{}, false
}

// Listening reports whether a boundary listener is currently held.
func (c *Controller) Listening() bool {
	return c.sub != nil
}

func (c *Controller) move(event Event, to PopupState) Transition {
	id, _ := c.selection.SelectedID()
	tr := Transition{Event: event, From: c.state, To: to, FlightID: id}
	c.state = to

	c.log.Debug("Popup transition", "event", event.String(), "from", tr.From.String(), "to", to.String(), "id", id)
	for _, fn := range c.observers {
		fn(tr)
	}

	return tr
}

func (c *Controller) noop(event Event) Transition {
	id, _ := c.selection.SelectedID()
	return Transition{Event: event, From: c.state, To: c.state, FlightID: id}
}

func (c *Controller) acquire() {
	if c.boundary == nil || c.sub != nil {
		return
	}
	c.sub = c.boundary.Subscribe(c.onOutside)
}

func (c *Controller) release() {
	if c.sub == nil {
		return
	}
	c.sub.Release()
	c.sub = nil
}
