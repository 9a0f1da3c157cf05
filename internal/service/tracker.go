package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/icarus/internal/acquisition"
	"github.com/UnknownOlympus/icarus/internal/geo"
	"github.com/UnknownOlympus/icarus/internal/geolocation"
	"github.com/UnknownOlympus/icarus/internal/mapview"
	"github.com/UnknownOlympus/icarus/internal/metrics"
	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/UnknownOlympus/icarus/internal/selection"
)

// ErrUnknownFlight is returned when a flight that is not in the current set is selected.
var ErrUnknownFlight = errors.New("flight is not in the current set")

// FlightAcquirer fetches the flights around a center with the selected provider.
type FlightAcquirer interface {
	FetchNearbyFlights(
		ctx context.Context,
		center models.Coordinate,
		radius geo.Radius,
		selector acquisition.ProviderType,
	) (models.FlightSet, error)
}

// SnapshotStore persists the latest applied flight set.
type SnapshotStore interface {
	ReplaceSnapshot(ctx context.Context, center models.Coordinate, flights models.FlightSet) error
}

// Publisher receives every rendered view. Publish must not block.
type Publisher interface {
	Publish(view mapview.View)
}

// TrackerConfig holds the acquisition settings of a Tracker.
type TrackerConfig struct {
	Provider        acquisition.ProviderType // Provider used for every fetch
	Radius          geo.Radius               // Radius around the user position
	RefreshInterval time.Duration            // Re-fetch period at the last known position, 0 disables it
}

// Tracker wires geolocation readings to flight acquisition and keeps the state the map is
// rendered from. Each fetch carries a generation token; a response is applied only if no newer
// fetch was issued after it, so the displayed set always comes from the latest request.
type Tracker struct {
	log       *slog.Logger
	acquirer  FlightAcquirer
	store     SnapshotStore
	publisher Publisher
	metrics   *metrics.Metrics
	cfg       TrackerConfig

	mu         sync.Mutex
	generation uint64
	status     mapview.Status
	coords     *models.Coordinate
	flights    models.FlightSet
	popup      *selection.Controller

	storeMu   sync.Mutex
	storedGen uint64
}

// NewTracker creates a Tracker in the locating state. store, publisher and boundary may be nil.
func NewTracker(
	log *slog.Logger,
	acquirer FlightAcquirer,
	store SnapshotStore,
	publisher Publisher,
	metrics *metrics.Metrics,
	boundary selection.BoundaryDetector,
	cfg TrackerConfig,
) *Tracker {
	tracker := &Tracker{
		log:       log,
		acquirer:  acquirer,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
		status:    mapview.StatusLocating,
		flights:   models.FlightSet{},
	}

	tracker.popup = selection.NewController(log, boundary, func() {
		tracker.OutsideInteraction(context.Background())
	})
	tracker.popup.OnTransition(func(tr selection.Transition) {
		metrics.PopupTransitions.WithLabelValues(tr.From.String(), tr.To.String()).Inc()
	})

	return tracker
}

// Run consumes readings until ctx is cancelled. Reading state is applied in arrival order;
// fetches run concurrently and are reconciled by their generation token.
func (t *Tracker) Run(ctx context.Context, readings <-chan geolocation.Reading) {
	var wg sync.WaitGroup
	defer wg.Wait()

	var tick <-chan time.Time
	if t.cfg.RefreshInterval > 0 {
		ticker := time.NewTicker(t.cfg.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	t.log.InfoContext(ctx, "Tracker started...", "provider", t.cfg.Provider, "radius", t.cfg.Radius.String())

	for {
		select {
		case <-ctx.Done():
			t.log.InfoContext(ctx, "Tracker stopped.")
			return
		case reading, ok := <-readings:
			if !ok {
				readings = nil
				continue
			}
			center, gen, fetch := t.accept(ctx, reading)
			if !fetch {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				t.fetch(ctx, center, gen)
			}()
		case <-tick:
			center, gen, fetch := t.nextGeneration()
			if !fetch {
				continue
			}
			t.log.DebugContext(ctx, "Refreshing flights at last known position")
			wg.Add(1)
			go func() {
				defer wg.Done()
				t.fetch(ctx, center, gen)
			}()
		}
	}
}

// HandleReading applies a reading and, when it carries a usable position, fetches flights around it.
func (t *Tracker) HandleReading(ctx context.Context, reading geolocation.Reading) {
	center, gen, fetch := t.accept(ctx, reading)
	if fetch {
		t.fetch(ctx, center, gen)
	}
}

// accept records the reading and issues a new generation when a fetch must follow.
func (t *Tracker) accept(ctx context.Context, reading geolocation.Reading) (models.Coordinate, uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := reading.Err(); err != nil {
		switch {
		case errors.Is(err, geolocation.ErrUnavailable):
			t.status = mapview.StatusUnavailable
			t.coords = nil
		case errors.Is(err, geolocation.ErrDenied):
			t.status = mapview.StatusDisabled
			t.coords = nil
		case t.coords != nil:
			t.log.DebugContext(ctx, "No location fix, keeping last known position", "error", err)
			return models.Coordinate{}, 0, false
		default:
			t.status = mapview.StatusLocating
		}

		t.log.InfoContext(ctx, "Location is not usable", "status", t.status, "error", err)
		t.publishLocked()
		return models.Coordinate{}, 0, false
	}

	center := *reading.Coords
	t.coords = &center
	t.status = mapview.StatusReady
	t.generation++
	t.publishLocked()

	return center, t.generation, true
}

func (t *Tracker) nextGeneration() (models.Coordinate, uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != mapview.StatusReady || t.coords == nil {
		return models.Coordinate{}, 0, false
	}
	t.generation++

	return *t.coords, t.generation, true
}

func (t *Tracker) fetch(ctx context.Context, center models.Coordinate, gen uint64) {
	provider := string(t.cfg.Provider)

	t.metrics.ActiveFetches.Inc()
	startTime := time.Now()
	flights, err := t.acquirer.FetchNearbyFlights(ctx, center, t.cfg.Radius, t.cfg.Provider)
	duration := time.Since(startTime).Seconds()
	t.metrics.RequestSeconds.WithLabelValues(provider).Observe(duration)
	t.metrics.ActiveFetches.Dec()

	if err != nil {
		t.metrics.FetchesTotal.WithLabelValues(provider, "failure").Inc()
		t.metrics.ProviderErrors.WithLabelValues(provider, acquisition.Kind(err)).Inc()
	} else {
		t.metrics.FetchesTotal.WithLabelValues(provider, "success").Inc()
	}

	if !t.apply(ctx, gen, flights, err) || err != nil {
		return
	}

	t.persist(ctx, gen, center, flights)
}

// apply replaces the flight set if gen is still the latest generation. A network failure keeps
// the previous set; any other failure shows the empty set.
func (t *Tracker) apply(ctx context.Context, gen uint64, flights models.FlightSet, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		t.metrics.StaleResponses.Inc()
		t.log.DebugContext(ctx, "Discarding stale flight response", "generation", gen, "latest", t.generation)
		return false
	}

	if errors.Is(err, acquisition.ErrNetworkFailure) {
		t.log.WarnContext(ctx, "Provider unreachable, keeping previous flights", "flights", len(t.flights))
		return false
	}

	if flights == nil {
		flights = models.FlightSet{}
	}
	t.flights = flights
	t.metrics.FlightsInRange.Set(float64(len(flights)))
	t.popup.Refresh(flights)

	t.log.DebugContext(ctx, "Flight set applied", "generation", gen, "flights", len(flights))
	t.publishLocked()

	return true
}

// persist writes the snapshot unless a newer one was already written.
func (t *Tracker) persist(ctx context.Context, gen uint64, center models.Coordinate, flights models.FlightSet) {
	if t.store == nil {
		return
	}

	t.storeMu.Lock()
	defer t.storeMu.Unlock()

	if gen <= t.storedGen {
		return
	}

	if err := t.store.ReplaceSnapshot(ctx, center, flights); err != nil {
		t.log.ErrorContext(ctx, "Failed to store flight snapshot", "error", err)
		t.metrics.SnapshotWrites.WithLabelValues("failure").Inc()
		return
	}

	t.storedGen = gen
	t.metrics.SnapshotWrites.WithLabelValues("success").Inc()
}

// SelectFlight opens the popup for a flight of the current set.
func (t *Tracker) SelectFlight(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.flights.Find(id); !ok {
		return ErrUnknownFlight
	}

	_, changed := t.popup.SelectFlight(id)
	t.popup.Refresh(t.flights)
	if changed {
		t.log.DebugContext(ctx, "Flight selected", "id", id)
		t.publishLocked()
	}

	return nil
}

// OutsideInteraction starts closing an open popup. It reports whether the state changed.
func (t *Tracker) OutsideInteraction(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, changed := t.popup.OutsideInteraction()
	if changed {
		t.log.DebugContext(ctx, "Popup closing after outside interaction")
		t.publishLocked()
	}

	return changed
}

// AnimationComplete finishes closing the popup. It reports whether the state changed.
func (t *Tracker) AnimationComplete(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, changed := t.popup.AnimationComplete()
	if changed {
		t.log.DebugContext(ctx, "Popup closed")
		t.publishLocked()
	}

	return changed
}

// View renders the current state.
func (t *Tracker) View() mapview.View {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.viewLocked()
}

// Flights returns a copy of the current flight set.
func (t *Tracker) Flights() models.FlightSet {
	t.mu.Lock()
	defer t.mu.Unlock()

	flights := make(models.FlightSet, len(t.flights))
	copy(flights, t.flights)

	return flights
}

// PopupState returns the current popup state.
func (t *Tracker) PopupState() selection.PopupState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.popup.State()
}

func (t *Tracker) viewLocked() mapview.View {
	in := mapview.Input{
		Status:  t.status,
		User:    t.coords,
		Flights: t.flights,
	}

	if state := t.popup.State(); state != selection.Closed {
		in.SelectedID, _ = t.popup.SelectedID()
		in.PopupState = state.String()
		if record, ok := t.popup.Popup(t.flights); ok {
			in.PopupRecord = &record
		}
	}

	return mapview.Build(in)
}

func (t *Tracker) publishLocked() {
	if t.publisher == nil {
		return
	}
	t.publisher.Publish(t.viewLocked())
}
