package sim

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	mmetrics "hafla-tracker/internal/metrics"
	"hafla-tracker/internal/publisher"
	"hafla-tracker/internal/route"
)

// DelayPenaltyMinutes is the extra time announced while the bus is delayed.
const DelayPenaltyMinutes = 10

type PositionPublisher interface {
	PublishPosition(msg publisher.PositionMessage) error
}

// Status is the rider-facing view of the bus after the latest tick.
type Status struct {
	BusID        string         `json:"busId"`
	RouteID      string         `json:"routeId"`
	RunID        string         `json:"runId"`
	Progress     float64        `json:"progress"`
	Delayed      bool           `json:"delayed"`
	Phase        Phase          `json:"phase"`
	State        string         `json:"state"`
	Position     route.Position `json:"position"`
	EtaMinutes   int            `json:"etaMinutes"`
	DelayMinutes int            `json:"delayMinutes"`
	NextStop     *route.Stop    `json:"nextStop,omitempty"`
	SpeedMps     float64        `json:"speedMps"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Tracker drives one bus along one route: every simulator tick is turned
// into a position, published, and kept as the latest status.
type Tracker struct {
	route   *route.Route
	busID   string
	runID   string
	pub     PositionPublisher
	metrics *mmetrics.Collector
	sim     *Simulator
	now     func() time.Time

	mu        sync.RWMutex
	status    Status
	lastPos   route.Position
	lastPosAt time.Time
	lastDelay bool
	lastProg  float64
}

// NewTracker wires a simulator to the route. pub and metrics may be nil.
func NewTracker(r *route.Route, busID string, interval time.Duration, rnd RandSource, pub PositionPublisher, metrics *mmetrics.Collector) *Tracker {
	t := &Tracker{
		route:   r,
		busID:   busID,
		runID:   uuid.NewString(),
		pub:     pub,
		metrics: metrics,
		now:     time.Now,
	}
	t.sim = NewSimulator(interval, rnd, t.handleTick)
	t.status = t.buildStatus(t.sim.Snapshot(), t.now())
	t.lastProg = t.status.Progress
	return t
}

func (t *Tracker) Start(ctx context.Context) {
	log.Printf("starting tracker bus=%s route=%s run=%s", t.busID, t.route.ID, t.runID)
	t.sim.Start(ctx)
}

func (t *Tracker) Stop() {
	t.sim.Stop()
	log.Printf("stopped tracker bus=%s run=%s", t.busID, t.runID)
}

func (t *Tracker) Route() *route.Route { return t.route }

func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Search resolves a free-text location query against the route.
func (t *Tracker) Search(query string) (route.Waypoint, route.SearchTarget) {
	wp, target := t.route.ResolveSearch(query)
	if t.metrics != nil {
		t.metrics.Searches.WithLabelValues(string(target)).Inc()
	}
	return wp, target
}

func (t *Tracker) handleTick(st State) {
	tickStart := time.Now()
	now := t.now()

	t.mu.Lock()
	status := t.buildStatus(st, now)
	if !t.lastPosAt.IsZero() {
		dt := now.Sub(t.lastPosAt).Seconds()
		// A loop back to the start is a jump, not movement.
		if dt > 0 && st.Progress >= t.lastProg {
			d := distanceMeters(t.lastPos.Lat, t.lastPos.Lon, status.Position.Lat, status.Position.Lon)
			status.SpeedMps = d / dt
		}
	}
	looped := st.Progress < t.lastProg
	delayStarted := st.Delayed && !t.lastDelay
	t.lastPos = status.Position
	t.lastPosAt = now
	t.lastProg = st.Progress
	t.lastDelay = st.Delayed
	t.status = status
	t.mu.Unlock()

	if delayStarted {
		log.Printf("bus %s delayed at progress %.1f", t.busID, st.Progress)
	}
	if looped {
		log.Printf("bus %s completed trip, looping (run %s)", t.busID, t.runID)
	}

	if t.pub != nil {
		if err := t.pub.PublishPosition(toMessage(status)); err != nil {
			log.Printf("publish error for %s: %v", t.busID, err)
		}
	}

	if t.metrics != nil {
		t.metrics.Ticks.Inc()
		t.metrics.Progress.Set(st.Progress)
		if st.Delayed {
			t.metrics.Delayed.Set(1)
		} else {
			t.metrics.Delayed.Set(0)
		}
		if delayStarted {
			t.metrics.DelaysTriggered.Inc()
		}
		if looped {
			t.metrics.Loops.Inc()
		}
		t.metrics.TickDuration.Observe(time.Since(tickStart).Seconds())
	}
}

func (t *Tracker) buildStatus(st State, now time.Time) Status {
	s := Status{
		BusID:      t.busID,
		RouteID:    t.route.ID,
		RunID:      t.runID,
		Progress:   st.Progress,
		Delayed:    st.Delayed,
		Phase:      st.Phase,
		State:      "moving",
		Position:   t.route.PositionAt(st.Progress),
		EtaMinutes: EtaMinutes(st.Progress),
		UpdatedAt:  now,
	}
	if st.Delayed {
		s.State = "delayed"
		s.DelayMinutes = DelayPenaltyMinutes
	}
	if stop, ok := t.route.NextStop(st.Progress); ok {
		s.NextStop = &stop
	}
	return s
}

// EtaMinutes estimates minutes to arrival at five progress points per minute.
func EtaMinutes(progress float64) int {
	eta := int(math.Floor((100 - progress) / 5))
	if eta < 0 {
		return 0
	}
	return eta
}

func toMessage(s Status) publisher.PositionMessage {
	msg := publisher.PositionMessage{
		BusID:      s.BusID,
		RouteID:    s.RouteID,
		RunID:      s.RunID,
		Timestamp:  s.UpdatedAt,
		Lat:        s.Position.Lat,
		Lon:        s.Position.Lon,
		Bearing:    s.Position.BearingDeg,
		Progress:   s.Progress,
		Delayed:    s.Delayed,
		State:      s.State,
		EtaMinutes: s.EtaMinutes,
		SpeedMps:   s.SpeedMps,
	}
	if s.NextStop != nil {
		msg.NextStop = s.NextStop.Name
	}
	return msg
}

func distanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := (math.Sin(dLat/2) * math.Sin(dLat/2)) + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
