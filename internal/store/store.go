// Package store holds the shared in-memory sensor series.
//
// Each named stream is an independent bounded ring buffer with a
// last-updated timestamp set atomically with every push. The concurrency
// discipline is single-writer-per-stream, many-reader: each producer
// goroutine owns writes to its streams, and consumers only ever see
// snapshot copies. Nothing here persists across restarts.
package store

import (
	"sync"
	"time"
)

// Stream names one bounded sensor series.
type Stream string

// Streams owned by the radar reader.
const (
	HeartRate  Stream = "heart_rate"
	BreathRate Stream = "breath_rate"
	Motion     Stream = "motion"
)

// Streams owned by the wearable reader.
const (
	WearableHR   Stream = "wearable_hr"
	SpO2         Stream = "spo2"
	WearableSDNN Stream = "wearable_sdnn"
	RRInterval   Stream = "rr_interval"
	Gesture      Stream = "gesture"
)

// Streams owned by the HRV engine. RRSDNN is the SDNN the engine computes
// from the raw RR series; WearableSDNN above is the figure the band itself
// reports, and the two never share a stream.
const (
	SDNN    Stream = "sdnn"
	RMSSD   Stream = "rmssd"
	RRSDNN  Stream = "rr_sdnn"
	LF      Stream = "lf"
	HF      Stream = "hf"
	LFHF    Stream = "lf_hf"
	Arousal Stream = "arousal"
	Valence Stream = "valence"
)

// Hall is owned by the placement sensor reader.
const Hall Stream = "hall"

// Capacities observed on the device: radar-origin streams hold a few
// minutes of 1 Hz data, wearable-origin streams two minutes, and the raw RR
// stream four times the HR capacity since each heartbeat frame carries up
// to three RR samples.
var defaultCapacities = map[Stream]int{
	HeartRate:    480,
	BreathRate:   480,
	Motion:       480,
	WearableHR:   120,
	SpO2:         120,
	WearableSDNN: 120,
	RRInterval:   480,
	Gesture:      120,
	SDNN:         240,
	RMSSD:        240,
	RRSDNN:       240,
	LF:           240,
	HF:           240,
	LFHF:         240,
	Arousal:      240,
	Valence:      240,
	Hall:         100,
}

type series struct {
	mu      sync.Mutex
	ring    *Ring[float64]
	updated time.Time
}

// SensorStore is the set of bounded sensor series shared between producer
// and consumer goroutines. Streams are created up front; pushing to an
// unknown stream panics, which keeps writer ownership honest.
type SensorStore struct {
	streams map[Stream]*series
	now     func() time.Time
}

// New creates a store with the default stream set and capacities.
func New() *SensorStore {
	s := &SensorStore{
		streams: make(map[Stream]*series, len(defaultCapacities)),
		now:     time.Now,
	}
	for name, capacity := range defaultCapacities {
		s.streams[name] = &series{ring: NewRing[float64](capacity)}
	}
	return s
}

func (s *SensorStore) stream(name Stream) *series {
	st, ok := s.streams[name]
	if !ok {
		panic("store: unknown stream " + string(name))
	}
	return st
}

// Push appends a value to the named stream and stamps its freshness.
func (s *SensorStore) Push(name Stream, v float64) {
	st := s.stream(name)
	st.mu.Lock()
	st.ring.Push(v)
	st.updated = s.now()
	st.mu.Unlock()
}

// Snapshot returns a copy of the stream contents, oldest first.
func (s *SensorStore) Snapshot(name Stream) []float64 {
	st := s.stream(name)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ring.Snapshot()
}

// Tail returns a copy of up to the last n values, oldest first.
func (s *SensorStore) Tail(name Stream, n int) []float64 {
	snap := s.Snapshot(name)
	if len(snap) > n {
		snap = snap[len(snap)-n:]
	}
	return snap
}

// Last returns the most recent value of the stream.
func (s *SensorStore) Last(name Stream) (float64, bool) {
	st := s.stream(name)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ring.Last()
}

// Count returns the number of buffered values.
func (s *SensorStore) Count(name Stream) int {
	st := s.stream(name)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ring.Len()
}

// LastUpdated returns the time of the stream's most recent push, or the
// zero time when nothing has been pushed yet.
func (s *SensorStore) LastUpdated(name Stream) time.Time {
	st := s.stream(name)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.updated
}

// Fresh reports whether the stream received a push within the window.
// The presence signal is derived from freshness of the heart-rate stream,
// never from buffer length, which stops growing once the ring is full.
func (s *SensorStore) Fresh(name Stream, window time.Duration) bool {
	updated := s.LastUpdated(name)
	if updated.IsZero() {
		return false
	}
	return s.now().Sub(updated) < window
}
