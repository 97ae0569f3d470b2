package params

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
)

// Storage key for the cached calculation result. Parameter fields are
// keyed by their Field name.
const resultKey = "lastResult"

// Port is the durable storage interface injected into the Store. A nil
// port is valid and leaves the store purely in-memory.
type Port interface {
	// Read returns the stored value for key, with found=false when the
	// key has never been written.
	Read(key string) (value []byte, found bool, err error)
	Write(key string, value []byte) error
	// WriteAll persists several keys as one atomic operation.
	WriteAll(values map[string][]byte) error
}

// MetricsTracker receives persistence failure counts. Optional.
type MetricsTracker interface {
	PersistErrorsInc()
}

// Change is one field write for SetMany. Value must be a float64 for
// the numeric fields and a View for FieldActiveView.
type Change struct {
	Field Field
	Value any
}

// Store holds the current trading-parameter snapshot and persists every
// mutation. It performs no validation; callers are expected to run
// candidate values through the validation gate first. Storage failures
// are logged and absorbed, never returned.
type Store struct {
	mu      sync.RWMutex
	port    Port
	cur     TradingParameters
	result  *CalculationResult
	metrics MetricsTracker
}

// NewStore creates a store seeded from the persistence port, falling
// back per field to the documented defaults.
func NewStore(port Port) *Store {
	s := &Store{port: port}
	s.cur, s.result = s.restore()
	return s
}

// SetMetrics attaches a persistence-error counter.
func (s *Store) SetMetrics(m MetricsTracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// Load re-reads every field from durable storage and replaces the
// in-memory snapshot. Never fails; unreadable fields keep their default.
func (s *Store) Load() TradingParameters {
	cur, result := s.restore()

	s.mu.Lock()
	s.cur = cur
	s.result = result
	s.mu.Unlock()

	return cur
}

// Get returns the current in-memory snapshot.
func (s *Store) Get() TradingParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Set writes one field and immediately persists it. Values of the wrong
// type for the field are ignored with a warning.
func (s *Store) Set(field Field, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(field, value)
}

// SetMany applies several field writes in the order given, each
// triggering its own persist. There is no transactional grouping; use
// WriteAll for an atomic logical update.
func (s *Store) SetMany(changes []Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		s.apply(c.Field, c.Value)
	}
}

// WriteAll replaces the whole snapshot and persists all five fields as
// a single atomic storage operation.
func (s *Store) WriteAll(p TradingParameters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = p
	if s.port == nil {
		return
	}

	values := map[string][]byte{
		string(FieldAccountBalance): encodeFloat(p.AccountBalance),
		string(FieldRiskPercentage): encodeFloat(p.RiskPercentage),
		string(FieldEntryPrice):     encodeFloat(p.EntryPrice),
		string(FieldStopLossPrice):  encodeFloat(p.StopLossPrice),
		string(FieldActiveView):     []byte(p.ActiveView),
	}
	if err := s.port.WriteAll(values); err != nil {
		s.persistFailed(err, "all")
	}
}

// SetResult caches the latest calculation result and persists it for
// redisplay. The cache is advisory only.
func (s *Store) SetResult(r CalculationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result = &r
	if s.port == nil {
		return
	}

	data, err := json.Marshal(r)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal calculation result")
		return
	}
	if err := s.port.Write(resultKey, data); err != nil {
		s.persistFailed(err, resultKey)
	}
}

// Result returns the cached calculation result, if any.
func (s *Store) Result() (CalculationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return CalculationResult{}, false
	}
	return *s.result, true
}

// apply mutates one field and persists it. Caller holds the lock.
func (s *Store) apply(field Field, value any) {
	switch field {
	case FieldActiveView:
		v, ok := value.(View)
		if !ok {
			log.Warn().Str("field", string(field)).Msg("ignoring non-view value")
			return
		}
		s.cur.ActiveView = ParseView(string(v))
		s.persist(field, []byte(s.cur.ActiveView))
	case FieldAccountBalance, FieldRiskPercentage, FieldEntryPrice, FieldStopLossPrice:
		v, ok := value.(float64)
		if !ok {
			log.Warn().Str("field", string(field)).Msg("ignoring non-numeric value")
			return
		}
		switch field {
		case FieldAccountBalance:
			s.cur.AccountBalance = v
		case FieldRiskPercentage:
			s.cur.RiskPercentage = v
		case FieldEntryPrice:
			s.cur.EntryPrice = v
		case FieldStopLossPrice:
			s.cur.StopLossPrice = v
		}
		s.persist(field, encodeFloat(v))
	default:
		log.Warn().Str("field", string(field)).Msg("ignoring unknown parameter field")
	}
}

func (s *Store) persist(field Field, value []byte) {
	if s.port == nil {
		return
	}
	if err := s.port.Write(string(field), value); err != nil {
		s.persistFailed(err, string(field))
	}
}

func (s *Store) persistFailed(err error, key string) {
	log.Warn().Err(err).Str("key", key).Msg("parameter persist failed, continuing in memory")
	if s.metrics != nil {
		s.metrics.PersistErrorsInc()
	}
}

// restore reads every field independently, falling back to its default
// on absence, read error, or a value that does not parse finite.
func (s *Store) restore() (TradingParameters, *CalculationResult) {
	p := Defaults()
	if s.port == nil {
		return p, nil
	}

	p.AccountBalance = s.readFloat(FieldAccountBalance, p.AccountBalance)
	p.RiskPercentage = s.readFloat(FieldRiskPercentage, p.RiskPercentage)
	p.EntryPrice = s.readFloat(FieldEntryPrice, p.EntryPrice)
	p.StopLossPrice = s.readFloat(FieldStopLossPrice, p.StopLossPrice)

	if data, found, err := s.port.Read(string(FieldActiveView)); err == nil && found {
		p.ActiveView = ParseView(string(data))
	}

	var result *CalculationResult
	if data, found, err := s.port.Read(resultKey); err == nil && found {
		var r CalculationResult
		if json.Unmarshal(data, &r) == nil {
			result = &r
		}
	}

	return p, result
}

func (s *Store) readFloat(field Field, def float64) float64 {
	data, found, err := s.port.Read(string(field))
	if err != nil {
		log.Warn().Err(err).Str("field", string(field)).Msg("parameter read failed, using default")
		return def
	}
	if !found {
		return def
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil || !isFinite(v) {
		return def
	}
	return v
}

func encodeFloat(v float64) []byte {
	return []byte(strconv.FormatFloat(v, 'f', -1, 64))
}
