package dialog

import (
	"sync"

	"babybites/app/service/profile"
)

type Step string

const (
	StepMenu     Step = "menu"
	StepAwaiting Step = "awaiting"
)

type Field string

const (
	FieldDOB         Field = "dob"
	FieldFeeding     Field = "feeding"
	FieldPreferences Field = "preferences"
	FieldAllergies   Field = "allergies"
	FieldFoods       Field = "foods"
	FieldLocation    Field = "location"
	FieldWeight      Field = "weight"
	FieldHeight      Field = "height"
)

var fieldMenu = map[string]Field{
	"1": FieldDOB,
	"2": FieldFeeding,
	"3": FieldPreferences,
	"4": FieldAllergies,
	"5": FieldFoods,
	"6": FieldLocation,
	"7": FieldWeight,
	"8": FieldHeight,
}

// State is the per-phone-number dialogue state. Absence of a stored state is
// equivalent to no active dialogue. Draft buffers all edits until the user
// exits with 0, which persists them in a single write.
type State struct {
	Step  Step
	Field Field
	Draft profile.Profile
	Dirty bool
}

// StateStore keeps dialogue state per phone number. Expiry, if any, is the
// store's business, not the state machine's.
type StateStore interface {
	Get(phone string) (State, bool)
	Put(phone string, st State)
	Clear(phone string)
}

type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]State)}
}

func (s *MemoryStateStore) Get(phone string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[phone]

	return st, ok
}

func (s *MemoryStateStore) Put(phone string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[phone] = st
}

func (s *MemoryStateStore) Clear(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, phone)
}
