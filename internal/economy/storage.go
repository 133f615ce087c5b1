package economy

// Storage is the data warehouse filled by completed jobs. Stored never
// exceeds Capacity.
type Storage struct {
	Capacity uint64 `json:"capacity"`
	Stored   uint64 `json:"stored"`
}

// NewStorage returns an empty warehouse.
func NewStorage(capacity uint64) Storage {
	return Storage{Capacity: capacity}
}

// Store absorbs as much of amount as fits and returns what was absorbed.
func (s *Storage) Store(amount uint64) uint64 {
	absorbed := min(amount, s.FreeCapacity())
	s.Stored += absorbed
	return absorbed
}

// FreeCapacity is the room left before overflow.
func (s *Storage) FreeCapacity() uint64 {
	if s.Stored >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Stored
}

// Expand grows capacity by extra units.
func (s *Storage) Expand(extra uint64) {
	s.Capacity += extra
}
