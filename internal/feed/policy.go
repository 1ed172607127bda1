package feed

import "fmt"

// Policy holds the tunable knobs of feed assembly.
type Policy struct {
	// BatchSize is the organic batch size when a session does not ask for one.
	BatchSize    int
	MaxBatchSize int
	// OverfetchMultiplier sizes the trending pool the shuffle draws from.
	OverfetchMultiplier int
	// PersonalizedMultiplier caps each personalized candidate query.
	PersonalizedMultiplier int
	// TrendingEvery forces the trending path on for-you batches whose
	// zero-based index is a positive multiple of it. Zero disables.
	TrendingEvery int
	// QueryExclude bounds how many of the newest excluded IDs are bound into
	// a candidate query. Older ones are filtered after the fetch. Zero binds
	// them all.
	QueryExclude int
	// MaxSessionExclude caps the exclusion list of a client-held session.
	// Zero means unbounded.
	MaxSessionExclude int
}

// DefaultPolicy returns the production defaults
func DefaultPolicy() Policy {
	return Policy{
		BatchSize:              3,
		MaxBatchSize:           20,
		OverfetchMultiplier:    6,
		PersonalizedMultiplier: 2,
		TrendingEvery:          4,
		QueryExclude:           1000,
		MaxSessionExclude:      20000,
	}
}

// Limit clamps a requested batch size, using BatchSize when n is not positive
func (p Policy) Limit(n int) int {
	if n <= 0 {
		n = p.BatchSize
	}
	if p.MaxBatchSize > 0 && n > p.MaxBatchSize {
		n = p.MaxBatchSize
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ForceTrending reports whether the for-you batch with zero-based index n
// must use the trending path
func (p Policy) ForceTrending(n int) bool {
	return p.TrendingEvery > 0 && n > 0 && n%p.TrendingEvery == 0
}

// CheckClientSession validates a session the client holds and sends back
func (p Policy) CheckClientSession(s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if p.MaxSessionExclude > 0 && len(s.ExcludeIDs) > p.MaxSessionExclude {
		return fmt.Errorf("%w: %d excluded ids, at most %d", ErrSessionTooLarge, len(s.ExcludeIDs), p.MaxSessionExclude)
	}
	return nil
}

// queryExclude returns the newest excluded IDs a query binds
func (p Policy) queryExclude(exclude []int64) []int64 {
	if p.QueryExclude <= 0 || len(exclude) <= p.QueryExclude {
		return exclude
	}
	return exclude[len(exclude)-p.QueryExclude:]
}

func (p Policy) trendingPool(limit int) int {
	if n := limit * p.OverfetchMultiplier; n > limit {
		return n
	}
	return limit
}

func (p Policy) candidateCap(limit int) int {
	if n := limit * p.PersonalizedMultiplier; n > limit {
		return n
	}
	return limit
}
