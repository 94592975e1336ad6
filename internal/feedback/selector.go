package feedback

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
)

// TierCount is the number of praise tiers.
const TierCount = 4

const (
	// recentWindow is how many previous picks per pool are avoided.
	recentWindow = 2

	// maxDraws bounds the redraw loop; the last draw is accepted even if it
	// repeats.
	maxDraws = 10
)

// TierForCount maps a running correct-answer count to a praise tier:
// 0 for n≤2, 1 for n≤5, 2 for n≤8 and 3 above that.
func TierForCount(n int) int {
	switch {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// Pool identifies a phrase pool for repeat avoidance.
type Pool string

// EncouragementPool is the pool of wrong-answer lines.
const EncouragementPool Pool = "encouragement"

// TierPool returns the pool name of a praise tier.
func TierPool(tier int) Pool {
	return Pool("tier" + strconv.Itoa(tier))
}

// Pick is the outcome of one selection.
type Pick struct {
	Pool  Pool
	Tier  int // -1 for encouragement
	Index int
	Phrase
}

// ClipPath returns the asset path of the pre-rendered clip for the pick.
func (p Pick) ClipPath() string {
	if p.Pool == EncouragementPool {
		return EncouragementClipPath(p.Index)
	}
	return PositiveClipPath(p.Tier, p.Index)
}

// Option configures a [Selector].
type Option func(*Selector)

// WithIntn replaces the random source. intn must return a value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(s *Selector) {
		s.intn = intn
	}
}

// Selector picks feedback phrases while avoiding recent repeats. History is
// kept per pool for the lifetime of the Selector. It is safe for concurrent
// use.
type Selector struct {
	intn func(n int) int

	mu     sync.Mutex
	recent map[Pool][]int
}

// NewSelector creates a Selector backed by math/rand/v2 unless overridden.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		intn:   rand.IntN,
		recent: make(map[Pool][]int),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PickPositive selects a praise phrase for the tier matching correctCount.
func (s *Selector) PickPositive(correctCount int) Pick {
	tier := TierForCount(correctCount)
	pool := TierPool(tier)
	idx := s.pick(pool, len(positiveTiers[tier]))
	return Pick{Pool: pool, Tier: tier, Index: idx, Phrase: positiveTiers[tier][idx]}
}

// PickEncouragement selects a wrong-answer line.
func (s *Selector) PickEncouragement() Pick {
	idx := s.pick(EncouragementPool, len(encouragement))
	return Pick{Pool: EncouragementPool, Tier: -1, Index: idx, Phrase: encouragement[idx]}
}

// Recent returns a copy of the remembered picks for pool, oldest first.
func (s *Selector) Recent(pool Pool) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.recent[pool]...)
}

func (s *Selector) pick(pool Pool, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, recent := pickAvoiding(n, s.recent[pool], s.intn)
	s.recent[pool] = recent
	return idx
}

// pickAvoiding draws an index in [0, n) that is not in recent, giving up
// after maxDraws and keeping the last draw. It returns the index and the
// updated history trimmed to recentWindow entries.
func pickAvoiding(n int, recent []int, intn func(int) int) (int, []int) {
	var idx int
	for draws := 0; draws < maxDraws; draws++ {
		idx = intn(n)
		if !slices.Contains(recent, idx) {
			break
		}
	}
	recent = append(recent, idx)
	if len(recent) > recentWindow {
		recent = append([]int(nil), recent[len(recent)-recentWindow:]...)
	}
	return idx, recent
}
