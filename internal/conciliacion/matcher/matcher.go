package matcher

import "github.com/shopspring/decimal"

// MatchStatus represents the status of a match operation
type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "Matched"
	case Ambiguous:
		return "Ambiguous"
	case Unmatched:
		return "Unmatched"
	default:
		return "Unknown"
	}
}

// Sale is a ledger row a bank movement can settle against. Monto is the
// transfer portion of the sale, not necessarily its full total.
type Sale struct {
	ID       int64
	OrdenNum string
	Monto    decimal.Decimal
}

// MatchResult contains the result of a matching operation
type MatchResult struct {
	Status     MatchStatus
	Sale       *Sale  // when Matched
	Candidates []Sale // when Ambiguous
}

// Matcher pairs bank movements with sales one-to-one by exact amount.
// A matched sale is consumed and cannot be claimed twice; ambiguous
// movements consume nothing and are left for the cashier to resolve.
type Matcher struct {
	sales []Sale
	used  map[int64]bool
}

// New creates a Matcher over the day's transfer-paid sales.
func New(sales []Sale) *Matcher {
	return &Matcher{
		sales: sales,
		used:  make(map[int64]bool, len(sales)),
	}
}

// Match finds the unclaimed sale whose transfer amount equals monto.
func (m *Matcher) Match(monto decimal.Decimal) MatchResult {
	var candidates []Sale
	for _, s := range m.sales {
		if m.used[s.ID] {
			continue
		}
		if s.Monto.Equal(monto) {
			candidates = append(candidates, s)
		}
	}

	switch len(candidates) {
	case 0:
		return MatchResult{Status: Unmatched}
	case 1:
		m.used[candidates[0].ID] = true
		return MatchResult{
			Status: Matched,
			Sale:   &candidates[0],
		}
	default:
		return MatchResult{
			Status:     Ambiguous,
			Candidates: candidates,
		}
	}
}

// Unclaimed returns the sales no movement has matched, in input order.
func (m *Matcher) Unclaimed() []Sale {
	var rest []Sale
	for _, s := range m.sales {
		if !m.used[s.ID] {
			rest = append(rest, s)
		}
	}
	return rest
}
