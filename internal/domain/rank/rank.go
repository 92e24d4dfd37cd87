// Package rank holds the designer rank ladder and founder tiers.
//
// The ladder converts accumulated style credits (SC) into a standard rank and
// its revenue-share percentage. Founder tiers are purchased once and add a
// permanent bonus on top of the standard rank. All values are versioned
// business constants: a Ledger is built once at process start and shared
// read-only by every consumer.
package rank

import (
	"fmt"
	"math"
	"strings"
)

// MaxCommission is the platform-wide ceiling on a designer's revenue share.
const MaxCommission = 50.0

// Unbounded marks the open upper edge of the top standard rank.
const Unbounded int64 = math.MaxInt64

// Key identifies a rank or founder tier.
type Key string

// Standard ladder keys, lowest first.
const (
	Apprentice       Key = "apprentice"
	Stylist          Key = "stylist"
	Couturier        Key = "couturier"
	MasterCouturier  Key = "master_couturier"
	CreativeDirector Key = "creative_director"
)

// Founder tier keys.
const (
	FounderOne Key = "f1"
	FounderTwo Key = "f2"
)

// ParseKey converts an external identifier into a Key.
func ParseKey(raw string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case Apprentice, Stylist, Couturier, MasterCouturier, CreativeDirector, FounderOne, FounderTwo:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRank, raw)
}

// Definition is one immutable row of the rank table.
type Definition struct {
	Key        Key     `json:"key"`
	Name       string  `json:"name"`
	Commission float64 `json:"commission"` // percent; for founders this equals Bonus
	MinSC      int64   `json:"min_sc"`
	MaxSC      int64   `json:"max_sc"` // exclusive
	Founder    bool    `json:"founder"`
	Order      int     `json:"order"`

	// Founder-only fields.
	Bonus      float64 `json:"bonus,omitempty"`
	PriceCents int64   `json:"price_cents,omitempty"`
	SlotCap    int     `json:"slot_cap,omitempty"`
}

// Contains reports whether sc falls inside [MinSC, MaxSC).
func (d Definition) Contains(sc int64) bool {
	return !d.Founder && sc >= d.MinSC && sc < d.MaxSC
}

var standardTable = [...]Definition{
	{Key: Apprentice, Name: "Apprentice", Commission: 10, MinSC: 0, MaxSC: 500, Order: 0},
	{Key: Stylist, Name: "Stylist", Commission: 18, MinSC: 500, MaxSC: 1500, Order: 1},
	{Key: Couturier, Name: "Couturier", Commission: 25, MinSC: 1500, MaxSC: 3000, Order: 2},
	{Key: MasterCouturier, Name: "Master Couturier", Commission: 32, MinSC: 3000, MaxSC: 5000, Order: 3},
	{Key: CreativeDirector, Name: "Creative Director", Commission: 40, MinSC: 5000, MaxSC: Unbounded, Order: 4},
}

var founderTable = [...]Definition{
	{Key: FounderOne, Name: "Founder I", Commission: 10, Bonus: 10, PriceCents: 24900, SlotCap: 100, Founder: true, Order: 100},
	{Key: FounderTwo, Name: "Founder II", Commission: 5, Bonus: 5, PriceCents: 9900, SlotCap: 500, Founder: true, Order: 101},
}

// Ledger is the read-only registry of rank definitions.
type Ledger struct {
	standard []Definition
	founders []Definition
	byKey    map[Key]Definition
}

// NewLedger builds the ledger from the constant tables.
func NewLedger() *Ledger {
	l := &Ledger{
		standard: append([]Definition(nil), standardTable[:]...),
		founders: append([]Definition(nil), founderTable[:]...),
		byKey:    make(map[Key]Definition, len(standardTable)+len(founderTable)),
	}
	for _, d := range l.standard {
		l.byKey[d.Key] = d
	}
	for _, d := range l.founders {
		l.byKey[d.Key] = d
	}
	return l
}

// Standard returns a copy of the standard ladder, lowest rank first.
func (l *Ledger) Standard() []Definition {
	return append([]Definition(nil), l.standard...)
}

// Founders returns a copy of the founder tiers.
func (l *Ledger) Founders() []Definition {
	return append([]Definition(nil), l.founders...)
}

// Lowest returns the entry rank of the standard ladder.
func (l *Ledger) Lowest() Definition {
	return l.standard[0]
}

// Lookup returns the definition for key.
func (l *Ledger) Lookup(key Key) (Definition, bool) {
	d, ok := l.byKey[key]
	return d, ok
}

// Founder returns the founder tier for key, or ErrNotFounder if key names a
// standard rank.
func (l *Ledger) Founder(key Key) (Definition, error) {
	d, ok := l.byKey[key]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownRank, key)
	}
	if !d.Founder {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotFounder, key)
	}
	return d, nil
}

// ResolveOrLowest maps an external rank identifier to a definition. Unknown
// identifiers resolve to the lowest standard rank with ok=false; callers must
// log that case as a data-quality signal.
func (l *Ledger) ResolveOrLowest(raw string) (def Definition, ok bool) {
	k, err := ParseKey(raw)
	if err != nil {
		return l.Lowest(), false
	}
	return l.byKey[k], true
}

// ForSC returns the highest standard rank whose MinSC <= sc.
func (l *Ledger) ForSC(sc int64) Definition {
	current := l.standard[0]
	for _, d := range l.standard {
		if d.MinSC <= sc {
			current = d
		}
	}
	return current
}

// Next returns the standard rank that follows def.
func (l *Ledger) Next(def Definition) (Definition, bool) {
	if def.Founder {
		return Definition{}, false
	}
	for i, d := range l.standard {
		if d.Key == def.Key && i+1 < len(l.standard) {
			return l.standard[i+1], true
		}
	}
	return Definition{}, false
}

// Progress returns how far sc has advanced from def toward the next rank,
// as a percentage in [0,100]. Founder tiers and the top rank report 100.
func (l *Ledger) Progress(def Definition, sc int64) float64 {
	next, ok := l.Next(def)
	if !ok {
		return 100
	}
	span := float64(next.MinSC - def.MinSC)
	if span <= 0 {
		return 100
	}
	pct := float64(sc-def.MinSC) / span * 100
	return math.Max(0, math.Min(100, pct))
}

// EffectiveCommission combines a standard rank with an optional founder tier
// and clamps the result at MaxCommission. Every payout path goes through here.
func (l *Ledger) EffectiveCommission(standard Definition, founder *Definition) float64 {
	total := standard.Commission
	if founder != nil && founder.Founder {
		total += founder.Bonus
	}
	return math.Min(MaxCommission, total)
}
