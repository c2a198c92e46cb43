package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ShareCategory is a first-class revenue recipient category. Distribution is
// keyed by these values, never by matching names against substrings.
type ShareCategory string

const (
	CategoryValid     ShareCategory = "VALID" // platform share
	CategoryVendor    ShareCategory = "VENDOR"
	CategoryPool      ShareCategory = "POOL"
	CategoryPromoter  ShareCategory = "PROMOTER"
	CategoryExecutive ShareCategory = "EXECUTIVE"
)

// ShareCategories lists all categories in deterministic allocation order.
func ShareCategories() []ShareCategory {
	return []ShareCategory{CategoryValid, CategoryVendor, CategoryPool, CategoryPromoter, CategoryExecutive}
}

// shareSumTolerance bounds the accepted drift of the percentage sum from 100.
const shareSumTolerance = 0.01

// RevenueProfile is a named percentage-split configuration. Shares must sum
// to 100 within tolerance; Residual names the category that absorbs the
// truncation remainder so allocations always sum to the gross exactly.
type RevenueProfile struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	ValidPct     float64       `json:"valid_pct"`
	VendorPct    float64       `json:"vendor_pct"`
	PoolPct      float64       `json:"pool_pct"`
	PromoterPct  float64       `json:"promoter_pct"`
	ExecutivePct float64       `json:"executive_pct"`
	Residual     ShareCategory `json:"residual"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Share returns the percentage configured for a category.
func (p *RevenueProfile) Share(c ShareCategory) float64 {
	switch c {
	case CategoryValid:
		return p.ValidPct
	case CategoryVendor:
		return p.VendorPct
	case CategoryPool:
		return p.PoolPct
	case CategoryPromoter:
		return p.PromoterPct
	case CategoryExecutive:
		return p.ExecutivePct
	}
	return 0
}

// ShareSum returns the total of all configured percentages.
func (p *RevenueProfile) ShareSum() float64 {
	return p.ValidPct + p.VendorPct + p.PoolPct + p.PromoterPct + p.ExecutivePct
}

// Validate checks the profile invariants: non-negative shares summing to 100
// within tolerance, and a known residual category.
func (p *RevenueProfile) Validate() error {
	for _, c := range ShareCategories() {
		if p.Share(c) < 0 {
			return Validationf("share %s must not be negative", c)
		}
	}
	if sum := p.ShareSum(); math.Abs(sum-100) > shareSumTolerance {
		return ErrShareSum{Sum: sum}
	}
	switch p.Residual {
	case CategoryValid, CategoryVendor, CategoryPool, CategoryPromoter, CategoryExecutive:
	default:
		return Validationf("unknown residual category %q", p.Residual)
	}
	return nil
}

// Split maps each category to its allocated cents.
type Split map[ShareCategory]Money

// Total returns the sum of all allocations.
func (s Split) Total() Money {
	var t Money
	for _, v := range s {
		t += v
	}
	return t
}

// ComputeSplit allocates a non-negative gross across the profile's shares.
// Each cut is floor(gross * pct / 100); the truncation remainder goes to the
// profile's residual category, so the allocations always sum to gross exactly.
// Pure function, no side effects.
func ComputeSplit(gross Money, profile *RevenueProfile) (Split, error) {
	if gross < 0 {
		return nil, Validationf("gross must not be negative, got %d", gross)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	split := make(Split, 5)
	var allocated Money
	for _, c := range ShareCategories() {
		cut := Money(math.Floor(float64(gross) * profile.Share(c) / 100))
		split[c] = cut
		allocated += cut
	}
	split[profile.Residual] += gross - allocated
	return split, nil
}
