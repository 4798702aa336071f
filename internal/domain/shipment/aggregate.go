package shipment

import (
	"strings"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Default estimate constants, in pounds.
const (
	DefaultEstimateBaseLb      int64 = 130
	DefaultEstimateIncrementLb int64 = 30
)

// Fallback field names
const (
	FieldPackageCount = "package.count"
	FieldWeightValue  = "package.weight"
	FieldWeightUnit   = "package.weight_unit"
	FieldItemQuantity = "item.quantity"
)

// Fallback records one source field that degraded to a default.
type Fallback struct {
	// Record is the index of the record inside its group.
	Record int    `json:"record"`
	Field  string `json:"field"`
	Raw    string `json:"raw"`
}

// WeightPolicy holds the quantity-based weight estimate constants.
type WeightPolicy struct {
	BaseLb      int64
	IncrementLb int64
}

// DefaultWeightPolicy returns base 130 lb plus 30 lb per extra unit.
func DefaultWeightPolicy() WeightPolicy {
	return WeightPolicy{
		BaseLb:      DefaultEstimateBaseLb,
		IncrementLb: DefaultEstimateIncrementLb,
	}
}

// Estimate returns the estimated weight for a total item quantity.
func (p WeightPolicy) Estimate(quantity int64) int64 {
	if quantity <= 1 {
		return p.BaseLb
	}
	return p.BaseLb + p.IncrementLb*(quantity-1)
}

// AggregateTotals is computed once per group and never mutated.
type AggregateTotals struct {
	TotalPackages int64 `json:"total_packages"`
	// TotalWeight is in pounds at valueobject.WeightPrecision places.
	TotalWeight     decimal.Decimal `json:"total_weight"`
	DisplayWeight   int64           `json:"display_weight"`
	TotalQuantity   int64           `json:"total_quantity"`
	EstimatedWeight int64           `json:"estimated_weight"`
	Fallbacks       []Fallback      `json:"fallbacks,omitempty"`
}

// FallbackCount returns how many fields fell back to defaults.
func (t AggregateTotals) FallbackCount() int {
	return len(t.Fallbacks)
}

// Aggregator computes AggregateTotals. It is safe for concurrent use.
type Aggregator struct {
	policy WeightPolicy
}

// NewAggregator creates an aggregator with the given estimate policy.
func NewAggregator(policy WeightPolicy) *Aggregator {
	return &Aggregator{policy: policy}
}

// Policy returns the estimate policy.
func (a *Aggregator) Policy() WeightPolicy {
	return a.policy
}

// Aggregate sums packages, weight and quantity across every record of g.
// Malformed numbers degrade to defaults and are listed in Fallbacks.
func (a *Aggregator) Aggregate(g *Group) AggregateTotals {
	var (
		packages  int64
		quantity  int64
		weight    = decimal.Zero
		fallbacks []Fallback
	)

	flag := func(record int, field, raw string) {
		fallbacks = append(fallbacks, Fallback{Record: record, Field: field, Raw: raw})
	}

	if g != nil {
		for idx, rec := range g.Records {
			for _, pkg := range rec.Packages {
				count := pkg.Count.Int()
				if count.UsedDefault {
					flag(idx, FieldPackageCount, pkg.Count.Raw())
				}
				multiplier := max(count.Value, 1)
				packages += multiplier

				lb, check := packageWeight(pkg)
				if !check.value {
					flag(idx, FieldWeightValue, pkg.Weight.Raw())
				}
				if !check.unit {
					flag(idx, FieldWeightUnit, pkg.WeightUnit)
				}
				weight = weight.Add(lb.Mul(decimal.NewFromInt(multiplier)))
			}

			for _, item := range rec.Items {
				q := item.Quantity.Int()
				if q.UsedDefault || q.Value < 0 {
					flag(idx, FieldItemQuantity, item.Quantity.Raw())
				}
				if q.Value > 0 {
					quantity += q.Value
				}
			}
		}
	}

	if packages == 0 {
		packages = 1
	}
	weight = weight.Round(valueobject.WeightPrecision)

	return AggregateTotals{
		TotalPackages:   packages,
		TotalWeight:     weight,
		DisplayWeight:   weight.Round(0).IntPart(),
		TotalQuantity:   quantity,
		EstimatedWeight: a.policy.Estimate(quantity),
		Fallbacks:       fallbacks,
	}
}

type weightCheck struct {
	value bool
	unit  bool
}

// packageWeight returns the per-package weight in pounds. An empty unit is
// read as pounds; an unknown unit or a missing, malformed or negative value
// contributes zero. Both assumptions are reported through weightCheck.
func packageWeight(pkg PackageDescriptor) (decimal.Decimal, weightCheck) {
	check := weightCheck{value: true, unit: true}

	v := pkg.Weight.Decimal()
	if v.UsedDefault || v.Value.IsNegative() {
		check.value = false
		return decimal.Zero, check
	}

	unit, known := valueobject.ParseWeightUnit(pkg.WeightUnit)
	if !known {
		check.unit = false
		if strings.TrimSpace(pkg.WeightUnit) != "" {
			return decimal.Zero, check
		}
		unit = valueobject.WeightUnitPound
	}
	return unit.ToPounds(v.Value), check
}
