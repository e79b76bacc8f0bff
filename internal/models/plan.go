package models

import (
	"math"
	"strings"
)

// PlanType identifies a subscription tier.
type PlanType string

const (
	PlanBasic           PlanType = "Basic"
	PlanPremiumSolo     PlanType = "Premium Solo"
	PlanPremiumDuo      PlanType = "Premium Duo"
	PlanPremiumFamily   PlanType = "Premium Family"
	PlanPremiumBusiness PlanType = "Premium Business"
)

// PlanDuration is a billing cycle.
type PlanDuration string

const (
	Monthly PlanDuration = "Monthly"
	Yearly  PlanDuration = "Yearly"
)

const (
	DefaultPlanType     = PlanBasic
	DefaultPlanDuration = Monthly

	// BasicGroupLimit is how many groups a Basic account may save.
	BasicGroupLimit = 5
)

// Feature is a capability gated by plan.
type Feature string

const (
	FeatureGroups        Feature = "groups"
	FeatureNormalSplit   Feature = "normal_split"
	FeatureBudgetSplit   Feature = "budget_split"
	FeatureCurrencySplit Feature = "currency_split"
)

// Plan describes one entry of the plan catalogue.
type Plan struct {
	Type PlanType

	// MonthlyPrice and YearlyPrice are in USD. Zero means free.
	MonthlyPrice float64
	YearlyPrice  float64

	Features []Feature

	// MaxGroups is the number of saved groups allowed; math.MaxInt for unlimited.
	MaxGroups int
}

var (
	basicFeatures   = []Feature{FeatureGroups, FeatureNormalSplit}
	premiumFeatures = []Feature{FeatureGroups, FeatureNormalSplit, FeatureBudgetSplit, FeatureCurrencySplit}
)

// Plans is the catalogue in display order.
var Plans = []Plan{
	{Type: PlanBasic, Features: basicFeatures, MaxGroups: BasicGroupLimit},
	{Type: PlanPremiumSolo, MonthlyPrice: 2.99, YearlyPrice: 29.90, Features: premiumFeatures, MaxGroups: math.MaxInt},
	{Type: PlanPremiumDuo, MonthlyPrice: 4.98, YearlyPrice: 49.80, Features: premiumFeatures, MaxGroups: math.MaxInt},
	{Type: PlanPremiumFamily, MonthlyPrice: 12.99, YearlyPrice: 129.90, Features: premiumFeatures, MaxGroups: math.MaxInt},
	{Type: PlanPremiumBusiness, MonthlyPrice: 24.99, YearlyPrice: 249.90, Features: premiumFeatures, MaxGroups: math.MaxInt},
}

// LookupPlan returns the catalogue entry for t.
func LookupPlan(t PlanType) (Plan, bool) {
	for _, p := range Plans {
		if p.Type == t {
			return p, true
		}
	}
	return Plan{}, false
}

// ValidDuration reports whether d is a known billing cycle.
func ValidDuration(d PlanDuration) bool {
	return d == Monthly || d == Yearly
}

// IsPremium reports whether t is one of the premium tiers.
func (t PlanType) IsPremium() bool {
	return strings.HasPrefix(string(t), "Premium")
}

// Allows reports whether the plan includes feature f.
// Unknown plan types only get the Basic feature set.
func (t PlanType) Allows(f Feature) bool {
	p, ok := LookupPlan(t)
	if !ok {
		p, _ = LookupPlan(PlanBasic)
	}
	for _, have := range p.Features {
		if have == f {
			return true
		}
	}
	return false
}

// MaxGroups returns the saved-group limit for t.
func (t PlanType) MaxGroups() int {
	if p, ok := LookupPlan(t); ok {
		return p.MaxGroups
	}
	return BasicGroupLimit
}

// Price returns the price of the plan for the billing cycle d.
func (p Plan) Price(d PlanDuration) float64 {
	if d == Yearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}
