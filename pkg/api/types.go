package api

// User is the public view of an account. The password hash never leaves
// the server.
type User struct {
	Username     string  `json:"username"`
	PlanType     string  `json:"planType"`
	PlanDuration string  `json:"planDuration"`
	Groups       []Group `json:"groups"`
}

// Group is a saved member list.
type Group struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Plan is one entry of the plan catalogue.
type Plan struct {
	Type         string   `json:"type"`
	MonthlyPrice float64  `json:"monthlyPrice"`
	YearlyPrice  float64  `json:"yearlyPrice"`
	Features     []string `json:"features"`
	// MaxGroups is zero for unlimited.
	MaxGroups int  `json:"maxGroups"`
	Premium   bool `json:"premium"`
}

// Share is one member's part of a split.
type Share struct {
	Member string  `json:"member"`
	Amount float64 `json:"amount"`
	// Display is Amount formatted in the split's currency.
	Display string `json:"display"`
}

// SplitResult is a computed split.
type SplitResult struct {
	Method   string  `json:"method"`
	Total    float64 `json:"total"`
	Entered  float64 `json:"entered"`
	Currency string  `json:"currency,omitempty"`
	Shares   []Share `json:"shares"`
}

// Validation explains why a split was not computed.
type Validation struct {
	// Kind is invalid, incomplete, exceeds or insufficient.
	Kind    string  `json:"kind"`
	Entered float64 `json:"entered"`
	Target  float64 `json:"target"`
	Message string  `json:"message"`
}

// BudgetState is the budget of the caller's session.
type BudgetState struct {
	Set       float64 `json:"set"`
	Remaining float64 `json:"remaining"`
	Active    bool    `json:"active"`
	Round     int     `json:"round"`
	Overspent float64 `json:"overspent,omitempty"`
}

// Currency is one entry of the rate table.
type Currency struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}
