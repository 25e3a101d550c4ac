package core

// Category labels of an aggregate, in display order.
const (
	LabelAdded     = "Added"
	LabelSpent     = "Spent"
	LabelSaved     = "Saved"
	LabelMovedBack = "Moved Back"
)

// Totals sums ledger amounts by category.
type Totals struct {
	Added     float64
	Spent     float64
	Saved     float64
	MovedBack float64
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// Categories returns the four categories in display order.
func (t Totals) Categories() []CategoryAmount {
	return []CategoryAmount{
		{Name: LabelAdded, Amount: t.Added},
		{Name: LabelSpent, Amount: t.Spent},
		{Name: LabelSaved, Amount: t.Saved},
		{Name: LabelMovedBack, Amount: t.MovedBack},
	}
}

// Map returns the totals keyed by label.
func (t Totals) Map() map[string]float64 {
	out := make(map[string]float64, 4)
	for _, c := range t.Categories() {
		out[c.Name] = c.Amount
	}
	return out
}

// Composition is the three-way split of all funds ever held: what is in the
// account, what is in savings, and what has been spent over the lifetime of
// the ledger.
type Composition struct {
	Account float64
	Savings float64
	Spent   float64
}

func (c Composition) Total() float64 {
	return c.Account + c.Savings + c.Spent
}

// Empty reports whether there is nothing to show.
func (c Composition) Empty() bool {
	return c.Total() <= 0
}

// Shares returns each part as a percent of the total, in the order
// account, savings, spent. All zero when the composition is empty.
func (c Composition) Shares() [3]float64 {
	total := c.Total()
	if total <= 0 {
		return [3]float64{}
	}
	return [3]float64{c.Account / total * 100, c.Savings / total * 100, c.Spent / total * 100}
}
