package distribution

// Kind identifies which distribution produced a Plan.
type Kind string

const (
	KindInitialSplit Kind = "initial_split"
	KindRedistribute Kind = "remove_and_redistribute"
	KindTransfer     Kind = "transfer"
)

// Allocation is the ordered slice of leads handed to one user.
type Allocation[L any] struct {
	UserID string
	Leads  []L
}

// Plan is the result of a distribution. Allocations follow the order of the
// users passed in. Additive plans add to a user's existing ledger counter;
// non-additive plans overwrite it.
type Plan[L any] struct {
	Kind        Kind
	Additive    bool
	Allocations []Allocation[L]
}

// Total returns the number of leads allocated across all users.
func (p Plan[L]) Total() int {
	n := 0
	for _, a := range p.Allocations {
		n += len(a.Leads)
	}
	return n
}

// Counts returns the number of leads allocated to each user.
func (p Plan[L]) Counts() map[string]int {
	out := make(map[string]int, len(p.Allocations))
	for _, a := range p.Allocations {
		out[a.UserID] += len(a.Leads)
	}
	return out
}

// For returns the leads allocated to userID, or nil.
func (p Plan[L]) For(userID string) []L {
	for _, a := range p.Allocations {
		if a.UserID == userID {
			return a.Leads
		}
	}
	return nil
}

// Moves returns only the allocations that carry at least one lead.
func (p Plan[L]) Moves() []Allocation[L] {
	out := make([]Allocation[L], 0, len(p.Allocations))
	for _, a := range p.Allocations {
		if len(a.Leads) > 0 {
			out = append(out, a)
		}
	}
	return out
}

// Empty reports whether the plan allocates nothing to anyone.
func (p Plan[L]) Empty() bool {
	return len(p.Allocations) == 0
}
