package distribution

// Split partitions leads across users for a newly created campaign.
//
// Each user except the last receives exactly len(leads)/len(users) leads as a
// contiguous slice in input order. The last user receives everything not yet
// consumed, so no lead is dropped even when the division is uneven. With no
// users the plan is empty and the leads stay unassigned.
func Split[L any](leads []L, users []string) Plan[L] {
	p := Plan[L]{Kind: KindInitialSplit}
	if len(users) == 0 {
		return p
	}

	base := len(leads) / len(users)
	p.Allocations = make([]Allocation[L], len(users))
	idx := 0
	for i, u := range users {
		end := idx + base
		if i == len(users)-1 {
			end = len(leads)
		}
		p.Allocations[i] = Allocation[L]{UserID: u, Leads: leads[idx:end:end]}
		idx += base
	}
	return p
}

// Redistribute hands a removed user's leads to the remaining users.
//
// Leads are cut into contiguous chunks of ceil(len(leads)/len(remaining)) and
// given to the remaining users in order. Trailing users may receive fewer
// leads, or none. The removed user never appears in the plan. With no
// remaining users the plan is empty.
func Redistribute[L any](removed string, leads []L, remaining []string) Plan[L] {
	p := Plan[L]{Kind: KindRedistribute, Additive: true}

	targets := make([]string, 0, len(remaining))
	for _, u := range remaining {
		if u != removed {
			targets = append(targets, u)
		}
	}
	if len(targets) == 0 {
		return p
	}

	chunk := ceilDiv(len(leads), len(targets))
	p.Allocations = make([]Allocation[L], len(targets))
	idx := 0
	for i, u := range targets {
		start := min(idx, len(leads))
		end := min(idx+chunk, len(leads))
		p.Allocations[i] = Allocation[L]{UserID: u, Leads: leads[start:end:end]}
		idx += chunk
	}
	return p
}

// Transfer moves every lead owned by from to to. A transfer onto the same
// user is a no-op plan.
func Transfer[L any](from, to string, owned []L) Plan[L] {
	p := Plan[L]{Kind: KindTransfer}
	if from == to {
		return p
	}
	p.Allocations = []Allocation[L]{{UserID: to, Leads: owned[:len(owned):len(owned)]}}
	return p
}

func ceilDiv(n, d int) int {
	if n == 0 {
		return 0
	}
	return (n + d - 1) / d
}
