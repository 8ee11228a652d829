package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/distribution"
)

type allocationView struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
	First  int    `json:"first,omitempty"`
	Last   int    `json:"last,omitempty"`
}

type splitPreview struct {
	Kind        distribution.Kind `json:"kind"`
	Leads       int               `json:"leads"`
	Allocations []allocationView  `json:"allocations"`
}

// newSplitPreviewCmd prints what an initial split, and optionally a
// removal, would do for lead positions 1..n. Nothing is read or written.
func newSplitPreviewCmd() *cobra.Command {
	var (
		leads  int
		users  []string
		remove string
	)

	cmd := &cobra.Command{
		Use:   "split-preview",
		Short: "Preview how leads would be split across users (offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if leads < 0 {
				return fmt.Errorf("--leads must be >= 0")
			}
			positions := make([]int, leads)
			for i := range positions {
				positions[i] = i + 1
			}

			previews := []splitPreview{view(distribution.Split(positions, users))}
			if remove != "" {
				split := distribution.Split(positions, users)
				owned := split.For(remove)
				if owned == nil && !contains(users, remove) {
					return fmt.Errorf("--remove %q is not one of --users", remove)
				}
				remaining := make([]string, 0, len(users))
				for _, u := range users {
					if u != remove {
						remaining = append(remaining, u)
					}
				}
				previews = append(previews, view(distribution.Redistribute(remove, owned, remaining)))
			}
			return writeJSON(cmd.OutOrStdout(), previews)
		},
	}
	cmd.Flags().IntVar(&leads, "leads", 0, "Number of leads in the pool")
	cmd.Flags().StringSliceVar(&users, "users", nil, "Comma separated user IDs in assignment order (required)")
	cmd.Flags().StringVar(&remove, "remove", "", "Also preview removing this user after the split")
	_ = cmd.MarkFlagRequired("users")
	return cmd
}

func view(p distribution.Plan[int]) splitPreview {
	out := splitPreview{Kind: p.Kind, Leads: p.Total(), Allocations: []allocationView{}}
	for _, a := range p.Allocations {
		v := allocationView{UserID: a.UserID, Count: len(a.Leads)}
		if len(a.Leads) > 0 {
			v.First, v.Last = a.Leads[0], a.Leads[len(a.Leads)-1]
		}
		out.Allocations = append(out.Allocations, v)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
