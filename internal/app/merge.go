package app

import (
	"slices"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Overwrite replaces the local record at Index with Quote.
type Overwrite struct {
	Index int
	Quote domain.Quote
}

// MergePlan is the set of changes one reconciliation cycle makes.
type MergePlan struct {
	Overwrites []Overwrite
	Adds       []domain.Quote
	Conflicts  []domain.Conflict
}

// Changed reports whether applying the plan would mutate the list.
func (p MergePlan) Changed() bool {
	return len(p.Overwrites) > 0 || len(p.Adds) > 0
}

// PlanMerge compares remote against the local snapshot and decides what to change.
//
// Records are matched by exact Text. For a remote record whose text exists
// locally, a differing category is a conflict and the remote category wins;
// the comparison is against the value as already patched earlier in this pass,
// so a repeated text can conflict more than once and the last occurrence wins.
// Only the category is overwritten. Conflicts are kept only for texts whose
// final category differs from the local one.
// A remote text absent locally is appended once, at the position of its first
// occurrence, carrying the record of its last occurrence. Added records are
// never conflict-checked in the same pass. Nothing is ever removed.
func PlanMerge(local, remote []domain.Quote) MergePlan {
	var plan MergePlan

	byText := make(map[string]int, len(local))
	for i, q := range local {
		if _, dup := byText[q.Text]; !dup {
			byText[q.Text] = i
		}
	}

	patched := make(map[int]domain.Quote)
	addIndex := make(map[string]int)

	for _, r := range remote {
		if i, ok := byText[r.Text]; ok {
			current, seen := patched[i]
			if !seen {
				current = local[i]
			}

			if current.Category == r.Category {
				continue
			}

			plan.Conflicts = append(plan.Conflicts, domain.Conflict{
				Text:           r.Text,
				LocalCategory:  current.Category,
				RemoteCategory: r.Category,
			})
			patched[i] = domain.Quote{ID: current.ID, Text: current.Text, Category: r.Category}

			continue
		}

		if j, ok := addIndex[r.Text]; ok {
			plan.Adds[j] = r

			continue
		}

		addIndex[r.Text] = len(plan.Adds)
		plan.Adds = append(plan.Adds, r)
	}

	indexes := make([]int, 0, len(patched))
	for i := range patched {
		indexes = append(indexes, i)
	}

	slices.Sort(indexes)

	overwritten := make(map[string]struct{}, len(indexes))

	for _, i := range indexes {
		if patched[i] != local[i] {
			plan.Overwrites = append(plan.Overwrites, Overwrite{Index: i, Quote: patched[i]})
			overwritten[local[i].Text] = struct{}{}
		}
	}

	// A text whose repeats settle back on the local category changed nothing.
	plan.Conflicts = slices.DeleteFunc(plan.Conflicts, func(c domain.Conflict) bool {
		_, ok := overwritten[c.Text]
		return !ok
	})

	return plan
}

// ApplyPlan returns a new slice with plan applied to local.
// An overwrite whose index no longer holds the same text, or an add whose
// text already exists, is skipped; the returned counts reflect what applied.
func ApplyPlan(local []domain.Quote, plan MergePlan) (merged []domain.Quote, updated, added int) {
	merged = slices.Clone(local)

	present := make(map[string]struct{}, len(merged)+len(plan.Adds))
	for _, q := range merged {
		present[q.Text] = struct{}{}
	}

	for _, o := range plan.Overwrites {
		if o.Index < 0 || o.Index >= len(merged) || merged[o.Index].Text != o.Quote.Text {
			continue
		}

		if merged[o.Index] != o.Quote {
			merged[o.Index] = o.Quote
			updated++
		}
	}

	for _, q := range plan.Adds {
		if _, ok := present[q.Text]; ok {
			continue
		}

		present[q.Text] = struct{}{}
		merged = append(merged, q)
		added++
	}

	return merged, updated, added
}
