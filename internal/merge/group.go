package merge

import (
	"time"

	"calmerge/internal/domain"
)

// Groups partitions the candidate events into merge groups of size >= 2
// using transitive closure over MayMerge: if A may merge with B and B with
// C, all three form one group even when A and C individually fail the
// pairwise test. The relation is evaluated lazily by fixed-point expansion
// instead of materializing an adjacency list; per-user candidate sets are
// small. Singletons are not groups and are dropped.
func Groups(events []*domain.Event, userID string) [][]*domain.Event {
	processed := make([]bool, len(events))
	var groups [][]*domain.Event

	for seed := range events {
		if processed[seed] {
			continue
		}
		processed[seed] = true
		group := []*domain.Event{events[seed]}

		// Expand until a full pass adds nothing.
		for grew := true; grew; {
			grew = false
			for j := range events {
				if processed[j] {
					continue
				}
				for _, member := range group {
					if MayMerge(member, events[j], userID) {
						group = append(group, events[j])
						processed[j] = true
						grew = true
						break
					}
				}
			}
		}

		if len(group) >= 2 {
			groups = append(groups, group)
		}
	}
	return groups
}

// SelectGroup picks the group to merge: the one with the most members.
// Equal-size groups are broken by earliest minimum start time, then by
// discovery order, so selection is deterministic for a fixed input order.
func SelectGroup(groups [][]*domain.Event) []*domain.Event {
	var best []*domain.Event
	var bestStart time.Time
	for _, g := range groups {
		start := minStart(g)
		if best == nil || len(g) > len(best) || (len(g) == len(best) && start.Before(bestStart)) {
			best = g
			bestStart = start
		}
	}
	return best
}

func minStart(group []*domain.Event) time.Time {
	start := group[0].StartTime
	for _, e := range group[1:] {
		if e.StartTime.Before(start) {
			start = e.StartTime
		}
	}
	return start
}
