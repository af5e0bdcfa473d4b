package merge

import (
	"sort"
	"strings"

	"calmerge/internal/domain"
)

// descriptionSeparator joins member descriptions with a blank line between.
const descriptionSeparator = "\n\n"

// Synthesize computes the single canonical event replacing a merge group.
// Members are ordered by ascending start time (ties keep input order); the
// result spans min start to max end, joins titles with " | " in that order
// (empty titles contribute empty segments, which is preserved as-is), keeps
// the highest-priority status, takes the earliest member's creator, and
// unions every member's participants into the invitee set minus the chosen
// creator. The draft has no ID and is not re-validated against create-time
// rules; the repository assigns an ID on insert.
func Synthesize(group []*domain.Event) *domain.Event {
	sorted := make([]*domain.Event, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	titles := make([]string, len(sorted))
	mergedFrom := make([]string, len(sorted))
	var descriptions []string
	status := sorted[0].Status
	start, end := sorted[0].StartTime, sorted[0].EndTime
	for i, e := range sorted {
		titles[i] = e.Title
		mergedFrom[i] = e.ID
		if e.Description != nil && strings.TrimSpace(*e.Description) != "" {
			descriptions = append(descriptions, *e.Description)
		}
		if e.Status.MergePriority() > status.MergePriority() {
			status = e.Status
		}
		if e.StartTime.Before(start) {
			start = e.StartTime
		}
		if e.EndTime.After(end) {
			end = e.EndTime
		}
	}

	creator := sorted[0].Creator
	seen := map[string]struct{}{creator.ID: {}}
	var invitees []domain.Participant
	for _, e := range sorted {
		for _, p := range e.Participants() {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			invitees = append(invitees, p)
		}
	}

	var description *string
	if len(descriptions) > 0 {
		joined := strings.Join(descriptions, descriptionSeparator)
		description = &joined
	}

	return &domain.Event{
		Title:       strings.Join(titles, " | "),
		Description: description,
		Status:      status,
		StartTime:   start,
		EndTime:     end,
		Creator:     creator,
		Invitees:    invitees,
		MergedFrom:  mergedFrom,
	}
}
