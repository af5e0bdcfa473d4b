// Package merge implements the overlap-detection, grouping, and
// merge-resolution engine for calendar events. Everything in this package is
// pure computation over an in-memory snapshot; persistence and dispatch live
// in the services layer.
package merge

import (
	"time"

	"calmerge/internal/domain"
)

// Overlaps reports whether two time ranges intersect. Boundaries are
// inclusive: back-to-back events whose end and start touch count as
// overlapping so they consolidate too.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ShareParticipantBesides reports whether a and b have a common participant
// other than the given user. The user is the common thread of every
// candidate pair and must not count as the shared participant.
func ShareParticipantBesides(a, b *domain.Event, userID string) bool {
	seen := make(map[string]struct{})
	for _, p := range a.Participants() {
		if p.ID == userID {
			continue
		}
		seen[p.ID] = struct{}{}
	}
	for _, p := range b.Participants() {
		if p.ID == userID {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			return true
		}
	}
	return false
}
