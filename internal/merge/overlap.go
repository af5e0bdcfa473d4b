package merge

import "calmerge/internal/domain"

// MayMerge reports whether two events qualify for consolidation on behalf of
// the given user: their time ranges intersect, they share a participant
// other than the user, and their titles are compatible in both directions.
// Status is not checked here; canceled events are filtered out of the
// candidate set before grouping.
func MayMerge(a, b *domain.Event, userID string) bool {
	if !Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
		return false
	}
	if !ShareParticipantBesides(a, b, userID) {
		return false
	}
	return TitlesCompatible(a.Title, b.Title)
}
