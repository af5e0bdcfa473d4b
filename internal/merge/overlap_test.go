package merge

import (
	"testing"
	"time"

	"calmerge/internal/domain"

	"github.com/stretchr/testify/assert"
)

// at returns a fixed-day timestamp, keeping test tables readable.
func at(hour, min int) time.Time {
	return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
}

// ev builds a minimal event for engine tests. Participants carry IDs only.
func ev(id, title string, start, end time.Time, creatorID string, inviteeIDs ...string) *domain.Event {
	invitees := make([]domain.Participant, len(inviteeIDs))
	for i, pid := range inviteeIDs {
		invitees[i] = domain.Participant{ID: pid}
	}
	return &domain.Event{
		ID:        id,
		Title:     title,
		Status:    domain.StatusTodo,
		StartTime: start,
		EndTime:   end,
		Creator:   domain.Participant{ID: creatorID},
		Invitees:  invitees,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart, aEnd, bStart, bEnd time.Time
		want   bool
	}{
		{"partial overlap", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"containment", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"identical ranges", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"touching boundary", at(10, 0), at(11, 0), at(11, 0), at(12, 0), true},
		{"touching boundary reversed", at(11, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"disjoint", at(10, 0), at(11, 0), at(11, 1), at(12, 0), false},
		{"disjoint reversed", at(11, 1), at(12, 0), at(10, 0), at(11, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestShareParticipantBesides(t *testing.T) {
	tests := []struct {
		name string
		a, b *domain.Event
		want bool
	}{
		{
			name: "common invitee besides user",
			a:    ev("e1", "A", at(10, 0), at(11, 0), "u1", "u2"),
			b:    ev("e2", "B", at(10, 0), at(11, 0), "u1", "u2"),
			want: true,
		},
		{
			name: "only the invoking user in common",
			a:    ev("e1", "A", at(10, 0), at(11, 0), "u1", "u2"),
			b:    ev("e2", "B", at(10, 0), at(11, 0), "u1", "u3"),
			want: false,
		},
		{
			name: "creator of one is invitee of other",
			a:    ev("e1", "A", at(10, 0), at(11, 0), "u2", "u1"),
			b:    ev("e2", "B", at(10, 0), at(11, 0), "u1", "u2"),
			want: true,
		},
		{
			name: "no participants besides user at all",
			a:    ev("e1", "A", at(10, 0), at(11, 0), "u1"),
			b:    ev("e2", "B", at(10, 0), at(11, 0), "u1"),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShareParticipantBesides(tt.a, tt.b, "u1"))
			assert.Equal(t, tt.want, ShareParticipantBesides(tt.b, tt.a, "u1"))
		})
	}
}

func TestMayMerge(t *testing.T) {
	tests := []struct {
		name string
		a, b *domain.Event
		want bool
	}{
		{
			name: "overlapping, shared participant, compatible titles",
			a:    ev("e1", "Planning", at(10, 0), at(11, 0), "u1", "u2"),
			b:    ev("e2", "Team Meeting", at(10, 30), at(11, 30), "u1", "u2"),
			want: true,
		},
		{
			name: "no time overlap",
			a:    ev("e1", "Planning", at(9, 0), at(9, 30), "u1", "u2"),
			b:    ev("e2", "Team Meeting", at(10, 30), at(11, 30), "u1", "u2"),
			want: false,
		},
		{
			name: "no shared participant besides user",
			a:    ev("e1", "Planning", at(10, 0), at(11, 0), "u1", "u2"),
			b:    ev("e2", "Team Meeting", at(10, 30), at(11, 30), "u1", "u3"),
			want: false,
		},
		{
			name: "incompatible titles despite full overlap",
			a:    ev("e1", "1:1 manager call", at(10, 0), at(11, 0), "u1", "u2"),
			b:    ev("e2", "demo meeting", at(10, 0), at(11, 0), "u1", "u2"),
			want: false,
		},
		{
			name: "touching boundary merges",
			a:    ev("e1", "Planning", at(10, 0), at(11, 0), "u1", "u2"),
			b:    ev("e2", "Retro", at(11, 0), at(12, 0), "u1", "u2"),
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MayMerge(tt.a, tt.b, "u1"))
		})
	}
}
