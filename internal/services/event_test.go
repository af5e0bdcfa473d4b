package services

import (
	"context"
	"testing"
	"time"

	"calmerge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventFixture(events ...*domain.Event) (*fakeUserRepo, *fakeEventRepo, domain.EventService) {
	users := newFakeUserRepo(
		testUser("u1", "u1@example.com", "Ada"),
		testUser("u2", "u2@example.com", "Grace"),
		testUser("u3", "u3@example.com", "Edsger"),
	)
	repo := newFakeEventRepo(events...)
	return users, repo, NewEventService(repo, users, 5*time.Second)
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		creatorID  string
		title      string
		start, end time.Time
		invitees   []string
		wantErr    error
	}{
		{
			name:      "success",
			creatorID: "u1",
			title:     "Planning",
			start:     tstamp(10, 0),
			end:       tstamp(11, 0),
			invitees:  []string{"u2"},
		},
		{
			name:      "empty title",
			creatorID: "u1",
			title:     "",
			start:     tstamp(10, 0),
			end:       tstamp(11, 0),
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "start equals end",
			creatorID: "u1",
			title:     "Planning",
			start:     tstamp(10, 0),
			end:       tstamp(10, 0),
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "start after end",
			creatorID: "u1",
			title:     "Planning",
			start:     tstamp(11, 0),
			end:       tstamp(10, 0),
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "unknown creator",
			creatorID: "ghost",
			title:     "Planning",
			start:     tstamp(10, 0),
			end:       tstamp(11, 0),
			wantErr:   domain.ErrUserNotFound,
		},
		{
			name:      "unknown invitee",
			creatorID: "u1",
			title:     "Planning",
			start:     tstamp(10, 0),
			end:       tstamp(11, 0),
			invitees:  []string{"ghost"},
			wantErr:   domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newEventFixture()
			event, err := svc.CreateEvent(ctx, tt.creatorID, tt.title, nil, domain.StatusTodo, tt.start, tt.end, tt.invitees)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, event.ID)
			assert.Equal(t, tt.creatorID, event.Creator.ID)
		})
	}
}

func TestCreateEvent_InviteesDedupedAndCreatorExcluded(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newEventFixture()

	event, err := svc.CreateEvent(ctx, "u1", "Planning", nil, domain.StatusTodo,
		tstamp(10, 0), tstamp(11, 0), []string{"u2", "u1", "u2", "u3"})
	require.NoError(t, err)

	ids := make([]string, len(event.Invitees))
	for i, p := range event.Invitees {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"u2", "u3"}, ids)
}

func TestCreateEvent_DefaultStatus(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newEventFixture()

	event, err := svc.CreateEvent(ctx, "u1", "Planning", nil, "", tstamp(10, 0), tstamp(11, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, event.Status)
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()
	base := testEvent("e1", "Planning", tstamp(10, 0), tstamp(11, 0), "u1", "u2")

	t.Run("only creator may update", func(t *testing.T) {
		_, _, svc := newEventFixture(base)
		_, err := svc.UpdateEvent(ctx, "e1", "u2", domain.EventUpdate{})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("time change revalidated", func(t *testing.T) {
		ev := testEvent("e1", "Planning", tstamp(10, 0), tstamp(11, 0), "u1", "u2")
		_, _, svc := newEventFixture(ev)
		badStart := tstamp(12, 0)
		_, err := svc.UpdateEvent(ctx, "e1", "u1", domain.EventUpdate{StartTime: &badStart})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("title and status updated", func(t *testing.T) {
		ev := testEvent("e1", "Planning", tstamp(10, 0), tstamp(11, 0), "u1", "u2")
		_, _, svc := newEventFixture(ev)
		title := "Sprint planning"
		status := domain.StatusInProgress
		updated, err := svc.UpdateEvent(ctx, "e1", "u1", domain.EventUpdate{Title: &title, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, "Sprint planning", updated.Title)
		assert.Equal(t, domain.StatusInProgress, updated.Status)
	})

	t.Run("invitee replacement drops creator", func(t *testing.T) {
		ev := testEvent("e1", "Planning", tstamp(10, 0), tstamp(11, 0), "u1", "u2")
		_, repo, svc := newEventFixture(ev)
		invitees := []string{"u1", "u3"}
		_, err := svc.UpdateEvent(ctx, "e1", "u1", domain.EventUpdate{InviteeIDs: &invitees})
		require.NoError(t, err)
		stored, err := repo.GetByID(ctx, "e1")
		require.NoError(t, err)
		require.Len(t, stored.Invitees, 1)
		assert.Equal(t, "u3", stored.Invitees[0].ID)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, _, svc := newEventFixture()
		_, err := svc.UpdateEvent(ctx, "missing", "u1", domain.EventUpdate{})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGetEvent(t *testing.T) {
	ctx := context.Background()
	ev := testEvent("e1", "Planning", tstamp(10, 0), tstamp(11, 0), "u1", "u2")
	_, _, svc := newEventFixture(ev)

	t.Run("creator can read", func(t *testing.T) {
		got, err := svc.GetEvent(ctx, "e1", "u1")
		require.NoError(t, err)
		assert.Equal(t, "e1", got.ID)
	})

	t.Run("invitee can read", func(t *testing.T) {
		_, err := svc.GetEvent(ctx, "e1", "u2")
		require.NoError(t, err)
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		_, err := svc.GetEvent(ctx, "e1", "u3")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("creator deletes", func(t *testing.T) {
		ev := testEvent("e1", "Planning", tstamp(10, 0), tstamp(11, 0), "u1", "u2")
		_, repo, svc := newEventFixture(ev)
		require.NoError(t, svc.DeleteEvent(ctx, "e1", "u1"))
		_, err := repo.GetByID(ctx, "e1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invitee cannot delete", func(t *testing.T) {
		ev := testEvent("e1", "Planning", tstamp(10, 0), tstamp(11, 0), "u1", "u2")
		_, _, svc := newEventFixture(ev)
		require.ErrorIs(t, svc.DeleteEvent(ctx, "e1", "u2"), domain.ErrForbidden)
	})
}
