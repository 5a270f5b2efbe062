// Package compliance holds the behavior every SQL store must share.
package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/ptr"
)

// Store is every repository a backend implements.
type Store interface {
	task.Repository
	auth.AccountRepository
	meeting.Repository
}

// now returns the current instant at the precision every backend keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func newUser(t *testing.T, store Store, name string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Title:        "Engineer",
		Role:         role,
		AvatarURL:    domain.AvatarURLFor(name),
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now(),
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func newTask(creator *domain.User, assignee *domain.User, title string, due domain.Date) *domain.Task {
	ts := now()
	t := &domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   "details",
		CreatorID: creator.ID,
		Status:    domain.TaskStatusNotStarted,
		DueDate:   due,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if assignee != nil {
		t.AssigneeID = ptr.To(assignee.ID)
	}
	return t
}

// RunStoreComplianceTest runs a standard set of tests against a Store implementation.
// setup returns a fresh (empty) store and a cleanup function.
func RunStoreComplianceTest(t *testing.T, setup func() (Store, func())) {
	t.Run("Users", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		count, err := store.CountUsers(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		alice := newUser(t, store, "Alice", domain.UserRoleAdmin)
		bob := newUser(t, store, "Bob", domain.UserRoleUser)

		fetched, err := store.FindUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.Name, fetched.Name)
		assert.Equal(t, alice.Role, fetched.Role)
		assert.Equal(t, alice.PasswordHash, fetched.PasswordHash)
		assert.True(t, alice.CreatedAt.Equal(fetched.CreatedAt))

		byName, err := store.FindUserByName(ctx, "Bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, byName.ID)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)

		count, err = store.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		updated, err := store.UpdateUserRole(ctx, bob.ID, domain.UserRoleOperator)
		require.NoError(t, err)
		assert.Equal(t, domain.UserRoleOperator, updated.Role)
	})

	t.Run("UserErrors", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		newUser(t, store, "Alice", domain.UserRoleUser)
		dup := &domain.User{ID: uuid.NewString(), Name: "Alice", Role: domain.UserRoleUser, PasswordHash: "x", CreatedAt: now()}
		assert.ErrorIs(t, store.CreateUser(ctx, dup), domain.ErrUserExists)

		_, err := store.FindUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = store.FindUserByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = store.FindUserByName(ctx, "Nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = store.UpdateUserRole(ctx, uuid.NewString(), domain.UserRoleAdmin)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Sessions", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		user := newUser(t, store, "Alice", domain.UserRoleUser)
		expires := now().Add(time.Hour)
		session := &domain.Session{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			ShortToken: "a1b2c3d4e5f6",
			SecretHash: "hash",
			CreatedAt:  now(),
			ExpiresAt:  &expires,
		}
		require.NoError(t, store.CreateSession(ctx, session))

		fetched, err := store.FindSessionByShortToken(ctx, session.ShortToken)
		require.NoError(t, err)
		assert.Equal(t, session.ID, fetched.ID)
		assert.Equal(t, user.ID, fetched.UserID)
		assert.Nil(t, fetched.LastUsedAt)
		require.NotNil(t, fetched.ExpiresAt)
		assert.True(t, expires.Equal(*fetched.ExpiresAt))

		later := now().Add(time.Minute)
		require.NoError(t, store.UpdateSessionLastUsed(ctx, session.ID, later))
		// Older timestamps never move last_used_at backwards.
		require.NoError(t, store.UpdateSessionLastUsed(ctx, session.ID, later.Add(-time.Hour)))

		fetched, err = store.FindSessionByShortToken(ctx, session.ShortToken)
		require.NoError(t, err)
		require.NotNil(t, fetched.LastUsedAt)
		assert.True(t, later.Equal(*fetched.LastUsedAt))

		assert.ErrorIs(t, store.UpdateSessionLastUsed(ctx, uuid.NewString(), later), domain.ErrSessionNotFound)

		require.NoError(t, store.DeleteSession(ctx, session.ID))
		_, err = store.FindSessionByShortToken(ctx, session.ShortToken)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.ErrorIs(t, store.DeleteSession(ctx, session.ID), domain.ErrSessionNotFound)
	})

	t.Run("CreateAndFindTask", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		admin := newUser(t, store, "Alice", domain.UserRoleAdmin)
		worker := newUser(t, store, "Bob", domain.UserRoleUser)

		tk := newTask(admin, worker, "Write notes", domain.NewDate(2024, time.March, 15))
		created, err := store.CreateTask(ctx, tk)
		require.NoError(t, err)
		assert.Equal(t, tk.ID, created.ID)

		fetched, err := store.FindTaskByID(ctx, tk.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write notes", fetched.Title)
		assert.Equal(t, "details", fetched.Content)
		assert.Equal(t, admin.ID, fetched.CreatorID)
		assert.Equal(t, worker.ID, ptr.Deref(fetched.AssigneeID, ""))
		assert.Equal(t, domain.TaskStatusNotStarted, fetched.Status)
		assert.Equal(t, domain.NewDate(2024, time.March, 15), fetched.DueDate)
		assert.Nil(t, fetched.CompletedAt)
		assert.True(t, tk.CreatedAt.Equal(fetched.CreatedAt))

		unassigned := newTask(admin, nil, "Unassigned", domain.NewDate(2024, time.March, 16))
		created, err = store.CreateTask(ctx, unassigned)
		require.NoError(t, err)
		assert.Nil(t, created.AssigneeID)
	})

	t.Run("TaskErrors", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		admin := newUser(t, store, "Alice", domain.UserRoleAdmin)
		tk := newTask(admin, nil, "Ghost assignee", domain.NewDate(2024, time.March, 15))
		tk.AssigneeID = ptr.To(uuid.NewString())
		_, err := store.CreateTask(ctx, tk)
		assert.ErrorIs(t, err, domain.ErrAssigneeNotFound)

		_, err = store.FindTaskByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		_, err = store.FindTaskByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		missing := newTask(admin, nil, "Missing", domain.NewDate(2024, time.March, 15))
		_, err = store.UpdateTask(ctx, missing)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		assert.ErrorIs(t, store.DeleteTask(ctx, missing.ID), domain.ErrTaskNotFound)
	})

	t.Run("ListTasksOrderAndFilters", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		admin := newUser(t, store, "Alice", domain.UserRoleAdmin)
		worker := newUser(t, store, "Bob", domain.UserRoleUser)

		late := newTask(admin, worker, "late", domain.NewDate(2024, time.March, 20))
		early := newTask(admin, nil, "early", domain.NewDate(2024, time.March, 1))
		mid := newTask(admin, worker, "mid", domain.NewDate(2024, time.March, 10))
		mid.Status = domain.TaskStatusInProgress
		mid.Progress = 40
		for _, tk := range []*domain.Task{late, early, mid} {
			_, err := store.CreateTask(ctx, tk)
			require.NoError(t, err)
		}

		all, err := store.ListTasks(ctx, domain.ListTasksParams{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"early", "mid", "late"}, titles(all))

		mine, err := store.ListTasks(ctx, domain.ListTasksParams{AssigneeID: ptr.To(worker.ID)})
		require.NoError(t, err)
		assert.Equal(t, []string{"mid", "late"}, titles(mine))

		active, err := store.ListTasks(ctx, domain.ListTasksParams{Statuses: []domain.TaskStatus{domain.TaskStatusInProgress}})
		require.NoError(t, err)
		assert.Equal(t, []string{"mid"}, titles(active))
		assert.Equal(t, 40, active[0].Progress)

		none, err := store.ListTasks(ctx, domain.ListTasksParams{AssigneeID: ptr.To(uuid.NewString())})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("UpdateTask", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		admin := newUser(t, store, "Alice", domain.UserRoleAdmin)
		tk := newTask(admin, admin, "Ship", domain.NewDate(2024, time.March, 1))
		_, err := store.CreateTask(ctx, tk)
		require.NoError(t, err)

		completedAt := now()
		tk.Status = domain.TaskStatusCompletedLate
		tk.Progress = 80
		tk.CompletedAt = &completedAt
		tk.DueDate = domain.NewDate(2024, time.April, 1)
		tk.UpdatedAt = completedAt

		updated, err := store.UpdateTask(ctx, tk)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompletedLate, updated.Status)
		assert.Equal(t, 80, updated.Progress)
		assert.Equal(t, domain.NewDate(2024, time.April, 1), updated.DueDate)
		require.NotNil(t, updated.CompletedAt)
		assert.True(t, completedAt.Equal(*updated.CompletedAt))
	})

	t.Run("StatusHistoryAndDeleteCascade", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		admin := newUser(t, store, "Alice", domain.UserRoleAdmin)
		tk := newTask(admin, nil, "History", domain.NewDate(2024, time.March, 1))
		_, err := store.CreateTask(ctx, tk)
		require.NoError(t, err)

		start := now()
		notStarted := domain.TaskStatusNotStarted
		changes := []*domain.StatusChange{
			{ID: uuid.NewString(), TaskID: tk.ID, ToStatus: domain.TaskStatusNotStarted, ChangedBy: admin.ID, ChangedAt: start},
			{ID: uuid.NewString(), TaskID: tk.ID, FromStatus: &notStarted, ToStatus: domain.TaskStatusInProgress, Progress: 30, ChangedBy: admin.ID, ChangedAt: start.Add(time.Minute)},
		}
		for _, c := range changes {
			require.NoError(t, store.AppendStatusChange(ctx, c))
		}

		history, err := store.ListStatusChanges(ctx, tk.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Nil(t, history[0].FromStatus)
		assert.Equal(t, "NOT_STARTED", ptr.ToString(history[1].FromStatus))
		assert.Equal(t, domain.TaskStatusInProgress, history[1].ToStatus)
		assert.Equal(t, 30, history[1].Progress)
		assert.True(t, start.Add(time.Minute).Equal(history[1].ChangedAt))

		require.NoError(t, store.DeleteTask(ctx, tk.ID))
		history, err = store.ListStatusChanges(ctx, tk.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("AtomicRollsBack", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		admin := newUser(t, store, "Alice", domain.UserRoleAdmin)
		boom := errors.New("boom")
		tk := newTask(admin, nil, "Never stored", domain.NewDate(2024, time.March, 1))

		err := store.Atomic(ctx, func(repo task.Repository) error {
			if _, err := repo.CreateTask(ctx, tk); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.FindTaskByID(ctx, tk.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		err = store.AtomicAccounts(ctx, func(repo auth.AccountRepository) error {
			u := &domain.User{ID: uuid.NewString(), Name: "Ghost", Role: domain.UserRoleUser, PasswordHash: "x", CreatedAt: now()}
			if err := repo.CreateUser(ctx, u); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.FindUserByName(ctx, "Ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Meetings", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		admin := newUser(t, store, "Alice", domain.UserRoleAdmin)
		older := &domain.Meeting{
			ID: uuid.NewString(), Title: "Kickoff", Date: now().Add(-24 * time.Hour),
			Content: "notes", Summary: "summary", CreatedBy: admin.ID, CreatedAt: now(),
		}
		newer := &domain.Meeting{
			ID: uuid.NewString(), Title: "Retro", Date: now(),
			Content: "Audio recording", Summary: "summary", CreatedBy: admin.ID, CreatedAt: now(),
			RecordingURL: ptr.To("file:///tmp/recordings/x"), RecordingMIMEType: ptr.To("audio/webm"),
		}
		require.NoError(t, store.CreateMeeting(ctx, older))
		require.NoError(t, store.CreateMeeting(ctx, newer))

		fetched, err := store.FindMeetingByID(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, "Retro", fetched.Title)
		assert.Equal(t, "audio/webm", ptr.Deref(fetched.RecordingMIMEType, ""))
		assert.True(t, newer.Date.Equal(fetched.Date))

		meetings, err := store.ListMeetings(ctx)
		require.NoError(t, err)
		require.Len(t, meetings, 2)
		assert.Equal(t, newer.ID, meetings[0].ID)
		assert.Nil(t, meetings[1].RecordingURL)

		_, err = store.FindMeetingByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
	})
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
