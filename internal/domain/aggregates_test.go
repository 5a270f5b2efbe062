package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_Permissions(t *testing.T) {
	assignee := "user-2"
	task := &Task{ID: "task-1", AssigneeID: &assignee}

	admin := &User{ID: "user-1", Role: UserRoleAdmin}
	operator := &User{ID: "user-3", Role: UserRoleOperator}
	owner := &User{ID: "user-2", Role: UserRoleUser}
	other := &User{ID: "user-4", Role: UserRoleUser}

	assert.True(t, admin.CanEditStatus(task))
	assert.True(t, owner.CanEditStatus(task))
	assert.False(t, operator.CanEditStatus(task), "operators edit status only on their own tasks")
	assert.False(t, other.CanEditStatus(task))

	assert.True(t, admin.CanEditDueDate())
	assert.True(t, operator.CanEditDueDate())
	assert.False(t, owner.CanEditDueDate())

	assert.True(t, operator.CanManageTasks())
	assert.False(t, owner.CanManageTasks())

	assert.True(t, admin.CanManageUsers())
	assert.False(t, operator.CanManageUsers())
}

func TestUser_CanEditStatus_Unassigned(t *testing.T) {
	task := &Task{ID: "task-1"}
	assert.False(t, (&User{ID: "user-1", Role: UserRoleOperator}).CanEditStatus(task))
	assert.True(t, (&User{ID: "user-2", Role: UserRoleAdmin}).CanEditStatus(task))
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.False(t, (&Session{}).Expired(now), "sessions without expiry never expire")
	assert.True(t, (&Session{ExpiresAt: &past}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: &now}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: &future}).Expired(now))
}

func TestAvatarURLFor(t *testing.T) {
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=Li+Wei", AvatarURLFor("Li Wei"))
}

func TestDefaultMeetingTitle(t *testing.T) {
	assert.Equal(t, "Meeting notes 2024-06-01", DefaultMeetingTitle(NewDate(2024, time.June, 1)))
}
