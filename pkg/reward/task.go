package reward

import "time"

// Category enumerates task categories.
type Category string

const (
	CategorySocial       Category = "social"
	CategoryReferral     Category = "referral"
	CategoryContent      Category = "content"
	CategoryVerification Category = "verification"
)

// Valid reports whether c is a known task category.
func (c Category) Valid() bool {
	switch c {
	case CategorySocial, CategoryReferral, CategoryContent, CategoryVerification:
		return true
	}
	return false
}

// Task is a reward-earning mission. Tasks are never deleted, only
// deactivated, so completion history keeps valid references.
type Task struct {
	ID             int64
	Name           string
	Description    string
	Reward         int64
	Category       Category
	IsActive       bool
	MaxCompletions *int // nil means once per user
	CooldownHours  *int // nil means no wait between repeats
	CreatedAt      time.Time
}

// CompletionCap returns the effective repeat cap for the task.
func (t *Task) CompletionCap() int {
	if t.MaxCompletions == nil || *t.MaxCompletions < 1 {
		return 1
	}
	return *t.MaxCompletions
}

// Cooldown returns the configured wait between repeats, zero when unset.
func (t *Task) Cooldown() time.Duration {
	if t.CooldownHours == nil || *t.CooldownHours <= 0 {
		return 0
	}
	return time.Duration(*t.CooldownHours) * time.Hour
}

// TaskView is a task annotated with one user's completion progress.
type TaskView struct {
	Task
	CompletedCount  int
	LastCompletedAt *time.Time
}

// Completed reports whether the user has exhausted the task's repeat cap.
func (v *TaskView) Completed() bool {
	return v.CompletedCount >= v.CompletionCap()
}

// Completion is proof that a user finished a task once. Seq is the 1-based
// ordinal of the completion for the (user, task) pair; the unique index on
// (user_id, task_id, seq) is what arbitrates concurrent completions.
type Completion struct {
	ID          int64
	UserID      int64
	TaskID      int64
	Seq         int
	CompletedAt time.Time
}

// Referral is the immutable inviter -> invited edge. At most one edge may
// exist per invited user.
type Referral struct {
	ID        int64
	InviterID int64
	InvitedID int64
	Bonus     int64
	CreatedAt time.Time
}
