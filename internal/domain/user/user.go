package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
	RoleUser   Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWorker, RoleUser:
		return true
	}
	return false
}

// User is a staff or customer account. Workers carry the references of the
// tasks assigned to them; order within TaskIDs carries no meaning.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Image        string      `json:"image,omitempty"`
	Role         Role        `json:"role"`
	PasswordHash string      `json:"-"`
	TaskIDs      []uuid.UUID `json:"task_ids"`
	CreatedAt    time.Time   `json:"created_at"`
}

func New(name, email, image string, role Role, passwordHash string) User {
	return User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Image:        image,
		Role:         role,
		PasswordHash: passwordHash,
		TaskIDs:      []uuid.UUID{},
		CreatedAt:    time.Now().UTC(),
	}
}

// Load is the number of task references currently held.
func (u *User) Load() int {
	return len(u.TaskIDs)
}

func (u *User) HasTask(taskID uuid.UUID) bool {
	for _, id := range u.TaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}

type ListFilters struct {
	Role *Role
}
