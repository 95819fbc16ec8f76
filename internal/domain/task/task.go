package task

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses progress linearly; Completed is terminal.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
}

func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Task struct {
	ID               uuid.UUID  `json:"id"`
	Description      string     `json:"description"`
	CustomerName     string     `json:"customer_name"`
	CustomerPhone    string     `json:"customer_phone"`
	LaptopBrand      string     `json:"laptop_brand"`
	LaptopModel      string     `json:"laptop_model"`
	TotalCost        float64    `json:"total_cost"`
	Status           Status     `json:"status"`
	AssignedWorkerID *uuid.UUID `json:"assigned_worker_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func New(description, customerName, customerPhone, brand, model string, totalCost float64) Task {
	now := time.Now().UTC()
	return Task{
		ID:            uuid.New(),
		Description:   description,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		LaptopBrand:   brand,
		LaptopModel:   model,
		TotalCost:     totalCost,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (t *Task) IsAssigned() bool {
	return t.AssignedWorkerID != nil
}

type ListFilters struct {
	Status      *Status
	AssignedTo  *uuid.UUID
	Unassigned  bool // WHERE assigned_worker_id IS NULL
	OpenOnly    bool // excludes Completed
	OldestFirst bool // ORDER BY created_at ASC (default is DESC)
}
