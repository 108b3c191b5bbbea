package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Priority of an order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AssignmentType controls worker visibility: a general order is visible to
// every worker in the company without an explicit assignment row.
type AssignmentType string

const (
	AssignmentGeneral  AssignmentType = "general"
	AssignmentSpecific AssignmentType = "specific"
)

// Order is a unit of work tracked for a client.
type Order struct {
	OrderID        string         `json:"orderID" db:"order_id"`
	Title          string         `json:"title" db:"title"`
	Details        string         `json:"details" db:"details"`
	ClientName     string         `json:"clientName" db:"client_name"`
	DueDate        *time.Time     `json:"dueDate" db:"due_date"`
	Priority       Priority       `json:"priority" db:"priority"`
	Category       string         `json:"category" db:"category"`
	Status         OrderStatus    `json:"status" db:"status"`
	Quantity       int            `json:"quantity" db:"quantity"`
	AssignmentType AssignmentType `json:"assignmentType" db:"assignment_type"`
	ImageURLs      []string       `json:"imageURLs" db:"image_urls"`
	CompanyID      string         `json:"companyID" db:"company_id"`
	AuditFields
}

// OrderAssignment links an order to a worker profile, carrying per-worker
// flags. At most one row exists per (order, worker) pair.
type OrderAssignment struct {
	AssignmentID string    `json:"assignmentID" db:"assignment_id"`
	OrderID      string    `json:"orderID" db:"order_id"`
	WorkerID     string    `json:"workerID" db:"worker_id"`
	WorkerName   string    `json:"workerName" db:"worker_name"` // joined from profiles
	Starred      bool      `json:"starred" db:"starred"`
	MarkedDone   bool      `json:"markedDone" db:"marked_done"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// OrderWithAssignments is the list shape served to clients: the order plus
// its current assignment rows.
type OrderWithAssignments struct {
	Order
	Assignments []OrderAssignment `json:"assignments"`
}
