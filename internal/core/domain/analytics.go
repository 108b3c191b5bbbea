package domain

// WorkerLoad summarizes one worker's order load for the company dashboard.
type WorkerLoad struct {
	WorkerID   string `json:"workerID"`
	WorkerName string `json:"workerName"`
	Assigned   int    `json:"assigned"`
	Completed  int    `json:"completed"`
}

// CompanySummary aggregates company-wide order metrics for managers.
type CompanySummary struct {
	TotalOrders        int                 `json:"totalOrders"`
	CompletedOrders    int                 `json:"completedOrders"`
	PendingOrders      int                 `json:"pendingOrders"`
	ActiveHighPriority int                 `json:"activeHighPriority"`
	ByStatus           map[OrderStatus]int `json:"byStatus"`
	ByPriority         map[Priority]int    `json:"byPriority"`
	RecentOrders       int                 `json:"recentOrders"` // created within the last 30 days
	WorkerLoads        []WorkerLoad        `json:"workerLoads"`
}

// WorkerSummary aggregates a single worker's own metrics.
type WorkerSummary struct {
	AssignedOrders     int `json:"assignedOrders"`
	CompletedOrders    int `json:"completedOrders"`
	PendingOrders      int `json:"pendingOrders"`
	ActiveHighPriority int `json:"activeHighPriority"`
	StarredOrders      int `json:"starredOrders"`
}
