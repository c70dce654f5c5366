package models

import "time"

// MaterialRequest represents a technician's ask for storeroom items to complete a task
type MaterialRequest struct {
	ID       string          `json:"id"`
	From     string          `json:"from"`
	Task     string          `json:"task"`
	Items    []RequestedItem `json:"requestedItems"`
	Date     time.Time       `json:"date"`
	Priority Priority        `json:"priority"`
	Status   RequestStatus   `json:"status"`
}

// RequestedItem is one line of a material request, matched to inventory by name
type RequestedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// RequestStatus represents the lifecycle state of a material request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestIssued   RequestStatus = "issued"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestIssued:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == RequestIssued || s == RequestRejected
}

// Priority represents how urgently a request should be handled
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityUrgent || p == PriorityHigh || p == PriorityMedium
}

// Clone returns a copy of the request that shares no line backing array.
func (r MaterialRequest) Clone() MaterialRequest {
	out := r
	out.Items = make([]RequestedItem, len(r.Items))
	copy(out.Items, r.Items)
	return out
}

// Summary holds the counters shown on the storekeeper dashboard
type Summary struct {
	TotalItems       int `json:"totalItems"`
	LowStock         int `json:"lowStock"`
	PendingRequests  int `json:"pendingRequests"`
	ApprovedRequests int `json:"approvedRequests"`
	IssuedRequests   int `json:"issuedRequests"`
	RejectedRequests int `json:"rejectedRequests"`
}
