package ledger

import (
	"strings"

	"github.com/pkg/errors"

	"storeroom/internal/models"
)

// NewRequest is the input for SubmitRequest.
type NewRequest struct {
	From     string                 `json:"from"`
	Task     string                 `json:"task"`
	Items    []models.RequestedItem `json:"requestedItems"`
	Priority models.Priority        `json:"priority"`
}

// SubmitRequest records a technician's material request as pending. Lines
// without a name or with a non-positive quantity are dropped; a request
// left with no lines is refused.
func (l *Ledger) SubmitRequest(in NewRequest) (models.MaterialRequest, error) {
	from := strings.TrimSpace(in.From)
	if from == "" {
		return models.MaterialRequest{}, missing("requester")
	}
	lines := make([]models.RequestedItem, 0, len(in.Items))
	for _, line := range in.Items {
		name := strings.TrimSpace(line.Name)
		if name == "" || line.Quantity <= 0 {
			continue
		}
		lines = append(lines, models.RequestedItem{Name: name, Quantity: line.Quantity})
	}
	if len(lines) == 0 {
		return models.MaterialRequest{}, missing("requested items")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return models.MaterialRequest{}, errors.Wrapf(ErrInvalidValue, "priority %q", priority)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	req := models.MaterialRequest{
		ID:       l.ids.NewID(requestPrefix),
		From:     from,
		Task:     strings.TrimSpace(in.Task),
		Items:    lines,
		Date:     day(l.now()),
		Priority: priority,
		Status:   models.RequestPending,
	}
	l.requests = append([]models.MaterialRequest{req}, l.requests...)
	return req.Clone(), nil
}

// SetRequestStatus approves or rejects a pending request. Only approved and
// rejected can be set here, in lenient mode too; issuing goes through
// FulfillRequest.
func (l *Ledger) SetRequestStatus(requestID string, status models.RequestStatus) (models.MaterialRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.requestIndex(requestID)
	if idx < 0 {
		return models.MaterialRequest{}, errors.Wrap(ErrRequestNotFound, requestID)
	}
	req := &l.requests[idx]
	if !status.Valid() {
		return models.MaterialRequest{}, errors.Wrapf(ErrInvalidValue, "status %q", status)
	}
	if status != models.RequestApproved && status != models.RequestRejected {
		return models.MaterialRequest{}, errors.Wrapf(ErrInvalidTransition, "%s: status %s cannot be set directly", req.ID, status)
	}
	if !l.lenient && !CanTransition(req.Status, status) {
		return models.MaterialRequest{}, errors.Wrapf(ErrInvalidTransition, "%s: %s to %s", req.ID, req.Status, status)
	}
	req.Status = status
	return req.Clone(), nil
}

// FulfillRequest issues every line of an approved request. All lines are
// checked against stock first, with demand for the same item added up; if
// any line cannot be met nothing is deducted and the request keeps its
// status. Otherwise each line is deducted and the request becomes issued.
//
// The returned items are the updated inventory items in line order, one per
// distinct item.
func (l *Ledger) FulfillRequest(requestID string) (models.MaterialRequest, []models.InventoryItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ridx := l.requestIndex(requestID)
	if ridx < 0 {
		return models.MaterialRequest{}, nil, errors.Wrap(ErrRequestNotFound, requestID)
	}
	req := &l.requests[ridx]
	if !l.lenient && !CanTransition(req.Status, models.RequestIssued) {
		return models.MaterialRequest{}, nil, errors.Wrapf(ErrInvalidTransition, "%s: %s to %s", req.ID, req.Status, models.RequestIssued)
	}

	// check
	targets := make([]int, len(req.Items))
	demand := make(map[int]int, len(req.Items))
	var order []int
	for i, line := range req.Items {
		idx := l.itemByName(line.Name)
		if idx < 0 {
			return models.MaterialRequest{}, nil, errors.Wrapf(ErrInsufficientStock, "%s: no item named %q", req.ID, line.Name)
		}
		if _, seen := demand[idx]; !seen {
			order = append(order, idx)
		}
		demand[idx] += line.Quantity
		targets[i] = idx
	}
	for _, idx := range order {
		if stock := l.items[idx].CurrentStock; stock < demand[idx] {
			return models.MaterialRequest{}, nil, errors.Wrapf(ErrInsufficientStock, "%s: %s has %d, request needs %d", req.ID, l.items[idx].Name, stock, demand[idx])
		}
	}

	// apply
	now := l.now()
	note := "For Request #" + requestNumber(req.ID)
	for i, line := range req.Items {
		l.appendEntry(targets[i], models.HistoryRequestIssued, -line.Quantity, now, note)
	}
	req.Status = models.RequestIssued

	updated := make([]models.InventoryItem, len(order))
	for i, idx := range order {
		updated[i] = l.items[idx].Clone()
	}
	return req.Clone(), updated, nil
}

// requestNumber is the part of a request ID after its prefix, "req-2" gives "2".
func requestNumber(id string) string {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) < 2 {
		return id
	}
	return parts[1]
}
