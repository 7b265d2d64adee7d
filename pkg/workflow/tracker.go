package workflow

import (
	"sync"
	"time"

	"github.com/forgeflow/forgeflow/pkg/models"
)

// ProgressFunc receives an ordered copy of all node results after every change.
type ProgressFunc func(results []models.NodeResult)

// Tracker records one NodeResult per node in the order nodes first changed state. A node that runs
// again overwrites its own record.
type Tracker struct {
	mu         sync.RWMutex
	order      []string
	results    map[string]*models.NodeResult
	onProgress ProgressFunc
	now        func() time.Time
}

func NewTracker(onProgress ProgressFunc) *Tracker {
	return &Tracker{
		results:    make(map[string]*models.NodeResult),
		onProgress: onProgress,
		now:        time.Now,
	}
}

// Start marks nodeID running. Output and error of a previous run of the node are cleared.
func (t *Tracker) Start(nodeID string) {
	t.update(nodeID, func(r *models.NodeResult) {
		r.Status = models.NodeStatusRunning
		r.StartedAt = t.now()
		r.EndedAt = time.Time{}
		r.Output = nil
		r.Error = ""
	})
}

func (t *Tracker) Succeed(nodeID string, output any) {
	t.update(nodeID, func(r *models.NodeResult) {
		r.Status = models.NodeStatusSuccess
		r.EndedAt = t.now()
		r.Output = output
	})
}

func (t *Tracker) Fail(nodeID string, message string) {
	t.update(nodeID, func(r *models.NodeResult) {
		now := t.now()
		if r.StartedAt.IsZero() {
			r.StartedAt = now
		}

		r.Status = models.NodeStatusError
		r.EndedAt = now
		r.Error = message
	})
}

// Skip records a node that was not executed. Its duration is zero.
func (t *Tracker) Skip(nodeID string) {
	t.finishInstantly(nodeID, models.NodeStatusSkipped)
}

// Cancel records a node that did not run because the run was cancelled. Its duration is zero.
func (t *Tracker) Cancel(nodeID string) {
	t.finishInstantly(nodeID, models.NodeStatusCancelled)
}

func (t *Tracker) finishInstantly(nodeID string, status models.NodeStatus) {
	t.update(nodeID, func(r *models.NodeResult) {
		now := t.now()
		r.Status = status
		r.StartedAt = now
		r.EndedAt = now
		r.Output = nil
		r.Error = ""
	})
}

// Result returns the current record of nodeID.
func (t *Tracker) Result(nodeID string) (models.NodeResult, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.results[nodeID]
	if !ok {
		return models.NodeResult{}, false
	}

	return *r, true
}

// Results returns a copy of all records in creation order.
func (t *Tracker) Results() []models.NodeResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.snapshot()
}

func (t *Tracker) snapshot() []models.NodeResult {
	out := make([]models.NodeResult, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.results[id])
	}

	return out
}

func (t *Tracker) update(nodeID string, mutate func(r *models.NodeResult)) {
	t.mu.Lock()

	r, ok := t.results[nodeID]
	if !ok {
		r = &models.NodeResult{NodeID: nodeID, Status: models.NodeStatusPending}
		t.results[nodeID] = r
		t.order = append(t.order, nodeID)
	}

	mutate(r)

	var snapshot []models.NodeResult
	if t.onProgress != nil {
		snapshot = t.snapshot()
	}

	t.mu.Unlock()

	if t.onProgress != nil {
		t.onProgress(snapshot)
	}
}
