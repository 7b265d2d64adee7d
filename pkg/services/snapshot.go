package services

import (
	"slices"

	"github.com/forgeflow/forgeflow/pkg/models"
)

// snapshot copies record so callers never share the slices the live record keeps appending to.
func snapshot(record *models.FlowExecution) *models.FlowExecution {
	copied := *record
	copied.Results = slices.Clone(record.Results)
	copied.Logs = slices.Clone(record.Logs)

	if record.EndedAt != nil {
		ended := *record.EndedAt
		copied.EndedAt = &ended
	}

	return &copied
}

func sortByStart(list []*models.FlowExecution) {
	slices.SortStableFunc(list, func(a, b *models.FlowExecution) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
}
