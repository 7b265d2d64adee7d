package persistence_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgeflow/forgeflow/pkg/persistence"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		flowErr := persistence.NewFlowError("Flow", "flow-123", persistence.ErrFlowNotFound)
		executionErr := persistence.NewExecutionError("Execution", "exec-1", persistence.ErrExecutionNotFound)

		assert.True(t, persistence.IsFlowNotFound(flowErr))
		assert.False(t, persistence.IsExecutionNotFound(flowErr))
		assert.True(t, persistence.IsExecutionNotFound(executionErr))
		assert.True(t, errors.Is(flowErr, persistence.ErrFlowNotFound))
	})

	t.Run("error messages include context", func(t *testing.T) {
		flowErr := persistence.NewFlowError("SaveFlow", "flow-123", errors.New("disk full"))

		assert.Equal(t, "SaveFlow operation failed for flow flow-123: disk full", flowErr.Error())
	})
}

func TestValidateID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"flow-1", "0f8fad5b-d9cb-469f-a165-70867728950e", "a.b_c"} {
		assert.NoError(t, persistence.ValidateID(id), id)
	}

	for _, id := range []string{"", ".", "..", "../etc", "a/b", `a\b`, "-leading"} {
		assert.ErrorIs(t, persistence.ValidateID(id), persistence.ErrInvalidID, id)
	}
}
