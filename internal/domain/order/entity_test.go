// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"placed to processing", StatusPending, StatusProcessing, true},
		{"placed to cancelled", StatusPending, StatusCancelled, true},
		{"placed to shipped skips processing", StatusPending, StatusShipped, false},
		{"placed to delivered", StatusPending, StatusDelivered, false},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"processing back to placed", StatusProcessing, StatusPending, false},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"shipped to cancelled", StatusShipped, StatusCancelled, false},
		{"delivered is terminal", StatusDelivered, StatusProcessing, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"self transition rejected", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_Transition(t *testing.T) {
	o := &Order{Status: StatusPending}

	assert.NoError(t, o.Transition(StatusProcessing))
	assert.Equal(t, StatusProcessing, o.Status)

	err := o.Transition(StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusProcessing, o.Status, "failed transition must not change status")
}

func TestOrder_Transition_UnknownStatus(t *testing.T) {
	o := &Order{Status: StatusPending}
	assert.ErrorIs(t, o.Transition(Status("returned")), ErrInvalidTransition)
}

func TestStatus_IsCancellable(t *testing.T) {
	assert.True(t, StatusPending.IsCancellable())
	assert.True(t, StatusProcessing.IsCancellable())
	assert.False(t, StatusShipped.IsCancellable())
	assert.False(t, StatusDelivered.IsCancellable())
	assert.False(t, StatusCancelled.IsCancellable())
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusShipped.IsValid())
	assert.False(t, Status("refunded").IsValid())
}
