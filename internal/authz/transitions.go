package authz

import (
	"fmt"

	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/pkg/config"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
)

// Transitions decides which status changes are legal. A nil graph allows
// every change between known statuses.
type Transitions struct {
	graph map[models.RequestStatus][]models.RequestStatus
}

// strictGraph only moves requests forward.
var strictGraph = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:    {models.StatusInProgress, models.StatusResolved, models.StatusRejected, models.StatusClosed},
	models.StatusInProgress: {models.StatusResolved, models.StatusRejected, models.StatusClosed},
	models.StatusResolved:   {models.StatusClosed},
	models.StatusRejected:   {models.StatusClosed},
	models.StatusClosed:     {},
}

// NewTransitions builds the table for a configured mode.
func NewTransitions(mode string) (*Transitions, error) {
	switch mode {
	case "", config.TransitionsPermissive:
		return &Transitions{}, nil
	case config.TransitionsStrict:
		return &Transitions{graph: strictGraph}, nil
	default:
		return nil, fmt.Errorf("unknown transition mode %q", mode)
	}
}

// Permissive allows any status to follow any other.
func Permissive() *Transitions {
	return &Transitions{}
}

// Strict enforces the forward-only graph.
func Strict() *Transitions {
	return &Transitions{graph: strictGraph}
}

// Check returns ErrInvalidTransition when from cannot move to to.
// Re-applying the current status is always accepted.
func (t *Transitions) Check(from, to models.RequestStatus) error {
	if !to.Valid() {
		return appErrors.Validation("status", "الحالة غير صالحة")
	}
	if from == to || t.graph == nil {
		return nil
	}
	for _, next := range t.graph[from] {
		if next == to {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move request from %s to %s", from, to))
}
