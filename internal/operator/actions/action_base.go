package actions

import "context"

// IAction is a unit of work run by an operator worker.
type IAction interface {
	Perform(ctx context.Context) error
}
