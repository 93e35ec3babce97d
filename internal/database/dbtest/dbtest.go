// Package dbtest provides test doubles for the database package.
package dbtest

import "context"

// Transactor runs functions directly, without a real transaction. Calls
// counts how many units of work were opened.
type Transactor struct {
	Calls int
}

// InTx implements database.Transactor.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}
