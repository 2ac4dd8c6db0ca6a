// Package dbtest provides test doubles for the database package.
package dbtest

import "context"

// Transactor runs fn inline and counts calls. Set Err to make the next commit fail.
type Transactor struct {
	Calls int
	Err   error
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	if err := fn(ctx); err != nil {
		return err
	}
	if t.Err != nil {
		err := t.Err
		t.Err = nil
		return err
	}
	return nil
}
