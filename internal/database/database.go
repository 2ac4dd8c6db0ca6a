// Package database holds storage abstractions shared by the use cases.
package database

import "context"

// Transactor runs fn atomically. Implementations let nested calls join the outer unit of work.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
