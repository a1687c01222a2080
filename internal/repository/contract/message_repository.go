package contract

import (
	"context"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/repository/specification"
)

type MessageRepository interface {
	// BulkInsert persists a full buffer in one statement, preserving the
	// slice order. Called exactly once per conversation, at close time.
	BulkInsert(ctx context.Context, messages []*entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
}
