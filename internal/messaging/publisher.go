package messaging

import (
	"context"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// Publisher hands built batches to the external batch submitter
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishBatch publishes a transfer batch to the message broker
	PublishBatch(ctx context.Context, batch *domain.TransferBatch) error
	// Close closes the connection
	Close()
}
