package services

import (
	"context"

	"taskhub/domain/dto"
)

// ReconcileService repairs relationship drift between users and tasks
type ReconcileService interface {
	Reconcile(ctx context.Context) (*dto.ReconcileReport, error)
}

// ExportService writes a JSON snapshot of both collections to object storage
type ExportService interface {
	Export(ctx context.Context) (*dto.ExportResult, error)
}
