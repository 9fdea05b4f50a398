package ports

import (
	"context"

	"go.trai.ch/slicecache/internal/core/domain"
)

// Slicer runs the external slicing program.
//
//go:generate mockgen -source=slicer.go -destination=mocks/mock_slicer.go -package=mocks
type Slicer interface {
	// Slice runs the job and returns an error wrapping domain.ErrSlicingFailed
	// when the slicer does not report an exported result.
	Slice(ctx context.Context, job domain.SliceJob) error
}
