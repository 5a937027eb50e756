package biz

import (
	"github.com/hostkit/checkin-bridge/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Pipeline  *usecase.PipelineUsecase
	Reconcile *usecase.ReconcileUsecase
	Review    *usecase.ReviewUsecase
}
