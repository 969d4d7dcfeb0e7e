package interfaces

import (
	"context"

	"labdash/internal/models"
)

type CoordinatorInterface interface {
	Init() error
	Stop()
	Refresh(ctx context.Context, trigger string) error
	DeleteActivity(ctx context.Context, id models.FlexID) error
}
