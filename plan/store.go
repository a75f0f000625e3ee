package plan

import (
	"context"
)

// Store is the plan registry persistence interface.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, planID int) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Count(ctx context.Context) (int, error)

	GetCycleInfo(ctx context.Context, planID int) (*CycleInfo, error)
	UpdateCycleInfo(ctx context.Context, info *CycleInfo) error
}
