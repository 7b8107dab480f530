package quotaService

import (
	"context"
	"fmt"

	"storage-service/internal/model/user"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uint32) (*user.User, error)
	SumFileSizes(ctx context.Context, ownerID uint32) (int64, error)
}

// Usage is the caller-facing quota snapshot.
type Usage struct {
	Used           int64   `json:"used"`
	Available      int64   `json:"available"`
	UsedPercentage float64 `json:"used_percentage"`
}

// Report compares the running counter against a recount of file sizes.
// Used for offline audits only, never on the request path.
type Report struct {
	Recorded   int64
	Recomputed int64
	Consistent bool
}

type QuotaService struct {
	userRepo UserRepository
}

func New(userRepo UserRepository) *QuotaService {
	return &QuotaService{userRepo: userRepo}
}

func (s *QuotaService) Usage(ctx context.Context, caller *user.User) (*Usage, error) {
	u, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d not found", caller.ID)
	}

	usage := &Usage{
		Used:      u.SpaceTaken,
		Available: u.SubscriptionSpace - u.SpaceTaken,
	}
	if u.SubscriptionSpace > 0 {
		usage.UsedPercentage = float64(u.SpaceTaken) / float64(u.SubscriptionSpace) * 100
	}
	return usage, nil
}

func (s *QuotaService) Reconcile(ctx context.Context, ownerID uint32) (*Report, error) {
	u, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d not found", ownerID)
	}

	sum, err := s.userRepo.SumFileSizes(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute space: %w", err)
	}

	return &Report{
		Recorded:   u.SpaceTaken,
		Recomputed: sum,
		Consistent: u.SpaceTaken == sum,
	}, nil
}
