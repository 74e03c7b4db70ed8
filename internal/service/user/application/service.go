// internal/service/user/application/service.go
package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"atlas/internal/pkg/logger"
	"atlas/internal/service/user/domain"

	"go.opentelemetry.io/otel/trace"
)

type Service struct {
	repo   domain.Repository
	tracer trace.Tracer
}

func NewService(repo domain.Repository, tracer trace.Tracer) *Service {
	return &Service{repo: repo, tracer: tracer}
}

func (s *Service) Register(ctx context.Context, email, fullName, password string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "user.Register")
	defer span.End()

	user, err := domain.NewUser(email, fullName, hashPassword(password))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Get backs the existence check other services perform before taking on
// work for a user: 200 means the account exists, 404 means it does not.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit)
}

func hashPassword(password string) string {
	if password == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
