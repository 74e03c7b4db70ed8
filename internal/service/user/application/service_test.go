package application

import (
	"context"
	"sync"
	"testing"

	"atlas/internal/service/user/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

type memRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
	emails map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[int64]*domain.User{}, emails: map[string]bool{}}
}

func (m *memRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emails[user.Email] {
		return domain.ErrConflict
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.byID[user.ID] = &cp
	m.emails[user.Email] = true
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, offset, limit int) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func newTestService() *Service {
	return NewService(newMemRepo(), otel.Tracer("test"))
}

func TestRegister_AssignsIDAndHashesPassword(t *testing.T) {
	svc := newTestService()

	user, err := svc.Register(context.Background(), "Ada@Example.com", "Ada", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected an assigned id")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Error("password not hashed")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ada@example.com", "Ada", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, "ada@example.com", "Ada Again", "other")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), "not-an-email", "X", "pw"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.com", "X", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGet_ExistenceContract(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "ada@example.com", "Ada", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Get(ctx, user.ID); err != nil {
		t.Errorf("expected known user, got %v", err)
	}
	if _, err := svc.Get(ctx, user.ID+99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
