// internal/service/user/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"atlas/internal/service/user/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"not null;uniqueIndex;size:255"`
	FullName     string `gorm:"size:255"`
	PasswordHash string `gorm:"not null;size:64"`
	CreatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Migrate() error {
	return r.db.AutoMigrate(&UserModel{})
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	model := &UserModel{
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return errors.Wrapf(domain.ErrConflict, "email %s", user.Email)
		}
		return errors.Wrap(err, "create user")
	}
	user.ID = model.ID
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "user %d", id)
		}
		return nil, errors.Wrapf(err, "find user %d", id)
	}
	return toDomain(&model), nil
}

func (r *GormUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	var models []UserModel
	err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	out := make([]*domain.User, 0, len(models))
	for i := range models {
		out = append(out, toDomain(&models[i]))
	}
	return out, nil
}

func toDomain(m *UserModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		FullName:     m.FullName,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
