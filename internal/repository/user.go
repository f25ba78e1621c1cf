package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/service"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err, "email") {
			return service.ErrEmailTaken
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, role *domain.Role, page, limit int) ([]*domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if role != nil {
		tx = tx.Where("role = ?", *role)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	var out []*domain.User
	err := tx.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	return out, total, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, values map[string]any) (*domain.User, error) {
	if len(values) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			if isUniqueViolation(res.Error, "email") {
				return nil, service.ErrEmailTaken
			}
			return nil, fmt.Errorf("updating user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, service.ErrUserNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	return r.Update(ctx, id, map[string]any{"role": role})
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return service.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email)
	if excludeID != nil {
		tx = tx.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking user email: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	type row struct {
		Role  domain.Role
		Count int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Select("role, count(*) as count").Group("role").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting users by role: %w", err)
	}
	out := make(map[domain.Role]int64, len(rows))
	for _, r := range rows {
		out[r.Role] = r.Count
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
