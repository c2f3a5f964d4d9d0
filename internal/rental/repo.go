package rental

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, rec *Rental) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(rec).Error
}

func (r *Repo) Update(ctx context.Context, rec *Rental) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(rec).Error
}

// ListAll 按租出时间返回全部租赁记录（启动时重建内存注册表用）。
func (r *Repo) ListAll(ctx context.Context) ([]Rental, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var recs []Rental
	if err := db.Order("rented_at asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// DeleteReturnedBefore 删除归还时间早于 cutoff 的历史记录，与内存清理保持一致。
func (r *Repo) DeleteReturnedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	res := db.Where("returned_at IS NOT NULL AND returned_at < ?", cutoff).Delete(&Rental{})
	return res.RowsAffected, res.Error
}
