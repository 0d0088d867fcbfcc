package chargeback

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type ChargebackRepo interface {
	Create(dbc dbctx.Context, cb *types.Chargeback) error
	// List returns every chargeback, newest first, with the author's name.
	List(dbc dbctx.Context) ([]*types.Chargeback, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Chargeback, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type chargebackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChargebackRepo(db *gorm.DB, baseLog *logger.Logger) ChargebackRepo {
	return &chargebackRepo{db: db, log: baseLog.With("repo", "ChargebackRepo")}
}

func (r *chargebackRepo) Create(dbc dbctx.Context, cb *types.Chargeback) error {
	if cb == nil {
		return nil
	}
	return dbc.DB(r.db).Create(cb).Error
}

func (r *chargebackRepo) withAuthor(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(r.db).
		Table("chargeback AS c").
		Select("c.*, u.display_name AS created_by_name").
		Joins(`LEFT JOIN "user" u ON u.id = c.created_by`)
}

func (r *chargebackRepo) List(dbc dbctx.Context) ([]*types.Chargeback, error) {
	var out []*types.Chargeback
	if err := r.withAuthor(dbc).
		Order("c.created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chargebackRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Chargeback, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Chargeback
	if err := r.withAuthor(dbc).
		Where("c.id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *chargebackRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Chargeback{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
