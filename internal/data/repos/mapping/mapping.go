package mapping

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/chargeback-backend/internal/domain"
	domainmapping "github.com/yungbote/chargeback-backend/internal/domain/mapping"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type PlaceholderMappingRepo interface {
	List(dbc dbctx.Context) ([]*types.PlaceholderMapping, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PlaceholderMapping, error)
	// GetByKeys returns rows whose lowercased placeholder is in keys, in
	// placeholder order. Empty keys returns nothing.
	GetByKeys(dbc dbctx.Context, keys []string) ([]*types.PlaceholderMapping, error)
	// ListMapped returns every row with a non-null field key.
	ListMapped(dbc dbctx.Context) ([]*types.PlaceholderMapping, error)
	// UpdateField reports whether the row existed.
	UpdateField(dbc dbctx.Context, id uuid.UUID, field *string) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// InsertMissing inserts rows whose key is not stored yet and returns how
	// many were actually written. Existing keys are left untouched.
	InsertMissing(dbc dbctx.Context, rows []*types.PlaceholderMapping) (int, error)
}

type placeholderMappingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaceholderMappingRepo(db *gorm.DB, baseLog *logger.Logger) PlaceholderMappingRepo {
	return &placeholderMappingRepo{db: db, log: baseLog.With("repo", "PlaceholderMappingRepo")}
}

func (r *placeholderMappingRepo) List(dbc dbctx.Context) ([]*types.PlaceholderMapping, error) {
	var out []*types.PlaceholderMapping
	if err := dbc.DB(r.db).Order("placeholder ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeholderMappingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PlaceholderMapping, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*types.PlaceholderMapping
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *placeholderMappingRepo) GetByKeys(dbc dbctx.Context, keys []string) ([]*types.PlaceholderMapping, error) {
	var out []*types.PlaceholderMapping
	if len(keys) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("placeholder_key IN ?", keys).
		Order("placeholder ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeholderMappingRepo) ListMapped(dbc dbctx.Context) ([]*types.PlaceholderMapping, error) {
	var out []*types.PlaceholderMapping
	if err := dbc.DB(r.db).
		Where("woo_field IS NOT NULL").
		Order("placeholder ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeholderMappingRepo) UpdateField(dbc dbctx.Context, id uuid.UUID, field *string) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.PlaceholderMapping{}).
		Where("id = ?", id).
		Update("woo_field", field)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *placeholderMappingRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.PlaceholderMapping{}).Error
}

func (r *placeholderMappingRepo) InsertMissing(dbc dbctx.Context, rows []*types.PlaceholderMapping) (int, error) {
	added := 0
	t := dbc.DB(r.db)
	for _, row := range rows {
		if row == nil || row.Placeholder == "" {
			continue
		}
		row.PlaceholderKey = domainmapping.KeyOf(row.Placeholder)
		// Row by row so RowsAffected counts real inserts on every driver.
		res := t.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "placeholder_key"}},
			DoNothing: true,
		}).Create(row)
		if res.Error != nil {
			return added, res.Error
		}
		added += int(res.RowsAffected)
	}
	return added, nil
}
