package auth

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/chargeback-backend/internal/domain"
	domainauth "github.com/yungbote/chargeback-backend/internal/domain/auth"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

// CredentialRepo stores the single Google credential row.
type CredentialRepo interface {
	Get(dbc dbctx.Context) (*types.GoogleCredential, error)
	// Save upserts on the slot. Concurrent writers race; the last write wins.
	Save(dbc dbctx.Context, cred *types.GoogleCredential) error
	Clear(dbc dbctx.Context) error
}

type credentialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCredentialRepo(db *gorm.DB, baseLog *logger.Logger) CredentialRepo {
	return &credentialRepo{db: db, log: baseLog.With("repo", "CredentialRepo")}
}

func (r *credentialRepo) Get(dbc dbctx.Context) (*types.GoogleCredential, error) {
	var rows []*types.GoogleCredential
	if err := dbc.DB(r.db).
		Where("slot = ?", domainauth.GoogleCredentialSlot).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *credentialRepo) Save(dbc dbctx.Context, cred *types.GoogleCredential) error {
	if cred == nil {
		return nil
	}
	cred.Slot = domainauth.GoogleCredentialSlot
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expiry", "updated_at"}),
		}).
		Create(cred).Error
}

func (r *credentialRepo) Clear(dbc dbctx.Context) error {
	return dbc.DB(r.db).
		Where("slot = ?", domainauth.GoogleCredentialSlot).
		Delete(&types.GoogleCredential{}).Error
}
