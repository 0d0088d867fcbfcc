package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/chargeback-backend/internal/data/repos/auth"
	"github.com/yungbote/chargeback-backend/internal/data/repos/chargeback"
	"github.com/yungbote/chargeback-backend/internal/data/repos/mapping"
	"github.com/yungbote/chargeback-backend/internal/data/repos/user"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type CredentialRepo = auth.CredentialRepo
type PlaceholderMappingRepo = mapping.PlaceholderMappingRepo
type ChargebackRepo = chargeback.ChargebackRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return user.NewUserRepo(db, log)
}

func NewCredentialRepo(db *gorm.DB, log *logger.Logger) CredentialRepo {
	return auth.NewCredentialRepo(db, log)
}

func NewPlaceholderMappingRepo(db *gorm.DB, log *logger.Logger) PlaceholderMappingRepo {
	return mapping.NewPlaceholderMappingRepo(db, log)
}

func NewChargebackRepo(db *gorm.DB, log *logger.Logger) ChargebackRepo {
	return chargeback.NewChargebackRepo(db, log)
}
