package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/chargeback-backend/internal/data/repos"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	Credential repos.CredentialRepo
	Mapping    repos.PlaceholderMappingRepo
	Chargeback repos.ChargebackRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Credential: repos.NewCredentialRepo(db, log),
		Mapping:    repos.NewPlaceholderMappingRepo(db, log),
		Chargeback: repos.NewChargebackRepo(db, log),
	}
}
