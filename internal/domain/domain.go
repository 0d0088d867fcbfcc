package domain

import (
	"github.com/yungbote/chargeback-backend/internal/domain/auth"
	"github.com/yungbote/chargeback-backend/internal/domain/chargeback"
	"github.com/yungbote/chargeback-backend/internal/domain/mapping"
	"github.com/yungbote/chargeback-backend/internal/domain/user"
)

type (
	User               = user.User
	GoogleCredential   = auth.GoogleCredential
	PlaceholderMapping = mapping.PlaceholderMapping
	Chargeback         = chargeback.Chargeback
)

const (
	RoleAdmin       = user.RoleAdmin
	RoleUser        = user.RoleUser
	StatusGenerated = chargeback.StatusGenerated
)
