package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/chargeback-backend/internal/data/repos"
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/modules/mapping"
	"github.com/yungbote/chargeback-backend/internal/modules/placeholder"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type MappingService interface {
	List(dbc dbctx.Context) ([]*types.PlaceholderMapping, error)
	// Update sets or clears (nil or "") the field key of one mapping.
	Update(dbc dbctx.Context, id uuid.UUID, field *string) (*types.PlaceholderMapping, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// Sync records every non-screenshot token not stored yet, pre-filled by
	// AutoDetect, and returns how many were added.
	Sync(dbc dbctx.Context, tokens []string) (int, error)
	AutoDetect(token string) *string
}

type mappingService struct {
	log  *logger.Logger
	repo repos.PlaceholderMappingRepo
}

func NewMappingService(log *logger.Logger, repo repos.PlaceholderMappingRepo) MappingService {
	return &mappingService{log: log.With("service", "MappingService"), repo: repo}
}

func (s *mappingService) List(dbc dbctx.Context) ([]*types.PlaceholderMapping, error) {
	rows, err := s.repo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return rows, nil
}

func (s *mappingService) Update(dbc dbctx.Context, id uuid.UUID, field *string) (*types.PlaceholderMapping, error) {
	if field != nil {
		v := strings.TrimSpace(*field)
		if v == "" {
			field = nil
		} else {
			key, err := mapping.ParseFieldKey(v)
			if err != nil {
				return nil, apierr.Validation("%v", err)
			}
			canonical := key.String()
			field = &canonical
		}
	}

	found, err := s.repo.UpdateField(dbc, id, field)
	if err != nil {
		return nil, fmt.Errorf("update mapping: %w", err)
	}
	if !found {
		return nil, apierr.NotFound("Mapping")
	}
	row, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("reload mapping: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("Mapping")
	}
	return row, nil
}

func (s *mappingService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if err := s.repo.Delete(dbc, id); err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	return nil
}

func (s *mappingService) Sync(dbc dbctx.Context, tokens []string) (int, error) {
	seen := make(map[string]struct{}, len(tokens))
	rows := make([]*types.PlaceholderMapping, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" || placeholder.IsScreenshot(tok) {
			continue
		}
		k := placeholder.Key(tok)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, &types.PlaceholderMapping{Placeholder: tok, WooField: mapping.AutoDetect(tok)})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	added, err := s.repo.InsertMissing(dbc, rows)
	if err != nil {
		return added, fmt.Errorf("sync mappings: %w", err)
	}
	if added > 0 {
		s.log.Info("placeholder mappings added", "added", added, "offered", len(rows))
	}
	return added, nil
}

func (s *mappingService) AutoDetect(token string) *string {
	return mapping.AutoDetect(token)
}
