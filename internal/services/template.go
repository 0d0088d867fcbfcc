package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/chargeback-backend/internal/modules/placeholder"
	"github.com/yungbote/chargeback-backend/internal/platform/cache"
	"github.com/yungbote/chargeback-backend/internal/platform/gworkspace"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type TemplateService interface {
	// List returns the templates folder, served from cache while fresh.
	List(ctx context.Context) ([]gworkspace.Template, error)
	// Placeholders returns the distinct tokens in a template.
	Placeholders(ctx context.Context, templateID string) ([]string, error)
	Invalidate(ctx context.Context) error
}

type templateService struct {
	log       *logger.Logger
	workspace WorkspaceFactory
	cache     cache.Entry
	group     singleflight.Group
}

func NewTemplateService(log *logger.Logger, workspace WorkspaceFactory, listing cache.Entry) TemplateService {
	return &templateService{
		log:       log.With("service", "TemplateService"),
		workspace: workspace,
		cache:     listing,
	}
}

func (s *templateService) List(ctx context.Context) ([]gworkspace.Template, error) {
	if cached, ok := s.loadCached(ctx); ok {
		return cached, nil
	}

	v, err, shared := s.group.Do("templates", func() (interface{}, error) {
		// Callers share this fetch, so one of them going away must not end it.
		fetchCtx := context.WithoutCancel(ctx)
		ws, err := s.workspace.Open(fetchCtx)
		if err != nil {
			return nil, err
		}
		templates, err := ws.ListTemplates(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		if b, err := json.Marshal(templates); err == nil {
			if err := s.cache.Store(fetchCtx, b); err != nil {
				s.log.Warn("store template listing failed", "error", err)
			}
		}
		return templates, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("template listing shared with concurrent caller")
	}
	return v.([]gworkspace.Template), nil
}

func (s *templateService) loadCached(ctx context.Context) ([]gworkspace.Template, bool) {
	b, ok, err := s.cache.Load(ctx)
	if err != nil {
		s.log.Warn("load template listing failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var out []gworkspace.Template
	if err := json.Unmarshal(b, &out); err != nil {
		s.log.Warn("cached template listing unreadable", "error", err)
		return nil, false
	}
	return out, true
}

func (s *templateService) Placeholders(ctx context.Context, templateID string) ([]string, error) {
	ws, err := s.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := ws.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", templateID, err)
	}
	if doc == nil || doc.Body == nil {
		return []string{}, nil
	}
	out := slices.Collect(placeholder.Extract(doc.Body.Content))
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (s *templateService) Invalidate(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
