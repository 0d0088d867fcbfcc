package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/chargeback-backend/internal/data/repos"
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/modules/mapping"
	"github.com/yungbote/chargeback-backend/internal/modules/placeholder"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
	"github.com/yungbote/chargeback-backend/internal/platform/woocommerce"
)

// ResolvedOrder pairs the resolver answer, as decoded, with the placeholder
// values derived from it. Mapped keys use the stored placeholder spelling.
type ResolvedOrder struct {
	Raw    map[string]any    `json:"order"`
	Mapped map[string]string `json:"mapped"`
}

type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (map[string]any, error)
	// ResolveOrder fills placeholder values from the order. An empty
	// placeholder list means every mapped placeholder.
	ResolveOrder(ctx context.Context, orderID string, placeholders []string) (*ResolvedOrder, error)
}

type orderService struct {
	log      *logger.Logger
	mappings repos.PlaceholderMappingRepo
	woo      woocommerce.Client
}

func NewOrderService(log *logger.Logger, mappings repos.PlaceholderMappingRepo, woo woocommerce.Client) OrderService {
	return &orderService{log: log.With("service", "OrderService"), mappings: mappings, woo: woo}
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (map[string]any, error) {
	return s.woo.GetOrder(ctx, orderID)
}

func (s *orderService) ResolveOrder(ctx context.Context, orderID string, placeholders []string) (*ResolvedOrder, error) {
	dbc := dbctx.Context{Ctx: ctx}

	var (
		rows []*types.PlaceholderMapping
		err  error
	)
	if len(placeholders) == 0 {
		rows, err = s.mappings.ListMapped(dbc)
	} else {
		keys := make([]string, 0, len(placeholders))
		for _, p := range placeholders {
			keys = append(keys, placeholder.Key(p))
		}
		rows, err = s.mappings.GetByKeys(dbc, keys)
	}
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}

	rows = withField(rows)
	fields := distinctFields(rows)
	s.log.Info("resolving order",
		"order_id", orderID,
		"placeholders", len(placeholders),
		"mappings", len(rows),
		"fields", describeFields(fields),
	)
	if len(fields) == 0 {
		s.log.Warn("no field mappings for requested placeholders", "order_id", orderID)
		return &ResolvedOrder{Raw: map[string]any{}, Mapped: map[string]string{}}, nil
	}

	res, err := s.woo.ResolveFields(ctx, orderID, fields)
	if err != nil {
		return nil, fmt.Errorf("resolve order %s: %w", orderID, err)
	}

	mapped := make(map[string]string, len(rows))
	for _, row := range rows {
		if v := res.Values[*row.WooField]; v != "" {
			mapped[row.Placeholder] = v
		}
	}
	return &ResolvedOrder{Raw: res.Raw, Mapped: mapped}, nil
}

func withField(rows []*types.PlaceholderMapping) []*types.PlaceholderMapping {
	out := rows[:0:0]
	for _, r := range rows {
		if r != nil && r.WooField != nil && strings.TrimSpace(*r.WooField) != "" {
			out = append(out, r)
		}
	}
	return out
}

// distinctFields keeps first-seen order.
func distinctFields(rows []*types.PlaceholderMapping) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		f := *r.WooField
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func describeFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if k, err := mapping.ParseFieldKey(f); err == nil {
			out = append(out, mapping.Describe(k))
		} else {
			out = append(out, f)
		}
	}
	return out
}
