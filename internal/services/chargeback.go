package services

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/chargeback-backend/internal/data/repos"
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/modules/docfill"
	"github.com/yungbote/chargeback-backend/internal/observability"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/gcp"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

// OrderIDToken is always substituted with the order id, for templates that
// predate bracketed placeholders.
const OrderIDToken = "{{ORDER_ID}}"

type CreateChargebackInput struct {
	TemplateID   string            `json:"templateId"`
	TemplateName string            `json:"templateName"`
	OrderID      string            `json:"orderId"`
	Title        string            `json:"title"`
	Placeholders map[string]string `json:"placeholders"`
	// Screenshots maps screenshot token text to a file saved by the
	// ScreenshotStore. The files are removed once Create returns.
	Screenshots map[string]string `json:"-"`
}

type ChargebackService interface {
	List(dbc dbctx.Context) ([]*types.Chargeback, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Chargeback, error)
	Create(dbc dbctx.Context, in CreateChargebackInput) (*types.Chargeback, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type chargebackService struct {
	log         *logger.Logger
	repo        repos.ChargebackRepo
	workspace   WorkspaceFactory
	engine      *docfill.Engine
	screenshots ScreenshotStore
	// bucket, when set, hosts screenshots instead of Drive.
	bucket gcp.ImageBucket
}

func NewChargebackService(
	log *logger.Logger,
	repo repos.ChargebackRepo,
	workspace WorkspaceFactory,
	engine *docfill.Engine,
	screenshots ScreenshotStore,
	bucket gcp.ImageBucket,
) ChargebackService {
	return &chargebackService{
		log:         log.With("service", "ChargebackService"),
		repo:        repo,
		workspace:   workspace,
		engine:      engine,
		screenshots: screenshots,
		bucket:      bucket,
	}
}

func (s *chargebackService) List(dbc dbctx.Context) ([]*types.Chargeback, error) {
	rows, err := s.repo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list chargebacks: %w", err)
	}
	return rows, nil
}

func (s *chargebackService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Chargeback, error) {
	cb, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load chargeback: %w", err)
	}
	if cb == nil {
		return nil, apierr.NotFound("Chargeback")
	}
	return cb, nil
}

func (s *chargebackService) Create(dbc dbctx.Context, in CreateChargebackInput) (*types.Chargeback, error) {
	defer s.cleanup(in.Screenshots)

	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Unauthorized")
	}
	in.TemplateID = strings.TrimSpace(in.TemplateID)
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.TemplateID == "" || in.OrderID == "" {
		return nil, apierr.Validation("templateId and orderId are required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Chargeback #" + in.OrderID
	}
	templateName := strings.TrimSpace(in.TemplateName)
	if templateName == "" {
		templateName = "Unknown"
	}

	values := make(map[string]string, len(in.Placeholders)+1)
	maps.Copy(values, in.Placeholders)
	values[OrderIDToken] = in.OrderID

	ws, err := s.workspace.Open(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Fill(dbc.Ctx, ws, s.publisher(ws), docfill.Request{
		TemplateID:   in.TemplateID,
		Title:        title,
		Placeholders: values,
		Screenshots:  in.Screenshots,
	})
	if err != nil {
		observability.Current().IncChargeback("failed")
		return nil, fmt.Errorf("generate chargeback document: %w", err)
	}
	observability.Current().IncChargeback(types.StatusGenerated)
	observability.Current().AddScreenshots(len(in.Screenshots))

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode placeholders: %w", err)
	}
	cb := &types.Chargeback{
		Title:        title,
		OrderID:      in.OrderID,
		TemplateID:   in.TemplateID,
		TemplateName: templateName,
		DocURL:       res.DocumentURL,
		DocID:        res.DocumentID,
		Placeholders: datatypes.JSON(raw),
		CreatedBy:    rd.UserID,
	}
	if err := s.repo.Create(dbc, cb); err != nil {
		return nil, fmt.Errorf("save chargeback: %w", err)
	}
	s.log.Info("chargeback generated",
		"chargeback_id", cb.ID,
		"order_id", cb.OrderID,
		"document_id", cb.DocID,
		"screenshots", slices.Sorted(maps.Keys(in.Screenshots)),
	)

	if saved, err := s.repo.GetByID(dbc, cb.ID); err == nil && saved != nil {
		return saved, nil
	}
	return cb, nil
}

func (s *chargebackService) publisher(ws Workspace) docfill.ImagePublisher {
	if s.bucket != nil {
		return NewBucketPublisher(s.bucket)
	}
	return NewDrivePublisher(ws)
}

func (s *chargebackService) cleanup(screenshots map[string]string) {
	if len(screenshots) == 0 || s.screenshots == nil {
		return
	}
	s.screenshots.Remove(slices.Collect(maps.Values(screenshots))...)
}

func (s *chargebackService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if err := requireAdmin(dbc.Ctx); err != nil {
		return err
	}
	found, err := s.repo.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete chargeback: %w", err)
	}
	if !found {
		return apierr.NotFound("Chargeback")
	}
	return nil
}
