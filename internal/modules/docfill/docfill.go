// Package docfill turns a Google Docs template into a filled document: copy,
// text substitution, then screenshot placeholders swapped for inline images.
package docfill

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/docs/v1"

	"github.com/yungbote/chargeback-backend/internal/modules/placeholder"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

const (
	DefaultImageWidthPT  = 400
	DefaultImageHeightPT = 300
)

// Documents is the remote document store.
type Documents interface {
	// Copy duplicates templateID under title and returns the new document id.
	Copy(ctx context.Context, templateID, title string) (string, error)
	Get(ctx context.Context, documentID string) (*docs.Document, error)
	BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error
}

// ImagePublisher makes a local image reachable by the document store and
// returns the URL to embed. A path that no longer exists must surface an
// error matching fs.ErrNotExist.
type ImagePublisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

type Request struct {
	TemplateID string
	Title      string
	// Placeholders maps token text to its replacement. Empty values are
	// skipped and leave the token in the document.
	Placeholders map[string]string
	// Screenshots maps screenshot token text to a local image path.
	Screenshots map[string]string
}

type Result struct {
	DocumentID  string
	DocumentURL string
}

type Engine struct {
	log         *logger.Logger
	tracer      trace.Tracer
	ImageWidth  float64
	ImageHeight float64
}

func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		log:         log.With("module", "docfill"),
		tracer:      otel.Tracer("github.com/yungbote/chargeback-backend/internal/modules/docfill"),
		ImageWidth:  DefaultImageWidthPT,
		ImageHeight: DefaultImageHeightPT,
	}
}

func DocumentURL(id string) string {
	return "https://docs.google.com/document/d/" + id + "/edit"
}

// Fill runs copy, text replacement and screenshot placement in that order.
// Any remote failure aborts the remaining steps; the partially filled copy is
// left in place.
func (e *Engine) Fill(ctx context.Context, store Documents, images ImagePublisher, req Request) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "docfill.Fill", trace.WithAttributes(
		attribute.String("template_id", req.TemplateID),
		attribute.Int("placeholders", len(req.Placeholders)),
		attribute.Int("screenshots", len(req.Screenshots)),
	))
	defer span.End()

	res, err := e.fill(ctx, store, images, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("document_id", res.DocumentID))
	return res, nil
}

func (e *Engine) fill(ctx context.Context, store Documents, images ImagePublisher, req Request) (*Result, error) {
	if strings.TrimSpace(req.TemplateID) == "" {
		return nil, errors.New("docfill: template id is required")
	}

	docID, err := store.Copy(ctx, req.TemplateID, req.Title)
	if err != nil {
		return nil, fmt.Errorf("copy template: %w", err)
	}
	e.log.Info("template copied", "template_id", req.TemplateID, "document_id", docID)

	if textReqs := TextRequests(req.Placeholders); len(textReqs) > 0 {
		if err := store.BatchUpdate(ctx, docID, textReqs); err != nil {
			return nil, fmt.Errorf("replace placeholders: %w", err)
		}
	}

	if len(req.Screenshots) > 0 {
		if err := e.placeScreenshots(ctx, store, images, docID, req.Screenshots); err != nil {
			return nil, err
		}
	}

	return &Result{DocumentID: docID, DocumentURL: DocumentURL(docID)}, nil
}

// TextRequests builds one ReplaceAllText per non-empty value, ordered by
// token so the batch is deterministic.
func TextRequests(values map[string]string) []*docs.Request {
	tokens := make([]string, 0, len(values))
	for tok, v := range values {
		if v == "" || tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	out := make([]*docs.Request, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{Text: tok, MatchCase: false},
				ReplaceText:  values[tok],
			},
		})
	}
	return out
}

func (e *Engine) placeScreenshots(ctx context.Context, store Documents, images ImagePublisher, docID string, assets map[string]string) error {
	ctx, span := e.tracer.Start(ctx, "docfill.placeScreenshots")
	defer span.End()

	doc, err := store.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("read filled document: %w", err)
	}
	var content []*docs.StructuralElement
	if doc != nil && doc.Body != nil {
		content = doc.Body.Content
	}

	locs := placeholder.Locate(content, placeholder.IsScreenshot)
	placeholder.SortDescending(locs)
	span.SetAttributes(attribute.Int("locations", len(locs)))
	if len(locs) == 0 {
		return nil
	}

	lookup := newAssetLookup(assets)
	requests := make([]*docs.Request, 0, 2*len(locs))
	for _, loc := range locs {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: loc.StartIndex, EndIndex: loc.EndIndex},
			},
		})

		path, ok := lookup.find(loc.Token)
		if !ok {
			continue
		}
		url, err := images.Publish(ctx, path)
		if errors.Is(err, fs.ErrNotExist) {
			e.log.Warn("screenshot file missing, removing token only", "token", loc.Token)
			continue
		}
		if err != nil {
			return fmt.Errorf("publish screenshot %s: %w", loc.Token, err)
		}
		requests = append(requests, e.imageRequest(url, loc.StartIndex))
	}

	if err := store.BatchUpdate(ctx, docID, requests); err != nil {
		return fmt.Errorf("place screenshots: %w", err)
	}
	return nil
}

func (e *Engine) imageRequest(url string, index int64) *docs.Request {
	return &docs.Request{
		InsertInlineImage: &docs.InsertInlineImageRequest{
			Uri:      url,
			Location: &docs.Location{Index: index},
			ObjectSize: &docs.Size{
				Width:  &docs.Dimension{Magnitude: e.ImageWidth, Unit: "PT"},
				Height: &docs.Dimension{Magnitude: e.ImageHeight, Unit: "PT"},
			},
		},
	}
}

type assetLookup struct {
	exact map[string]string
	fold  map[string]string
}

func newAssetLookup(assets map[string]string) assetLookup {
	l := assetLookup{exact: assets, fold: make(map[string]string, len(assets))}
	keys := make([]string, 0, len(assets))
	for k := range assets {
		keys = append(keys, k)
	}
	// Deterministic winner when two spellings fold to the same key.
	sort.Strings(keys)
	for _, k := range keys {
		fk := placeholder.Key(k)
		if _, ok := l.fold[fk]; !ok {
			l.fold[fk] = assets[k]
		}
	}
	return l
}

// find tries the exact token text first, then the case-insensitive key.
func (l assetLookup) find(token string) (string, bool) {
	if p, ok := l.exact[token]; ok && p != "" {
		return p, true
	}
	p, ok := l.fold[placeholder.Key(token)]
	return p, ok && p != ""
}
