package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/chargeback-backend/internal/data/repos/testutil"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/cache"
	"github.com/yungbote/chargeback-backend/internal/platform/gworkspace"
)

func TestTemplateListServedFromCache(t *testing.T) {
	ws := newFakeWorkspace()
	ws.templates = []gworkspace.Template{{ID: "t1", Name: "Visa"}, {ID: "t2", Name: "Mastercard"}}
	svc := NewTemplateService(testutil.Logger(t), &fakeFactory{ws: ws}, cache.NewLocal(5*time.Minute))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.List(ctx)
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}
	wg.Wait()

	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Visa", got[0].Name)
	calls := ws.listCalls
	assert.LessOrEqual(t, calls, 8)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, calls, ws.listCalls)

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, calls+1, ws.listCalls)
}

func TestTemplateListErrorsAreNotCached(t *testing.T) {
	ws := newFakeWorkspace()
	ws.listErr = apierr.Remote("drive", 500, "boom", nil)
	svc := NewTemplateService(testutil.Logger(t), &fakeFactory{ws: ws}, cache.NewLocal(time.Minute))

	_, err := svc.List(context.Background())
	require.Error(t, err)

	ws.listErr = nil
	ws.templates = []gworkspace.Template{{ID: "t1", Name: "Visa"}}
	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTemplateListOutlivesCancelledCaller(t *testing.T) {
	ws := newFakeWorkspace()
	ws.templates = []gworkspace.Template{{ID: "t1", Name: "Visa"}}
	svc := NewTemplateService(testutil.Logger(t), &fakeFactory{ws: ws}, cache.NewLocal(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, ws.listCtxErr)

	// The listing fetched for the cancelled caller is cached for the next one.
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ws.listCalls)
}

func TestTemplatePlaceholders(t *testing.T) {
	ws := newFakeWorkspace()
	ws.bodies["tmpl"] = "Total [Order Total], again [order total], [Case ID] and [Screenshot A]\n"
	svc := NewTemplateService(testutil.Logger(t), &fakeFactory{ws: ws}, cache.NewLocal(time.Minute))

	got, err := svc.Placeholders(context.Background(), "tmpl")
	require.NoError(t, err)
	assert.Equal(t, []string{"[Case ID]", "[Order Total]", "[Screenshot A]"}, got)

	_, err = svc.Placeholders(context.Background(), "missing")
	assert.Error(t, err)
}

func TestTemplateServiceSurfacesNotConnected(t *testing.T) {
	svc := NewTemplateService(testutil.Logger(t), &fakeFactory{err: apierr.NotConnected(nil)}, cache.NewLocal(time.Minute))
	_, err := svc.List(context.Background())
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apierr.CodeNotConnected, ae.Code)
}
