package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/chargeback-backend/internal/data/repos"
	"github.com/yungbote/chargeback-backend/internal/data/repos/testutil"
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/modules/docfill"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
)

type chargebackFixture struct {
	svc   ChargebackService
	ws    *fakeWorkspace
	store ScreenshotStore
	tx    *gorm.DB
	dbc   dbctx.Context
}

func newChargebackFixture(t *testing.T) chargebackFixture {
	t.Helper()
	dbc, tx := testDBC(t)
	log := testutil.Logger(t)
	ws := newFakeWorkspace()
	ws.bodies["tmpl"] = "Order [Order Total] {{ORDER_ID}}\n[Screenshot A]\n"
	store, err := NewScreenshotStore(log, t.TempDir(), 0)
	require.NoError(t, err)
	svc := NewChargebackService(log, repos.NewChargebackRepo(tx, log), &fakeFactory{ws: ws}, docfill.NewEngine(log), store, nil)
	return chargebackFixture{svc: svc, ws: ws, store: store, tx: tx, dbc: dbc}
}

func TestChargebackCreateFillsAndPersists(t *testing.T) {
	f := newChargebackFixture(t)
	dbc := f.dbc
	author := testutil.SeedUser(t, dbc.Ctx, f.tx, "author@example.com")
	dbc = asUser(dbc, author.ID, types.RoleUser)

	shot, err := f.store.Save(bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	cb, err := f.svc.Create(dbc, CreateChargebackInput{
		TemplateID:   "tmpl",
		OrderID:      " 1001 ",
		Placeholders: map[string]string{"[Order Total]": "19.99", "[Empty]": ""},
		Screenshots:  map[string]string{"[screenshot a]": shot},
	})
	require.NoError(t, err)

	assert.Equal(t, "Chargeback #1001", cb.Title)
	assert.Equal(t, "Unknown", cb.TemplateName)
	assert.Equal(t, types.StatusGenerated, cb.Status)
	assert.Equal(t, docfill.DocumentURL(cb.DocID), cb.DocURL)
	assert.Equal(t, "Staff Member", cb.CreatedByName)

	var stored map[string]string
	require.NoError(t, json.Unmarshal(cb.Placeholders, &stored))
	assert.Equal(t, "1001", stored[OrderIDToken])
	assert.Equal(t, "19.99", stored["[Order Total]"])

	batches := f.ws.batches[cb.DocID]
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	require.Len(t, batches[1], 2)
	assert.NotNil(t, batches[1][0].DeleteContentRange)
	assert.NotNil(t, batches[1][1].InsertInlineImage)
	assert.Len(t, f.ws.uploads, 1)
	assert.Len(t, f.ws.shared, 1)

	_, err = os.Stat(shot)
	assert.True(t, os.IsNotExist(err), "temp screenshot should be removed")

	list, err := f.svc.List(dbc)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cb.ID, list[0].ID)
}

func TestChargebackCreateValidation(t *testing.T) {
	f := newChargebackFixture(t)
	dbc := f.dbc
	dbc = asUser(dbc, uuid.New(), types.RoleUser)

	_, err := f.svc.Create(dbc, CreateChargebackInput{TemplateID: "tmpl"})
	assert.EqualError(t, err, "templateId and orderId are required")
	assert.Empty(t, f.ws.batches)
}

func TestChargebackCreateFailurePersistsNothing(t *testing.T) {
	f := newChargebackFixture(t)
	dbc := f.dbc
	author := testutil.SeedUser(t, dbc.Ctx, f.tx, "author@example.com")
	dbc = asUser(dbc, author.ID, types.RoleUser)
	f.ws.batchErr = apierr.Remote("docs", 500, "backend error", nil)

	shot, err := f.store.Save(bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	_, err = f.svc.Create(dbc, CreateChargebackInput{
		TemplateID:   "tmpl",
		OrderID:      "1002",
		Placeholders: map[string]string{"[Order Total]": "1.00"},
		Screenshots:  map[string]string{"[Screenshot A]": shot},
	})
	status, _ := apierr.Status(err)
	assert.Equal(t, http.StatusBadGateway, status)

	list, err := f.svc.List(dbc)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = os.Stat(shot)
	assert.True(t, os.IsNotExist(err))
}

func TestChargebackDeleteIsAdminOnly(t *testing.T) {
	f := newChargebackFixture(t)
	dbc := f.dbc
	author := testutil.SeedUser(t, dbc.Ctx, f.tx, "author@example.com")
	cb := testutil.SeedChargeback(t, dbc.Ctx, f.tx, author.ID, "55")

	err := f.svc.Delete(asUser(dbc, author.ID, types.RoleUser), cb.ID)
	assert.EqualError(t, err, "Admin only")

	admin := asUser(dbc, uuid.New(), types.RoleAdmin)
	require.NoError(t, f.svc.Delete(admin, cb.ID))
	assert.True(t, apierr.IsNotFound(f.svc.Delete(admin, cb.ID)))

	_, err = f.svc.Get(dbc, cb.ID)
	assert.True(t, apierr.IsNotFound(err))
}
