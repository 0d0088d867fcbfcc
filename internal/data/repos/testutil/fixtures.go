package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/chargeback-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    "pw",
		DisplayName: "Staff Member",
		Role:        types.RoleUser,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedMapping(tb testing.TB, ctx context.Context, tx *gorm.DB, placeholder string, field *string) *types.PlaceholderMapping {
	tb.Helper()
	m := &types.PlaceholderMapping{Placeholder: placeholder, WooField: field}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed mapping: %v", err)
	}
	return m
}

func SeedChargeback(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID string) *types.Chargeback {
	tb.Helper()
	cb := &types.Chargeback{
		Title:        "Chargeback #" + orderID,
		OrderID:      orderID,
		TemplateID:   "tmpl-1",
		TemplateName: "Default template",
		DocID:        "doc-" + orderID,
		DocURL:       "https://docs.google.com/document/d/doc-" + orderID + "/edit",
		Placeholders: datatypes.JSON([]byte(`{"{{ORDER_ID}}":"` + orderID + `"}`)),
		CreatedBy:    userID,
	}
	if err := tx.WithContext(ctx).Create(cb).Error; err != nil {
		tb.Fatalf("seed chargeback: %v", err)
	}
	return cb
}

func Ptr(s string) *string { return &s }
