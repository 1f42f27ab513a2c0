package httpapi

import (
	"context"

	"github.com/and161185/numfetch/internal/model"
)

type ctxKey string

const adminKey ctxKey = "nf.admin"

// WithAdmin stores the authenticated operator in context.
func WithAdmin(ctx context.Context, u *model.AdminUser) context.Context {
	return context.WithValue(ctx, adminKey, u)
}

// AdminFromCtx fetches the authenticated operator from context.
func AdminFromCtx(ctx context.Context) (*model.AdminUser, bool) {
	v := ctx.Value(adminKey)
	if v == nil {
		return nil, false
	}
	u, ok := v.(*model.AdminUser)
	return u, ok
}
