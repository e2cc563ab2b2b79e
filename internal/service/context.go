package service

import (
	"context"

	"order-engine/internal/models"
)

type ctxKey string

const (
	ctxOwnerKey ctxKey = "owner"
	ctxAdminKey ctxKey = "admin"
)

func WithOwner(ctx context.Context, owner models.OwnerRef) context.Context {
	return context.WithValue(ctx, ctxOwnerKey, owner)
}

func OwnerFromContext(ctx context.Context) (models.OwnerRef, bool) {
	v, ok := ctx.Value(ctxOwnerKey).(models.OwnerRef)
	return v, ok && !v.IsZero()
}

func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxAdminKey, true)
}

func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(ctxAdminKey).(bool)
	return v
}

func requireOwner(ctx context.Context) (models.OwnerRef, error) {
	owner, ok := OwnerFromContext(ctx)
	if !ok {
		return models.OwnerRef{}, ErrUnauthorized
	}
	return owner, nil
}
