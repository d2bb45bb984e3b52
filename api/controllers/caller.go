package controllers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/HarshArya1405/typescriptDemo/api/middleware"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
)

func isAdmin(ctx context.Context) bool {
	return middleware.HasRole(ctx, enums.RoleAdmin.String())
}

// requireActingFor rejects callers writing on behalf of another user. Admins
// may act for anyone.
func requireActingFor(ctx context.Context, userID uuid.UUID) error {
	caller := middleware.CallerID(ctx)
	if caller != uuid.Nil && caller == userID {
		return nil
	}
	if isAdmin(ctx) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted for this user")
}

// requireOwnSubject rejects Management API calls on an account the caller
// does not hold, unless the caller is an admin.
func requireOwnSubject(ctx context.Context, sub string) error {
	if isAdmin(ctx) {
		return nil
	}
	if caller := middleware.SubFromContext(ctx); caller != "" && caller == strings.TrimSpace(sub) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted for this account")
}

// ownerScope is the owner a caller's row-level writes are limited to.
// Admins get uuid.Nil, which skips the owner check.
func ownerScope(ctx context.Context) uuid.UUID {
	if isAdmin(ctx) {
		return uuid.Nil
	}
	return middleware.CallerID(ctx)
}
