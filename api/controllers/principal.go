package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/parkinglot-backend/api/middleware"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/outbox"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func isAdmin(r *http.Request) bool {
	return middleware.RoleFromContext(r.Context()) == enums.PrincipalRoleAdmin.String()
}

// actorFromRequest describes the caller for outbox envelopes.
func actorFromRequest(r *http.Request) *outbox.ActorRef {
	role := middleware.RoleFromContext(r.Context())
	var userID *uuid.UUID
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			userID = &id
		}
	}
	return outbox.NewActor(userID, role)
}
