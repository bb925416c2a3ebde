package controllers

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
)

func parseBodyUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a UUID").
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
