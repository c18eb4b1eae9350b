// Package identity carries the caller-supplied owner id. Authentication is
// out of scope; the id is trusted as given.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	Header     = "X-User-ID"
	QueryParam = "user_id"
)

var ErrInvalid = errors.New("invalid user id")

type ctxKey struct{}

// Parse returns nil for an empty value.
func Parse(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: nil uuid", ErrInvalid)
	}
	return &id, nil
}

func WithUser(ctx context.Context, id *uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns nil when no owner was attached.
func FromContext(ctx context.Context) *uuid.UUID {
	id, _ := ctx.Value(ctxKey{}).(*uuid.UUID)
	return id
}
