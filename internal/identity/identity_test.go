package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParse(t *testing.T) {
	valid := uuid.New()

	for _, tt := range []struct {
		name    string
		raw     string
		want    *uuid.UUID
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"valid", valid.String(), &valid, false},
		{"padded", "  " + valid.String() + " ", &valid, false},
		{"garbage", "not-a-uuid", nil, true},
		{"nil uuid", uuid.Nil.String(), nil, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("err = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("empty context should carry no user")
	}
	id := uuid.New()
	ctx := WithUser(context.Background(), &id)
	if got := FromContext(ctx); got == nil || *got != id {
		t.Errorf("FromContext = %v, want %v", got, id)
	}
}
