package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

func TestVerify_RoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")

	want := &models.Principal{
		UserID:    uuid.New(),
		Class:     types.ConnDriver,
		CompanyID: uuid.New(),
		DriverID:  uuid.New(),
	}
	token, err := v.Sign(want, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UserID != want.UserID || got.Class != want.Class ||
		got.CompanyID != want.CompanyID || got.DriverID != want.DriverID {
		t.Errorf("principal mismatch: got %+v, want %+v", got, want)
	}
}

func TestVerify_Rejections(t *testing.T) {
	v := NewVerifier("test-secret")
	p := &models.Principal{UserID: uuid.New(), Class: types.ConnOperator, CompanyID: uuid.New()}

	expired, err := v.Sign(p, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	foreign, err := NewVerifier("other-secret").Sign(p, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tt.token); !errors.Is(err, types.ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
