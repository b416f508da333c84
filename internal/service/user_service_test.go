package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Manjit",
		Email:    "manjit@shop.test",
		Password: "secret123",
		ShopName: "Sharma General Store",
		Mobile:   "9000000009",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	authed, err := svc.Authenticate(context.Background(), "manjit@shop.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Manjit", Email: "manjit@shop.test", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &RegisterRequest{
		Name: "Impostor", Email: "manjit@shop.test", Password: "other",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticateFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Manjit", Email: "manjit@shop.test", Password: "secret123",
	})
	require.NoError(t, err)

	// Wrong password and unknown email look identical to the caller.
	_, err = svc.Authenticate(context.Background(), "manjit@shop.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@shop.test", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Manjit", Email: "manjit@shop.test", Password: "secret123",
	})
	require.NoError(t, err)

	shopName := "New Store Name"
	updated, err := svc.UpdateProfile(context.Background(), "manjit@shop.test", &UpdateProfileRequest{
		ShopName: &shopName,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Store Name", updated.ShopName)
	assert.Equal(t, "Manjit", updated.Name)
}
