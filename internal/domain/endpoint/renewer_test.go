package endpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	endpoints []*Endpoint
}

func (r *fakeRepo) Create(ctx context.Context, e *Endpoint) error {
	e.ID = uuid.New()
	r.endpoints = append(r.endpoints, e)
	return nil
}

func (r *fakeRepo) FindOneByURL(ctx context.Context, url string) (*Endpoint, error) {
	for _, e := range r.endpoints {
		if e.URL == url {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*Endpoint, error) {
	for _, e := range r.endpoints {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindAll(ctx context.Context) ([]*Endpoint, error) {
	return r.endpoints, nil
}

func (r *fakeRepo) UpdateSignature(ctx context.Context, id uuid.UUID, signature *string) error {
	for _, e := range r.endpoints {
		if e.ID == id {
			e.Signature = signature
			return nil
		}
	}
	return errors.New("endpoint not found")
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSigner struct {
	failFor map[string]bool
}

func (s fakeSigner) GenerateSignature(endpoint string) (string, error) {
	if s.failFor[endpoint] {
		return "", errors.New("signing failed")
	}
	return "sig-" + endpoint, nil
}

func strPtr(s string) *string { return &s }

func TestRenew_AddsAndUpdates(t *testing.T) {
	repo := &fakeRepo{endpoints: []*Endpoint{
		{ID: uuid.New(), URL: "https://a.example.com"},
		{ID: uuid.New(), URL: "https://b.example.com", Signature: strPtr("existing")},
	}}

	renewer := NewRenewer(repo, fakeSigner{}, passthroughTx{}, zerolog.Nop())
	result, err := renewer.Renew(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RenewResult{Added: 1, Updated: 1, Skipped: 0}, result)
	assert.Equal(t, "sig-https://a.example.com", *repo.endpoints[0].Signature)
	assert.Equal(t, "sig-https://b.example.com", *repo.endpoints[1].Signature)
}

func TestRenew_SigningFailureIsIsolated(t *testing.T) {
	repo := &fakeRepo{endpoints: []*Endpoint{
		{ID: uuid.New(), URL: "https://a.example.com", Signature: strPtr("old")},
		{ID: uuid.New(), URL: "https://b.example.com"},
	}}

	signer := fakeSigner{failFor: map[string]bool{"https://a.example.com": true}}
	renewer := NewRenewer(repo, signer, passthroughTx{}, zerolog.Nop())

	result, err := renewer.Renew(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RenewResult{Added: 1, Updated: 0, Skipped: 1}, result)
	// The failing endpoint keeps its previous signature.
	assert.Equal(t, "old", *repo.endpoints[0].Signature)
}

func TestRenew_Empty(t *testing.T) {
	renewer := NewRenewer(&fakeRepo{}, fakeSigner{}, passthroughTx{}, zerolog.Nop())
	result, err := renewer.Renew(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RenewResult{}, result)
}
