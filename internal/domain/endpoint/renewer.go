package endpoint

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zorgadres/register/internal/platform/db"
)

// SignatureGenerator produces a signature over an endpoint URL.
type SignatureGenerator interface {
	GenerateSignature(endpoint string) (string, error)
}

// RenewResult tallies one renewal batch.
type RenewResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Renewer re-signs every stored endpoint in a single transaction. A
// signing failure on one endpoint is isolated: it is logged, counted as
// skipped, and that endpoint's previous signature is left untouched. This
// is deliberately the opposite of the import pipeline, where a signing
// failure aborts the whole run.
type Renewer struct {
	repo   Repository
	signer SignatureGenerator
	tx     db.TxRunner
	log    zerolog.Logger
}

// NewRenewer returns a Renewer over the given repository and signer.
func NewRenewer(repo Repository, signer SignatureGenerator, tx db.TxRunner, log zerolog.Logger) *Renewer {
	return &Renewer{repo: repo, signer: signer, tx: tx, log: log}
}

// Renew signs every endpoint and commits once after the full pass.
func (r *Renewer) Renew(ctx context.Context) (RenewResult, error) {
	var result RenewResult

	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		endpoints, err := r.repo.FindAll(ctx)
		if err != nil {
			return err
		}

		for _, e := range endpoints {
			hadSignature := e.Signature != nil

			signature, err := r.signer.GenerateSignature(e.URL)
			if err != nil {
				r.log.Error().Err(err).
					Str("endpoint_id", e.ID.String()).
					Str("url", e.URL).
					Msg("failed to generate signature for endpoint")
				result.Skipped++
				continue
			}

			if err := r.repo.UpdateSignature(ctx, e.ID, &signature); err != nil {
				return err
			}

			if hadSignature {
				result.Updated++
			} else {
				result.Added++
			}
		}
		return nil
	})
	if err != nil {
		return RenewResult{}, err
	}

	return result, nil
}
