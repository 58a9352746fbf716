package zalimport

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zorgadres/register/internal/domain/organisation"
)

// DefaultKeepGenerations is how many import generations cleanup retains
// when no threshold is configured.
const DefaultKeepGenerations = 2

// Cleaner removes organisations belonging to expired import generations.
type Cleaner struct {
	orgs organisation.Repository
	log  zerolog.Logger
}

// NewCleaner returns a Cleaner over the organisation repository.
func NewCleaner(orgs organisation.Repository, log zerolog.Logger) *Cleaner {
	return &Cleaner{orgs: orgs, log: log}
}

// CleanExpired keeps the `keep` most recent distinct import references and
// deletes every organisation (cascading to features, data services and
// system roles) belonging to an older reference.
func (c *Cleaner) CleanExpired(ctx context.Context, keep int) error {
	if keep < 0 {
		return fmt.Errorf("keep must not be negative, got %d", keep)
	}

	refs, err := c.orgs.ImportRefs(ctx)
	if err != nil {
		return err
	}
	c.log.Info().Int("count", len(refs)).Strs("refs", refs).Msg("found import refs")

	if keep > len(refs) {
		keep = len(refs)
	}
	expired := refs[keep:]
	c.log.Info().Int("count", len(expired)).Strs("refs", expired).Msg("deleting import refs")

	for _, ref := range expired {
		count, err := c.orgs.CountByImportRef(ctx, ref)
		if err != nil {
			return err
		}
		c.log.Info().Int("count", count).Str("ref", ref).Msg("found organisations to delete for import ref")
	}

	return c.orgs.DeleteByImportRefs(ctx, expired)
}
