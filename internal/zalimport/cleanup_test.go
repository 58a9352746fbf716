package zalimport

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorgadres/register/internal/domain/organisation"
)

func seedImportRefs(repo *fakeOrgRepo, refs ...string) {
	for _, ref := range refs {
		repo.orgs = append(repo.orgs, &organisation.Organisation{
			Name:      "org-" + ref,
			Type:      organisation.TypeZA,
			ImportRef: ref,
		})
	}
}

func TestCleanExpired_KeepsNewestGenerations(t *testing.T) {
	repo := &fakeOrgRepo{}
	seedImportRefs(repo, "1", "2", "3", "4")

	cleaner := NewCleaner(repo, zerolog.Nop())
	require.NoError(t, cleaner.CleanExpired(context.Background(), 2))

	refs, err := repo.ImportRefs(context.Background())
	require.NoError(t, err)
	// Descending order: "4" and "3" are the two newest.
	assert.Equal(t, []string{"4", "3"}, refs)
}

func TestCleanExpired_ThresholdLargerThanHistory(t *testing.T) {
	repo := &fakeOrgRepo{}
	seedImportRefs(repo, "1", "2")

	cleaner := NewCleaner(repo, zerolog.Nop())
	require.NoError(t, cleaner.CleanExpired(context.Background(), 5))

	refs, err := repo.ImportRefs(context.Background())
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestCleanExpired_NegativeThreshold(t *testing.T) {
	repo := &fakeOrgRepo{}
	seedImportRefs(repo, "1", "2")

	cleaner := NewCleaner(repo, zerolog.Nop())
	assert.Error(t, cleaner.CleanExpired(context.Background(), -1))

	refs, err := repo.ImportRefs(context.Background())
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestCleanExpired_EmptyStore(t *testing.T) {
	cleaner := NewCleaner(&fakeOrgRepo{}, zerolog.Nop())
	assert.NoError(t, cleaner.CleanExpired(context.Background(), DefaultKeepGenerations))
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := ProgressBar(&buf)

	bar(0, 2)
	bar(1, 2)
	assert.Contains(t, buf.String(), "1/2")

	buf.Reset()
	bar(0, 0)
	assert.Contains(t, buf.String(), "1/1")
}
