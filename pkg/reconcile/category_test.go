package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogbridge/internal/metrics"
	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/pkg/errors"
)

type memoryCategories struct {
	byName    map[string]string
	searches  int
	failNames map[string]bool
	searchErr error
}

func (m *memoryCategories) FindCategory(_ context.Context, name string) (*target.Category, error) {
	m.searches++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if id, ok := m.byName[name]; ok {
		return &target.Category{ID: id, Name: name}, nil
	}
	return nil, errors.NewNotFoundError(target.EntityCategory, name)
}

func (m *memoryCategories) CreateCategory(_ context.Context, id, name string) error {
	if m.failNames[name] {
		return errors.NewAPIError("target", 400, "invalid")
	}
	m.byName[name] = id
	return nil
}

func TestCategoryResolverKeepsOrderAndCreates(t *testing.T) {
	api := &memoryCategories{byName: map[string]string{"Tops": "t1"}}
	r := NewCategoryResolver(api, metrics.New())

	refs, created, err := r.Resolve(context.Background(), []string{"New", "Tops", "New"})

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, refs, 3, "duplicates are not collapsed")
	assert.Equal(t, api.byName["New"], refs[0].ID)
	assert.Equal(t, "t1", refs[1].ID)
	assert.Equal(t, refs[0], refs[2])
	assert.Equal(t, 2, api.searches, "second New comes from the cache")
}

func TestCategoryResolverDropsFailedCreation(t *testing.T) {
	api := &memoryCategories{byName: map[string]string{"Tops": "t1"}, failNames: map[string]bool{"Bad": true}}
	r := NewCategoryResolver(api, nil)

	refs, created, err := r.Resolve(context.Background(), []string{"Bad", "Tops"})

	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, []target.IDRef{{ID: "t1"}}, refs)
}

func TestCategoryResolverExactMatch(t *testing.T) {
	api := &memoryCategories{byName: map[string]string{"Tops": "t1"}}
	r := NewCategoryResolver(api, nil)

	refs, created, err := r.Resolve(context.Background(), []string{"tops"})

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NotEqual(t, "t1", refs[0].ID)
}

func TestCategoryResolverSearchFailure(t *testing.T) {
	api := &memoryCategories{byName: map[string]string{}, searchErr: errors.NewAPIError("target", 503, "down")}
	r := NewCategoryResolver(api, nil)

	_, _, err := r.Resolve(context.Background(), []string{"Tops"})

	assert.True(t, errors.IsProviderUnavailable(err))
}
