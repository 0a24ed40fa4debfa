package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/storage"
)

func testScenario(id, name string, created time.Time) *domain.Scenario {
	p := domain.DefaultParams()
	p.Distribution = domain.DistributionStudentT
	p.DegreesOfFreedom = 4
	p.Seed = 12345

	return &domain.Scenario{
		ID:           id,
		Name:         name,
		Params:       p,
		SummaryValue: 201500.75,
		CreatedAt:    created,
	}
}

func TestScenarioStore_SaveAndLoad(t *testing.T) {
	pool := setupTestDB(t)

	store := NewScenarioStore(pool)
	ctx := context.Background()

	sc := testScenario("6PqDTuJ9", "early retirement", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, sc))

	got, err := store.Load(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, sc.Name, got.Name)
	assert.Equal(t, sc.Params, got.Params)
	assert.InDelta(t, sc.SummaryValue, got.SummaryValue, 1e-9)
	assert.True(t, sc.CreatedAt.Equal(got.CreatedAt))
}

func TestScenarioStore_DuplicateName(t *testing.T) {
	pool := setupTestDB(t)

	store := NewScenarioStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testScenario("id-1", "same", time.Now())))
	err := store.Save(ctx, testScenario("id-2", "same", time.Now()))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestScenarioStore_ListAndDelete(t *testing.T) {
	pool := setupTestDB(t)

	store := NewScenarioStore(pool)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testScenario("id-old", "old", base)))
	require.NoError(t, store.Save(ctx, testScenario("id-new", "new", base.Add(time.Hour))))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "id-new", list[0].ID)
	assert.Equal(t, "id-old", list[1].ID)

	require.NoError(t, store.Delete(ctx, "id-old"))
	assert.ErrorIs(t, store.Delete(ctx, "id-old"), storage.ErrNotFound)

	_, err = store.Load(ctx, "id-old")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestScenarioStore_InvalidInput(t *testing.T) {
	store := NewScenarioStore(nil)
	err := store.Save(context.Background(), &domain.Scenario{Name: "no id"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
