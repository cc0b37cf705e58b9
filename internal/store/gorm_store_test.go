package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type userKey string

func setupGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	s := NewGormStore(db)
	require.NoError(t, s.Migrate())
	return s
}

func TestGormStoreQueryFiltersByFields(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, CollectionCourses, "1", map[string]any{"userId": "u1", "semesterId": "s1", "name": "Algebra"}))
	require.NoError(t, s.Set(ctx, CollectionCourses, "2", map[string]any{"userId": "u1", "semesterId": "s2", "name": "Biology"}))
	require.NoError(t, s.Set(ctx, CollectionCourses, "3", map[string]any{"userId": "u2", "semesterId": "s1", "name": "Chemistry"}))
	require.NoError(t, s.Set(ctx, CollectionSemesters, "4", map[string]any{"userId": "u1"}))

	all, err := s.Query(ctx, CollectionCourses, Eq("userId", "u1"))
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := s.Query(ctx, CollectionCourses, Eq("userId", userKey("u1")), Eq("semesterId", "s1"))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "1", filtered[0].ID)
	require.Equal(t, "Algebra", filtered[0].Data["name"])
}

func TestGormStoreGetAndUpsert(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, CollectionSemesters, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, CollectionSemesters, "10", map[string]any{"name": "Fall 2025", "year": 2025}))
	require.NoError(t, s.Set(ctx, CollectionSemesters, "10", map[string]any{"name": "Spring 2026"}))

	doc, err := s.Get(ctx, CollectionSemesters, "10")
	require.NoError(t, err)
	require.Equal(t, "Spring 2026", doc.Data["name"])
	_, hasYear := doc.Data["year"]
	require.False(t, hasYear, "set replaces the whole document")
}

func TestGormStoreUpdateMergesFields(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.Update(ctx, CollectionCourses, "nope", map[string]any{"grade": 90}), ErrNotFound)

	require.NoError(t, s.Set(ctx, CollectionCourses, "7", map[string]any{"name": "Physics", "grade": 0}))
	require.NoError(t, s.Update(ctx, CollectionCourses, "7", map[string]any{"grade": 91.5, "assignmentIds": []string{"a"}}))

	doc, err := s.Get(ctx, CollectionCourses, "7")
	require.NoError(t, err)
	require.Equal(t, "Physics", doc.Data["name"])
	require.Equal(t, 91.5, doc.Data["grade"])
	require.Equal(t, []any{"a"}, doc.Data["assignmentIds"])
}

func TestGormStoreReturnsPlainNumbers(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, CollectionCourses, "8", map[string]any{
		"credits": 3,
		"grade":   88.5,
		"due":     map[string]any{"seconds": int64(1756080000)},
	}))
	require.NoError(t, s.Set(ctx, CollectionCourses, "9", map[string]any{"credits": 4}))

	doc, err := s.Get(ctx, CollectionCourses, "8")
	require.NoError(t, err)
	require.Equal(t, int64(3), doc.Data["credits"])
	require.Equal(t, 88.5, doc.Data["grade"])
	require.Equal(t, map[string]any{"seconds": int64(1756080000)}, doc.Data["due"])

	matched, err := s.Query(ctx, CollectionCourses, Eq("credits", 3))
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "8", matched[0].ID)

	matched, err = s.Query(ctx, CollectionCourses, Eq("grade", 88.5))
	require.NoError(t, err)
	require.Len(t, matched, 1)
}

func TestGormStoreDeleteIsIdempotent(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, CollectionAssignments, "5", map[string]any{"name": "Essay"}))
	require.NoError(t, s.Delete(ctx, CollectionAssignments, "5"))
	require.NoError(t, s.Delete(ctx, CollectionAssignments, "5"))

	_, err := s.Get(ctx, CollectionAssignments, "5")
	require.ErrorIs(t, err, ErrNotFound)
}

type recordingObserver struct {
	mu      sync.Mutex
	results []string
}

func (r *recordingObserver) ObserveStoreOperation(collection, operation, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, collection+":"+operation+":"+result)
}

func TestInstrumentReportsOutcomes(t *testing.T) {
	observer := &recordingObserver{}
	s := Instrument(setupGormStore(t), observer)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, CollectionSemesters, "1", map[string]any{"userId": "u"}))
	_, err := s.Get(ctx, CollectionSemesters, "2")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Query(ctx, CollectionSemesters, Eq("userId", "u"))
	require.NoError(t, err)

	require.Equal(t, []string{
		"semesters:set:ok",
		"semesters:get:not_found",
		"semesters:query:ok",
	}, observer.results)
}
