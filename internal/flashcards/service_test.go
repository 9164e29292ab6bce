package flashcards

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/database"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/database/userdata"
	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/kvstore"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testBundle() *content.Bundle {
	b := content.NewBundle()
	b.Bundled[entities.CategoryWord] = []entities.Record{
		{English: "hello", French: entities.FrenchForms{"bonjour"}},
		{English: "bread", French: entities.FrenchForms{"le pain"}},
	}
	b.Additional[entities.CategoryWord] = []entities.Record{
		{English: "cheese", French: entities.FrenchForms{"le fromage"}},
	}
	b.Bundled[entities.CategoryVerb] = []entities.Record{
		{Infinitive: "être", English: "to be", Conjugations: entities.Conjugations{"je": {"present": "suis"}}},
	}
	b.Bundled[entities.CategorySentence] = []entities.Record{
		{English: "Thank you", French: entities.FrenchForms{"Merci"}},
	}
	b.Bundled[entities.CategoryNumber] = []entities.Record{
		{English: "one", French: entities.FrenchForms{"un"}},
		{English: "two", French: entities.FrenchForms{"deux"}},
	}
	return b
}

func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_flashcards_"+strings.ReplaceAll(t.Name(), "/", "_")+".db")
	db, err := database.NewDatabase(dbPath, database.WithLogLevel(logger.Silent))
	require.NoError(t, err)

	return db, func() { db.Close() }
}

type fixture struct {
	svc   *Service
	repo  *records.Repository
	kv    *kvstore.Store
	clock *testClock
}

func setupService(t *testing.T, bundle *content.Bundle) (*fixture, func()) {
	t.Helper()

	db, cleanup := setupTestDB(t)
	f := &fixture{
		repo:  records.NewRepository(db.DB),
		kv:    kvstore.NewMemory(),
		clock: newTestClock(),
	}
	f.svc = NewService(Options{
		Store:   f.repo,
		Users:   userdata.NewRepository(db.DB),
		KV:      f.kv,
		Bundle:  content.StaticSource{Bundle: bundle},
		Retired: []entities.Category{entities.CategoryVerb},
		Now:     f.clock.Now,
	})
	return f, cleanup
}

func recordIDs(recs []entities.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

// failingStore fails every operation.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) GetAll(entities.Category) ([]entities.Record, error) { return nil, errStoreDown }
func (failingStore) GetByID(entities.Category, string) (*entities.Record, error) {
	return nil, errStoreDown
}
func (failingStore) Count(entities.Category) (int64, error) { return 0, errStoreDown }
func (failingStore) Add(entities.Category, *entities.Record) error { return errStoreDown }
func (failingStore) Update(entities.Category, *entities.Record) error { return errStoreDown }
func (failingStore) Delete(entities.Category, string) (bool, error) { return false, errStoreDown }
func (failingStore) BulkAdd(entities.Category, []entities.Record) (int, error) {
	return 0, errStoreDown
}
func (failingStore) Clear(entities.Category) error { return errStoreDown }
func (failingStore) Seeded(entities.Category) (bool, error) { return false, errStoreDown }
func (failingStore) MarkSeeded(entities.Category, int) error { return errStoreDown }

// flakyStore fails the first addFailures calls to Add and the first
// bulkFailures calls to BulkAdd, then behaves like the wrapped repository.
type flakyStore struct {
	*records.Repository
	addFailures  int
	bulkFailures int
}

func (f *flakyStore) Add(category entities.Category, rec *entities.Record) error {
	if f.addFailures > 0 {
		f.addFailures--
		return errStoreDown
	}
	return f.Repository.Add(category, rec)
}

func (f *flakyStore) BulkAdd(category entities.Category, recs []entities.Record) (int, error) {
	if f.bulkFailures > 0 {
		f.bulkFailures--
		return 0, errStoreDown
	}
	return f.Repository.BulkAdd(category, recs)
}

type countingSource struct {
	loads atomic.Int32
	delay time.Duration
}

func (s *countingSource) Load() (*content.Bundle, error) {
	s.loads.Add(1)
	time.Sleep(s.delay)
	return testBundle(), nil
}

func TestService_Initialize_SeedsStoreOnce(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	f.svc.Initialize(ctx, "learner")
	f.svc.Initialize(ctx, "learner")

	words, err := f.repo.Count(entities.CategoryWord)
	require.NoError(t, err)
	assert.EqualValues(t, 3, words)

	numbers, err := f.repo.Count(entities.CategoryNumber)
	require.NoError(t, err)
	assert.EqualValues(t, 2, numbers)

	verbs, err := f.repo.Count(entities.CategoryVerb)
	require.NoError(t, err)
	assert.EqualValues(t, 0, verbs, "retired predefined verbs must not be seeded")

	st := f.svc.Status()
	assert.Equal(t, ModeReady, st.Mode)
	assert.True(t, st.Initialized)
	assert.Equal(t, "learner", st.UserID)
	assert.Equal(t, 3, st.Counts["words"])
}

func TestService_Initialize_ConcurrentCallersShareOnePass(t *testing.T) {
	src := &countingSource{delay: 20 * time.Millisecond}
	svc := NewService(Options{KV: kvstore.NewMemory(), Bundle: src})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Initialize(context.Background(), "learner")
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.loads.Load())
	assert.Len(t, svc.GetAllWords(context.Background()), 3)
	assert.EqualValues(t, 1, src.loads.Load())
}

func TestService_GetAll_InitializesImplicitly(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()

	words := f.svc.GetAllWords(context.Background())

	assert.Equal(t, []string{"word-0", "word-1", "word-2"}, recordIDs(words))
	assert.Equal(t, DefaultUserID, f.svc.Status().UserID)
}

func TestService_GetAllSentencesAndNumbers(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()

	ctx := context.Background()
	assert.Equal(t, []string{"sentence-0"}, recordIDs(f.svc.GetAllSentences(ctx)))
	assert.Equal(t, []string{"number-0", "number-1"}, recordIDs(f.svc.GetAllNumbers(ctx)))
}

func TestService_GetAll_UnknownCategory(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()

	recs := f.svc.GetAll(context.Background(), entities.Category("colour"))
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestService_GetAll_ReturnsCopies(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	words := f.svc.GetAllWords(ctx)
	words[0].English = "mutated"
	words[0].French[0] = "mutated"

	again := f.svc.CachedRecords(entities.CategoryWord)
	assert.Equal(t, "hello", again[0].English)
	assert.Equal(t, entities.FrenchForms{"bonjour"}, again[0].French)
}

func TestService_AddUserWord_ThenRetrieve(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	added, ok := f.svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"le chat"}})
	require.True(t, ok)
	assert.Equal(t, "user-w-1709294400000", added.ID)
	assert.Equal(t, entities.OriginUser, added.Origin)
	assert.False(t, added.IsPredefined)

	words := f.svc.GetAllWords(ctx)
	assert.Contains(t, recordIDs(words), added.ID)

	stored, err := f.repo.GetByID(entities.CategoryWord, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat", stored.English)
}

func TestService_AddUserWord_CoercesBareFrenchString(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	var rec entities.Record
	require.NoError(t, json.Unmarshal([]byte(`{"english":"dog","french":"chien"}`), &rec))

	added, ok := f.svc.AddUserWord(ctx, rec)
	require.True(t, ok)

	for _, w := range f.svc.GetAllWords(ctx) {
		if w.ID == added.ID {
			assert.Equal(t, entities.FrenchForms{"chien"}, w.French)
			return
		}
	}
	t.Fatalf("added word %s not returned", added.ID)
}

func TestService_AddUserWord_Rejections(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	_, ok := f.svc.AddUserWord(ctx, entities.Record{English: "cat"})
	assert.False(t, ok, "missing french")

	_, ok = f.svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{" "}})
	assert.False(t, ok, "blank french")

	_, ok = f.svc.AddUserWord(ctx, entities.Record{ID: "word-42", English: "cat", French: entities.FrenchForms{"chat"}})
	assert.False(t, ok, "reserved id")

	_, ok = f.svc.AddUserRecord(ctx, entities.CategoryNumber, entities.Record{English: "three", French: entities.FrenchForms{"trois"}})
	assert.False(t, ok, "numbers are not learner content")

	_, ok = f.svc.AddUserWord(ctx, entities.Record{ID: "user-w-1", English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok)
	_, ok = f.svc.AddUserWord(ctx, entities.Record{ID: "user-w-1", English: "dog", French: entities.FrenchForms{"chien"}})
	assert.False(t, ok, "duplicate id")

	assert.Len(t, f.svc.GetAllWords(ctx), 4)
}

func TestService_AddUserRecord_GeneratesDistinctIDs(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	a, ok := f.svc.AddUserSentence(ctx, entities.Record{English: "Good night", French: entities.FrenchForms{"Bonne nuit"}})
	require.True(t, ok)
	b, ok := f.svc.AddUserSentence(ctx, entities.Record{English: "See you", French: entities.FrenchForms{"À plus"}})
	require.True(t, ok)

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(a.ID, "user-s-"))
	assert.True(t, strings.HasPrefix(b.ID, "user-s-"))
}

func TestService_GetAllVerbs_HidesRetiredPredefined(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	legacy := entities.Record{ID: "verb-3", Infinitive: "avoir", English: "to have", Conjugations: entities.Conjugations{"je": {"present": "ai"}}}
	require.NoError(t, f.repo.Add(entities.CategoryVerb, &legacy))

	assert.Empty(t, f.svc.GetAllVerbs(ctx))

	_, ok := f.svc.AddUserVerb(ctx, entities.Record{
		Infinitive:   "manger",
		English:      "eat",
		Conjugations: entities.Conjugations{"je": {"present": "mange"}},
	})
	require.True(t, ok)

	verbs := f.svc.GetAllVerbs(ctx)
	require.Len(t, verbs, 1)
	for _, v := range verbs {
		assert.False(t, v.IsPredefined)
		assert.False(t, strings.HasPrefix(v.ID, "verb-"))
		assert.True(t, strings.HasPrefix(v.English, "to "))
	}
	assert.Equal(t, "to manger", verbs[0].English)
}

func TestService_VerbsRetiredWithDefaultOptions(t *testing.T) {
	svc := NewService(Options{KV: kvstore.NewMemory(), Bundle: content.StaticSource{Bundle: testBundle()}})
	ctx := context.Background()

	assert.Empty(t, svc.GetAllVerbs(ctx))
	assert.Empty(t, svc.CachedRecords(entities.CategoryVerb))
	assert.Len(t, svc.GetAllNumbers(ctx), 2, "other categories are untouched")
}

func TestService_CachedRecords_FiltersRetired(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	_, ok := f.svc.AddUserVerb(ctx, entities.Record{
		Infinitive:   "manger",
		English:      "eat",
		Conjugations: entities.Conjugations{"je": {"present": "mange"}},
	})
	require.True(t, ok)

	cached := f.svc.CachedRecords(entities.CategoryVerb)
	require.Len(t, cached, 1)
	assert.False(t, strings.HasPrefix(cached[0].ID, "verb-"))
	assert.Equal(t, "to manger", cached[0].English)
}

func TestService_GetAllWords_AfterPredefinedRowsDeleted(t *testing.T) {
	f, cleanup := setupService(t, content.NewBundle())
	defer cleanup()
	ctx := context.Background()

	predefined := entities.Record{ID: "word-1", English: "one", French: entities.FrenchForms{"un"}, IsPredefined: true}
	user := entities.Record{ID: "user-w-5", English: "cat", French: entities.FrenchForms{"chat"}}
	require.NoError(t, f.repo.Add(entities.CategoryWord, &predefined))
	require.NoError(t, f.repo.Add(entities.CategoryWord, &user))

	assert.ElementsMatch(t, []string{"word-1", "user-w-5"}, recordIDs(f.svc.GetAllWords(ctx)))

	removed, err := f.repo.Delete(entities.CategoryWord, "word-1")
	require.NoError(t, err)
	require.True(t, removed)

	assert.Equal(t, []string{"user-w-5"}, recordIDs(f.svc.GetAllWords(ctx)))
}

func TestService_ReadThrough_SeedsTableThatWasNeverSeeded(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := records.NewRepository(db.DB)
	store := &flakyStore{Repository: repo, bulkFailures: 3}

	svc := NewService(Options{Store: store, KV: kvstore.NewMemory(), Bundle: content.StaticSource{Bundle: testBundle()}})
	ctx := context.Background()
	svc.Initialize(ctx, "learner")

	seeded, err := repo.Seeded(entities.CategoryWord)
	require.NoError(t, err)
	require.False(t, seeded, "failed seeding leaves the category unmarked")

	assert.Len(t, svc.GetAllWords(ctx), 3)

	count, err := repo.Count(entities.CategoryWord)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	seeded, err = repo.Seeded(entities.CategoryWord)
	require.NoError(t, err)
	assert.True(t, seeded)
}

func TestService_ReadThrough_EmptiedTableKeepsShippedRecordsOut(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	added, ok := f.svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok)
	require.NoError(t, f.repo.Clear(entities.CategoryWord))

	assert.Equal(t, []string{added.ID}, recordIDs(f.svc.GetAllWords(ctx)))

	f.svc.Refresh(ctx)
	assert.Equal(t, []string{added.ID}, recordIDs(f.svc.GetAllWords(ctx)))

	count, err := f.repo.Count(entities.CategoryWord)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestService_AddUserWord_StoreFailureIsWrittenBackLater(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := records.NewRepository(db.DB)
	store := &flakyStore{Repository: repo}

	svc := NewService(Options{Store: store, KV: kvstore.NewMemory(), Bundle: content.StaticSource{Bundle: testBundle()}})
	ctx := context.Background()
	svc.Initialize(ctx, "learner")

	store.addFailures = 1
	added, ok := svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok)

	assert.Contains(t, recordIDs(svc.GetAllWords(ctx)), added.ID)

	stored, err := repo.GetByID(entities.CategoryWord, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat", stored.English)

	svc.Refresh(ctx)
	assert.Contains(t, recordIDs(svc.GetAllWords(ctx)), added.ID)

	count, err := repo.Count(entities.CategoryWord)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestService_Initialize_WritesMirroredRecordsBack(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	pending := []entities.Record{{ID: "user-w-7", Origin: entities.OriginUser, English: "owl", French: entities.FrenchForms{"hibou"}}}
	raw, err := json.Marshal(pending)
	require.NoError(t, err)
	require.NoError(t, f.kv.Set("frenchmaster_user_words", string(raw)))

	f.svc.Initialize(ctx, "learner")

	stored, err := f.repo.GetByID(entities.CategoryWord, "user-w-7")
	require.NoError(t, err)
	assert.Equal(t, "owl", stored.English)
	assert.Contains(t, recordIDs(f.svc.GetAllWords(ctx)), "user-w-7")
}

func TestService_UpdateData(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	added, ok := f.svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok)

	f.clock.Advance(time.Hour)
	added.English = "kitten"
	updated, ok := f.svc.UpdateData(ctx, entities.CategoryWord, added)
	require.True(t, ok)
	assert.True(t, updated.CreatedAt.Equal(*added.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(*added.CreatedAt))

	stored, err := f.repo.GetByID(entities.CategoryWord, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "kitten", stored.English)

	cached := f.svc.CachedRecords(entities.CategoryWord)
	assert.Contains(t, cached, updated)
}

func TestService_UpdateData_DoesNotRecreateShippedRecords(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	_, ok := f.svc.UpdateData(ctx, entities.CategoryWord, entities.Record{ID: "word-99", English: "x", French: entities.FrenchForms{"x"}})
	assert.False(t, ok)

	_, ok = f.svc.UpdateData(ctx, entities.CategoryWord, entities.Record{English: "x", French: entities.FrenchForms{"x"}})
	assert.False(t, ok, "update requires an id")

	created, ok := f.svc.UpdateData(ctx, entities.CategoryWord, entities.Record{ID: "user-w-42", English: "owl", French: entities.FrenchForms{"le hibou"}})
	require.True(t, ok)
	assert.Equal(t, entities.OriginUser, created.Origin)
}

func TestService_DeleteData(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	added, ok := f.svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok)

	assert.True(t, f.svc.DeleteData(ctx, entities.CategoryWord, added.ID))
	assert.NotContains(t, recordIDs(f.svc.GetAllWords(ctx)), added.ID)
	assert.NotContains(t, recordIDs(f.svc.CachedRecords(entities.CategoryWord)), added.ID)

	assert.False(t, f.svc.DeleteData(ctx, entities.CategoryWord, added.ID))
	assert.False(t, f.svc.DeleteData(ctx, entities.CategoryWord, "user-w-missing"))
}

func TestService_SaveUserContent_ReplacesLearnerRecords(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	old, ok := f.svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok)

	ok = f.svc.SaveUserContent(ctx, entities.CategoryWord, []entities.Record{
		{ID: "user-w-1", English: "dog", French: entities.FrenchForms{"chien"}},
		{English: "owl", French: entities.FrenchForms{"hibou"}},
		{English: "invalid"},
	})
	require.True(t, ok)

	ids := recordIDs(f.svc.GetAllWords(ctx))
	assert.NotContains(t, ids, old.ID)
	assert.Contains(t, ids, "user-w-1")
	assert.Contains(t, ids, "word-0")
	assert.Len(t, ids, 5)

	count, err := f.repo.Count(entities.CategoryWord)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count, "shipped rows survive the rewrite")

	raw, found := f.kv.Get("frenchmaster_user_words")
	require.True(t, found)
	var mirrored []entities.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &mirrored))
	assert.Len(t, mirrored, 2)
}

func TestService_FallbackWhenBundleFails(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := records.NewRepository(db.DB)

	svc := NewService(Options{
		Store:  repo,
		KV:     kvstore.NewMemory(),
		Bundle: content.StaticSource{Err: errors.New("datasets missing")},
	})
	ctx := context.Background()

	words := svc.GetAllWords(ctx)
	require.NotEmpty(t, words)
	for _, w := range words {
		assert.True(t, strings.HasPrefix(w.ID, "word-fallback-"), w.ID)
	}

	st := svc.Status()
	assert.Equal(t, ModeFallback, st.Mode)
	assert.Contains(t, st.LastError, "datasets missing")

	count, err := repo.Count(entities.CategoryWord)
	require.NoError(t, err)
	assert.Zero(t, count, "fallback content is never persisted")
}

func TestService_CacheOnly_MirrorsToKV(t *testing.T) {
	kv := kvstore.NewMemory()
	opts := Options{KV: kv, Bundle: content.StaticSource{Bundle: testBundle()}}
	ctx := context.Background()

	svc := NewService(opts)
	svc.Initialize(ctx, "learner")
	assert.Equal(t, ModeCacheOnly, svc.Mode())

	added, ok := svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok)
	assert.Contains(t, recordIDs(svc.GetAllWords(ctx)), added.ID)

	_, found := kv.Get("frenchmaster_user_words")
	assert.True(t, found)

	restarted := NewService(opts)
	assert.Contains(t, recordIDs(restarted.GetAllWords(ctx)), added.ID)

	_, ok = restarted.UpdateData(ctx, entities.CategoryWord, entities.Record{ID: "word-0", English: "hi", French: entities.FrenchForms{"salut"}})
	assert.False(t, ok, "shipped records are read-only without a store")

	assert.True(t, restarted.DeleteData(ctx, entities.CategoryWord, added.ID))
	assert.NotContains(t, recordIDs(NewService(opts).GetAllWords(ctx)), added.ID)
}

func TestService_FailingStore_ServesCache(t *testing.T) {
	kv := kvstore.NewMemory()
	svc := NewService(Options{
		Store:  failingStore{},
		KV:     kv,
		Bundle: content.StaticSource{Bundle: testBundle()},
	})
	ctx := context.Background()

	assert.Len(t, svc.GetAllWords(ctx), 3)
	assert.Equal(t, ModeReady, svc.Mode())

	added, ok := svc.AddUserWord(ctx, entities.Record{English: "cat", French: entities.FrenchForms{"chat"}})
	require.True(t, ok, "store failure falls back to the mirror")
	assert.Contains(t, recordIDs(svc.GetAllWords(ctx)), added.ID)

	_, found := kv.Get("frenchmaster_user_words")
	assert.True(t, found)

	_, ok = svc.UpdateData(ctx, entities.CategoryWord, added)
	assert.False(t, ok)
	assert.False(t, svc.DeleteData(ctx, entities.CategoryWord, "word-0"))
	assert.Len(t, svc.GetAllWords(ctx), 4, "cache unchanged by failed writes")
}

func TestService_ForceRefresh(t *testing.T) {
	f, cleanup := setupService(t, testBundle())
	defer cleanup()
	ctx := context.Background()

	f.svc.Initialize(ctx, "learner")

	// A learner row written behind the service's back shows up after a reload.
	extra := entities.Record{ID: "user-w-9", Origin: entities.OriginUser, English: "owl", French: entities.FrenchForms{"hibou"}}
	require.NoError(t, f.repo.Add(entities.CategoryWord, &extra))

	ack := f.svc.ForceRefresh()
	assert.True(t, ack.Accepted)

	assert.Contains(t, recordIDs(f.svc.GetAllWords(ctx)), "user-w-9")
	assert.Contains(t, recordIDs(f.svc.CachedRecords(entities.CategoryWord)), "user-w-9")

	st := f.svc.Status()
	assert.True(t, st.Initialized)
	assert.False(t, st.Refreshing)
	assert.Equal(t, "learner", st.UserID)
}

func TestService_Refresh_Synchronous(t *testing.T) {
	src := &countingSource{}
	svc := NewService(Options{KV: kvstore.NewMemory(), Bundle: src})
	ctx := context.Background()

	svc.Initialize(ctx, "learner")
	st := svc.Refresh(ctx)

	assert.True(t, st.Initialized)
	assert.EqualValues(t, 2, src.loads.Load())
}
