package migrate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"sites/internal/config"
	"sites/internal/database"
	"sites/internal/site"
)

type fixture struct {
	db      *bun.DB
	signals *site.Signals
	cache   *site.Cache
	store   *site.BunStore
	manager *site.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Provider: database.ProviderSQLite,
		URL:      filepath.Join(t.TempDir(), "sites.db"),
	}, "info")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sg := site.NewSignals()
	cache := site.NewCache(0)
	t.Cleanup(cache.Close)
	cache.Connect(sg)

	store := site.NewBunStore(db, sg)
	site.NewInitializer(store, cache).Connect(sg)

	siteID := site.DefaultSiteID
	return &fixture{
		db:      db,
		signals: sg,
		cache:   cache,
		store:   store,
		manager: site.NewManager(store, cache, &siteID),
	}
}

func TestMigrateCreatesDefaultSiteOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	event, err := Migrate(ctx, f.db, database.ProviderSQLite, f.signals, false)
	require.NoError(t, err)
	assert.True(t, event.Created(site.TableName))

	sites, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, site.DefaultSiteID, sites[0].ID)
	assert.Equal(t, "example.com", sites[0].Domain)
	assert.Equal(t, "example.com", sites[0].Name)

	// 再次迁移不再创建
	event, err = Migrate(ctx, f.db, database.ProviderSQLite, f.signals, false)
	require.NoError(t, err)
	assert.False(t, event.Created(site.TableName))

	sites, err = f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sites, 1)
}

func TestMigrateClearsCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.cache.Set(&site.Site{ID: 3, Domain: "stale.example", Name: "Stale"})
	_, err := Migrate(ctx, f.db, database.ProviderSQLite, f.signals, false)
	require.NoError(t, err)
	assert.Zero(t, f.cache.Len())
}

func TestBunStoreAfterMigrate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := Migrate(ctx, f.db, database.ProviderSQLite, f.signals, false)
	require.NoError(t, err)

	current, err := f.manager.GetCurrent(ctx)
	require.NoError(t, err)
	again, err := f.manager.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Same(t, current, again)

	// 自增主键接在默认站点之后
	other := site.NewSite("other.example", "Other")
	require.NoError(t, f.manager.Save(ctx, other))
	assert.Equal(t, int64(2), other.ID)
	assert.Equal(t, 1, f.cache.Len())

	current.Name = "Example"
	require.NoError(t, f.manager.Save(ctx, current))
	assert.Zero(t, f.cache.Len())

	reloaded, err := f.manager.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Example", reloaded.Name)
	assert.NotSame(t, current, reloaded)

	require.NoError(t, f.manager.Delete(ctx, reloaded))
	assert.Zero(t, f.cache.Len())
	_, err = f.manager.GetCurrent(ctx)
	assert.ErrorIs(t, err, site.ErrSiteNotFound)
	assert.ErrorIs(t, f.manager.Delete(ctx, reloaded), site.ErrSiteNotFound)

	n, err := f.manager.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBunStoreReadDuringSaveDoesNotLeaveStaleCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := Migrate(ctx, f.db, database.ProviderSQLite, f.signals, false)
	require.NoError(t, err)
	_, err = f.manager.GetCurrent(ctx)
	require.NoError(t, err)

	f.signals.ConnectPreSave(func(ctx context.Context, _ *site.Site) {
		_, _ = f.manager.GetCurrent(ctx)
	})

	s, err := f.store.Get(ctx, site.DefaultSiteID)
	require.NoError(t, err)
	s.Domain = "new.example"
	require.NoError(t, f.manager.Save(ctx, s))

	current, err := f.manager.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new.example", current.Domain)
}

func TestBunStoreSaveWithExplicitIDInserts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := Migrate(ctx, f.db, database.ProviderSQLite, f.signals, false)
	require.NoError(t, err)

	s := &site.Site{ID: 10, Domain: "ten.example", Name: "Ten"}
	require.NoError(t, f.store.Save(ctx, s))
	require.NoError(t, f.store.ResetSequence(ctx))

	got, err := f.store.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "ten.example", got.Domain)

	next := site.NewSite("next.example", "Next")
	require.NoError(t, f.store.Save(ctx, next))
	assert.Equal(t, int64(11), next.ID)
}

func TestBunStoreRejectsWhitespaceDomain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := Migrate(ctx, f.db, database.ProviderSQLite, f.signals, false)
	require.NoError(t, err)

	assert.Error(t, f.store.Save(ctx, site.NewSite("bad domain", "Bad")))

	sites, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sites, 1)
}

func TestRunnerDown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r, err := NewRunner(f.db, database.ProviderSQLite, false)
	require.NoError(t, err)
	_, err = r.Run(ctx, Up)
	require.NoError(t, err)
	_, err = r.Run(ctx, Down)
	require.NoError(t, err)

	// 表已删除，重新迁移视为新建
	event, err := r.Run(ctx, Up)
	require.NoError(t, err)
	assert.True(t, event.Created(site.TableName))
}

func TestMigrateFile(t *testing.T) {
	ctx := context.Background()
	sg := site.NewSignals()
	cache := site.NewCache(0)
	defer cache.Close()
	cache.Connect(sg)

	store := site.NewFileStore(t.TempDir(), sg)
	site.NewInitializer(store, cache).Connect(sg)

	event, err := MigrateFile(ctx, store, sg)
	require.NoError(t, err)
	assert.True(t, event.Created(site.TableName))

	event, err = MigrateFile(ctx, store, sg)
	require.NoError(t, err)
	assert.False(t, event.Created(site.TableName))

	sites, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "example.com", sites[0].Domain)
}

func TestUnsupportedProvider(t *testing.T) {
	_, err := gooseDialect("oracle")
	assert.Error(t, err)
}
