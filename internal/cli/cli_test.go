package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sites/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateAndCurrentWithFileStore(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, `
installed_apps = ["sites"]
site_model = "sites.Site"
site_id = 1

[database]
provider = "file"
url = "`+filepath.ToSlash(dataDir)+`"
`)

	out, err := run(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sites")

	out, err = run(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "没有待执行的迁移")

	out, err = run(t, "current", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "domain=example.com name=example.com")
}

func TestMigrateAndCurrentWithSQLite(t *testing.T) {
	path := writeConfig(t, `
installed_apps = ["sites"]
site_model = "sites.Site"
site_id = 1

[database]
provider = "sqlite"
url = "`+filepath.ToSlash(filepath.Join(t.TempDir(), "sites.db"))+`"
`)

	_, err := run(t, "migrate", "--config", path)
	require.NoError(t, err)

	out, err := run(t, "current", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "domain=example.com")
}

func TestMigrateDownRollsBack(t *testing.T) {
	for _, tc := range []struct {
		provider string
		url      string
	}{
		{provider: "file", url: t.TempDir()},
		{provider: "sqlite", url: filepath.Join(t.TempDir(), "sites.db")},
	} {
		t.Run(tc.provider, func(t *testing.T) {
			path := writeConfig(t, `
installed_apps = ["sites"]
site_model = "sites.Site"
site_id = 1

[database]
provider = "`+tc.provider+`"
url = "`+filepath.ToSlash(tc.url)+`"
`)

			_, err := run(t, "migrate", "--config", path)
			require.NoError(t, err)

			out, err := run(t, "migrate", "--down", "--config", path)
			require.NoError(t, err)
			assert.Contains(t, out, "已回滚")

			// 回滚后重新迁移视为首次建表
			out, err = run(t, "migrate", "--config", path)
			require.NoError(t, err)
			assert.Contains(t, out, "已创建")

			out, err = run(t, "current", "--config", path)
			require.NoError(t, err)
			assert.Contains(t, out, "domain=example.com")
		})
	}
}

func TestCurrentFallsBackToHost(t *testing.T) {
	path := writeConfig(t, `
installed_apps = []
site_model = "sites.Site"
`)

	out, err := run(t, "current", "--config", path, "--host", "shop.example:8000")
	require.NoError(t, err)
	assert.Contains(t, out, "domain=shop.example:8000 name=shop.example:8000")

	out, err = run(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "未安装")
}

func TestCurrentWithoutSiteID(t *testing.T) {
	path := writeConfig(t, `
installed_apps = ["sites"]
site_model = "sites.Site"

[database]
provider = "file"
url = "`+filepath.ToSlash(t.TempDir())+`"
`)

	_, err := run(t, "current", "--config", path)
	assert.ErrorIs(t, err, config.ErrImproperlyConfigured)
}

func TestMalformedSiteModel(t *testing.T) {
	path := writeConfig(t, `
installed_apps = ["sites"]
site_model = "sites"
site_id = 1
`)

	_, err := newAppFromPath(t, path)
	assert.ErrorIs(t, err, config.ErrImproperlyConfigured)
}

func newAppFromPath(t *testing.T, path string) (*App, error) {
	t.Helper()
	cfg, _, err := config.LoadOrInit(path, false)
	require.NoError(t, err)
	return NewApp(cfg)
}
