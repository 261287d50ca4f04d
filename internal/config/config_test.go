package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/collision-records-go/internal/table"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"COLLISIONS_CSV", "PARTIES_CSV", "VICTIMS_CSV", "OUTPUT_CSV", "REPORT_JSON",
		"DB_PATH", "JOIN_POLICY", "LOG_LEVEL", "LOG_JSON", "DB_BATCH_SIZE",
	} {
		t.Setenv(k, "")
	}
	// .env is read from the working directory
	chdir(t, t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "data/related_collisions.csv", cfg.OutputPath)
	assert.Equal(t, table.InnerJoin, cfg.Policy())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "enricher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"collisions_path: in/c.csv\njoin_policy: left\nbatch_size: 50\ndb_path: out/runs.db\n"), 0o644))
	t.Setenv("JOIN_POLICY", "inner")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "in/c.csv", cfg.CollisionsPath)
	assert.Equal(t, "data/Parties.csv", cfg.PartiesPath)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "out/runs.db", cfg.DBPath)
	assert.Equal(t, table.InnerJoin, cfg.Policy(), "environment wins over file")
	assert.True(t, cfg.LogJSON)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("VICTIMS_CSV=env/v.csv\n"), 0o644))
	// godotenv never overrides a variable that is already set, even to ""
	require.NoError(t, os.Unsetenv("VICTIMS_CSV"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env/v.csv", cfg.VictimsPath)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	t.Setenv("DB_BATCH_SIZE", "many")
	_, err = Load("")
	assert.ErrorContains(t, err, "DB_BATCH_SIZE")

	t.Setenv("DB_BATCH_SIZE", "")
	t.Setenv("JOIN_POLICY", "outer")
	_, err = Load("")
	assert.ErrorIs(t, err, table.ErrUnknownJoinPolicy)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.OutputPath = " "
	assert.ErrorContains(t, cfg.Validate(), "output path")

	cfg = Default()
	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
