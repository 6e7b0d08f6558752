package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "empires", cfg.Database.Name)
	assert.Equal(t, "volley", cfg.Combat.Strategy)
	assert.Equal(t, 10, cfg.Combat.DefaultDefenderSectors)
	assert.Equal(t, 1000, cfg.Combat.SimulationTrials)
	assert.Equal(t, 10*time.Minute, cfg.Combat.CacheTTL)
	assert.Empty(t, cfg.Combat.ProfilesPath)
	assert.Equal(t, "empires", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CombatOverrides(t *testing.T) {
	t.Setenv("COMBAT_STRATEGY", "unified")
	t.Setenv("COMBAT_RULESET_PATH", "/etc/empires/ruleset.yaml")
	t.Setenv("COMBAT_CACHE_TTL", "90s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "unified", cfg.Combat.Strategy)
	assert.Equal(t, "/etc/empires/ruleset.yaml", cfg.Combat.RulesetPath)
	assert.Equal(t, 90*time.Second, cfg.Combat.CacheTTL)
	assert.True(t, cfg.Logging.JSONFormat)
}

func TestLoad_RejectsMalformedCombatSettings(t *testing.T) {
	t.Setenv("COMBAT_CACHE_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COMBAT_CACHE_TTL")
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "32 characters")

	cfg.Auth.JWTSecret = strings.Repeat("x", 40)
	cfg.Combat.SimulationTrials = cfg.Combat.MaxSimulationTrials + 1
	assert.ErrorContains(t, cfg.Validate(), "COMBAT_SIMULATION_TRIALS")
}
