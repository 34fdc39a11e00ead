package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukwonit/farm-admin-server/internal/config"
)

func TestParseAdminAllowList(t *testing.T) {
	t.Run("splits and normalizes entries", func(t *testing.T) {
		admins := config.ParseAdminAllowList("Kim@Dukwon.co.kr, lee@dukwon.co.kr ,PARK@DUKWON.CO.KR")
		require.Len(t, admins, 3)
		require.True(t, admins.Contains("kim@dukwon.co.kr"))
		require.True(t, admins.Contains("lee@dukwon.co.kr"))
		require.True(t, admins.Contains("park@dukwon.co.kr"))
	})

	t.Run("drops blank entries", func(t *testing.T) {
		admins := config.ParseAdminAllowList(" , kim@dukwon.co.kr ,, ")
		require.Len(t, admins, 1)
	})

	t.Run("empty input yields empty list", func(t *testing.T) {
		require.Empty(t, config.ParseAdminAllowList(""))
		require.Empty(t, config.ParseAdminAllowList("  "))
	})
}

func TestAdminAllowListContains(t *testing.T) {
	admins := config.ParseAdminAllowList("Admin@Example.com")

	t.Run("membership is case insensitive", func(t *testing.T) {
		require.True(t, admins.Contains("admin@example.com"))
		require.True(t, admins.Contains("ADMIN@EXAMPLE.COM"))
		require.True(t, admins.Contains("Admin@Example.com"))
	})

	t.Run("non members are rejected", func(t *testing.T) {
		require.False(t, admins.Contains("intruder@example.com"))
	})

	t.Run("empty username is never an admin", func(t *testing.T) {
		require.False(t, admins.Contains(""))
		empty := config.ParseAdminAllowList("")
		require.False(t, empty.Contains(""))
	})
}
