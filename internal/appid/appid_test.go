package appid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetReturnsPopulatedIdentity(t *testing.T) {
	identity := Get()
	require.Equal(t, "lightspeed", identity.BinaryName)
	require.NotEmpty(t, identity.EnvPrefix)
	require.NotEmpty(t, identity.ConfigName)
}

func TestTelemetryNamespaceFallsBackToBinaryName(t *testing.T) {
	identity := Identity{BinaryName: "site"}
	require.Equal(t, "site", identity.TelemetryNamespace())

	identity.Namespace = "custom"
	require.Equal(t, "custom", identity.TelemetryNamespace())
}

func TestEnvKey(t *testing.T) {
	require.Equal(t, "LIGHTSPEED_PORT", Get().EnvKey("port"))
	require.Equal(t, "APP_HOST", Identity{EnvPrefix: "APP"}.EnvKey("HOST"))
}
