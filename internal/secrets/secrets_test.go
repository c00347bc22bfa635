package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"gighunt-engine/internal/secrets"
)

func TestLookup_KeychainThenEnv(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.EnvTelegramToken, "from-env")

	got, err := secrets.TelegramToken("telegram")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	require.NoError(t, secrets.Set("telegram", "from-keychain"))
	assert.True(t, secrets.Has("telegram"))

	got, err = secrets.TelegramToken("telegram")
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", got)

	require.NoError(t, secrets.Delete("telegram"))
	assert.False(t, secrets.Has("telegram"))
	assert.ErrorIs(t, secrets.Delete("telegram"), secrets.ErrNotFound)
}

func TestLookup_Missing(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.EnvLLMKey, "  ")

	_, err := secrets.LLMKey("llm")
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestSet_RejectsBlank(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, secrets.Set("", "x"))
	assert.Error(t, secrets.Set("acct", " "))
	assert.Error(t, secrets.Delete(""))
}
