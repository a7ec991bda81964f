package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/diary/internal/apperr"
	"github.com/starford/diary/internal/storage"
)

func testStore(t *testing.T) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSession_FirstLaunch(t *testing.T) {
	s, err := Open(testStore(t))
	require.NoError(t, err)

	assert.True(t, s.FirstLaunch())
	assert.Empty(t, s.Username())
	assert.False(t, s.Verify("", ""))
}

func TestSession_SetupAndReopen(t *testing.T) {
	store := testStore(t)
	s, err := Open(store)
	require.NoError(t, err)

	require.NoError(t, s.Setup("ada", "s3cret", "s3cret"))
	assert.False(t, s.FirstLaunch())
	assert.Equal(t, "ada", s.Username())
	assert.True(t, s.Verify("ada", "s3cret"))
	assert.False(t, s.Verify("ada", "wrong"))
	assert.False(t, s.Verify("bob", "s3cret"))

	raw, err := store.Read(FilePath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret")

	reopened, err := Open(store)
	require.NoError(t, err)
	assert.False(t, reopened.FirstLaunch())
	assert.True(t, reopened.Verify("ada", "s3cret"))
}

func TestSession_SetupErrors(t *testing.T) {
	s, err := Open(testStore(t))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Setup("ada", "one", "two"), apperr.ErrPasswordMismatch)
	assert.ErrorIs(t, s.Setup("", "pw", "pw"), apperr.ErrInvalidInput)
	assert.ErrorIs(t, s.Setup("ada", "", ""), apperr.ErrInvalidInput)
	assert.True(t, s.FirstLaunch())

	require.NoError(t, s.Setup("ada", "pw", "pw"))
	assert.ErrorIs(t, s.Setup("eve", "pw", "pw"), apperr.ErrAccountExists)
	assert.Equal(t, "ada", s.Username())
}

func TestSession_Update(t *testing.T) {
	s, err := Open(testStore(t))
	require.NoError(t, err)

	_, err = s.Update("ada", "", "")
	assert.ErrorIs(t, err, apperr.ErrAccountMissing)

	require.NoError(t, s.Setup("ada", "pw", "pw"))

	changed, err := s.Update("ada", "", "")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.Update("lovelace", "", "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, s.Verify("lovelace", "pw"))

	_, err = s.Update("lovelace", "new", "other")
	assert.ErrorIs(t, err, apperr.ErrPasswordMismatch)

	changed, err = s.Update("lovelace", "new", "new")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, s.Verify("lovelace", "new"))
	assert.False(t, s.Verify("lovelace", "pw"))
}

func TestSession_PasswordLimitCountsBytes(t *testing.T) {
	s, err := Open(testStore(t))
	require.NoError(t, err)

	long := strings.Repeat("é", 72) // 72 runes, 144 bytes
	assert.ErrorIs(t, s.Setup("ada", long, long), apperr.ErrInvalidInput)
	assert.True(t, s.FirstLaunch())

	exact := strings.Repeat("é", 36)
	require.NoError(t, s.Setup("ada", exact, exact))
	assert.True(t, s.Verify("ada", exact))

	_, err = s.Update("ada", long, long)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.True(t, s.Verify("ada", exact))
}
