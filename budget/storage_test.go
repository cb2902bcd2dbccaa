package budget

import (
	"testing"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashMapStorage_CreateAndConsume(t *testing.T) {
	storage := NewHashMapStorage[int](logger.Nop())

	require.NoError(t, storage.Create(1, Finite(1.0)))

	status, err := storage.CheckAndConsume(1, Finite(0.5))
	require.NoError(t, err)
	assert.Equal(t, Continue, status)

	status, err = storage.CheckAndConsume(1, Finite(0.6))
	require.NoError(t, err)
	assert.Equal(t, OutOfBudget, status)

	remaining, err := storage.GetRemaining(1)
	require.NoError(t, err)
	assert.Equal(t, Finite(0.5), remaining)
}

func TestHashMapStorage_UnknownFilterFails(t *testing.T) {
	storage := NewHashMapStorage[int](logger.Nop())

	_, err := storage.CheckAndConsume(3, Finite(0.2))
	assert.ErrorIs(t, err, ErrFilterNotInitialized)

	_, err = storage.GetRemaining(3)
	assert.ErrorIs(t, err, ErrFilterNotInitialized)

	ok, err := storage.IsInitialized(3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashMapStorage_CreateReplacesExisting(t *testing.T) {
	storage := NewHashMapStorage[int](logger.Nop())
	require.NoError(t, storage.Create(1, Finite(1.0)))
	require.NoError(t, storage.Create(1, Finite(5.0)))

	remaining, err := storage.GetRemaining(1)
	require.NoError(t, err)
	assert.Equal(t, Finite(5.0), remaining)
}
