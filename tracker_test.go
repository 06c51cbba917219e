package gopick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	barValue := cacheKey{key: KeyOf[*Bar]()}
	fooValue := cacheKey{key: KeyOf[*Foo]()}
	fooProvider := cacheKey{key: KeyOf[*Foo](), slot: slotProvider}

	t.Run("it should report the cycle path", func(t *testing.T) {
		// GIVEN
		tr := newTracker()
		require.NoError(t, tr.push(barValue))
		require.NoError(t, tr.push(fooValue))

		// WHEN
		err := tr.push(barValue)

		// THEN
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []Key{KeyOf[*Bar](), KeyOf[*Foo](), KeyOf[*Bar]()}, cycle.Path)
		assert.Contains(t, err.Error(), "dependency cycle found")
		assert.Equal(t, 2, tr.depth())
	})

	t.Run("it should not mistake the provider slot for the value slot", func(t *testing.T) {
		// GIVEN
		tr := newTracker()
		require.NoError(t, tr.push(fooValue))

		// WHEN
		err := tr.push(fooProvider)

		// THEN
		assert.NoError(t, err)
	})

	t.Run("it should fork an independent copy", func(t *testing.T) {
		// GIVEN
		tr := newTracker()
		require.NoError(t, tr.push(barValue))

		// WHEN
		fork := tr.fork()
		require.NoError(t, fork.push(fooValue))
		fork.reset()

		// THEN
		assert.Equal(t, 1, tr.depth())
		assert.Equal(t, 0, fork.depth())
		assert.ErrorIs(t, tr.fork().push(barValue), ErrCycle)
	})

	t.Run("it should fork a nil tracker into an empty one", func(t *testing.T) {
		// GIVEN
		var tr *tracker

		// WHEN
		fork := tr.fork()

		// THEN
		require.NotNil(t, fork)
		assert.Equal(t, 0, fork.depth())
	})

	t.Run("it should pop the last pushed key", func(t *testing.T) {
		// GIVEN
		tr := newTracker()
		require.NoError(t, tr.push(barValue))
		require.NoError(t, tr.push(fooValue))

		// WHEN
		popped := tr.pop()

		// THEN
		assert.Equal(t, fooValue, popped)
		assert.Equal(t, 1, tr.depth())
		assert.NoError(t, tr.push(fooValue))
	})
}
