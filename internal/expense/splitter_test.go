package expense

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	t.Run("splits and drops blank segments", func(t *testing.T) {
		got := slices.Collect(Lines("200 - lunch\n\n50 - tea"))
		assert.Equal(t, []string{"200 - lunch", "50 - tea"}, got)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got := slices.Collect(Lines("  ₹220 chai  \n\t50 tea"))
		assert.Equal(t, []string{"₹220 chai", "50 tea"}, got)
	})

	t.Run("handles windows line endings", func(t *testing.T) {
		got := slices.Collect(Lines("first\r\nsecond"))
		assert.Equal(t, []string{"first", "second"}, got)
	})

	t.Run("whitespace-only message yields nothing", func(t *testing.T) {
		assert.Empty(t, slices.Collect(Lines("  \n\t\n ")))
	})

	t.Run("empty message yields nothing", func(t *testing.T) {
		assert.Empty(t, slices.Collect(Lines("")))
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		seq := Lines("a\nb\nc")
		first := slices.Collect(seq)
		second := slices.Collect(seq)
		assert.Equal(t, first, second)
		assert.Len(t, first, 3)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		var got []string
		for line := range Lines("a\nb\nc") {
			got = append(got, line)
			if len(got) == 1 {
				break
			}
		}
		assert.Equal(t, []string{"a"}, got)
	})
}
