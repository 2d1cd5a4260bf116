package kz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/misscatmint/kzkitty/model"
)

func TestRankName(t *testing.T) {
	t.Parallel()

	t.Run("zero points is New in every mode", func(t *testing.T) {
		for _, mode := range model.AllModes {
			assert.Equal(t, "New", RankName(0, mode))
		}
	})

	t.Run("top thresholds differ per mode", func(t *testing.T) {
		assert.Equal(t, "Legend", RankName(1000000, model.ModeKZT))
		assert.Equal(t, "Master", RankName(999999, model.ModeKZT))
		assert.Equal(t, "Legend", RankName(800000, model.ModeSKZ))
		assert.Equal(t, "Legend", RankName(600000, model.ModeVNL))
		assert.Equal(t, "Pro", RankName(600000, model.ModeKZT))
	})

	t.Run("shared lower thresholds", func(t *testing.T) {
		for _, mode := range model.AllModes {
			assert.Equal(t, "Skilled", RankName(120000, mode))
			assert.Equal(t, "Beginner-", RankName(1, mode))
			assert.Equal(t, "Beginner", RankName(500, mode))
			assert.Equal(t, "Casual", RankName(30000, mode))
		}
	})
}
