package problem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowviz/internal/domain/snowman"
)

const scenarioProblem = `(define (problem snowman-3x3)
  (:domain snowman_basic)
  (:objects b1 - ball)
  (:init
    (snow loc_1_1)
    (:location_type loc_3_3 0)
    (character_at loc_2_2)
    (ball_at b1 loc_2_1)
    (ball_size_small b1))
  (:goal (goal)))`

func TestParse_Scenario(t *testing.T) {
	w, err := Parse(scenarioProblem)
	require.NoError(t, err)

	assert.Equal(t, "snowman_basic", w.Domain)
	assert.False(t, w.Numeric())
	assert.Equal(t, 3, w.GridSize)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 1}, w.Character)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 0}, w.Balls["b1"])
	assert.Equal(t, snowman.BallSmall, w.BallSize["b1"])
	assert.Len(t, w.Snow, 9)
	for cell, snowy := range w.Snow {
		assert.Equal(t, cell == snowman.Coordinate{}, snowy, cell.String())
	}
}

func TestParse_SnowIsTotalOverGrid(t *testing.T) {
	w, err := Parse(`(:domain snowman_numeric) (character_at loc_4_2) (location_type loc_1_1 1) (= (location_type loc_2_2) 0)`)
	require.NoError(t, err)
	assert.True(t, w.Numeric())
	assert.Equal(t, 4, w.GridSize)
	for r := 0; r < w.GridSize; r++ {
		for c := 0; c < w.GridSize; c++ {
			_, ok := w.Snow[snowman.Coordinate{Row: r, Col: c}]
			assert.True(t, ok, "cell %d,%d", r, c)
		}
	}
	assert.True(t, w.Snow[snowman.Coordinate{Row: 0, Col: 0}])
	assert.False(t, w.Snow[snowman.Coordinate{Row: 1, Col: 1}])
}

func TestParse_BallSizes(t *testing.T) {
	t.Run("later declaration wins", func(t *testing.T) {
		w, err := Parse(`(character_at loc_1_1)
			(ball_at b1 loc_1_2) (ball_at b2 loc_2_2) (ball_at b3 loc_2_1)
			(ball_size_LARGE b1) (:ball_size b1 1)
			(:ball_size b2 0) (ball_size_medium b2)`)
		require.NoError(t, err)
		assert.Equal(t, snowman.BallMedium, w.BallSize["b1"])
		assert.Equal(t, snowman.BallMedium, w.BallSize["b2"])
		assert.Equal(t, snowman.BallSmall, w.BallSize["b3"])
	})

	t.Run("numeric fluent form", func(t *testing.T) {
		w, err := Parse(`(character_at loc_1_1) (ball_at b1 loc_1_2) (= (ball_size b1) 2)`)
		require.NoError(t, err)
		assert.Equal(t, snowman.BallLarge, w.BallSize["b1"])
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := Parse(`(character_at loc_1_1) (ball_at b1 loc_1_2) (:ball_size b1 3)`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidBallSize))
		var sizeErr *BallSizeError
		require.True(t, errors.As(err, &sizeErr))
		assert.Equal(t, "b1", sizeErr.Ball)
		assert.Equal(t, "3", sizeErr.Value)
	})
}

func TestParse_BareSnowNeverClears(t *testing.T) {
	w, err := Parse(`(character_at loc_1_1) (:location_type loc_1_2 0) (snow loc_1_2)`)
	require.NoError(t, err)
	assert.True(t, w.Snow[snowman.Coordinate{Row: 0, Col: 1}])
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{name: "empty", content: "  \n\t", want: ErrEmptyInput},
		{name: "missing character", content: "(snow loc_1_1)", want: ErrMissingCharacter},
		{name: "malformed location", content: "(character_at loc_1_1) (ball_at b1 loc_x_1)", want: snowman.ErrMalformedLocation},
		{name: "zero based location", content: "(character_at loc_0_1)", want: snowman.ErrMalformedLocation},
		{name: "conflicting character", content: "(character_at loc_1_1) (character_at loc_2_2)", want: ErrConflictingCharacter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestParse_MalformedLocationNamesToken(t *testing.T) {
	_, err := Parse("(character_at loc_1_1)\n(ball_at b1 spot_3)")
	var declErr *DeclarationError
	require.True(t, errors.As(err, &declErr))
	assert.Equal(t, "(ball_at b1 spot_3)", declErr.Declaration)
	assert.Equal(t, 23, declErr.Offset)
	var locErr *snowman.LocationError
	require.True(t, errors.As(err, &locErr))
	assert.Equal(t, "spot_3", locErr.Token)
}

func TestParse_RepeatedCharacterAtSameCell(t *testing.T) {
	w, err := Parse("(character_at loc_2_2) (character_at loc_2_2)")
	require.NoError(t, err)
	assert.Equal(t, 2, w.GridSize)
}
