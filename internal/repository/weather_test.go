package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainboard/othello-backend/internal/entity"
	"github.com/trainboard/othello-backend/testing/suite"
)

func TestWeatherRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	weatherRepo := NewWeatherRepository(st.Storage)

	// Given: a weather reading
	weather := &entity.Weather{Temp: 18, Precip: 40}

	// When: Save is called
	err := weatherRepo.Save(ctx, weather)

	// Then: no error should be returned and the key outlives the refresh window
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "weather:current").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Hour)
}

func TestWeatherRepository_Get(t *testing.T) {
	t.Run("Get_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		weatherRepo := NewWeatherRepository(st.Storage)

		// Given: a saved weather reading
		weather := &entity.Weather{Temp: 18, Precip: 40}
		err := weatherRepo.Save(ctx, weather)
		require.NoError(t, err)

		// When: Get is called
		cached, fetchedAt, err := weatherRepo.Get(ctx)

		// Then: the cached reading matches the saved one and carries a recent fetch time
		require.NoError(t, err)
		require.Equal(t, weather, cached)
		assert.WithinDuration(t, time.Now(), fetchedAt, time.Minute)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		weatherRepo := NewWeatherRepository(st.Storage)

		// When: Get is called with an empty cache
		cached, fetchedAt, err := weatherRepo.Get(ctx)

		// Then: an ErrWeatherNotFound error should be returned
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWeatherNotFound)
		assert.Nil(t, cached)
		assert.True(t, fetchedAt.IsZero())
	})
}
