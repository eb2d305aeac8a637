package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trainboard/othello-backend/internal/entity"
)

var ErrWeatherNotFound = errors.New("weather not found")

const (
	weatherKey = "weather:current"

	// readings are kept well past the service's refresh window so a failed
	// refetch can fall back to the last known value
	weatherKeepTTL = 24 * time.Hour
)

type WeatherRepository interface {
	Save(ctx context.Context, weather *entity.Weather) error
	Get(ctx context.Context) (*entity.Weather, time.Time, error)
}

// weatherRecord is the stored form of a reading; FetchedAt lets the service
// decide staleness instead of the key's TTL.
type weatherRecord struct {
	Temp      int       `json:"temp"`
	Precip    int       `json:"precip"`
	FetchedAt time.Time `json:"fetched_at"`
}

type dbWeather struct {
	client *redis.Client
}

func NewWeatherRepository(client *redis.Client) WeatherRepository {
	return &dbWeather{
		client: client,
	}
}

func (that *dbWeather) Save(ctx context.Context, weather *entity.Weather) error {
	record := weatherRecord{
		Temp:      weather.Temp,
		Precip:    weather.Precip,
		FetchedAt: time.Now(),
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal weather: %w", err)
	}

	err = that.client.Set(ctx, weatherKey, recordJSON, weatherKeepTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set weather: %w", err)
	}

	return nil
}

func (that *dbWeather) Get(ctx context.Context) (*entity.Weather, time.Time, error) {
	response, err := that.client.Get(ctx, weatherKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, time.Time{}, ErrWeatherNotFound
	}

	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get weather: %w", err)
	}

	var record weatherRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to unmarshal weather: %w", err)
	}

	weather := &entity.Weather{
		Temp:   record.Temp,
		Precip: record.Precip,
	}

	return weather, record.FetchedAt, nil
}
