package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/trainboard/othello-backend/internal/entity"
)

const (
	statusNormal = "平常運転"
	statusDelay  = "【遅延情報あり】"

	userAgent = "Mozilla/5.0"

	// a cached weather reading older than this is refreshed from the upstream
	weatherRefreshAge = 30 * time.Minute
)

var (
	troubleRegexp = regexp.MustCompile(`(?s)<(?:dd|div) class="trouble".*?>(.*?)</(?:dd|div)>`)
	tagRegexp     = regexp.MustCompile(`(?s)<.*?>`)
	spaceRegexp   = regexp.MustCompile(`\s+`)
)

// jst - the board always shows Japan time, wherever the server runs.
var jst = time.FixedZone("JST", 9*60*60)

type weatherRepo interface {
	Save(ctx context.Context, weather *entity.Weather) error
	Get(ctx context.Context) (*entity.Weather, time.Time, error)
}

// StatusService builds the /api/status payload: the transit-info page is
// probed on every request, the weather reading is served from the cache and
// refreshed once it is older than weatherRefreshAge. A failed refresh falls
// back to the last known reading.
type StatusService struct {
	logger      *slog.Logger
	client      *http.Client
	weatherRepo weatherRepo

	lineName   string
	transitURL string
	weatherURL string
}

func NewStatusService(logger *slog.Logger, weatherRepo weatherRepo, lineName, transitURL, weatherURL string) *StatusService {
	return &StatusService{
		logger:      logger,
		client:      &http.Client{Timeout: 10 * time.Second},
		weatherRepo: weatherRepo,

		lineName:   lineName,
		transitURL: transitURL,
		weatherURL: weatherURL,
	}
}

// Status returns the current line status plus weather, stamped with JST HH:MM.
func (that *StatusService) Status(ctx context.Context) (*entity.LineStatus, error) {
	status, detail, isDelay, err := that.fetchLineStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch line status: %w", err)
	}

	return &entity.LineStatus{
		Line:      that.lineName,
		Status:    status,
		Detail:    detail,
		IsDelay:   isDelay,
		Weather:   that.currentWeather(ctx),
		Timestamp: time.Now().In(jst).Format("15:04"),
	}, nil
}

// fetchLineStatus scrapes the transit-info page. A "trouble" block means a
// delay; an explicit "normal" marker or an unrecognized page both fall back
// to normal operation.
func (that *StatusService) fetchLineStatus(ctx context.Context) (status, detail string, isDelay bool, err error) {
	html, err := that.fetch(ctx, that.transitURL)
	if err != nil {
		return "", "", false, err
	}

	if match := troubleRegexp.FindStringSubmatch(html); match != nil {
		detail = tagRegexp.ReplaceAllString(match[1], "")
		detail = spaceRegexp.ReplaceAllString(strings.TrimSpace(detail), " ")

		return statusDelay, detail, true, nil
	}

	// assume normal operation unless a trouble block was found
	return statusNormal, fmt.Sprintf("現在、%sは通常通り運行しています。", that.lineName), false, nil
}

// currentWeather serves the cached reading while it is fresh and refreshes it
// otherwise. Weather is decoration on the board, so a failed refresh degrades
// to the stale reading, or to nil when the cache is cold, instead of failing
// the status request.
func (that *StatusService) currentWeather(ctx context.Context) *entity.Weather {
	log := that.logger.With("method", "currentWeather")

	cached, fetchedAt, err := that.weatherRepo.Get(ctx)
	if err == nil && time.Since(fetchedAt) <= weatherRefreshAge {
		return cached
	}

	body, err := that.fetch(ctx, that.weatherURL)
	if err != nil {
		log.Error("failed to fetch weather", "error", err)
		return cached
	}

	var forecast struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
		} `json:"current"`
		Hourly struct {
			PrecipitationProbability []int `json:"precipitation_probability"`
		} `json:"hourly"`
	}

	if err = json.Unmarshal([]byte(body), &forecast); err != nil {
		log.Error("failed to unmarshal weather", "error", err)
		return cached
	}

	weather := &entity.Weather{
		Temp: int(math.Round(forecast.Current.Temperature)),
	}
	if len(forecast.Hourly.PrecipitationProbability) > 0 {
		weather.Precip = forecast.Hourly.PrecipitationProbability[0]
	}

	if err = that.weatherRepo.Save(ctx, weather); err != nil {
		log.Error("failed to cache weather", "error", err)
	}

	return weather
}

func (that *StatusService) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}
