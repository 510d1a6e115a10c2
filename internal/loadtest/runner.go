package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/scoring"
	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/internal/sheet"
	"github.com/okian/regatta/pkg/logger"
)

const (
	filePermission = 0o644
	liveSettle     = 2 * time.Second
)

type skipperRequest struct {
	Name       string `json:"name"`
	SailNumber string `json:"sail_number"`
}

type regattaRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

type absenceRequest struct {
	SkipperID string `json:"skipper_id"`
	Status    string `json:"status"`
}

type resultsRequest struct {
	Finishers []string         `json:"finishers"`
	Absent    []absenceRequest `json:"absent"`
}

// Run executes the complete load test and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting regatta load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("skippers", config.Skippers),
		logger.Int("races", config.Races),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("live", config.Live))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	// Step 2: Generate results
	sh := Generate(config)

	// Step 3: Create the skippers and the regatta
	ids, err := createSkippers(ctx, client, config.Workers, sh.Skippers, stats)
	if err != nil {
		return stats, fmt.Errorf("skipper creation failed: %w", err)
	}
	var regatta types.Summary
	if err := client.post(ctx, "/regattas", "", regattaRequest{
		Name: sh.Regatta.Name, Location: sh.Regatta.Location, Date: sh.Regatta.Date,
	}, &regatta); err != nil {
		return stats, fmt.Errorf("regatta creation failed: %w", err)
	}
	log.Info(ctx, "regatta created", logger.String("regatta", regatta.ID))

	// Step 4: Follow the live feed
	var sub *subscriber
	if config.Live {
		sub, err = subscribe(ctx, config.BaseURL, regatta.ID)
		if err != nil {
			return stats, fmt.Errorf("live subscription failed: %w", err)
		}
		defer sub.Close()
	}

	// Step 5: Submit races concurrently
	submitRaces(ctx, client, config.Workers, regatta.ID, sh.Races, ids, stats)
	if stats.RacesFailed > 0 {
		return stats, fmt.Errorf("%d of %d races failed", stats.RacesFailed, len(sh.Races))
	}

	// Step 6: Replaying a key must be refused
	if err := checkDuplicate(ctx, client, regatta.ID, stats); err != nil {
		return stats, err
	}

	// Step 7: Verify the served scoreboard
	var got types.Scoreboard
	if err := client.get(ctx, "/regattas/"+regatta.ID+"/scores", &got); err != nil {
		return stats, fmt.Errorf("scoreboard retrieval failed: %w", err)
	}
	expected, err := expectedScoreboard(ctx, client, sh, ids)
	if err != nil {
		return stats, err
	}
	if err := verify(expected, got); err != nil {
		return stats, err
	}
	log.Info(ctx, "scoreboard verified", logger.Int("rows", len(got.Rows)))

	if sub != nil {
		waitLive(ctx, sub, len(sh.Races)+1)
		stats.LiveUpdates = sub.Received()
	}

	// Step 8: Save the generated sheet
	if config.OutputFile != "" {
		if err := saveSheet(config.OutputFile, sh); err != nil {
			log.Warn(ctx, "failed to save sheet", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running. /healthz serves
// Prometheus metrics, so any 200 is healthy.
func checkServiceHealth(ctx context.Context, client *httpClient) error {
	req, err := newGet(ctx, client.baseURL+"/healthz")
	if err != nil {
		return err
	}
	resp, err := client.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// createSkippers registers the sheet roster and maps sheet IDs to service
// IDs.
func createSkippers(ctx context.Context, client *httpClient, workers int, skippers []sheet.Skipper, stats *Stats) (map[string]string, error) {
	var (
		mu       sync.Mutex
		ids      = make(map[string]string, len(skippers))
		firstErr error
	)
	forEach(ctx, workers, len(skippers), func(i int) {
		sk := skippers[i]
		var created model.Skipper
		err := client.post(ctx, "/skippers", "", skipperRequest{Name: sk.Name, SailNumber: sk.Sail}, &created)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		ids[sk.ID] = created.ID
	})
	stats.SkippersCreated = len(ids)
	if firstErr != nil {
		return nil, firstErr
	}
	return ids, ctx.Err()
}

func submitRaces(ctx context.Context, client *httpClient, workers int, regattaID string, races []sheet.Race, ids map[string]string, stats *Stats) {
	var submitted, failed atomic.Int64
	path := "/regattas/" + regattaID + "/races"
	forEach(ctx, workers, len(races), func(i int) {
		if err := client.post(ctx, path, "", toResults(races[i], ids), nil); err != nil {
			failed.Add(1)
			logger.Get().Warn(ctx, "race submission failed", logger.Int("race", i+1), logger.Error(err))
			return
		}
		submitted.Add(1)
	})
	stats.RacesSubmitted = int(submitted.Load())
	stats.RacesFailed = int(failed.Load()) + len(races) - int(submitted.Load()+failed.Load())
}

// checkDuplicate creates an empty race and replays its key.
func checkDuplicate(ctx context.Context, client *httpClient, regattaID string, stats *Stats) error {
	key := uuid.NewString()
	path := "/regattas/" + regattaID + "/races"
	var race types.RaceView
	if err := client.post(ctx, path, key, resultsRequest{}, &race); err != nil {
		return fmt.Errorf("empty race creation failed: %w", err)
	}
	err := client.post(ctx, path, key, resultsRequest{}, nil)
	var se *statusError
	if !errors.As(err, &se) || se.Code != http.StatusConflict {
		return fmt.Errorf("replayed idempotency key was not refused: %v", err)
	}
	stats.Duplicates++

	// Drop the empty race again so the scores match the sheet.
	req, err := newDelete(ctx, client.baseURL+path+"/"+race.ID)
	if err != nil {
		return err
	}
	return client.do(req, http.StatusNoContent, nil)
}

// expectedScoreboard scores the sheet locally against the service roster
// and tie-break, which may include skippers created by others.
func expectedScoreboard(ctx context.Context, client *httpClient, sh *sheet.Sheet, ids map[string]string) (types.Scoreboard, error) {
	var roster []model.Skipper
	if err := client.get(ctx, "/skippers", &roster); err != nil {
		return types.Scoreboard{}, fmt.Errorf("roster retrieval failed: %w", err)
	}
	var stats map[string]interface{}
	if err := client.get(ctx, "/stats", &stats); err != nil {
		return types.Scoreboard{}, fmt.Errorf("stats retrieval failed: %w", err)
	}
	raw, _ := stats["tieBreak"].(string)
	tb, err := scoring.ParseTieBreak(raw)
	if err != nil {
		return types.Scoreboard{}, err
	}

	local := &sheet.Sheet{Regatta: sh.Regatta}
	for _, sk := range roster {
		local.Skippers = append(local.Skippers, sheet.Skipper{ID: sk.ID, Name: sk.Name, Sail: sk.SailNumber})
	}
	for _, r := range sh.Races {
		res := toResults(r, ids)
		race := sheet.Race{Finish: res.Finishers}
		for _, a := range res.Absent {
			if race.Status == nil {
				race.Status = make(map[string]string, len(res.Absent))
			}
			race.Status[a.SkipperID] = a.Status
		}
		local.Races = append(local.Races, race)
	}

	g, rs, err := local.ToDomain()
	if err != nil {
		return types.Scoreboard{}, err
	}
	sb, _ := types.Compute(scoring.NewCalculator(scoring.WithTieBreak(tb)), g, rs)
	return sb, nil
}

func toResults(r sheet.Race, ids map[string]string) resultsRequest {
	req := resultsRequest{Finishers: make([]string, 0, len(r.Finish))}
	for _, id := range r.Finish {
		req.Finishers = append(req.Finishers, ids[id])
	}
	for id, status := range r.Status {
		req.Absent = append(req.Absent, absenceRequest{SkipperID: ids[id], Status: status})
	}
	return req
}

// forEach runs fn for 0..n-1 on a fixed number of workers, stopping early
// when ctx ends.
func forEach(ctx context.Context, workers, n int, fn func(i int)) {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()
}

// waitLive gives the feed a moment to deliver at least want messages.
func waitLive(ctx context.Context, sub *subscriber, want int) {
	deadline := time.NewTimer(liveSettle)
	defer deadline.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for sub.Received() < want {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}

func saveSheet(path string, sh *sheet.Sheet) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := sheet.Encode(f, sh); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("skippersCreated", stats.SkippersCreated),
		logger.Int("racesSubmitted", stats.RacesSubmitted),
		logger.Int("racesFailed", stats.RacesFailed),
		logger.Int("duplicatesRefused", stats.Duplicates),
		logger.Int("liveUpdates", stats.LiveUpdates),
		logger.Duration("duration", stats.Duration))
}
