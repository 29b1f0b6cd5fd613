package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"gopkg.in/yaml.v3"

	"github.com/jbillay/coordino/pkg/equity"
	"github.com/jbillay/coordino/pkg/workcfg"
)

// rosterFile is the on-disk participant list. Since JSON is a YAML subset,
// both formats parse through the YAML decoder.
type rosterFile struct {
	Participants []rosterParticipant `yaml:"participants"`
}

type rosterParticipant struct {
	ID       string              `yaml:"id"`
	Timezone string              `yaml:"timezone"`
	Country  string              `yaml:"country"`
	Config   *workcfg.ConfigSpec `yaml:"config"`
}

// loadRoster reads a participant roster from a local file or an HTTP(S) URL.
// Participant-level config overrides are compiled with recurring holidays
// expanded over [from, to].
func loadRoster(ctx context.Context, logger *slog.Logger, source string, from, to time.Time) ([]equity.Participant, error) {
	var data []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetchRoster(ctx, logger, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	return parseRoster(data, from, to)
}

func parseRoster(data []byte, from, to time.Time) ([]equity.Participant, error) {
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}

	participants := make([]equity.Participant, 0, len(file.Participants))
	for i, rp := range file.Participants {
		if rp.ID == "" {
			return nil, fmt.Errorf("roster entry %d: missing id", i)
		}
		if rp.Timezone == "" {
			return nil, fmt.Errorf("roster entry %q: missing timezone", rp.ID)
		}
		p := equity.Participant{
			ID:       rp.ID,
			Timezone: rp.Timezone,
			Country:  strings.ToUpper(rp.Country),
		}
		if rp.Config != nil {
			cfg, err := rp.Config.Compile(from, to)
			if err != nil {
				return nil, fmt.Errorf("roster entry %q: %w", rp.ID, err)
			}
			p.Override = &cfg
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// fetchRoster downloads a roster with exponential backoff and jitter.
func fetchRoster(ctx context.Context, logger *slog.Logger, url string) ([]byte, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					logger.Debug("closing roster response body", "error", err)
				}
			}()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Unrecoverable(fmt.Errorf("roster fetch: HTTP %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("roster fetch: HTTP %d", resp.StatusCode)
			}

			body, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(100*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("retrying roster fetch", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("roster fetch: empty response")
	}
	return body, nil
}
