package competitions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fisski-backend/lib/scrapers/fis"
	"fisski-backend/lib/timezone"
	"fisski-backend/services/competitions/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/competitions")

// Service sits between the REST handlers and the FIS scraper. Every
// scrape result is cached in sqlite with a TTL so a burst of identical
// requests doesn't hammer fis-ski.com, and a stale copy is served when
// the upstream is down.
type Service struct {
	qry    *db.Queries
	client *fis.Client

	calendarTTL time.Duration
	eventTTL    time.Duration
}

type Options struct {
	// defaults to 5 minutes
	CalendarTTL time.Duration
	// defaults to 1 minute, event pages can be live
	EventTTL time.Duration
}

func NewService(database *sql.DB, client *fis.Client, opts Options) Service {
	if opts.CalendarTTL <= 0 {
		opts.CalendarTTL = time.Minute * 5
	}
	if opts.EventTTL <= 0 {
		opts.EventTTL = time.Minute
	}
	return Service{
		qry:         db.New(database),
		client:      client,
		calendarTTL: opts.CalendarTTL,
		eventTTL:    opts.EventTTL,
	}
}

// StartCacheJanitor periodically evicts entries old enough to be
// useless even as a stale fallback.
func (s Service) StartCacheJanitor(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				err := s.qry.DeleteOlderThan(ctx, timezone.Now().Add(-maxAge))
				if err != nil {
					slog.WarnContext(ctx, "failed to prune scrape cache", "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

type ListFilters struct {
	Gender     string
	Discipline string
	Location   string
}

func (s Service) ListCompetitions(ctx context.Context, filters ListFilters) ([]fis.Competition, error) {
	ctx, span := tracer.Start(ctx, "service:ListCompetitions")
	defer span.End()

	competitions, err := cachedScrape(ctx, s, "calendar:WC", s.calendarTTL,
		func(ctx context.Context) ([]fis.Competition, error) {
			return s.client.Calendar(ctx, "WC")
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list competitions")
		return nil, err
	}

	return applyFilters(competitions, filters), nil
}

func applyFilters(competitions []fis.Competition, filters ListFilters) []fis.Competition {
	out := []fis.Competition{}
	for _, c := range competitions {
		if filters.Gender != "" && string(c.Gender) != filters.Gender {
			continue
		}
		if filters.Discipline != "" && !hasDiscipline(c, filters.Discipline) {
			continue
		}
		if filters.Location != "" &&
			!strings.Contains(strings.ToLower(c.Location), strings.ToLower(filters.Location)) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasDiscipline(c fis.Competition, discipline string) bool {
	for _, d := range c.Discipline {
		if string(d) == discipline {
			return true
		}
	}
	return false
}

func (s Service) GetEventDetail(ctx context.Context, eventID string) (fis.EventDetail, error) {
	ctx, span := tracer.Start(ctx, "service:GetEventDetail")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	detail, err := cachedScrape(ctx, s, "event:"+eventID, s.eventTTL,
		func(ctx context.Context) (fis.EventDetail, error) {
			return s.client.EventDetail(ctx, eventID)
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get event detail")
		return fis.EventDetail{}, err
	}
	return detail, nil
}

// cachedScrape serves the cached payload when it is fresh, otherwise
// re-scrapes. When the scrape fails and an expired copy exists, the
// stale copy is served instead of the error. ErrNotFound is never
// masked by a stale copy.
func cachedScrape[T any](
	ctx context.Context,
	s Service,
	key string,
	ttl time.Duration,
	scrape func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	entry, cacheErr := s.qry.GetCacheEntry(ctx, key)
	if cacheErr != nil && !errors.Is(cacheErr, sql.ErrNoRows) {
		slog.WarnContext(ctx, "failed to read scrape cache", "key", key, "err", cacheErr)
	}
	cached := cacheErr == nil

	if cached && timezone.Now().Sub(entry.FetchedAt) < ttl {
		var value T
		err := json.Unmarshal([]byte(entry.Payload), &value)
		if err == nil {
			return value, nil
		}
		slog.WarnContext(ctx, "corrupt scrape cache entry", "key", key, "err", err)
	}

	value, err := scrape(ctx)
	if err != nil {
		if errors.Is(err, fis.ErrNotFound) {
			return zero, err
		}
		if cached {
			slog.WarnContext(ctx, "scrape failed, serving stale cache entry",
				"key", key, "fetched_at", entry.FetchedAt, "err", err)
			var stale T
			staleErr := json.Unmarshal([]byte(entry.Payload), &stale)
			if staleErr == nil {
				return stale, nil
			}
		}
		return zero, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "failed to serialize scrape cache entry", "key", key, "err", err)
		return value, nil
	}
	err = s.qry.PutCacheEntry(ctx, db.CacheEntry{
		Key:       key,
		Payload:   string(payload),
		FetchedAt: timezone.Now(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to write scrape cache", "key", key, "err", err)
	}

	return value, nil
}
