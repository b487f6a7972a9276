package checker

import (
	"context"
	"log/slog"

	"ticketwatch-backend/internal/calendar"
	"ticketwatch-backend/lib/timezone"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ticketwatch.checker")

const sampleLen = 200

// Renderer is the browser capability: load the url, let client side
// scripts settle, hand back the visible text.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// CalendarSource is the seat-calendar feed capability used instead of
// the rendered page when the site exposes one.
type CalendarSource interface {
	FetchOpenDates(ctx context.Context) ([]calendar.OpenDate, error)
}

type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, decision Decision, result Result) error
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Runner wires one check run together. All collaborators are handed in
// explicitly, nothing reaches for the environment.
type Runner struct {
	Renderer Renderer
	// when non-nil the calendar feed is the source of truth and the
	// rendered page is not fetched
	Calendar CalendarSource
	Store    Store
	Notifier Notifier
	Vocab    Vocabulary
	// the page embedded in the notification mail
	URL string
}

// Run performs a single check: load prior state, observe, decide, persist,
// notify. A fetch failure aborts before any state write so the next
// scheduled run retries against an untouched baseline. State is persisted
// before the mail goes out; a send failure therefore surfaces as an error
// without rewinding the transition.
func (r Runner) Run(ctx context.Context, forceNotify bool) (Decision, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	runID, err := random.String(8)
	if err == nil {
		span.SetAttributes(attribute.String("run_id", runID))
	}

	prior, err := r.Store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "unreadable prior state, using defaults", "err", err)
		prior = DefaultState()
	}

	result, openKeys, err := r.observe(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "observation failed")
		return Decision{}, err
	}
	slog.InfoContext(ctx, "classified page",
		"status", result.Status, "prior", prior.LastStatus, "run_id", runID)

	decision := Detect(result.Status, prior, forceNotify, result.FetchedAt)
	// a forced mail reports everything currently open; the transition
	// path below narrows this to the delta
	newlyOpen := result.OpenDates
	if r.Calendar != nil && !forceNotify {
		// the feed reports per-date seats, so a date opening up while
		// others were already open is still news
		newlyOpen = calendar.Diff(result.OpenDates, prior.OpenDates)
		decision.ShouldNotify = len(newlyOpen) > 0
		if decision.ShouldNotify {
			decision.NewState.LastNotifiedAt = result.FetchedAt
		} else {
			decision.NewState.LastNotifiedAt = prior.LastNotifiedAt
		}
	}
	if r.Calendar != nil {
		decision.NewState.OpenDates = openKeys
	}
	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Bool("should_notify", decision.ShouldNotify),
	)

	err = r.Store.Save(ctx, decision, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist state")
		return Decision{}, err
	}

	if !decision.ShouldNotify {
		slog.InfoContext(ctx, "no notification needed", "status", result.Status)
		return decision, nil
	}

	err = r.Notifier.Notify(ctx, Notification{
		URL:        r.URL,
		DetectedAt: result.FetchedAt,
		OpenDates:  newlyOpen,
		Test:       result.Status != StatusAvailable,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send notification")
		return decision, err
	}
	slog.InfoContext(ctx, "notification sent", "status", result.Status)

	return decision, nil
}

func (r Runner) observe(ctx context.Context) (Result, []string, error) {
	ctx, span := tracer.Start(ctx, "observe")
	defer span.End()

	now := timezone.Now()

	if r.Calendar != nil {
		dates, err := r.Calendar.FetchOpenDates(ctx)
		if err != nil {
			return Result{}, nil, &FetchError{URL: r.URL, Err: err}
		}
		status := StatusSoldOut
		if len(dates) > 0 {
			status = StatusAvailable
		}
		return Result{
			Status:     status,
			FetchedAt:  now,
			TextSample: calendar.Summary(dates),
			OpenDates:  dates,
		}, calendar.Keys(dates), nil
	}

	text, err := r.Renderer.Render(ctx, r.URL)
	if err != nil {
		return Result{}, nil, err
	}
	sample := text
	if runes := []rune(sample); len(runes) > sampleLen {
		sample = string(runes[:sampleLen])
	}
	return Result{
		Status:     r.Vocab.Classify(text),
		FetchedAt:  now,
		TextSample: sample,
	}, nil, nil
}
