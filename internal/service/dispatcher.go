package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/ilindan-dev/seq-chat-bridge/internal/notifiers"
	"github.com/ilindan-dev/seq-chat-bridge/internal/template"
	"github.com/rs/zerolog"
)

// MaxMessageLength is the provider's message limit, in characters.
const MaxMessageLength = 1000

const seqLinkFormat = `<a href="%s/#/events?filter=@Id%%20%%3D%%3D%%20%%22%s%%22&show=expanded">Click here to open in Seq</a>`

// Dispatcher turns events into chat notifications and delivers them.
// Every event is an independent unit of work: failures are logged and never
// reach the caller. It is safe for concurrent use.
type Dispatcher struct {
	cfg      config.ChatConfig
	resolver *template.Resolver
	notifier notifiers.Notifier
	journal  repo.DeliveryRepository // nil when the journal is disabled
	logger   zerolog.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher. journal may be nil.
func NewDispatcher(
	cfg *config.Config,
	resolver *template.Resolver,
	notifier notifiers.Notifier,
	journal repo.DeliveryRepository,
	logger *zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg.Chat,
		resolver: resolver,
		notifier: notifier,
		journal:  journal,
		logger:   logger.With().Str("layer", "dispatcher").Logger(),
	}
}

// Deliver starts the delivery of e in the background and returns immediately.
// Once started, a delivery runs to completion; it cannot be cancelled.
// Events handed over after Wait has been called are dropped.
func (d *Dispatcher) Deliver(e model.Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn().Str("event_id", e.ID).Msg("dispatcher is shutting down, event dropped")
		return
	}
	d.inflight.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Str("event_id", e.ID).Interface("panic", r).Msg("delivery panicked")
			}
		}()
		d.Dispatch(context.Background(), &e)
	}()
}

// Wait stops accepting new deliveries and blocks until every delivery
// already started has finished, or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	// On ctx expiry the helper stays parked until the remaining deliveries end.
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight deliveries: %w", ctx.Err())
	}
}

// Dispatch delivers one event synchronously. All outcomes are side effects:
// the provider call, an optional diagnostic and an optional journal record.
func (d *Dispatcher) Dispatch(ctx context.Context, e *model.Event) {
	log := d.logger.With().Str("event_id", e.ID).Logger()

	delivery, ok := d.claim(ctx, e, log)
	if !ok {
		return
	}

	n := d.Compose(e)
	err := d.notifier.Send(ctx, n)
	if err != nil {
		d.reportFailure(log, err)
	} else {
		log.Info().Str("provider", d.notifier.Name()).Str("color", n.Color).Msg("notification delivered")
	}

	d.record(ctx, delivery, err, log)
}

// Compose builds the outbound notification for e.
func (d *Dispatcher) Compose(e *model.Event) *model.Notification {
	body := d.resolver.Render(d.cfg.MessageTemplate, e)
	return &model.Notification{
		EventID: e.ID,
		Color:   d.Color(e.Level),
		Message: AssembleMessage(body, SeqLink(d.cfg.SeqBaseURL, e.ID)),
		Notify:  d.cfg.Notify,
	}
}

// Color returns the configured override, or the level's default color.
func (d *Dispatcher) Color(level model.Level) string {
	if strings.TrimSpace(d.cfg.Color) != "" {
		return d.cfg.Color
	}
	return level.Color()
}

// SeqLink returns the HTML link that opens the event in Seq, or "" when base is blank.
func SeqLink(base, eventID string) string {
	if strings.TrimSpace(base) == "" {
		return ""
	}
	return fmt.Sprintf(seqLinkFormat, strings.TrimRight(base, "/"), eventID)
}

// AssembleMessage appends link to body on its own line and caps the result at
// MaxMessageLength characters. The body is shortened first so the link survives.
func AssembleMessage(body, link string) string {
	if link == "" {
		return truncate(body, MaxMessageLength)
	}
	budget := MaxMessageLength - utf8.RuneCountInString(link) - 1
	if budget < 0 {
		budget = 0
	}
	return truncate(truncate(body, budget)+"\n"+link, MaxMessageLength)
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// reportFailure emits the single diagnostic for a failed delivery.
func (d *Dispatcher) reportFailure(log zerolog.Logger, err error) {
	var statusErr *notifiers.StatusError
	if errors.As(err, &statusErr) {
		log.Error().
			Str("uri", statusErr.URI).
			Int("status_code", statusErr.StatusCode).
			Str("status", statusErr.Status).
			Str("body", statusErr.Body).
			Msgf("could not send %s message, server replied %d %s", d.notifier.Name(), statusErr.StatusCode, statusErr.Status)
		return
	}
	log.Error().Err(err).Str("provider", d.notifier.Name()).Msgf("could not send %s message", d.notifier.Name())
}

// claim records the event in the journal. It reports false when the event was
// already claimed. Journal errors are logged and do not stop the delivery.
func (d *Dispatcher) claim(ctx context.Context, e *model.Event, log zerolog.Logger) (*model.Delivery, bool) {
	if d.journal == nil {
		return nil, true
	}

	created, err := d.journal.Save(ctx, model.NewDelivery(e, d.notifier.Name()))
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateRecord) {
			log.Info().Msg("event already delivered, skipping")
			return nil, false
		}
		log.Warn().Err(err).Msg("failed to journal delivery, sending anyway")
		return nil, true
	}
	return created, true
}

// record stores the outcome of a claimed delivery.
func (d *Dispatcher) record(ctx context.Context, delivery *model.Delivery, sendErr error, log zerolog.Logger) {
	if delivery == nil {
		return
	}

	statusCode := 0
	var statusErr *notifiers.StatusError
	if errors.As(sendErr, &statusErr) {
		statusCode = statusErr.StatusCode
	}
	delivery.Complete(statusCode, sendErr)

	if err := d.journal.UpdateOutcome(ctx, delivery); err != nil {
		log.Warn().Err(err).Str("status", string(delivery.Status)).Msg("failed to record delivery outcome")
	}
}
