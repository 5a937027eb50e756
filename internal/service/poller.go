package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
	"github.com/hostkit/checkin-bridge/internal/biz/usecase"
	"github.com/hostkit/checkin-bridge/internal/conf"
)

// Poller drives the two entry paths on a fixed interval: guest
// messages through the pipeline, cleaner replies through the
// reconciler. It is the single writer to the request memory; failures
// on one reservation or reply never stop the rest of the cycle.
type Poller struct {
	pipeline  *usecase.PipelineUsecase
	reconcile *usecase.ReconcileUsecase
	gateway   repo.GatewayRepo
	resCache  repo.ReservationCacheRepo
	cfg       *conf.Config
	log       zerolog.Logger

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPoller creates a new poller
func NewPoller(
	pipeline *usecase.PipelineUsecase,
	reconcile *usecase.ReconcileUsecase,
	gateway repo.GatewayRepo,
	resCache repo.ReservationCacheRepo,
	cfg *conf.Config,
	log zerolog.Logger,
) *Poller {
	return &Poller{
		pipeline:  pipeline,
		reconcile: reconcile,
		gateway:   gateway,
		resCache:  resCache,
		cfg:       cfg,
		log:       log.With().Str("component", "poller").Logger(),
		stopCh:    make(chan struct{}),
	}
}

// Start starts the poll loop
func (p *Poller) Start() {
	if p.running {
		return
	}
	p.running = true
	p.wg.Add(1)
	go p.loop()
	p.log.Info().Dur("interval", p.cfg.Poll.Interval).Msg("poller started")
}

// Stop stops the poll loop and waits for the current cycle
func (p *Poller) Stop() {
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
	p.wg.Wait()
	p.log.Info().Msg("poller stopped")
}

func (p *Poller) loop() {
	defer p.wg.Done()

	p.pollOnce()

	ticker := time.NewTicker(p.cfg.Poll.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.pollOnce()
		case <-p.stopCh:
			return
		}
	}
}

// pollOnce runs one full cycle: guest messages first, then cleaner replies
func (p *Poller) pollOnce() {
	ctx := context.Background()

	from := time.Now().UTC().Format("2006-01-02")
	to := time.Now().UTC().AddDate(0, 0, p.cfg.Poll.LookaheadDays).Format("2006-01-02")

	reservations, err := p.gateway.GetActiveReservations(ctx, p.cfg.Smoobu.ApartmentID, from, to)
	if err != nil {
		p.log.Error().Err(err).Msg("fetch active reservations failed")
	} else {
		for _, res := range reservations {
			if err := p.processReservation(ctx, res); err != nil {
				p.log.Error().Err(err).
					Int64("reservation_id", res.ReservationID).
					Msg("reservation processing failed")
			}
		}
	}

	results, err := p.reconcile.ProcessCleanerReplies(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("cleaner reply reconciliation failed")
		return
	}
	for _, r := range results {
		p.log.Debug().
			Str("action", string(r.Action)).
			Str("details", r.Details).
			Msg("cleaner reply handled")
	}
}

// processReservation runs the latest guest message of one reservation
// through the pipeline. The pipeline's own seen table makes the
// repeated invocations across cycles converge to already_processed.
func (p *Poller) processReservation(ctx context.Context, res *domain.Reservation) error {
	if err := p.resCache.Store(ctx, res); err != nil {
		p.log.Warn().Err(err).
			Int64("reservation_id", res.ReservationID).
			Msg("reservation cache write failed")
	}

	messages, err := p.gateway.GetMessages(ctx, res.ReservationID)
	if err != nil {
		return err
	}

	latest := latestNonEmpty(messages)
	if latest == nil {
		return nil
	}

	convCtx := p.buildContext(res, messages, latest)
	result, err := p.pipeline.ProcessMessage(ctx, latest.MessageID, latest.Body, convCtx)
	if err != nil {
		return err
	}

	if result.Action != usecase.ActionAlreadyProcessed {
		p.log.Info().
			Int64("reservation_id", res.ReservationID).
			Str("action", string(result.Action)).
			Str("details", result.Details).
			Msg("guest message handled")
	}
	return nil
}

// buildContext assembles the classification snapshot for one message
func (p *Poller) buildContext(res *domain.Reservation, thread []*domain.GuestMessage, latest *domain.GuestMessage) *domain.ConversationContext {
	var previous []string
	for _, m := range thread {
		if m.MessageID == latest.MessageID || m.Body == "" {
			continue
		}
		previous = append(previous, m.Body)
	}

	return &domain.ConversationContext{
		ReservationID:       res.ReservationID,
		GuestName:           res.GuestName,
		PropertyName:        res.PropertyName,
		DefaultCheckinTime:  p.cfg.Property.DefaultCheckinTime,
		DefaultCheckoutTime: p.cfg.Property.DefaultCheckoutTime,
		ArrivalDate:         res.Arrival,
		DepartureDate:       res.Departure,
		PreviousMessages:    previous,
	}
}

// latestNonEmpty picks the newest message with an actual body
func latestNonEmpty(messages []*domain.GuestMessage) *domain.GuestMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Body != "" {
			return messages[i]
		}
	}
	return nil
}
