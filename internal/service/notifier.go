package service

//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"civic-registry/internal/domain"
	"civic-registry/internal/metrics"
	"civic-registry/internal/repository"
)

// CampaignNotifier is told about each campaign after it is stored. It must
// not modify the message.
type CampaignNotifier interface {
	CampaignRecorded(ctx context.Context, msg *domain.Message) error
}

// WhatsAppSender delivers one text message to a phone number.
type WhatsAppSender interface {
	SendText(ctx context.Context, to, message string) error
}

type namedNotifier struct {
	name     string
	notifier CampaignNotifier
}

// MultiNotifier fans a campaign out to every registered notifier. One
// notifier failing does not stop the others.
type MultiNotifier struct {
	notifiers []namedNotifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewMultiNotifier(m *metrics.Metrics, logger *zap.Logger) *MultiNotifier {
	return &MultiNotifier{metrics: m, logger: logger}
}

// Add registers a notifier under name, which labels its failures.
func (n *MultiNotifier) Add(name string, notifier CampaignNotifier) {
	n.notifiers = append(n.notifiers, namedNotifier{name: name, notifier: notifier})
}

// Len reports how many notifiers are registered.
func (n *MultiNotifier) Len() int { return len(n.notifiers) }

func (n *MultiNotifier) CampaignRecorded(ctx context.Context, msg *domain.Message) error {
	var errs []error
	for _, nn := range n.notifiers {
		if err := nn.notifier.CampaignRecorded(ctx, msg); err != nil {
			n.metrics.IncNotifyFailure(nn.name)
			n.logger.Warn("Notifier failed",
				zap.String("notifier", nn.name),
				zap.Int64("message_id", msg.ID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", nn.name, err))
		}
	}
	return errors.Join(errs...)
}

const defaultDispatchConcurrency = 4

// WhatsAppNotifier resolves campaign recipients to phone numbers and sends
// the body to each of them.
type WhatsAppNotifier struct {
	people      repository.PeopleRepository
	sender      WhatsAppSender
	concurrency int
	logger      *zap.Logger
}

func NewWhatsAppNotifier(people repository.PeopleRepository, sender WhatsAppSender, concurrency int, logger *zap.Logger) *WhatsAppNotifier {
	if concurrency <= 0 {
		concurrency = defaultDispatchConcurrency
	}
	return &WhatsAppNotifier{people: people, sender: sender, concurrency: concurrency, logger: logger}
}

// CampaignRecorded sends to every recipient that resolves to a stored person.
// Ids that are not numeric or not found are skipped. The first send error is
// returned after all sends finish.
func (w *WhatsAppNotifier) CampaignRecorded(ctx context.Context, msg *domain.Message) error {
	var g errgroup.Group
	g.SetLimit(w.concurrency)

	for _, rid := range msg.Recipients {
		id, err := strconv.ParseInt(rid, 10, 64)
		if err != nil {
			w.logger.Debug("Skipping non-numeric recipient", zap.String("recipient", rid))
			continue
		}
		g.Go(func() error {
			p, err := w.people.GetPerson(ctx, id)
			if err != nil {
				if repository.IsNotFound(err) {
					w.logger.Debug("Skipping unknown recipient", zap.Int64("person_id", id))
					return nil
				}
				return fmt.Errorf("lookup recipient %d: %w", id, err)
			}
			if err := w.sender.SendText(ctx, p.Phone, msg.Body); err != nil {
				return fmt.Errorf("send to recipient %d: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
