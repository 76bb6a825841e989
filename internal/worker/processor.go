package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"vtnotif/internal/channel"
	"vtnotif/internal/observability"
	sqsqueue "vtnotif/internal/queue/sqs"
	"vtnotif/internal/util"
)

type Store interface {
	GetUserChannels(ctx context.Context, userID string) ([]channel.Channel, error)
	SaveUserChannels(ctx context.Context, userID string, chs []channel.Channel, now time.Time) error
}

// Provisioner creates and removes provider-side resources for a single
// flattened touchpoint (e.g. one subscription per phone number). Provider
// SDK integrations implement this elsewhere.
type Provisioner interface {
	Provision(ctx context.Context, ch channel.Channel) error
	Deprovision(ctx context.Context, ch channel.Channel) error
}

// Processor applies one preference-update job: it reconciles the submitted
// configuration against the stored one, pushes the provisioning delta for
// setup-requiring channels, then persists the merged configuration.
type Processor struct {
	Store       Store
	Provisioner Provisioner
	Limiter     *rate.Limiter
	Breaker     *gobreaker.CircuitBreaker
}

func (p *Processor) Process(ctx context.Context, job sqsqueue.PreferenceJob) error {
	newChannels, err := channel.DecodeAll(job.Channels)
	if err != nil {
		observability.Reconciles.WithLabelValues("decode_error").Inc()
		return fmt.Errorf("preference update for %s: %w", job.UserID, err)
	}

	oldChannels, err := p.Store.GetUserChannels(ctx, job.UserID)
	if err != nil {
		return err
	}

	rec, err := channel.Reconcile(oldChannels, newChannels)
	if err != nil {
		observability.Reconciles.WithLabelValues("config_error").Inc()
		return fmt.Errorf("preference update for %s: %w", job.UserID, err)
	}
	observability.Reconciles.WithLabelValues("ok").Inc()

	// De-provision removed touchpoints first so a replaced destination is
	// never doubly subscribed.
	for _, ch := range rec.Deletions {
		if !ch.RequiresSetup() {
			continue
		}
		if err := p.apply(ctx, "deprovision", ch, p.Provisioner.Deprovision); err != nil {
			return err
		}
	}
	for _, ch := range rec.Additions {
		if !ch.RequiresSetup() {
			continue
		}
		if err := p.apply(ctx, "provision", ch, p.Provisioner.Provision); err != nil {
			return err
		}
	}

	merged, err := mergeConfigs(oldChannels, newChannels)
	if err != nil {
		return fmt.Errorf("preference update for %s: %w", job.UserID, err)
	}
	return p.Store.SaveUserChannels(ctx, job.UserID, merged, util.NowUTC())
}

// apply runs one provisioning call behind the rate limiter and breaker with
// bounded retries on transient failure.
func (p *Processor) apply(ctx context.Context, action string, ch channel.Channel, call func(context.Context, channel.Channel) error) error {
	var lastErr error
	start := time.Now()

	for attempt := 0; attempt < 3; attempt++ {
		if p.Limiter != nil {
			waitCtx, cancelWait := context.WithTimeout(ctx, 2*time.Second)
			err := p.Limiter.Wait(waitCtx)
			cancelWait()
			if err != nil {
				// Could not acquire a token; transient, try again.
				observability.ProvisionOps.WithLabelValues(action, "rate_limited_local").Inc()
				time.Sleep(200 * time.Millisecond)
				continue
			}
		}

		err := p.executeWithBreaker(ctx, ch, call)

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			observability.ProvisionOps.WithLabelValues(action, "cb_open").Inc()
			// Transient provider protection; let SQS redrive later.
			return err
		}

		if err == nil {
			observability.ProvisionOps.WithLabelValues(action, "ok").Inc()
			observability.ProvisionLatency.Observe(time.Since(start).Seconds())
			return nil
		}

		lastErr = err
		observability.ProvisionOps.WithLabelValues(action, "error").Inc()

		if errors.Is(err, context.Canceled) {
			return err
		}
		time.Sleep(Backoff(attempt))
	}

	return fmt.Errorf("%s %s touchpoint failed: %w", action, ch.Type(), lastErr)
}

func (p *Processor) executeWithBreaker(ctx context.Context, ch channel.Channel, call func(context.Context, channel.Channel) error) error {
	do := func() (any, error) {
		reqCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
		defer cancel()
		return nil, call(reqCtx, ch)
	}

	if p.Breaker == nil {
		_, err := do()
		return err
	}
	_, err := p.Breaker.Execute(do)
	return err
}

// mergeConfigs folds the submitted configuration into the stored one. Types
// present in both are merged in place on a clone of the stored channel;
// types only in the new set come in as clones; types dropped from the new
// set leave the configuration (their touchpoints were already
// de-provisioned).
func mergeConfigs(oldChannels, newChannels []channel.Channel) ([]channel.Channel, error) {
	oldByType := make(map[channel.ChannelType]channel.Channel, len(oldChannels))
	for _, ch := range oldChannels {
		oldByType[ch.Type()] = ch
	}

	out := make([]channel.Channel, 0, len(newChannels))
	for _, nc := range newChannels {
		oc, ok := oldByType[nc.Type()]
		if !ok {
			out = append(out, nc.Clone())
			continue
		}
		merged := oc.Clone()
		if err := merged.Merge(nc); err != nil {
			return nil, err
		}
		out = append(out, merged)
	}
	return out, nil
}

// Backoff returns the pause before the next provisioning retry.
func Backoff(attempt int) time.Duration {
	base := []time.Duration{200 * time.Millisecond, 600 * time.Millisecond, 1400 * time.Millisecond}
	if attempt <= 0 {
		return base[0]
	}
	if attempt >= len(base) {
		return base[len(base)-1]
	}
	return base[attempt]
}

// LogProvisioner records provisioning intents without calling a provider.
// It stands in where no provider integration is wired.
type LogProvisioner struct{}

func (LogProvisioner) Provision(ctx context.Context, ch channel.Channel) error {
	slog.Info("provision touchpoint", "channel_type", ch.Type(), "touchpoints", ch.Touchpoints())
	return nil
}

func (LogProvisioner) Deprovision(ctx context.Context, ch channel.Channel) error {
	slog.Info("deprovision touchpoint", "channel_type", ch.Type(), "touchpoints", ch.Touchpoints())
	return nil
}
