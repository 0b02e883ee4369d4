package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

// couponMaintainer is the coupon repository surface the expiry job uses.
type couponMaintainer interface {
	ExpireOutdated(ctx context.Context, now time.Time) (int64, error)
	PurgeExpiredApplied(ctx context.Context, now time.Time) (int64, error)
}

// CouponExpiryJobParams configure the scheduled coupon maintenance.
type CouponExpiryJobParams struct {
	Logger  *logger.Logger
	Coupons couponMaintainer
}

type couponExpiryJob struct {
	log     *logger.Logger
	coupons couponMaintainer
	now     func() time.Time
}

// NewCouponExpiryJob constructs the job that retires coupons past their
// validity window and drops their leftover applied-set rows.
func NewCouponExpiryJob(params CouponExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &couponExpiryJob{
		log:     params.Logger,
		coupons: params.Coupons,
		now:     time.Now,
	}, nil
}

func (j *couponExpiryJob) Name() string { return "coupon-expiry" }

func (j *couponExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs []error

	expired, err := j.coupons.ExpireOutdated(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("expire coupons: %w", err))
	} else if expired > 0 {
		logCtx := j.log.WithField(ctx, "count", expired)
		j.log.Info(logCtx, "coupons marked expired")
	}

	purged, err := j.coupons.PurgeExpiredApplied(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("purge applied rows: %w", err))
	} else if purged > 0 {
		logCtx := j.log.WithField(ctx, "count", purged)
		j.log.Info(logCtx, "stale applied coupons purged")
	}

	return multierr.Combine(errs...)
}
