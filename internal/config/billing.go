package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillingConfig controls one billing pass. The plan price table is the
// source of truth for charge amounts; a plan missing from the table falls
// back to the price stored on the subscription row.
type BillingConfig struct {
	// BatchLimit caps the number of subscriptions charged per pass.
	BatchLimit int `yaml:"batch_limit" validate:"gt=0"`

	// PacingDelay is the fixed wait between gateway calls within a pass.
	PacingDelay time.Duration `yaml:"pacing_delay" validate:"gte=0"`

	// FailureThreshold failed attempts within FailureWindow suspend the
	// subscription.
	FailureThreshold int           `yaml:"failure_threshold" validate:"gt=0"`
	FailureWindow    time.Duration `yaml:"failure_window" validate:"gt=0"`

	// PeriodMonths is the billing period in calendar months. Test
	// deployments may instead set Period to a short duration; exactly one
	// of the two must be non-zero.
	PeriodMonths int           `yaml:"period_months" validate:"gte=0"`
	Period       time.Duration `yaml:"period" validate:"gte=0"`

	// OrderName is the product name sent to the gateway and written to
	// the audit log.
	OrderName string `yaml:"order_name"`

	// PlanPrices maps plan type to its charge amount in KRW.
	PlanPrices map[string]string `yaml:"plan_prices" validate:"required,min=1"`
}

func (c *BillingConfig) applyDefaults() {
	if c.BatchLimit == 0 {
		c.BatchLimit = 10
	}
	if c.PacingDelay == 0 {
		c.PacingDelay = time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 3
	}
	if c.FailureWindow == 0 {
		c.FailureWindow = 7 * 24 * time.Hour
	}
	if c.PeriodMonths == 0 && c.Period == 0 {
		c.PeriodMonths = 1
	}
	if c.OrderName == "" {
		c.OrderName = "프로 멤버십 월간 구독"
	}
}

// PlanTable parses the configured plan prices. Called once at startup;
// a malformed or non-positive price fails the process.
func (c *BillingConfig) PlanTable() (map[string]decimal.Decimal, error) {
	table := make(map[string]decimal.Decimal, len(c.PlanPrices))
	for plan, raw := range c.PlanPrices {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("plan %q: invalid price %q: %w", plan, raw, err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("plan %q: price must be positive, got %s", plan, price)
		}
		table[plan] = price
	}
	return table, nil
}

// NextBillingDate computes the date one billing period after now. The
// period is anchored on "now", not the overdue date, so a delayed pass
// does not compound drift.
func (c *BillingConfig) NextBillingDate(now time.Time) time.Time {
	if c.PeriodMonths > 0 {
		return now.AddDate(0, c.PeriodMonths, 0)
	}
	return now.Add(c.Period)
}

// SchedulerConfig holds the cron specs of the periodic passes
type SchedulerConfig struct {
	BillingSpec   string `yaml:"billing_spec"`
	ReconcileSpec string `yaml:"reconcile_spec"`
	EmailSpec     string `yaml:"email_spec"`
}

func (c *SchedulerConfig) applyDefaults() {
	if c.BillingSpec == "" {
		c.BillingSpec = "*/10 * * * *"
	}
	if c.ReconcileSpec == "" {
		c.ReconcileSpec = "0 4 * * *"
	}
	if c.EmailSpec == "" {
		c.EmailSpec = "* * * * *"
	}
}
