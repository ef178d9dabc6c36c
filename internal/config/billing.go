package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingPolicy groups the tunable knobs of the tenant billing lifecycle.
type BillingPolicy struct {
	TrialDays          int           `mapstructure:"trialDays"`
	GraceDays          int           `mapstructure:"graceDays"`
	UnlockCooldownDays int           `mapstructure:"unlockCooldownDays"`
	UnlockGrantHours   int           `mapstructure:"unlockGrantHours"`
	ReconcileDelay     time.Duration `mapstructure:"reconcileDelay"`
}

func DefaultBillingPolicy() BillingPolicy {
	return BillingPolicy{
		TrialDays:          14,
		GraceDays:          3,
		UnlockCooldownDays: 20,
		UnlockGrantHours:   24,
		ReconcileDelay:     200 * time.Millisecond,
	}
}

// BillingPolicyHolder exposes the current policy and hot-reloads it from disk.
type BillingPolicyHolder struct {
	current atomic.Value // holds BillingPolicy
}

func NewBillingPolicyHolder() (*BillingPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/balcao/config")
	v.AddConfigPath("/etc/balcao")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BALCAO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingPolicy()
	v.SetDefault("billing.trialDays", defaults.TrialDays)
	v.SetDefault("billing.graceDays", defaults.GraceDays)
	v.SetDefault("billing.unlockCooldownDays", defaults.UnlockCooldownDays)
	v.SetDefault("billing.unlockGrantHours", defaults.UnlockGrantHours)
	v.SetDefault("billing.reconcileDelay", defaults.ReconcileDelay)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var policy BillingPolicy
	if err := v.UnmarshalKey("billing", &policy); err != nil {
		return nil, err
	}
	if err := validateBillingPolicy(policy); err != nil {
		return nil, err
	}

	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingPolicy
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-policy] reload failed: %v", err)
			return
		}
		if err := validateBillingPolicy(updated); err != nil {
			log.Printf("[billing-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingPolicyHolder) Get() BillingPolicy {
	return h.current.Load().(BillingPolicy)
}

// NewStaticBillingPolicyHolder wraps a fixed policy, used by tests.
func NewStaticBillingPolicyHolder(policy BillingPolicy) *BillingPolicyHolder {
	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func validateBillingPolicy(policy BillingPolicy) error {
	if policy.TrialDays <= 0 {
		return errors.New("billing.trialDays must be positive")
	}
	if policy.GraceDays < 0 {
		return errors.New("billing.graceDays cannot be negative")
	}
	if policy.UnlockCooldownDays <= 0 {
		return errors.New("billing.unlockCooldownDays must be positive")
	}
	if policy.UnlockGrantHours <= 0 {
		return errors.New("billing.unlockGrantHours must be positive")
	}
	if policy.ReconcileDelay < 0 {
		return errors.New("billing.reconcileDelay cannot be negative")
	}
	return nil
}
