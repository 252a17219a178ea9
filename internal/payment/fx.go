package payment

import (
	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/payment/adapters/stripe"
	paymentdomain "github.com/cohortly/cohortly/internal/payment/domain"
	"github.com/cohortly/cohortly/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(func(cfg *config.Config) (paymentdomain.Adapter, error) {
		return stripe.NewAdapter(cfg.StripeWebhookSecret)
	}),
	fx.Provide(func(cfg *config.Config) (*stripe.Client, error) {
		return stripe.NewClient(cfg.StripeSecretKey)
	}),
	fx.Provide(func(c *stripe.Client) checkoutdomain.Provider { return c }),
	fx.Provide(func(c *stripe.Client) paymentdomain.SubscriptionFetcher { return c }),
	fx.Provide(service.New),
)
