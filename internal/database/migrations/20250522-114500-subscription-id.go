package migrations

func init() {
	Register(Migration{
		Version:     "20250522-114500",
		Description: "Track Stripe subscription ID on users",
		Up: []string{
			// Needed to route customer.subscription.* webhook events back to
			// the owning user without a customer lookup round trip.
			`ALTER TABLE users ADD COLUMN stripe_subscription_id TEXT`,
			`CREATE INDEX IF NOT EXISTS idx_users_stripe_subscription_id ON users(stripe_subscription_id)`,
		},
	})
}
