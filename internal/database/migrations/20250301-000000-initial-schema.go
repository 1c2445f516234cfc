package migrations

func init() {
	Register(Migration{
		Version:     "20250301-000000",
		Description: "Initial schema",
		Up: []string{
			// Users - accounts with daily check tracking.
			// last_check_reset marks the day daily_checks was last zeroed.
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				subscription_tier TEXT NOT NULL DEFAULT 'free',
				stripe_customer_id TEXT,
				daily_checks INTEGER NOT NULL DEFAULT 0,
				last_check_reset TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
			`CREATE INDEX IF NOT EXISTS idx_users_stripe_customer_id ON users(stripe_customer_id)`,

			// Payments - Stripe checkout outcomes for audit and support
			`CREATE TABLE IF NOT EXISTS payments (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				stripe_session_id TEXT UNIQUE NOT NULL,
				stripe_price_id TEXT,
				tier TEXT NOT NULL,
				amount_cents INTEGER NOT NULL DEFAULT 0,
				currency TEXT NOT NULL DEFAULT 'usd',
				status TEXT NOT NULL DEFAULT 'pending',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_stripe_session_id ON payments(stripe_session_id)`,
		},
	})
}
