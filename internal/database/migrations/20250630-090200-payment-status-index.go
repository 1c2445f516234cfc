package migrations

func init() {
	Register(Migration{
		Version:     "20250630-090200",
		Description: "Index payments by status for reconciliation queries",
		Up: []string{
			`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)`,
		},
	})
}
