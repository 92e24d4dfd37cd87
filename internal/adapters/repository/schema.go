package repository

// Money is stored in integer cents and SC in hundredths so sums stay exact.
// Timestamps are unix nanoseconds in UTC.
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS designers (
			id                   TEXT PRIMARY KEY,
			sc_centi             INTEGER NOT NULL DEFAULT 0 CHECK (sc_centi >= 0),
			founder_tier         TEXT,
			founder_purchased_at INTEGER,
			created_at           INTEGER NOT NULL,
			updated_at           INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_designers_sc ON designers(sc_centi DESC, id)`,
		`CREATE INDEX IF NOT EXISTS idx_designers_founder ON designers(founder_tier)`,

		`CREATE TABLE IF NOT EXISTS sc_ledger (
			entry_id     TEXT PRIMARY KEY,
			designer_id  TEXT NOT NULL REFERENCES designers(id),
			source       TEXT NOT NULL,
			amount_centi INTEGER NOT NULL CHECK (amount_centi >= 0),
			reference    TEXT NOT NULL DEFAULT '',
			created_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sc_ledger_designer ON sc_ledger(designer_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id                 TEXT PRIMARY KEY,
			designer_id        TEXT NOT NULL REFERENCES designers(id),
			product_id         TEXT NOT NULL DEFAULT '',
			quantity           INTEGER NOT NULL,
			production_cost    REAL NOT NULL,
			retail_price       REAL NOT NULL,
			total_profit_cents INTEGER NOT NULL CHECK (total_profit_cents >= 0),
			created_at         INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_designer ON sales(designer_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS earnings (
			id             TEXT PRIMARY KEY,
			sale_id        TEXT NOT NULL UNIQUE REFERENCES sales(id),
			designer_id    TEXT NOT NULL REFERENCES designers(id),
			style_credits  INTEGER NOT NULL,
			rank           TEXT NOT NULL,
			founder_tier   TEXT,
			commission     REAL NOT NULL CHECK (commission <= 50),
			designer_cents INTEGER NOT NULL CHECK (designer_cents >= 0),
			platform_cents INTEGER NOT NULL CHECK (platform_cents >= 0),
			created_at     INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id             TEXT PRIMARY KEY,
			designer_id    TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			submitted_at   INTEGER,
			reviewed_at    INTEGER,
			reviewer_notes TEXT NOT NULL DEFAULT '',
			updated_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status, submitted_at)`,

		`CREATE TABLE IF NOT EXISTS status_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id  TEXT NOT NULL REFERENCES projects(id),
			from_status TEXT NOT NULL,
			to_status   TEXT NOT NULL,
			actor       TEXT NOT NULL DEFAULT '',
			notes       TEXT NOT NULL DEFAULT '',
			changed_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_project ON status_history(project_id, id)`,
	}
}
