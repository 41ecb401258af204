package storage

// sqliteSchema creates the relational tables for SQLite. The partial unique
// index keeps at most one active prompt per user.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_prompts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	content    TEXT NOT NULL,
	is_active  BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (user_id, name)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_user_active_prompt
	ON user_prompts (user_id) WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS contact_priorities (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id        TEXT NOT NULL,
	sender_id      TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	priority_boost INTEGER NOT NULL DEFAULT 0,
	is_starred     BOOLEAN NOT NULL DEFAULT 0,
	category_hint  TEXT,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	UNIQUE (user_id, sender_id)
);

CREATE TABLE IF NOT EXISTS agent_execution_logs (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id              TEXT NOT NULL,
	sender_id            TEXT NOT NULL DEFAULT '',
	message_text         TEXT NOT NULL,
	prompt_used          TEXT NOT NULL,
	tool_results         TEXT NOT NULL,
	final_response       TEXT NOT NULL,
	category             TEXT NOT NULL DEFAULT '',
	total_execution_time REAL NOT NULL,
	success              BOOLEAN NOT NULL DEFAULT 1,
	error                TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_execution_logs_user ON agent_execution_logs (user_id, created_at);
`

// postgresSchema is the PostgreSQL equivalent of sqliteSchema.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS user_prompts (
	id         BIGSERIAL PRIMARY KEY,
	user_id    VARCHAR(50) NOT NULL,
	name       VARCHAR(100) NOT NULL,
	content    TEXT NOT NULL,
	is_active  BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, name)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_user_active_prompt
	ON user_prompts (user_id) WHERE is_active = true;

CREATE TABLE IF NOT EXISTS contact_priorities (
	id             BIGSERIAL PRIMARY KEY,
	user_id        VARCHAR(50) NOT NULL,
	sender_id      VARCHAR(50) NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	priority_boost INTEGER NOT NULL DEFAULT 0,
	is_starred     BOOLEAN NOT NULL DEFAULT false,
	category_hint  TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, sender_id)
);

CREATE TABLE IF NOT EXISTS agent_execution_logs (
	id                   BIGSERIAL PRIMARY KEY,
	user_id              VARCHAR(50) NOT NULL,
	sender_id            VARCHAR(50) NOT NULL DEFAULT '',
	message_text         TEXT NOT NULL,
	prompt_used          TEXT NOT NULL,
	tool_results         JSONB NOT NULL,
	final_response       JSONB NOT NULL,
	category             TEXT NOT NULL DEFAULT '',
	total_execution_time DOUBLE PRECISION NOT NULL,
	success              BOOLEAN NOT NULL DEFAULT true,
	error                TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_execution_logs_user ON agent_execution_logs (user_id, created_at);
`
