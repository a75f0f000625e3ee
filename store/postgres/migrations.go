package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the membership ledger store (PostgreSQL).
var Migrations = migrate.NewGroup("memberledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_memberledger_plans",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS memberledger_plans (
    id                INTEGER PRIMARY KEY,
    name              TEXT NOT NULL DEFAULT '',
    price             BIGINT NOT NULL DEFAULT 0,
    members_per_cycle INTEGER NOT NULL DEFAULT 4,
    active            BOOLEAN NOT NULL DEFAULT TRUE,
    default_image_uri TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS memberledger_cycles (
    plan_id          INTEGER PRIMARY KEY,
    current_cycle    INTEGER NOT NULL DEFAULT 1,
    members_in_cycle INTEGER NOT NULL DEFAULT 0
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS memberledger_cycles;
DROP TABLE IF EXISTS memberledger_plans;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_memberledger_members",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS memberledger_members (
    address         TEXT PRIMARY KEY,
    upline          TEXT NOT NULL DEFAULT '',
    total_referrals BIGINT NOT NULL DEFAULT 0,
    total_earnings  BIGINT NOT NULL DEFAULT 0,
    plan_id         INTEGER NOT NULL DEFAULT 1,
    cycle_number    INTEGER NOT NULL DEFAULT 1,
    registered_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_upgrade_at TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_memberledger_members_upline ON memberledger_members (upline);
CREATE INDEX IF NOT EXISTS idx_memberledger_members_plan ON memberledger_members (plan_id);

CREATE TABLE IF NOT EXISTS memberledger_last_actions (
    address  TEXT PRIMARY KEY,
    acted_at TIMESTAMPTZ NOT NULL
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS memberledger_last_actions;
DROP TABLE IF EXISTS memberledger_members;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_memberledger_tokens",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS memberledger_tokens (
    id          TEXT PRIMARY KEY,
    owner       TEXT NOT NULL DEFAULT '',
    mint_index  BIGINT NOT NULL DEFAULT 0,
    image_uri   TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    plan_id     INTEGER NOT NULL DEFAULT 1,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_memberledger_tokens_owner ON memberledger_tokens (owner);
CREATE INDEX IF NOT EXISTS idx_memberledger_tokens_mint ON memberledger_tokens (mint_index);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS memberledger_tokens`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_memberledger_transactions",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS memberledger_transactions (
    recipient TEXT NOT NULL,
    slot      INTEGER NOT NULL,
    record_id TEXT NOT NULL DEFAULT '',
    from_addr TEXT NOT NULL DEFAULT '',
    amount    BIGINT NOT NULL DEFAULT 0,
    kind      TEXT NOT NULL DEFAULT '',
    timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (recipient, slot)
);

CREATE TABLE IF NOT EXISTS memberledger_tx_cursors (
    recipient TEXT PRIMARY KEY,
    cursor    INTEGER NOT NULL DEFAULT 0,
    count     INTEGER NOT NULL DEFAULT 0
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS memberledger_tx_cursors;
DROP TABLE IF EXISTS memberledger_transactions;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_memberledger_treasury",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS memberledger_balances (
    id               INTEGER PRIMARY KEY,
    owner            BIGINT NOT NULL DEFAULT 0,
    fee_system       BIGINT NOT NULL DEFAULT 0,
    fund             BIGINT NOT NULL DEFAULT 0,
    total_commission BIGINT NOT NULL DEFAULT 0,
    total_revenue    BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS memberledger_state (
    id                     INTEGER PRIMARY KEY,
    paused                 BOOLEAN NOT NULL DEFAULT FALSE,
    bootstrap              TEXT NOT NULL DEFAULT 'awaiting_bootstrap',
    emergency_requested_at TIMESTAMPTZ,
    price_feed             TEXT NOT NULL DEFAULT '',
    base_uri               TEXT NOT NULL DEFAULT ''
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS memberledger_state;
DROP TABLE IF EXISTS memberledger_balances;
`)
				return err
			},
		},
	)
}
