//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance with the
// transfer-core schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("boxtribute"),
		tcpostgres.WithUsername("boxtribute"),
		tcpostgres.WithPassword("boxtribute"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables empties the given tables and resets their sequences. Use
// between tests to ensure isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	q := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	_, err := p.DB.ExecContext(ctx, q)
	return err
}

// schema mirrors the legacy warehouse tables the stores read and write.
const schema = `
CREATE TABLE IF NOT EXISTS bases (
	id              BIGINT PRIMARY KEY,
	organisation_id BIGINT NOT NULL,
	name            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS locations (
	id                BIGINT PRIMARY KEY,
	base_id           BIGINT NOT NULL,
	name              TEXT NOT NULL,
	default_box_state BIGINT
);

CREATE TABLE IF NOT EXISTS products (
	id      BIGINT PRIMARY KEY,
	base_id BIGINT NOT NULL,
	name    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sizes (
	id    BIGINT PRIMARY KEY,
	label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id      BIGINT PRIMARY KEY,
	base_id BIGINT NOT NULL,
	name    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stock (
	id              BIGSERIAL PRIMARY KEY,
	label           TEXT NOT NULL UNIQUE,
	state           BIGINT NOT NULL,
	location_id     BIGINT NOT NULL,
	product_id      BIGINT NOT NULL,
	size_id         BIGINT NOT NULL,
	number_of_items INTEGER NOT NULL DEFAULT 0,
	comment         TEXT NOT NULL DEFAULT '',
	qr_code_id      UUID,
	tag_ids         BIGINT[] NOT NULL DEFAULT '{}',
	created_on      TIMESTAMPTZ NOT NULL,
	created_by      BIGINT NOT NULL,
	modified_on     TIMESTAMPTZ NOT NULL,
	modified_by     BIGINT NOT NULL,
	deleted_on      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS transfer_agreements (
	id                     BIGINT PRIMARY KEY,
	source_organisation_id BIGINT NOT NULL,
	target_organisation_id BIGINT NOT NULL,
	type                   TEXT NOT NULL,
	state                  TEXT NOT NULL,
	valid_from             TIMESTAMPTZ NOT NULL,
	valid_until            TIMESTAMPTZ,
	source_base_ids        BIGINT[] NOT NULL DEFAULT '{}',
	target_base_ids        BIGINT[] NOT NULL DEFAULT '{}'
);

CREATE SEQUENCE IF NOT EXISTS shipment_code_seq;

CREATE TABLE IF NOT EXISTS shipments (
	id                   BIGSERIAL PRIMARY KEY,
	code                 TEXT NOT NULL UNIQUE,
	source_base_id       BIGINT NOT NULL,
	target_base_id       BIGINT NOT NULL,
	agreement_id         BIGINT,
	state                TEXT NOT NULL,
	started_by           BIGINT NOT NULL,
	started_on           TIMESTAMPTZ NOT NULL,
	sent_by              BIGINT,
	sent_on              TIMESTAMPTZ,
	receiving_started_by BIGINT,
	receiving_started_on TIMESTAMPTZ,
	completed_by         BIGINT,
	completed_on         TIMESTAMPTZ,
	canceled_by          BIGINT,
	canceled_on          TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS shipment_details (
	id                 BIGSERIAL PRIMARY KEY,
	shipment_id        BIGINT NOT NULL REFERENCES shipments (id),
	box_id             BIGINT NOT NULL,
	box_label          TEXT NOT NULL,
	source_product_id  BIGINT NOT NULL,
	source_location_id BIGINT NOT NULL,
	source_size_id     BIGINT NOT NULL,
	source_quantity    INTEGER NOT NULL,
	target_product_id  BIGINT,
	target_location_id BIGINT,
	target_size_id     BIGINT,
	target_quantity    INTEGER,
	created_by         BIGINT NOT NULL,
	created_on         TIMESTAMPTZ NOT NULL,
	removed_by         BIGINT,
	removed_on         TIMESTAMPTZ,
	lost_by            BIGINT,
	lost_on            TIMESTAMPTZ,
	received_by        BIGINT,
	received_on        TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_shipment_details_box
	ON shipment_details (box_id, removed_on);

CREATE TABLE IF NOT EXISTS history (
	id          BIGSERIAL PRIMARY KEY,
	table_name  TEXT NOT NULL,
	record_id   BIGINT NOT NULL,
	change_kind TEXT NOT NULL,
	changes     TEXT NOT NULL,
	actor_id    BIGINT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL,
	from_int    BIGINT NOT NULL DEFAULT 0,
	to_int      BIGINT NOT NULL DEFAULT 0,
	from_text   TEXT NOT NULL DEFAULT '',
	to_text     TEXT NOT NULL DEFAULT '',
	from_label  TEXT NOT NULL DEFAULT '',
	to_label    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_history_record
	ON history (table_name, record_id);
`
