package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the full DDL of the ingestion tables. Natural-key uniqueness
// uses NULLS NOT DISTINCT because several keys contain nullable columns
// (person name parts, link function codes) and two rows with the same nulls
// are the same row for upsert purposes.
const Schema = `
CREATE TABLE IF NOT EXISTS company_info (
	enterprise_id   text PRIMARY KEY,
	denomination    text,
	legal_situation text
);

CREATE TABLE IF NOT EXISTS statements (
	enterprise_id text NOT NULL REFERENCES company_info (enterprise_id),
	start_date    date NOT NULL,
	end_date      date NOT NULL,
	filing_id     text NOT NULL,
	account_year  integer NOT NULL,
	deposit_date  date,
	deposit_type  text NOT NULL,
	legal_form    text NOT NULL,
	activity_code text,
	model_type    text NOT NULL,
	last_update   timestamptz NOT NULL,
	PRIMARY KEY (enterprise_id, start_date, end_date)
);

CREATE TABLE IF NOT EXISTS natural_persons (
	identifier    uuid NOT NULL,
	first_name    text,
	last_name     text,
	street        text,
	street_number text,
	zipcode       text NOT NULL,
	country_code  text NOT NULL,
	UNIQUE NULLS NOT DISTINCT (first_name, last_name, street, street_number)
);

CREATE TABLE IF NOT EXISTS entities (
	identifier    uuid NOT NULL,
	entity_number text NOT NULL,
	country_code  text NOT NULL,
	denomination  text,
	street        text,
	street_number text,
	zipcode       text NOT NULL,
	PRIMARY KEY (entity_number, country_code)
);

CREATE TABLE IF NOT EXISTS administrators_natural (
	enterprise_id text NOT NULL REFERENCES company_info (enterprise_id),
	person_id     uuid NOT NULL,
	function_code text,
	start_date    date,
	end_date      date,
	account_year  integer NOT NULL,
	UNIQUE NULLS NOT DISTINCT (enterprise_id, person_id, function_code, account_year)
);

CREATE TABLE IF NOT EXISTS administrators_legal (
	enterprise_id text NOT NULL REFERENCES company_info (enterprise_id),
	entity_id     uuid NOT NULL,
	person_id     uuid NOT NULL,
	function_code text,
	start_date    date,
	end_date      date,
	account_year  integer NOT NULL,
	UNIQUE NULLS NOT DISTINCT (enterprise_id, entity_id, person_id, function_code, account_year)
);

CREATE TABLE IF NOT EXISTS participations (
	enterprise_id         text NOT NULL REFERENCES company_info (enterprise_id),
	entity_id             uuid NOT NULL,
	account_year          integer NOT NULL,
	account_date          date,
	currency              text NOT NULL,
	equity                bigint NOT NULL,
	net_result            bigint NOT NULL,
	nature                text,
	line                  text,
	amount                text,
	percentage_held       double precision,
	percentage_subsidiary double precision,
	UNIQUE NULLS NOT DISTINCT (enterprise_id, entity_id, account_year, line)
);

CREATE TABLE IF NOT EXISTS shareholdings (
	enterprise_id           text NOT NULL REFERENCES company_info (enterprise_id),
	entity_id               uuid,
	person_id               uuid,
	account_year            integer NOT NULL,
	nature_rights           text,
	line_rights             text,
	securities_attached     double precision,
	not_securities_attached text,
	percentage              double precision,
	UNIQUE NULLS NOT DISTINCT (enterprise_id, entity_id, person_id, account_year, line_rights),
	CHECK ((entity_id IS NULL) <> (person_id IS NULL))
);

CREATE TABLE IF NOT EXISTS accounting_codes (
	accounting_code text PRIMARY KEY,
	denomination    text NOT NULL
);

CREATE TABLE IF NOT EXISTS facts (
	account_year    integer NOT NULL,
	filing_id       text NOT NULL,
	accounting_code text NOT NULL REFERENCES accounting_codes (accounting_code),
	book_value      double precision,
	PRIMARY KEY (account_year, filing_id, accounting_code)
);

CREATE TABLE IF NOT EXISTS country_codes (
	country_name text PRIMARY KEY,
	country_code text NOT NULL
);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
