//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cbso/internal/ingest"
	"cbso/internal/plan"
	"cbso/internal/store/postgres"
	id "cbso/pkg/domain"
	"cbso/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.postgres.Pool))
	s.store = postgres.New(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx,
		"facts", "accounting_codes", "shareholdings", "participations",
		"administrators_legal", "administrators_natural", "entities",
		"natural_persons", "statements", "company_info", "country_codes")
	s.Require().NoError(err)
}

func strp(v string) *string { return &v }

func testRows() *ingest.Rows {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	pid := id.NewPersonID()
	eid := id.NewEntityID()
	first, last := "jan", "peeters"

	return &ingest.Rows{
		CompanyInfo: &ingest.CompanyInfoRow{EnterpriseID: "0400638803", Denomination: strp("Test NV")},
		Statements: []ingest.StatementRow{{
			EnterpriseID: "0400638803", StartDate: start, EndDate: end,
			FilingID: "2023-001", AccountYear: 2023, DepositType: "Initial",
			LegalForm: "014", ModelType: "F-cap", LastUpdate: end,
		}},
		Persons: []ingest.PersonRow{{
			PersonID: pid, FirstName: &first, LastName: &last,
			Zipcode: "2000", CountryCode: "BE",
		}},
		Entities: []ingest.EntityRow{{
			Identifier: eid, EntityNumber: "0200065765", CountryCode: "BE", Zipcode: "0000",
		}},
		AdminNatural: []ingest.AdminNaturalRow{{
			EnterpriseID: "0400638803", PersonID: pid, FunctionCode: strp("10061"), AccountYear: 2023,
		}},
		Shareholdings: []ingest.ShareholdingRow{{
			EnterpriseID: "0400638803", EntityID: &eid, AccountYear: 2023, LineRights: strp("1"),
		}},
		AccountingCodes: []ingest.AccountingCodeRow{{AccountingCode: "10/15", Denomination: "10/15"}},
		Facts:           []ingest.FactRow{{AccountYear: 2023, FilingID: "2023-001", AccountingCode: "10/15"}},
	}
}

func (s *PostgresStoreSuite) TestApplyThenReapplyIsIdempotent() {
	ctx := context.Background()
	cs, err := plan.Plan("0400638803", testRows())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Apply(ctx, cs))
	s.Require().NoError(s.store.Apply(ctx, cs))

	for table, want := range map[string]int{
		"company_info":           1,
		"statements":             1,
		"natural_persons":        1,
		"entities":               1,
		"administrators_natural": 1,
		"shareholdings":          1,
		"accounting_codes":       1,
		"facts":                  1,
	} {
		var count int
		err := s.postgres.Pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&count)
		s.Require().NoError(err)
		s.Equal(want, count, "table %s", table)
	}
}

func (s *PostgresStoreSuite) TestOverwritePolicyUpdatesInPlace() {
	ctx := context.Background()

	rows := testRows()
	cs, err := plan.Plan("0400638803", rows)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Apply(ctx, cs))

	rows.CompanyInfo.Denomination = strp("Renamed NV")
	book := 1000.5
	rows.Facts[0].BookValue = &book
	cs, err = plan.Plan("0400638803", rows)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Apply(ctx, cs))

	var denomination string
	err = s.postgres.Pool.QueryRow(ctx, `SELECT denomination FROM company_info WHERE enterprise_id = $1`, "0400638803").Scan(&denomination)
	s.Require().NoError(err)
	s.Equal("Renamed NV", denomination)

	var bookValue float64
	err = s.postgres.Pool.QueryRow(ctx, `SELECT book_value FROM facts WHERE filing_id = $1`, "2023-001").Scan(&bookValue)
	s.Require().NoError(err)
	s.InDelta(1000.5, bookValue, 0.001)
}

func (s *PostgresStoreSuite) TestDoNothingPolicyKeepsFirstRow() {
	ctx := context.Background()

	rows := testRows()
	cs, err := plan.Plan("0400638803", rows)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Apply(ctx, cs))

	rows.AccountingCodes[0].Denomination = "changed"
	cs, err = plan.Plan("0400638803", rows)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Apply(ctx, cs))

	var denomination string
	err = s.postgres.Pool.QueryRow(ctx, `SELECT denomination FROM accounting_codes WHERE accounting_code = $1`, "10/15").Scan(&denomination)
	s.Require().NoError(err)
	s.Equal("10/15", denomination)
}

func (s *PostgresStoreSuite) TestCountryCodesRoundTrip() {
	ctx := context.Background()

	s.Require().NoError(s.store.SeedCountryCodes(ctx, map[string]string{"Duitsland": "DE"}))
	lookup, err := s.store.CountryCodes(ctx)
	s.Require().NoError(err)

	code, ok := lookup.Code("duitsland")
	s.Require().True(ok)
	s.Equal("DE", code)
}
