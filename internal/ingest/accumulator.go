package ingest

import (
	"time"

	"cbso/internal/countries"
	"cbso/internal/filing"
	"cbso/internal/identity"
	id "cbso/pkg/domain"
	dErrors "cbso/pkg/domain-errors"
)

// Accumulator walks one company's filings, oldest first, and produces the
// complete set of normalized output rows. Identity resolution is scoped to
// the accumulator: one person/entity resolver pair per company, owned by a
// single sequential pass. Filing order must not be parallelized because
// resolution and attribute-merge order depend on it.
type Accumulator struct {
	enterpriseID string
	lookup       countries.Lookup
	persons      *identity.PersonResolver
	entities     *identity.EntityResolver
	rows         Rows
	report       Report
}

// New builds an accumulator for one company from its references. Company
// info and statement rows are derived immediately; filings are added one by
// one. A nil similarity falls back to the default primitive.
func New(refs *filing.References, lookup countries.Lookup, sim identity.Similarity) *Accumulator {
	a := &Accumulator{
		enterpriseID: refs.EnterpriseID,
		lookup:       lookup,
		persons:      identity.NewPersonResolver(sim),
		entities:     identity.NewEntityResolver(),
	}

	a.rows.CompanyInfo = &CompanyInfoRow{
		EnterpriseID:   refs.EnterpriseID,
		Denomination:   refs.EnterpriseName,
		LegalSituation: refs.LegalSituation,
	}
	for _, s := range refs.Summaries {
		a.rows.Statements = append(a.rows.Statements, StatementRow{
			EnterpriseID: s.EnterpriseID,
			StartDate:    s.StartDate,
			EndDate:      s.EndDate,
			FilingID:     s.FilingID,
			AccountYear:  s.AccountYear,
			DepositDate:  s.DepositDate,
			DepositType:  s.DepositType,
			LegalForm:    s.LegalForm,
			ActivityCode: s.ActivityCode,
			ModelType:    s.ModelType,
			LastUpdate:   s.LastUpdate,
		})
	}
	return a
}

// SkipFiling records that a referenced filing document could not be loaded
// or decoded. The filing is dropped; the company continues.
func (a *Accumulator) SkipFiling(s filing.Summary, err error) {
	a.report.add(KindUnresolvableFiling, a.enterpriseID, s.FilingID, "filing", err)
}

// AddFiling folds one parsed filing into the accumulated rows. Section
// order is fixed: natural-person administrators, legal-entity
// administrators with their representatives, participating interests,
// shareholders, then rubrics.
func (a *Accumulator) AddFiling(f *filing.Filing, s filing.Summary) {
	filingID := s.FilingID
	if f.ReferenceNumber != nil && *f.ReferenceNumber != "" {
		filingID = *f.ReferenceNumber
	}

	a.addNaturalAdmins(f.Administrators.NaturalPersons, filingID, s.AccountYear)
	a.addLegalAdmins(f.Administrators.LegalPersons, filingID, s.AccountYear)
	a.addParticipations(f.ParticipatingInterests, filingID, s.AccountYear)
	a.addShareholders(f.Shareholders, filingID, s.AccountYear)
	a.addRubrics(f.Rubrics, filingID, s.AccountYear)
}

// Finish returns the accumulated rows, including one merged person and
// entity row per resolved identity, together with the error report.
func (a *Accumulator) Finish() (*Rows, *Report) {
	for _, rp := range a.persons.Persons() {
		a.rows.Persons = append(a.rows.Persons, PersonRow{
			PersonID:     rp.ID,
			FirstName:    rp.Record.FirstName,
			LastName:     rp.Record.LastName,
			Street:       rp.Record.Street,
			StreetNumber: rp.Record.StreetNumber,
			Zipcode:      rp.Record.Zipcode,
			CountryCode:  rp.Record.CountryCode,
		})
	}
	for _, re := range a.entities.Entities() {
		a.rows.Entities = append(a.rows.Entities, EntityRow{
			Identifier:   re.ID,
			EntityNumber: re.Record.Number,
			CountryCode:  re.Record.CountryCode,
			Denomination: re.Record.Denomination,
			Street:       re.Record.Street,
			StreetNumber: re.Record.StreetNumber,
			Zipcode:      re.Record.Zipcode,
		})
	}
	return &a.rows, &a.report
}

func (a *Accumulator) addNaturalAdmins(admins []filing.NaturalPersonAdmin, filingID string, year int) {
	for _, admin := range admins {
		pid, _ := a.persons.Resolve(filing.ToPerson(admin.Person, a.lookup))

		base := AdminNaturalRow{EnterpriseID: a.enterpriseID, PersonID: pid, AccountYear: year}
		if len(admin.Mandates) == 0 {
			a.rows.AdminNatural = append(a.rows.AdminNatural, base)
			continue
		}
		for _, m := range admin.Mandates {
			fc, start, end, err := mandateFields(m)
			if err != nil {
				a.report.add(KindMalformedRecord, a.enterpriseID, filingID, "administrators/natural/mandates", err)
				continue
			}
			row := base
			row.FunctionCode, row.StartDate, row.EndDate = fc, start, end
			a.rows.AdminNatural = append(a.rows.AdminNatural, row)
		}
	}
}

func (a *Accumulator) addLegalAdmins(admins []filing.LegalPersonAdmin, filingID string, year int) {
	for _, admin := range admins {
		entity, err := filing.ToEntity(admin.Entity, a.lookup)
		if err != nil {
			a.report.add(KindMissingRequiredField, a.enterpriseID, filingID, "administrators/legal", err)
			continue
		}
		eid, _ := a.entities.Resolve(entity)

		for _, rep := range admin.Representatives {
			pid, _ := a.persons.Resolve(filing.ToPerson(rep, a.lookup))

			base := AdminLegalRow{
				EnterpriseID: a.enterpriseID,
				EntityID:     eid,
				PersonID:     pid,
				AccountYear:  year,
			}
			if len(admin.Mandates) == 0 {
				a.rows.AdminLegal = append(a.rows.AdminLegal, base)
				continue
			}
			for _, m := range admin.Mandates {
				fc, start, end, err := mandateFields(m)
				if err != nil {
					a.report.add(KindMalformedRecord, a.enterpriseID, filingID, "administrators/legal/mandates", err)
					continue
				}
				row := base
				row.FunctionCode, row.StartDate, row.EndDate = fc, start, end
				a.rows.AdminLegal = append(a.rows.AdminLegal, row)
			}
		}
	}
}

func (a *Accumulator) addParticipations(interests []filing.ParticipatingInterest, filingID string, year int) {
	for _, pi := range interests {
		entity, err := filing.ToEntity(pi.Entity, a.lookup)
		if err != nil {
			a.report.add(KindMissingRequiredField, a.enterpriseID, filingID, "participating_interests", err)
			continue
		}
		eid, _ := a.entities.Resolve(entity)

		base := ParticipationRow{EnterpriseID: a.enterpriseID, EntityID: eid, AccountYear: year}
		if pi.AccountDate != nil {
			d, err := time.Parse(filing.DateLayout, *pi.AccountDate)
			if err != nil {
				a.report.add(KindMalformedRecord, a.enterpriseID, filingID, "participating_interests", err)
				continue
			}
			base.AccountDate = &d
		}
		if pi.Currency == nil || pi.Equity == nil || pi.NetResult == nil {
			a.report.add(KindMissingRequiredField, a.enterpriseID, filingID, "participating_interests",
				dErrors.New(dErrors.CodeMalformedRecord, "participation needs currency, equity, and net result"))
			continue
		}
		base.Currency = filing.StripCurrency(*pi.Currency)
		base.Equity = int64(*pi.Equity)
		base.NetResult = int64(*pi.NetResult)

		for _, held := range pi.Held {
			row := base
			row.Nature = held.Nature
			row.Line = held.Line
			row.Amount = held.Number
			row.PercentageHeld = floatOf(held.PercentageDirectlyHeld)
			row.PercentageSubsidiary = floatOf(held.PercentageSubsidiaries)
			a.rows.Participations = append(a.rows.Participations, row)
		}
	}
}

func (a *Accumulator) addShareholders(sh filing.Shareholders, filingID string, year int) {
	for _, es := range sh.EntityShareholders {
		entity, err := filing.ToEntity(es.Entity, a.lookup)
		if err != nil {
			a.report.add(KindMissingRequiredField, a.enterpriseID, filingID, "shareholders/entities", err)
			continue
		}
		eid, _ := a.entities.Resolve(entity)
		for _, rights := range es.RightsHeld {
			a.rows.Shareholdings = append(a.rows.Shareholdings, shareholdingRow(a.enterpriseID, &eid, nil, year, rights))
		}
	}

	for _, is := range sh.IndividualShareholders {
		rec := filing.PersonRecord{FirstName: is.FirstName, LastName: is.LastName, Address: is.Address}
		pid, _ := a.persons.Resolve(filing.ToPerson(rec, a.lookup))
		for _, rights := range is.RightsHeld {
			a.rows.Shareholdings = append(a.rows.Shareholdings, shareholdingRow(a.enterpriseID, nil, &pid, year, rights))
		}
	}
}

func (a *Accumulator) addRubrics(rubrics []filing.Rubric, filingID string, year int) {
	for _, r := range rubrics {
		// Only the filed period is stored; prior-year comparatives are
		// discarded, not kept.
		if r.Period != "N" {
			continue
		}
		if r.Code == nil || *r.Code == "" {
			a.report.add(KindMissingRequiredField, a.enterpriseID, filingID, "rubrics",
				dErrors.New(dErrors.CodeMalformedRecord, "rubric without code"))
			continue
		}
		code := *r.Code
		a.rows.AccountingCodes = append(a.rows.AccountingCodes, AccountingCodeRow{
			AccountingCode: code,
			Denomination:   code,
		})
		a.rows.Facts = append(a.rows.Facts, FactRow{
			AccountYear:    year,
			FilingID:       filingID,
			AccountingCode: code,
			BookValue:      floatOf(r.Value),
		})
	}
}

func mandateFields(m filing.Mandate) (*string, *time.Time, *time.Time, error) {
	if m.FunctionMandate == nil {
		return nil, nil, nil, dErrors.New(dErrors.CodeMalformedRecord, "mandate without function code")
	}
	fc := filing.StripFunction(*m.FunctionMandate)

	var start, end *time.Time
	if m.MandateDates.StartDate != nil {
		d, err := time.Parse(filing.DateLayout, *m.MandateDates.StartDate)
		if err != nil {
			return nil, nil, nil, dErrors.Wrap(err, dErrors.CodeMalformedRecord, "mandate start date")
		}
		start = &d
	}
	if m.MandateDates.EndDate != nil {
		d, err := time.Parse(filing.DateLayout, *m.MandateDates.EndDate)
		if err != nil {
			return nil, nil, nil, dErrors.Wrap(err, dErrors.CodeMalformedRecord, "mandate end date")
		}
		end = &d
	}
	return &fc, start, end, nil
}

func shareholdingRow(enterpriseID string, eid *id.EntityID, pid *id.PersonID, year int, rights filing.RightsHeld) ShareholdingRow {
	return ShareholdingRow{
		EnterpriseID:          enterpriseID,
		EntityID:              eid,
		PersonID:              pid,
		AccountYear:           year,
		NatureRights:          rights.Nature,
		LineRights:            rights.Line,
		SecuritiesAttached:    floatOf(rights.NumberSecuritiesAttached),
		NotSecuritiesAttached: rights.NotSecuritiesAttached,
		Percentage:            floatOf(rights.Percentage),
	}
}

func floatOf(n *filing.Number) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}
