package service

import (
	"context"

	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"
	"glossarysync/internal/services/glossary/domain"
)

var requiredFields = []string{domain.FieldName, domain.FieldDescription, domain.FieldStatus, domain.FieldDomain}

// UploadFrom reads records from location and uploads them
func (m *Manager) UploadFrom(ctx context.Context, location, sheet string) (domain.UploadReport, error) {
	if m.src == nil {
		return domain.UploadReport{}, perr.InvalidArgf("no term source configured")
	}
	log := logger.C(ctx, m.log)
	log.Info().Str("source", location).Msg("glossary: reading terms")
	records, err := m.src.Read(ctx, location, sheet)
	if err != nil {
		return domain.UploadReport{}, err
	}
	log.Info().Str("source", location).Int("records", len(records)).Msg("glossary: read terms")
	return m.upload(ctx, location, records)
}

// UploadGlossaryTerms creates every record whose (name, domain) is not in the catalog yet
// every record is checked for the name, description, status and domain columns first,
// so a bad sheet fails before any catalog call and nothing is created
// after that the first failure aborts the batch; the report holds what completed before it
func (m *Manager) UploadGlossaryTerms(ctx context.Context, records []domain.TermRecord) (domain.UploadReport, error) {
	return m.upload(ctx, m.cfg.Source, records)
}

func (m *Manager) upload(ctx context.Context, source string, records []domain.TermRecord) (domain.UploadReport, error) {
	runID := m.runID()
	ctx = logger.WithRun(ctx, runID, m.cfg.TenantID)
	log := logger.C(ctx, m.log)

	rep := domain.UploadReport{
		RunID:   runID,
		DryRun:  m.cfg.DryRun,
		Created: []domain.Term{},
		Skipped: []domain.TermKey{},
		Items:   []domain.UploadItem{},
	}
	if m.cfg.DryRun {
		rep.Planned = []domain.TermKey{}
	}
	run := domain.Run{
		ID:        runID,
		TenantID:  m.cfg.TenantID,
		Source:    source,
		DryRun:    m.cfg.DryRun,
		StartedAt: m.now().UTC(),
		Status:    domain.RunRunning,
	}
	m.ledger.StartRun(ctx, run)

	err := m.uploadRecords(ctx, log, runID, records, &rep)

	fin := m.now().UTC()
	run.FinishedAt = &fin
	run.Created = len(rep.Created)
	run.Skipped = len(rep.Skipped)
	run.Status = domain.RunSucceeded
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
		log.Error().Err(err).Msg("glossary: upload aborted")
	} else {
		log.Info().Int("created", len(rep.Created)).Int("skipped", len(rep.Skipped)).
			Int("planned", len(rep.Planned)).Msg("glossary: upload done")
	}
	m.ledger.FinishRun(ctx, run)
	return rep, err
}

func (m *Manager) uploadRecords(ctx context.Context, log *logger.Logger, runID string, records []domain.TermRecord, rep *domain.UploadReport) error {
	inputs := make([]domain.TermInput, 0, len(records))
	for i, rec := range records {
		in, err := toInput(i, rec)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	snap, err := m.snapshot(ctx)
	if err != nil {
		return err
	}

	seen := map[domain.TermKey]struct{}{}
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info().Str("term", in.Name).Msg("glossary: adding term")
		t, key, action, err := m.createWithSnapshot(ctx, log, in, snap, seen)
		if err != nil {
			return err
		}

		item := domain.UploadItem{Ordinal: i, Name: in.Name, Domain: in.Domain, DomainID: key.DomainID, Action: action}
		switch action {
		case domain.ActionCreated:
			item.TermID = t.ID
			rep.Created = append(rep.Created, *t)
		case domain.ActionSkipped:
			rep.Skipped = append(rep.Skipped, key)
		case domain.ActionPlanned:
			rep.Planned = append(rep.Planned, key)
		}
		rep.Items = append(rep.Items, item)
		m.ledger.RecordItem(ctx, runID, item)
	}
	return nil
}

// toInput requires the four term columns; values pass through verbatim
func toInput(i int, rec domain.TermRecord) (domain.TermInput, error) {
	for _, f := range requiredFields {
		if _, ok := rec[f]; !ok {
			err := perr.Validationf("record %d is missing the %q column", i+1, f)
			return domain.TermInput{}, perr.WithField(err, f)
		}
	}
	return domain.TermInput{
		Name:        rec[domain.FieldName],
		Description: rec[domain.FieldDescription],
		Status:      rec[domain.FieldStatus],
		Domain:      rec[domain.FieldDomain],
	}, nil
}
