package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/founditapp/foundit/internal/model"
)

// CreateFakeReport flags an item as a suspected false resolution.
func CreateFakeReport(ctx context.Context, db *sql.DB, r *model.FakeReport) (*model.FakeReport, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO reports (id, item_id, item_title, reporter_name, reporter_email, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, r.ItemID, r.ItemTitle, r.ReporterName, r.ReporterEmail, r.Reason,
	)
	if err != nil {
		return nil, fmt.Errorf("creating fake report: %w", err)
	}

	report := &model.FakeReport{}
	var reason sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT id, item_id, item_title, reporter_name, reporter_email, reason, created_at
		 FROM reports WHERE id = ?`, id,
	).Scan(&report.ID, &report.ItemID, &report.ItemTitle, &report.ReporterName,
		&report.ReporterEmail, &reason, &report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting fake report: %w", err)
	}
	report.Reason = reason.String
	return report, nil
}

// ListFakeReports returns all fake-resolution reports, newest first.
func ListFakeReports(ctx context.Context, db *sql.DB) ([]model.FakeReport, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, item_title, reporter_name, reporter_email, reason, created_at
		 FROM reports ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing fake reports: %w", err)
	}
	defer rows.Close()

	var reports []model.FakeReport
	for rows.Next() {
		var r model.FakeReport
		var reason sql.NullString
		if err := rows.Scan(&r.ID, &r.ItemID, &r.ItemTitle, &r.ReporterName,
			&r.ReporterEmail, &reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning fake report: %w", err)
		}
		r.Reason = reason.String
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
