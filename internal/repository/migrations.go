package repository

import "github.com/citimr/aid-portal/pkg/database"

// Migrations is the schema history for the aid portal.
var Migrations = []database.Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			CREATE TABLE users (
				id              TEXT PRIMARY KEY,
				name            TEXT NOT NULL,
				email           TEXT NOT NULL UNIQUE,
				role            TEXT NOT NULL,
				password_hash   TEXT NOT NULL,
				reset_requested INTEGER NOT NULL DEFAULT 0,
				created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE requests (
				id                  TEXT PRIMARY KEY,
				employee_id         TEXT NOT NULL REFERENCES users(id),
				employee_input_name TEXT NOT NULL,
				job_role            TEXT NOT NULL,
				event_name          TEXT NOT NULL,
				event_location      TEXT NOT NULL DEFAULT '',
				event_date          DATETIME NOT NULL,
				registration_value  TEXT NOT NULL,
				event_params_text   TEXT NOT NULL DEFAULT '',
				modality            TEXT NOT NULL,
				status              TEXT NOT NULL,
				submission_date     DATETIME NOT NULL,
				scientific_approved INTEGER NOT NULL DEFAULT 0,
				admin_approved      INTEGER NOT NULL DEFAULT 0,
				rejection_reason    TEXT NOT NULL DEFAULT '',
				approval_time       DATETIME,
				created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_requests_employee ON requests(employee_id);
			CREATE INDEX idx_requests_status ON requests(status);

			CREATE TABLE attachments (
				id          TEXT PRIMARY KEY,
				request_id  TEXT REFERENCES requests(id) ON DELETE CASCADE,
				slot        TEXT NOT NULL,
				name        TEXT NOT NULL,
				size_label  TEXT NOT NULL DEFAULT '',
				locator     TEXT NOT NULL,
				uploaded_at DATETIME NOT NULL
			);
			CREATE INDEX idx_attachments_request ON attachments(request_id);
		`,
	},
	{
		Version: 2,
		Name:    "notification_outbox",
		SQL: `
			CREATE TABLE notifications (
				id            TEXT PRIMARY KEY,
				request_id    TEXT NOT NULL,
				recipient     TEXT NOT NULL,
				template_kind TEXT NOT NULL,
				subject       TEXT NOT NULL,
				body          TEXT NOT NULL,
				status        TEXT NOT NULL DEFAULT 'PENDING',
				error_message TEXT NOT NULL DEFAULT '',
				sent_at       DATETIME,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_notifications_status ON notifications(status);
		`,
	},
}
