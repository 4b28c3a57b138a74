package store

import "database/sql"

// migrate applies the schema. The unique index on attendance_records
// (session_id, student_id) is the hard guarantee against double-marking;
// the service-level duplicate check is only an early exit.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS branches (
		id          TEXT PRIMARY KEY,
		code        TEXT UNIQUE NOT NULL,
		name        TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('admin', 'teacher', 'student')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS teacher_profiles (
		id         TEXT PRIMARY KEY,
		account_id TEXT UNIQUE NOT NULL REFERENCES accounts(id),
		branch_id  TEXT NOT NULL REFERENCES branches(id),
		department TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS student_profiles (
		id         TEXT PRIMARY KEY,
		account_id TEXT UNIQUE NOT NULL REFERENCES accounts(id),
		branch_id  TEXT NOT NULL REFERENCES branches(id),
		roll       TEXT NOT NULL,
		semester   INT NOT NULL,
		section    TEXT NOT NULL DEFAULT 'A'
	);

	CREATE TABLE IF NOT EXISTS lecture_sessions (
		id           TEXT PRIMARY KEY,
		teacher_id   TEXT NOT NULL REFERENCES teacher_profiles(id),
		branch_id    TEXT NOT NULL REFERENCES branches(id),
		subject_code TEXT NOT NULL,
		subject_name TEXT NOT NULL,
		semester     INT NOT NULL,
		section      TEXT NOT NULL DEFAULT 'A',
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		session_date TIMESTAMPTZ NOT NULL,
		token        TEXT UNIQUE NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES lecture_sessions(id),
		student_id  TEXT NOT NULL REFERENCES student_profiles(id),
		status      TEXT NOT NULL CHECK (status IN ('present', 'late', 'absent')),
		marked_at   TIMESTAMPTZ NOT NULL,
		latitude    DOUBLE PRECISION,
		longitude   DOUBLE PRECISION,
		device_info TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT attendance_session_student_uniq UNIQUE (session_id, student_id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_teacher ON lecture_sessions(teacher_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_cohort  ON lecture_sessions(branch_id, semester, section);
	CREATE INDEX IF NOT EXISTS idx_attendance_student ON attendance_records(student_id);

	CREATE TABLE IF NOT EXISTS scan_audit (
		id          BIGSERIAL PRIMARY KEY,
		record_id   TEXT NOT NULL,
		observed_at TIMESTAMPTZ NOT NULL,
		device_info TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.Exec(schema)
	return err
}
