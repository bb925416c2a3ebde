package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emirkaya/toolshare-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestReservationsMigrationContainsOverlapBackstop(t *testing.T) {
	content := readMigration(t, "*_create_reservations_table.sql")

	checks := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist",
		"CREATE TABLE IF NOT EXISTS reservations",
		"CHECK (start_date <= end_date)",
		"ADD CONSTRAINT reservations_no_overlap",
		"daterange(start_date, end_date, '[]') WITH &&",
		"WHERE (status IN ('pending', 'approved'))",
		"DROP TABLE IF EXISTS reservations",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationContainsTrustScore(t *testing.T) {
	content := readMigration(t, "*_create_users_table.sql")

	checks := []string{
		"trust_score NUMERIC(3,2) NOT NULL DEFAULT 0.00",
		"CHECK (trust_score >= 0.00 AND trust_score <= 5.00)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRatingsMigrationEnforcesOneRatingPerRater(t *testing.T) {
	content := readMigration(t, "*_create_ratings_table.sql")

	checks := []string{
		"CHECK (score >= 1 AND score <= 5)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_reservation_rater ON ratings (reservation_id, rater_id)",
		"FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
