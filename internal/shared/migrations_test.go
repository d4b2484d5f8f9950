package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_jobs" {
			t.Errorf("expected first migration name create_jobs, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"jobs", "jobs_sequence", "import_records", "import_errors"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM import_records LIMIT 1"); err == nil {
			t.Error("import_records should be dropped after rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM jobs LIMIT 1"); err != nil {
			t.Errorf("jobs should survive a single rollback: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback first migration: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing is left to roll back")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("OpenDatabase", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var value int
		if err := db.QueryRow("SELECT value FROM jobs_sequence WHERE id = 1").Scan(&value); err != nil {
			t.Fatalf("expected seeded jobs_sequence: %v", err)
		}
		if value != 0 {
			t.Errorf("expected sequence to start at 0, got %d", value)
		}
	})
}

func TestRemoveComments(t *testing.T) {
	got := removeComments("-- header\nCREATE TABLE t (id INTEGER); -- trailing\n\n")
	if got != "CREATE TABLE t (id INTEGER);" {
		t.Errorf("removeComments() = %q", got)
	}
}

func TestMigrateSemicolonInComment(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("CREATE TABLE versions (version INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("failed to create bookkeeping table: %v", err)
	}

	script := `-- first table; second comes next
CREATE TABLE a (id INTEGER);

-- holds b rows; nothing else
CREATE TABLE b (id INTEGER);`

	if err := migrate(db, script, "INSERT INTO versions (version) VALUES (?)", 7); err != nil {
		t.Fatalf("migrate() error = %v", err)
	}

	for _, table := range []string{"a", "b"} {
		if _, err := db.Exec("SELECT 1 FROM " + table); err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}
