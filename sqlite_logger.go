package epicore

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLogger is a DataLogger that writes one replicate's DataBase
// into a single SQLite database, one table per output stream per
// spec.md §6, grounded on the teacher's sqlite_logger.go newTable/
// prepared-statement idiom. Unlike the teacher's one-database-per-
// stream layout, all nine tables for a replicate share one database
// file, suffixed "%03d" by replicate number as the table name suffix
// (matching the teacher's per-replicate table convention).
type SQLiteLogger struct {
	path       string
	replicate  int
	db         *sql.DB
}

// NewSQLiteLogger creates a logger rooted at basepath for replicate i.
func NewSQLiteLogger(basepath string, i int) *SQLiteLogger {
	l := new(SQLiteLogger)
	l.SetBasePath(basepath, i)
	return l
}

// SetBasePath sets the base path and replicate number.
func (l *SQLiteLogger) SetBasePath(basepath string, i int) {
	if info, err := os.Stat(basepath); err == nil && info.IsDir() {
		basepath += fmt.Sprintf("log.%03d", i)
	}
	l.path = strings.TrimSuffix(basepath, ".") + ".db"
	l.replicate = i
}

// Init opens the database and creates this replicate's nine tables.
func (l *SQLiteLogger) Init() error {
	db, err := OpenSQLiteDB(l.path, "")
	if err != nil {
		return err
	}
	l.db = db

	newTable := func(name, cols string) error {
		fullName := fmt.Sprintf("%s%03d", name, l.replicate)
		stmt := fmt.Sprintf("create table if not exists %s %s;", fullName, cols)
		_, err := l.db.Exec(stmt)
		if err != nil {
			return fmt.Errorf("%s: %s", stmt, err)
		}
		return nil
	}

	tables := []struct{ name, cols string }{
		{"TotalHist", "(id integer not null primary key, date int, state int, counts int)"},
		{"VirusInfo", "(id integer not null primary key, virus_id int, name text)"},
		{"VirusHist", "(id integer not null primary key, date int, virus_id int, state int, counts int)"},
		{"ToolInfo", "(id integer not null primary key, tool_id int, name text)"},
		{"ToolHist", "(id integer not null primary key, date int, tool_id int, state int, counts int)"},
		{"Transmission", "(id integer not null primary key, date int, source int, target int, virus_id int, instance_uid text)"},
		{"Transition", "(id integer not null primary key, date int, from_state int, to_state int, counts int)"},
		{"Reproductive", "(id integer not null primary key, virus_id int, source int, rt real)"},
		{"Generation", "(id integer not null primary key, virus_id int, mean_generation_time real)"},
	}
	for _, t := range tables {
		if err := newTable(t.name, t.cols); err != nil {
			return err
		}
	}
	return nil
}

// WriteAll persists every output stream inside one transaction.
func (l *SQLiteLogger) WriteAll(db *DataBase, viruses []*VirusDef, tools []*ToolDef) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	if err := l.writeAllTx(tx, db, viruses, tools); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (l *SQLiteLogger) writeAllTx(tx *sql.Tx, db *DataBase, viruses []*VirusDef, tools []*ToolDef) error {
	suffix := fmt.Sprintf("%03d", l.replicate)

	if err := l.execEach(tx, "insert into TotalHist"+suffix+"(date, state, counts) values(?, ?, ?)",
		func(exec func(...interface{}) error) error {
			for day, counts := range db.Counts() {
				for state, n := range counts {
					if err := exec(day, state, n); err != nil {
						return err
					}
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := l.execEach(tx, "insert into VirusInfo"+suffix+"(virus_id, name) values(?, ?)",
		func(exec func(...interface{}) error) error {
			for _, v := range viruses {
				if err := exec(int(v.ID()), v.Name()); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := l.execEach(tx, "insert into VirusHist"+suffix+"(date, virus_id, state, counts) values(?, ?, ?, ?)",
		func(exec func(...interface{}) error) error {
			for _, v := range viruses {
				for day, counts := range db.VirusCounts(v.ID()) {
					for state, n := range counts {
						if err := exec(day, int(v.ID()), state, n); err != nil {
							return err
						}
					}
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := l.execEach(tx, "insert into ToolInfo"+suffix+"(tool_id, name) values(?, ?)",
		func(exec func(...interface{}) error) error {
			for _, t := range tools {
				if err := exec(int(t.ID()), t.Name()); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := l.execEach(tx, "insert into ToolHist"+suffix+"(date, tool_id, state, counts) values(?, ?, ?, ?)",
		func(exec func(...interface{}) error) error {
			for _, t := range tools {
				for day, counts := range db.ToolCounts(t.ID()) {
					for state, n := range counts {
						if err := exec(day, int(t.ID()), state, n); err != nil {
							return err
						}
					}
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := l.execEach(tx, "insert into Transmission"+suffix+"(date, source, target, virus_id, instance_uid) values(?, ?, ?, ?, ?)",
		func(exec func(...interface{}) error) error {
			for _, t := range db.Transmissions() {
				if err := exec(t.Day, int(t.Src), int(t.Dst), int(t.Virus), t.UID.String()); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := l.execEach(tx, "insert into Transition"+suffix+"(date, from_state, to_state, counts) values(?, ?, ?, ?)",
		func(exec func(...interface{}) error) error {
			for day := 0; day < len(db.Counts()); day++ {
				for k, n := range db.Transitions(day) {
					if err := exec(day, k.from, k.to, n); err != nil {
						return err
					}
				}
			}
			return nil
		}); err != nil {
		return err
	}

	if err := l.execEach(tx, "insert into Reproductive"+suffix+"(virus_id, source, rt) values(?, ?, ?)",
		func(exec func(...interface{}) error) error {
			for _, v := range viruses {
				for day := 0; day < len(db.Counts()); day++ {
					if rt, ok := db.ReproductiveNumberOK(v.ID(), day); ok {
						if err := exec(int(v.ID()), day, rt); err != nil {
							return err
						}
					}
				}
			}
			return nil
		}); err != nil {
		return err
	}

	return l.execEach(tx, "insert into Generation"+suffix+"(virus_id, mean_generation_time) values(?, ?)",
		func(exec func(...interface{}) error) error {
			for _, v := range viruses {
				if err := exec(int(v.ID()), db.GenerationTime(v.ID())); err != nil {
					return err
				}
			}
			return nil
		})
}

// execEach prepares stmt once and feeds it to body via a closure that
// forwards each row's arguments, mirroring the teacher's
// tx.Prepare+stmt.Exec-in-a-loop idiom.
func (l *SQLiteLogger) execEach(tx *sql.Tx, stmt string, body func(exec func(...interface{}) error) error) error {
	prepared, err := tx.Prepare(stmt)
	if err != nil {
		return err
	}
	defer prepared.Close()
	return body(func(args ...interface{}) error {
		_, err := prepared.Exec(args...)
		return err
	})
}

// Close closes the underlying database connection.
func (l *SQLiteLogger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// OpenSQLiteDB opens path with the given connection-string suffix
// (e.g. "?_journal=WAL&_locking=EXCLUSIVE&_sync=NORMAL"), mirroring
// the teacher's OpenSQLiteDBOptimized/OpenSQLiteDB pair.
func OpenSQLiteDB(path, connectionString string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s%s", path, connectionString)
	return sql.Open("sqlite3", dsn)
}

// OpenSQLiteDBOptimized opens path with the teacher's WAL/exclusive-
// locking/normal-sync pragma string, suited to a single writer
// appending many small transactions.
func OpenSQLiteDBOptimized(path string) (*sql.DB, error) {
	return OpenSQLiteDB(path, "?_journal=WAL&_locking=EXCLUSIVE&_sync=NORMAL")
}
