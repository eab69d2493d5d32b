package epicore

import (
	"fmt"
	"os"
)

// DataLogger is the general definition of a logger that records one
// replicate's full DataBase to file, whether it writes text files or a
// database. Grounded on the teacher's logger.go DataLogger interface,
// generalized from per-genotype streaming writers to the epidemic
// engine's nine output streams (spec.md §6): since a replicate's
// DataBase already buffers its whole time series in memory, each
// writer takes the finished DataBase/definitions directly rather than
// a channel of incrementally-produced records.
type DataLogger interface {
	// SetBasePath sets the base path of the logger and the replicate
	// number used to disambiguate output files/tables.
	SetBasePath(path string, replicate int)
	// Init prepares the logger to receive writes (creates files or
	// database tables).
	Init() error
	// WriteAll persists every output stream for one completed
	// replicate's DataBase.
	WriteAll(db *DataBase, viruses []*VirusDef, tools []*ToolDef) error
	// Close releases any held resources (open file handles, database
	// connections).
	Close() error
}

// Exists reports whether a path exists on disk.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// NewFile creates a new file at path, failing if it already exists.
func NewFile(path string, b []byte) error {
	if exists, _ := Exists(path); exists {
		return fmt.Errorf("%s already exists", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}

// AppendToFile creates path if it does not exist, or appends to it if
// it does.
func AppendToFile(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}
