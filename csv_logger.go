package epicore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVLogger is a DataLogger that writes one replicate's DataBase as
// the nine comma-delimited files named in spec.md §6, grounded on the
// teacher's csv_logger.go SetBasePath/AppendToFile idiom: basepath
// plus a "%03d" replicate number plus a per-stream suffix.
type CSVLogger struct {
	totalHistPath   string
	virusInfoPath   string
	virusHistPath   string
	toolInfoPath    string
	toolHistPath    string
	transPath       string
	transitionPath  string
	reproductivePath string
	generationPath  string
}

// NewCSVLogger creates a logger rooted at basepath for replicate i.
func NewCSVLogger(basepath string, i int) *CSVLogger {
	l := new(CSVLogger)
	l.SetBasePath(basepath, i)
	return l
}

// SetBasePath sets the base path and replicate number. If basepath is
// an existing directory, files are written under it as
// "log.%03d_<stream>.csv".
func (l *CSVLogger) SetBasePath(basepath string, i int) {
	if info, err := os.Stat(basepath); err == nil && info.IsDir() {
		basepath = filepath.Join(basepath, "log")
	}
	stem := strings.TrimSuffix(basepath, ".") + fmt.Sprintf(".%03d", i)
	l.totalHistPath = stem + "_total_hist.csv"
	l.virusInfoPath = stem + "_virus_info.csv"
	l.virusHistPath = stem + "_virus_hist.csv"
	l.toolInfoPath = stem + "_tool_info.csv"
	l.toolHistPath = stem + "_tool_hist.csv"
	l.transPath = stem + "_transmission.csv"
	l.transitionPath = stem + "_transition.csv"
	l.reproductivePath = stem + "_reproductive.csv"
	l.generationPath = stem + "_generation.csv"
}

// Init creates each output file empty, failing if any already exists.
func (l *CSVLogger) Init() error {
	for _, path := range []string{
		l.totalHistPath, l.virusInfoPath, l.virusHistPath,
		l.toolInfoPath, l.toolHistPath, l.transPath,
		l.transitionPath, l.reproductivePath, l.generationPath,
	} {
		if err := NewFile(path, nil); err != nil {
			return err
		}
	}
	return nil
}

// WriteAll appends every output stream for db/viruses/tools.
func (l *CSVLogger) WriteAll(db *DataBase, viruses []*VirusDef, tools []*ToolDef) error {
	if err := l.writeTotalHist(db); err != nil {
		return err
	}
	if err := l.writeVirusInfo(viruses); err != nil {
		return err
	}
	if err := l.writeVirusHist(db, viruses); err != nil {
		return err
	}
	if err := l.writeToolInfo(tools); err != nil {
		return err
	}
	if err := l.writeToolHist(db, tools); err != nil {
		return err
	}
	if err := l.writeTransmissions(db); err != nil {
		return err
	}
	if err := l.writeTransitions(db); err != nil {
		return err
	}
	if err := l.writeReproductive(db, viruses); err != nil {
		return err
	}
	return l.writeGeneration(db, viruses)
}

// Close is a no-op for CSVLogger; files are opened and closed per
// write via AppendToFile.
func (l *CSVLogger) Close() error { return nil }

// writeTotalHist writes "date,state,counts" rows.
func (l *CSVLogger) writeTotalHist(db *DataBase) error {
	var b bytes.Buffer
	for day, counts := range db.Counts() {
		for state, n := range counts {
			fmt.Fprintf(&b, "%d,%d,%d\n", day, state, n)
		}
	}
	return AppendToFile(l.totalHistPath, b.Bytes())
}

// writeVirusInfo writes "id,name" rows.
func (l *CSVLogger) writeVirusInfo(viruses []*VirusDef) error {
	var b bytes.Buffer
	for _, v := range viruses {
		fmt.Fprintf(&b, "%d,%s\n", v.ID(), v.Name())
	}
	return AppendToFile(l.virusInfoPath, b.Bytes())
}

// writeVirusHist writes "date,virus_id,state,counts" rows.
func (l *CSVLogger) writeVirusHist(db *DataBase, viruses []*VirusDef) error {
	var b bytes.Buffer
	for _, v := range viruses {
		for day, counts := range db.VirusCounts(v.ID()) {
			for state, n := range counts {
				fmt.Fprintf(&b, "%d,%d,%d,%d\n", day, v.ID(), state, n)
			}
		}
	}
	return AppendToFile(l.virusHistPath, b.Bytes())
}

// writeToolInfo writes "id,name" rows.
func (l *CSVLogger) writeToolInfo(tools []*ToolDef) error {
	var b bytes.Buffer
	for _, t := range tools {
		fmt.Fprintf(&b, "%d,%s\n", t.ID(), t.Name())
	}
	return AppendToFile(l.toolInfoPath, b.Bytes())
}

// writeToolHist writes "date,tool_id,state,counts" rows.
func (l *CSVLogger) writeToolHist(db *DataBase, tools []*ToolDef) error {
	var b bytes.Buffer
	for _, t := range tools {
		for day, counts := range db.ToolCounts(t.ID()) {
			for state, n := range counts {
				fmt.Fprintf(&b, "%d,%d,%d,%d\n", day, t.ID(), state, n)
			}
		}
	}
	return AppendToFile(l.toolHistPath, b.Bytes())
}

// writeTransmissions writes "date,source,target,virus_id,instance_uid"
// rows.
func (l *CSVLogger) writeTransmissions(db *DataBase) error {
	var b bytes.Buffer
	for _, t := range db.Transmissions() {
		fmt.Fprintf(&b, "%d,%d,%d,%d,%s\n", t.Day, t.Src, t.Dst, t.Virus, t.UID.String())
	}
	return AppendToFile(l.transPath, b.Bytes())
}

// writeTransitions writes "date,from,to,counts" rows.
func (l *CSVLogger) writeTransitions(db *DataBase) error {
	var b bytes.Buffer
	for day := 0; day < len(db.Counts()); day++ {
		for k, n := range db.Transitions(day) {
			fmt.Fprintf(&b, "%d,%d,%d,%d\n", day, k.from, k.to, n)
		}
	}
	return AppendToFile(l.transitionPath, b.Bytes())
}

// writeReproductive writes "virus_id,source,rt" rows, where source is
// the cohort-first-infection day the Rt value is reported for.
func (l *CSVLogger) writeReproductive(db *DataBase, viruses []*VirusDef) error {
	var b bytes.Buffer
	for _, v := range viruses {
		for day := 0; day < len(db.Counts()); day++ {
			if rt, ok := db.ReproductiveNumberOK(v.ID(), day); ok {
				fmt.Fprintf(&b, "%d,%d,%f\n", v.ID(), day, rt)
			}
		}
	}
	return AppendToFile(l.reproductivePath, b.Bytes())
}

// writeGeneration writes "virus_id,mean_generation_time" rows.
func (l *CSVLogger) writeGeneration(db *DataBase, viruses []*VirusDef) error {
	var b bytes.Buffer
	for _, v := range viruses {
		fmt.Fprintf(&b, "%d,%f\n", v.ID(), db.GenerationTime(v.ID()))
	}
	return AppendToFile(l.generationPath, b.Bytes())
}
