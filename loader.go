package dicom

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/odincare/dicomancer/dicomlog"
)

// ImportOutcome is the result of importing one file.
type ImportOutcome struct {
	Path string
	// DataSet is nil when the file could not be parsed at all.
	DataSet *DataSet
	// Err is nil, a *PartialParseError (DataSet still usable) or a
	// file-level failure.
	Err error
	// Filtered is set when DataSet failed the Importer's filters and was
	// kept out of the hierarchy.
	Filtered bool
}

// Failed reports whether the file produced no DataSet.
func (o ImportOutcome) Failed() bool { return o.DataSet == nil }

// Reason is the short diagnostic shown next to the file, or "".
func (o ImportOutcome) Reason() string { return Reason(o.Err) }

// ImportFailure names a file that failed or only partially parsed.
type ImportFailure struct {
	Path   string
	Reason string
}

// Failures lists the outcomes that carry an error, in import order.
func Failures(outcomes []ImportOutcome) []ImportFailure {
	var failures []ImportFailure
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, ImportFailure{Path: o.Path, Reason: o.Reason()})
		}
	}
	return failures
}

// Importer parses a batch of files on a bounded worker pool and feeds the
// results into a Hierarchy in submission order.
type Importer struct {
	Hierarchy *Hierarchy
	Options   ReadOptions
	// Workers bounds concurrent parses. Zero means runtime.NumCPU().
	Workers int
	// ReadFile loads a file; os.ReadFile when nil.
	ReadFile func(path string) ([]byte, error)
	// Filters are matched in the workers, see Match. Data sets that do not
	// match stay out of the hierarchy but keep their outcome.
	Filters []*Element
}

// NewImporter returns an Importer inserting into h.
func NewImporter(h *Hierarchy, options ReadOptions, workers int) *Importer {
	return &Importer{Hierarchy: h, Options: options, Workers: workers}
}

type importJob struct {
	index int
	path  string
}

type importResult struct {
	index   int
	outcome ImportOutcome
}

// Import parses every path and inserts each DataSet, partial ones included,
// into the hierarchy. A failing file never stops its siblings. When ctx is
// cancelled, files not yet started are reported with ctx.Err().
func (im *Importer) Import(ctx context.Context, paths []string) []ImportOutcome {
	workers := im.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	readFile := im.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	jobs := make(chan importJob)
	results := make(chan importResult)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- importResult{index: job.index, outcome: im.parse(job.path, readFile)}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- importJob{index: i, path: p}:
			case <-ctx.Done():
				for j := i; j < len(paths); j++ {
					results <- importResult{index: j, outcome: ImportOutcome{Path: paths[j], Err: ctx.Err()}}
				}
				return
			}
		}
	}()
	// Results arrive in completion order; insert in submission order.
	outcomes := make([]ImportOutcome, len(paths))
	ready := make([]bool, len(paths))
	next := 0
	for received := 0; received < len(paths); received++ {
		r := <-results
		outcomes[r.index] = r.outcome
		ready[r.index] = true
		for next < len(paths) && ready[next] {
			if o := outcomes[next]; o.DataSet != nil && !o.Filtered && im.Hierarchy != nil {
				im.Hierarchy.Insert(o.DataSet, o.Path)
			}
			next++
		}
	}
	wg.Wait()
	return outcomes
}

func (im *Importer) parse(path string, readFile func(string) ([]byte, error)) ImportOutcome {
	data, err := readFile(path)
	if err != nil {
		dicomlog.Warn("dicom: cannot read file", dicomlog.Fields{"path": path, "error": err.Error()})
		return ImportOutcome{Path: path, Err: err}
	}
	ds, err := ReadDataSet(data, im.Options)
	if err != nil {
		dicomlog.Warn("dicom: import problem", dicomlog.Fields{"path": path, "reason": Reason(err)})
	} else {
		dicomlog.Event(dicomlog.LevelInfo, "dicom: imported", dicomlog.Fields{"path": path})
	}
	o := ImportOutcome{Path: path, DataSet: ds, Err: err}
	if ds != nil && len(im.Filters) > 0 {
		ok, merr := Match(ds, im.Filters)
		if merr != nil {
			dicomlog.Warn("dicom: match problem", dicomlog.Fields{"path": path, "error": merr.Error()})
		}
		o.Filtered = !ok
	}
	return o
}

// ListFiles returns the regular files under root in lexical order, skipping
// hidden entries. DICOM content is recognised by its marker, not by
// extension, so nothing else is filtered.
func ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
