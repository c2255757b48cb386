// Command dicomancer inspects DICOM files: it prints the patient/study/series
// tree, the metadata table of every file and exports a PNG preview of the
// first frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	dicom "github.com/odincare/dicomancer"
	"github.com/odincare/dicomancer/dicomimage"
	"github.com/odincare/dicomancer/dicomlog"
	"github.com/sirupsen/logrus"
)

var (
	printTree     = flag.Bool("tree", true, "Print the patient/study/series/instance tree")
	printMetadata = flag.Bool("metadata", false, "Print the metadata table of every file")
	previewDir    = flag.String("preview", "", "Write a PNG preview of each instance into this directory")
	fit           = flag.Int("fit", 0, "Scale previews to fit an NxN box; 0 keeps the source size")
	label         = flag.Bool("label", false, "Burn the instance label into previews")
	window        = flag.String("window", "", "Override the VOI window as center,width")
	noWindow      = flag.Bool("no-window", false, "Ignore the window stored in the file and use the full range")
	workers       = flag.Int("workers", 0, "Number of files parsed concurrently; 0 means one per CPU")
	dir           = flag.String("dir", "", "Import every file under this directory")
	debug         = flag.Bool("debug", false, "Log decode milestones and dump frame geometry")
	matches       filterList
)

// filterList collects repeated -match flags.
type filterList []string

func (f *filterList) String() string { return strings.Join(*f, ",") }

func (f *filterList) Set(s string) error {
	*f = append(*f, s)
	return nil
}

func main() {
	flag.Var(&matches, "match", "Keep files whose attribute matches, e.g. PatientName=Doe* (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n%s [flags] <dicom file>...\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	dicomlog.ConfigureFromEnv()
	if *debug {
		dicomlog.SetLevel(dicomlog.LevelDebug)
	}

	paths := flag.Args()
	if *dir != "" {
		files, err := dicom.ListFiles(*dir)
		if err != nil {
			logrus.Fatalf("dicomancer: %v", err)
		}
		paths = append(paths, files...)
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	var filters []*dicom.Element
	for _, m := range matches {
		f, err := dicom.ParseFilter(m)
		if err != nil {
			logrus.Fatalf("dicomancer: -match %q: %v", m, err)
		}
		filters = append(filters, f)
	}
	opts, err := renderOptions()
	if err != nil {
		logrus.Fatalf("dicomancer: -window: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := dicom.NewHierarchy()
	importer := dicom.NewImporter(h, dicom.ReadOptions{}, *workers)
	importer.Filters = filters
	outcomes := importer.Import(ctx, paths)

	printFiles(outcomes)
	if *printTree {
		printHierarchy(h)
	}
	if *printMetadata {
		h.Walk(func(n *dicom.Node, _ int) bool {
			if n.Level == dicom.InstanceLevel {
				printRows(n)
			}
			return true
		})
	}
	if *previewDir != "" {
		if err := os.MkdirAll(*previewDir, 0o755); err != nil {
			logrus.Fatalf("dicomancer: %v", err)
		}
		h.Walk(func(n *dicom.Node, _ int) bool {
			if n.Level == dicom.InstanceLevel {
				exportPreview(n, opts)
			}
			return true
		})
	}
}

func renderOptions() (dicomimage.RenderOptions, error) {
	opts := dicomimage.RenderOptions{IgnoreFileWindow: *noWindow}
	if *window == "" {
		return opts, nil
	}
	parts := strings.Split(*window, ",")
	if len(parts) != 2 {
		return opts, fmt.Errorf("want center,width, got %q", *window)
	}
	center, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return opts, err
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return opts, err
	}
	if width < 1 {
		return opts, fmt.Errorf("width %v < 1", width)
	}
	opts.Window = &dicomimage.Window{Center: center, Width: width}
	return opts, nil
}

// printFiles lists every input in import order with its diagnostic, if any.
func printFiles(outcomes []dicom.ImportOutcome) {
	for _, o := range outcomes {
		if reason := o.Reason(); reason != "" {
			fmt.Printf("%s\t%s\n", o.Path, reason)
			continue
		}
		fmt.Println(o.Path)
	}
}

func printHierarchy(h *dicom.Hierarchy) {
	h.Walk(func(n *dicom.Node, depth int) bool {
		line := strings.Repeat("  ", depth) + n.Label
		if n.Source != "" {
			line += "  [" + n.Source + "]"
		}
		fmt.Println(line)
		return true
	})
}

func printRows(n *dicom.Node) {
	fmt.Printf("\n# %s\n", n.Source)
	for _, row := range dicom.MetadataRows(n.DataSet) {
		value := row.Value
		if row.Warning != "" {
			value += "  (" + row.Warning + ")"
		}
		fmt.Printf("%s%s\t%s\t%s\t%s\n", strings.Repeat("  ", row.Depth), row.Tag, row.Alias, row.VR, value)
	}
}

func exportPreview(n *dicom.Node, opts dicomimage.RenderOptions) {
	log := logrus.WithField("path", n.Source)
	frame, err := dicomimage.DecodeFirstFrame(n.DataSet)
	if err != nil {
		log.Warnf("dicomancer: preview: %s", dicom.Reason(err))
		return
	}
	if *debug {
		spew.Fdump(os.Stderr, frame.Geometry, opts)
	}
	raster, err := dicomimage.Render(frame, opts)
	if err != nil {
		log.Warnf("dicomancer: preview: %s", dicom.Reason(err))
		return
	}
	caption := ""
	if *label {
		caption = n.Label
	}
	path, err := writePreview(*previewDir, n, raster, *fit, caption)
	if err != nil {
		log.Errorf("dicomancer: preview: %v", err)
		return
	}
	log.Infof("dicomancer: wrote %s", path)
}
