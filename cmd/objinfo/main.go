// objinfo parses OBJ files without a window and prints what the viewer
// would load.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/fmv/internal/logger"
	"github.com/Faultbox/fmv/pkg/formats"
	"github.com/Faultbox/fmv/pkg/mesh"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	limits   mesh.Limits
	obj      formats.OBJOptions
	warnings int
	quiet    bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("objinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	maxVertices := fs.Int("max-vertices", mesh.DefaultMaxVertices, "Maximum vertex positions per model")
	maxIndices := fs.Int("max-indices", mesh.DefaultMaxIndices, "Maximum face indices per model")
	warnings := fs.Int("warnings", 10, "Number of skipped lines to print per file")
	quiet := fs.Bool("quiet", false, "Hide the progress bar")
	level := fs.String("log", "warn", "Log level")
	fs.Usage = func() {
		fmt.Fprintln(stderr, `objinfo - inspect Wavefront OBJ files

Usage:
  objinfo [options] <file.obj>...

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	logger.InitWithWriter(*level, stderr)
	defer logger.Sync()

	opts := options{
		limits:   mesh.Limits{MaxVertices: *maxVertices, MaxIndices: *maxIndices},
		warnings: *warnings,
		quiet:    *quiet,
	}

	status := 0
	for _, path := range fs.Args() {
		if err := inspect(path, opts, stdout, stderr); err != nil {
			logger.Error("inspect failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			status = 1
		}
	}
	return status
}

func inspect(path string, opts options, stdout, stderr io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	obj := opts.obj
	if !opts.quiet {
		size := int64(-1)
		if st, err := f.Stat(); err == nil {
			size = st.Size()
		}
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("parse "+filepath.Base(path)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		obj.Progress = bar
	}

	a := mesh.NewArena(opts.limits)
	report, err := formats.ParseOBJ(f, a, obj)
	if err != nil {
		return err
	}
	printReport(stdout, path, a, report, opts.warnings)
	return nil
}

func printReport(w io.Writer, path string, a *mesh.Arena, r *formats.OBJReport, maxWarnings int) {
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  lines:      %d\n", r.Lines)
	fmt.Fprintf(w, "  vertices:   %d\n", r.Positions())
	fmt.Fprintf(w, "  normals:    %d\n", r.NormalCount/3)
	fmt.Fprintf(w, "  texcoords:  %d\n", r.TexCoordCount/2)
	fmt.Fprintf(w, "  triangles:  %d\n", r.Triangles())
	fmt.Fprintf(w, "  faces:      %s\n", r.FaceFormat)
	fmt.Fprintf(w, "  size:       %.2f MB\n", r.SizeMB)

	if b := mesh.ComputeBounds(a); b.Valid() {
		fmt.Fprintf(w, "  bounds:     (%g, %g, %g) - (%g, %g, %g)\n",
			b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
		fmt.Fprintf(w, "  extent:     %g x %g x %g\n", b.Extent()[0], b.Extent()[1], b.Extent()[2])
	} else {
		fmt.Fprintf(w, "  bounds:     empty\n")
	}

	if r.CapacityExceeded {
		fmt.Fprintf(w, "  truncated:  at line %d (limits %d vertices, %d indices)\n",
			r.CapacityLine, a.Limits().MaxVertices, a.Limits().MaxIndices)
	}
	if r.WarningCount > 0 {
		fmt.Fprintf(w, "  skipped:    %d lines\n", r.WarningCount)
		for i, warn := range r.Warnings {
			if i >= maxWarnings {
				fmt.Fprintf(w, "    ... %d more\n", r.WarningCount-i)
				break
			}
			fmt.Fprintf(w, "    %s\n", warn)
		}
	}
}
