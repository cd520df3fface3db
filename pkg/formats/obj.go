// OBJ (Wavefront) text mesh parser.

package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/fmv/pkg/mesh"
)

// OBJ parsing defaults.
const (
	DefaultOBJLineBufferSize = 96
	DefaultOBJMaxWarnings    = 256

	minOBJLineBufferSize = 8
)

// ErrNilArena is returned when no target arena is supplied.
var ErrNilArena = errors.New("obj: nil mesh arena")

// FaceFormat is the corner layout of face lines. It is decided by the first
// face line of a file and stays fixed afterwards.
type FaceFormat int

// Face format states.
const (
	FaceFormatUndetermined FaceFormat = iota // no face line seen yet
	FaceFormatSlash                          // "f v/vt/vn v/vt/vn v/vt/vn"
	FaceFormatPlain                          // "f v v v"
)

// String returns a human-readable face format name.
func (f FaceFormat) String() string {
	switch f {
	case FaceFormatUndetermined:
		return "Undetermined"
	case FaceFormatSlash:
		return "v/vt/vn"
	case FaceFormatPlain:
		return "v"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Detect returns the format locked in by a face line. Once a format is
// determined it is returned unchanged for every later line.
func (f FaceFormat) Detect(corners string) FaceFormat {
	if f != FaceFormatUndetermined {
		return f
	}
	if strings.ContainsRune(corners, '/') {
		return FaceFormatSlash
	}
	return FaceFormatPlain
}

// OBJWarningKind classifies a recoverable per-line problem.
type OBJWarningKind int

// Warning kinds.
const (
	OBJWarnVertex       OBJWarningKind = iota // malformed "v" line
	OBJWarnNormal                             // malformed "vn" line
	OBJWarnTexCoord                           // malformed "vt" line
	OBJWarnFaceSyntax                         // face corners do not match the locked format
	OBJWarnFaceTopology                       // face is not a triangle
	OBJWarnFaceIndex                          // face references index 0 or an undeclared vertex
)

// String returns a short name for the warning kind.
func (k OBJWarningKind) String() string {
	switch k {
	case OBJWarnVertex:
		return "vertex"
	case OBJWarnNormal:
		return "normal"
	case OBJWarnTexCoord:
		return "texcoord"
	case OBJWarnFaceSyntax:
		return "face-syntax"
	case OBJWarnFaceTopology:
		return "face-topology"
	case OBJWarnFaceIndex:
		return "face-index"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// OBJWarning records one skipped line.
type OBJWarning struct {
	Line int
	Kind OBJWarningKind
	Text string
}

// String formats the warning for logs.
func (w OBJWarning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Text)
}

// OBJOptions controls parsing.
type OBJOptions struct {
	// LineBufferSize bounds a single physical read, including the terminator.
	// Longer lines are split across reads.
	LineBufferSize int
	// MaxWarnings caps how many warnings are kept; all are counted.
	MaxWarnings int
	// Progress, when set, receives every byte read from the source.
	Progress io.Writer
}

// OBJReport summarizes a parse.
type OBJReport struct {
	Lines        int
	FaceFormat   FaceFormat
	Warnings     []OBJWarning
	WarningCount int

	// CapacityExceeded is set when the arena filled up and parsing stopped
	// early. Everything parsed before CapacityLine is kept.
	CapacityExceeded bool
	CapacityLine     int

	VertexCount   int
	NormalCount   int
	TexCoordCount int
	IndexCount    int
	SizeMB        float64
}

// Positions returns the number of logical vertex positions parsed.
func (r *OBJReport) Positions() int { return r.VertexCount / 3 }

// Triangles returns the number of faces kept.
func (r *OBJReport) Triangles() int { return r.IndexCount / 3 }

// ParseOBJFile opens path and parses it into a. Failing to open the file is
// the only fatal condition besides read errors.
func ParseOBJFile(path string, a *mesh.Arena, opts OBJOptions) (*OBJReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening obj file: %w", err)
	}
	defer f.Close()

	return ParseOBJ(f, a, opts)
}

// ParseOBJ streams OBJ text from r into a, one bounded line at a time.
// Malformed lines are skipped and recorded in the report.
func ParseOBJ(r io.Reader, a *mesh.Arena, opts OBJOptions) (*OBJReport, error) {
	if a == nil {
		return nil, ErrNilArena
	}
	if opts.LineBufferSize <= 0 {
		opts.LineBufferSize = DefaultOBJLineBufferSize
	}
	if opts.LineBufferSize < minOBJLineBufferSize {
		opts.LineBufferSize = minOBJLineBufferSize
	}
	if opts.MaxWarnings <= 0 {
		opts.MaxWarnings = DefaultOBJMaxWarnings
	}
	if opts.Progress != nil {
		r = io.TeeReader(r, opts.Progress)
	}

	p := &objParser{
		arena:  a,
		opts:   opts,
		report: &OBJReport{},
		lines:  newLineReader(r, opts.LineBufferSize),
	}
	err := p.run()
	p.finish()
	if err != nil {
		return p.report, err
	}
	return p.report, nil
}

// objParser holds per-parse state.
type objParser struct {
	arena  *mesh.Arena
	opts   OBJOptions
	report *OBJReport
	lines  *lineReader
	format FaceFormat
}

func (p *objParser) run() error {
	for lineNum := 1; ; lineNum++ {
		raw, err := p.lines.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading obj line %d: %w", lineNum, err)
		}

		// A full arena only counts as truncation when more input follows.
		if p.arena.Full() {
			p.stopAtCapacity(lineNum)
			return nil
		}
		p.report.Lines = lineNum

		if err := p.parseLine(lineNum, strings.TrimRight(string(raw), "\r\n")); err != nil {
			if errors.Is(err, mesh.ErrCapacityExceeded) {
				p.stopAtCapacity(lineNum)
				return nil
			}
			return err
		}
	}
}

func (p *objParser) stopAtCapacity(lineNum int) {
	p.report.CapacityExceeded = true
	p.report.CapacityLine = lineNum
}

func (p *objParser) finish() {
	r := p.report
	r.FaceFormat = p.format
	r.VertexCount = p.arena.VertexCount()
	r.NormalCount = p.arena.NormalCount()
	r.TexCoordCount = p.arena.TexCoordCount()
	r.IndexCount = p.arena.IndexCount()
	r.SizeMB = mesh.ApproximateSizeMB(p.arena)
}

func (p *objParser) warn(line int, kind OBJWarningKind, format string, args ...any) {
	p.report.WarningCount++
	if len(p.report.Warnings) < p.opts.MaxWarnings {
		p.report.Warnings = append(p.report.Warnings, OBJWarning{
			Line: line,
			Kind: kind,
			Text: fmt.Sprintf(format, args...),
		})
	}
}

// parseLine dispatches one line. Only arena capacity errors are returned;
// everything else is recorded as a warning.
func (p *objParser) parseLine(lineNum int, line string) error {
	if len(line) < 2 {
		return nil
	}

	switch line[0] {
	case 'v':
		switch line[1] {
		case ' ', '\t':
			v, ok := parseFloats(line[2:], 3, 64)
			if !ok {
				p.warn(lineNum, OBJWarnVertex, "expected 3 numbers in %q", line)
				return nil
			}
			return p.arena.AppendVertex(v[0], v[1], v[2])
		case 'n':
			v, ok := parseFloats(line[2:], 3, 32)
			if !ok {
				p.warn(lineNum, OBJWarnNormal, "expected 3 numbers in %q", line)
				return nil
			}
			return p.arena.AppendNormal(float32(v[0]), float32(v[1]), float32(v[2]))
		case 't':
			v, ok := parseFloats(line[2:], 2, 32)
			if !ok {
				p.warn(lineNum, OBJWarnTexCoord, "expected 2 numbers in %q", line)
				return nil
			}
			return p.arena.AppendTexCoord(float32(v[0]), float32(v[1]))
		}
	case 'f':
		if line[1] == ' ' || line[1] == '\t' {
			return p.parseFace(lineNum, line[2:])
		}
	}
	return nil
}

func (p *objParser) parseFace(lineNum int, rest string) error {
	p.format = p.format.Detect(rest)

	corners := strings.Fields(rest)
	if len(corners) < 3 {
		p.warn(lineNum, OBJWarnFaceSyntax, "expected 3 corners, got %d", len(corners))
		return nil
	}
	if len(corners) > 3 {
		p.warn(lineNum, OBJWarnFaceTopology, "only triangles are supported, got %d corners", len(corners))
		return nil
	}

	var idx [3]uint64
	for i, c := range corners {
		v, ok := parseCorner(c, p.format)
		if !ok {
			p.warn(lineNum, OBJWarnFaceSyntax, "corner %q does not match %s format", c, p.format)
			return nil
		}
		idx[i] = v
	}

	positions := uint64(p.arena.Positions())
	for _, v := range idx {
		if v == 0 || v > positions {
			p.warn(lineNum, OBJWarnFaceIndex, "vertex index %d outside [1, %d]", v, positions)
			return nil
		}
	}

	return p.arena.AppendTriangle(uint32(idx[0]-1), uint32(idx[1]-1), uint32(idx[2]-1))
}

// parseCorner returns the 1-based position index of a face corner.
// Texture and normal indices are validated for syntax only.
func parseCorner(corner string, format FaceFormat) (uint64, bool) {
	if format != FaceFormatSlash {
		v, err := strconv.ParseUint(corner, 10, 32)
		return v, err == nil
	}

	parts := strings.Split(corner, "/")
	if len(parts) != 3 {
		return 0, false
	}
	var v uint64
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return 0, false
		}
		if i == 0 {
			v = n
		}
	}
	return v, true
}

// parseFloats parses the first n whitespace-separated fields of s.
// Extra fields are ignored. NaN and infinities are rejected.
func parseFloats(s string, n int, bitSize int) ([3]float64, bool) {
	var out [3]float64
	fields := strings.Fields(s)
	if len(fields) < n {
		return out, false
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], bitSize)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return out, false
		}
		out[i] = v
	}
	return out, true
}

// lineReader returns physical reads of at most size-1 bytes, stopping after
// a newline. A longer line is continued by the next read.
type lineReader struct {
	r   *bufio.Reader
	buf []byte
}

func newLineReader(r io.Reader, size int) *lineReader {
	return &lineReader{
		r:   bufio.NewReader(r),
		buf: make([]byte, 0, size),
	}
}

func (lr *lineReader) next() ([]byte, error) {
	lr.buf = lr.buf[:0]
	for len(lr.buf) < cap(lr.buf)-1 {
		c, err := lr.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(lr.buf) > 0 {
				return lr.buf, nil
			}
			return nil, err
		}
		lr.buf = append(lr.buf, c)
		if c == '\n' {
			break
		}
	}
	return lr.buf, nil
}
