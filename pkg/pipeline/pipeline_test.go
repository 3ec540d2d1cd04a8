package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/drainflow/pkg/cache"
	"github.com/matzehuels/drainflow/pkg/drainage"
	"github.com/matzehuels/drainflow/pkg/errors"
	"github.com/matzehuels/drainflow/pkg/gridio"
	"github.com/matzehuels/drainflow/pkg/observability"
)

const (
	planeDEM = `ncols 3
nrows 3
xllcorner 0
yllcorner 0
cellsize 1
NODATA_value -9999
8 7 6
7 6 5
6 5 4
`
	planeFlow = `ncols 3
nrows 3
xllcorner 0
yllcorner 0
cellsize 1
NODATA_value -9999
8 8 8
8 8 8
8 8 8
`
)

func writeInputs(t *testing.T) (dem, flow string) {
	t.Helper()
	dir := t.TempDir()
	dem = filepath.Join(dir, "dem.asc")
	flow = filepath.Join(dir, "flow.asc")
	if err := os.WriteFile(dem, []byte(planeDEM), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(flow, []byte(planeFlow), 0o644); err != nil {
		t.Fatal(err)
	}
	return dem, flow
}

func lambda(v float64) *float64 { return &v }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"asc", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"ASC", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" asc, SVG,,asc ")
	want := []string{"asc", "svg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFormats = %v, want %v", got, want)
	}
	if ParseFormats("") != nil {
		t.Error("empty list should parse to nil")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Elevation: "dem.asc", OldDirection: "flow.asc"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Metric != DefaultMetric || opts.LambdaValue() != DefaultLambda {
		t.Errorf("defaults not applied: %s", opts.String())
	}
	if !reflect.DeepEqual(opts.Formats, []string{FormatASCII}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no elevation", Options{OldDirection: "f.asc"}, errors.ErrCodeInvalidInput},
		{"no old direction", Options{Elevation: "d.asc"}, errors.ErrCodeInvalidInput},
		{"bad lambda", Options{Elevation: "d.asc", OldDirection: "f.asc", Lambda: lambda(1.5)}, errors.ErrCodeInvalidLambda},
		{"bad metric", Options{Elevation: "d.asc", OldDirection: "f.asc", Metric: "steepest"}, errors.ErrCodeInvalidMetric},
		{"missing network", Options{Elevation: "d.asc", OldDirection: "f.asc", FixedNetwork: true}, errors.ErrCodeMissingNetwork},
		{"bad cell size", Options{Elevation: "d.asc", OldDirection: "f.asc", CellSizeX: -1}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Elevation: "d.asc", OldDirection: "f.asc", Formats: []string{"png"}}, errors.ErrCodeInvalidFormat},
		{"bad path", Options{Elevation: "d.asc\x00", OldDirection: "f.asc"}, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	opts, err := ParseConfig([]byte(`
elevation     = "dem.asc"
old_direction = "flow.asc"
metric        = "angular"
lambda        = 0.5
formats       = ["asc", "dot"]
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if opts.Metric != "angular" || opts.LambdaValue() != 0.5 {
		t.Errorf("opts = %s", opts.String())
	}
	if !reflect.DeepEqual(opts.Formats, []string{"asc", "dot"}) {
		t.Errorf("Formats = %v", opts.Formats)
	}

	if _, err := ParseConfig([]byte(`lamda = 0.5`)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown key: err = %v", err)
	}
	if _, err := ParseConfig([]byte(`lambda = `)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("broken toml: err = %v", err)
	}
}

func TestLoadConfigResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	body := "elevation = \"dem.asc\"\nold_direction = \"/data/flow.asc\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.Elevation != filepath.Join(dir, "dem.asc") {
		t.Errorf("Elevation = %q", opts.Elevation)
	}
	if opts.OldDirection != "/data/flow.asc" {
		t.Errorf("OldDirection = %q", opts.OldDirection)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestMerge(t *testing.T) {
	file := Options{Elevation: "a.asc", OldDirection: "b.asc", Metric: "angular", Lambda: lambda(0.2), Verify: true}
	flags := Options{Lambda: lambda(0.8), Formats: []string{"svg"}}
	got := file.Merge(flags)
	if got.Elevation != "a.asc" || got.Metric != "angular" || !got.Verify {
		t.Errorf("file values lost: %+v", got)
	}
	if got.LambdaValue() != 0.8 || !reflect.DeepEqual(got.Formats, []string{"svg"}) {
		t.Errorf("flag values not applied: %+v", got)
	}
}

func TestExecute(t *testing.T) {
	dem, flow := writeInputs(t)
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	res, err := runner.Execute(context.Background(), Options{
		Elevation:    dem,
		OldDirection: flow,
		Metric:       "angular",
		Lambda:       lambda(0),
		Formats:      []string{"asc", "json", "dot"},
		Verify:       true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" || res.InputHash == "" {
		t.Error("RunID and InputHash should be set")
	}

	s := res.Summary
	if s.Eligible != 9 || s.Resolved != 9 || s.Unresolved != 0 {
		t.Errorf("counts = %d/%d/%d, want 9/9/0", s.Eligible, s.Resolved, s.Unresolved)
	}
	if !s.HasOutlet || s.Outlet != (drainage.Cell{Row: 2, Col: 2}) || s.OutletArea != 9 {
		t.Errorf("outlet = %v %s area %g", s.HasOutlet, s.Outlet, s.OutletArea)
	}

	for _, name := range []string{"direction.asc", "area.asc", "direction.json", "area.json", "network.dot"} {
		if len(res.Artifacts[name]) == 0 {
			t.Errorf("missing artifact %s", name)
		}
	}

	rs, err := gridio.ReadASCII(bytes.NewReader(res.Artifacts["direction.asc"]))
	if err != nil {
		t.Fatalf("read direction.asc: %v", err)
	}
	want := []float64{8, 8, 7, 8, 8, 7, 1, 1, 10}
	if !reflect.DeepEqual(rs.Grid.Data(), want) {
		t.Errorf("directions = %v, want %v", rs.Grid.Data(), want)
	}
	if !strings.Contains(string(res.Artifacts["network.dot"]), "digraph Drainage") {
		t.Error("network.dot should hold a DOT digraph")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	dem, flow := writeInputs(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{Elevation: dem, OldDirection: flow, Formats: []string{"asc"}}
	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheInfo.ResultHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.CacheInfo.ResultHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !reflect.DeepEqual(first.Summary, second.Summary) {
		t.Errorf("cached summary differs:\n%+v\n%+v", first.Summary, second.Summary)
	}
	if !bytes.Equal(first.Artifacts["area.asc"], second.Artifacts["area.asc"]) {
		t.Error("cached artifact differs")
	}
	if first.RunID == second.RunID {
		t.Error("each run should get its own id")
	}

	opts.Lambda = lambda(0.25)
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.CacheInfo.ResultHit {
		t.Error("a changed lambda must not hit the cache")
	}

	opts.Refresh = true
	fourth, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if fourth.CacheInfo.ResultHit {
		t.Error("Refresh should bypass the result cache")
	}
}

func TestExecuteErrors(t *testing.T) {
	dem, flow := writeInputs(t)
	runner := NewRunner(nil, nil, nil)

	_, err := runner.Execute(context.Background(), Options{Elevation: dem + ".missing.asc", OldDirection: flow})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}

	_, err = runner.Execute(context.Background(), Options{Elevation: dem, OldDirection: flow, Network: flow, FixedNetwork: true, Metric: "angular"})
	if !errors.Is(err, errors.ErrCodeInvalidMetric) {
		t.Errorf("angular fixed network: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Execute(ctx, Options{Elevation: dem, OldDirection: flow}); err == nil {
		t.Error("cancelled context should fail the run")
	}
}

func TestExecuteFixedNetwork(t *testing.T) {
	dem, flow := writeInputs(t)
	net := filepath.Join(filepath.Dir(dem), "net.json")
	// Channel along the bottom row.
	body := `{"rows":3,"cols":3,"nodata":-9999,"values":[[-9999,-9999,-9999],[-9999,-9999,-9999],[1,1,1]]}`
	if err := os.WriteFile(net, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Elevation:    dem,
		OldDirection: flow,
		Network:      net,
		FixedNetwork: true,
		Verify:       true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Summary.Unresolved != 0 {
		t.Errorf("Unresolved = %d, faults %v", res.Summary.Unresolved, res.Summary.Faults)
	}
}

func TestExecuteCallsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)

	dem, flow := writeInputs(t)
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Elevation: dem, OldDirection: flow}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"load", "load", "resolve", "render"}
	if !reflect.DeepEqual(hooks.events, want) {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recordingHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
	h.record("load")
}

func (h *recordingHooks) OnResolveComplete(context.Context, int, int, time.Duration, error) {
	h.record("resolve")
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render")
}
