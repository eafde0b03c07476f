package service

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/binary"
	"github.com/ZebulonRouseFrantzich/suiup/internal/catalog"
	"github.com/ZebulonRouseFrantzich/suiup/internal/paths"
	"github.com/ZebulonRouseFrantzich/suiup/internal/platform"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
	"github.com/ZebulonRouseFrantzich/suiup/internal/testutil"
	"github.com/ZebulonRouseFrantzich/suiup/internal/transaction"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

// fakeBuilder writes a placeholder executable where cargo would.
type fakeBuilder struct {
	calls int
	err   error
}

func (b *fakeBuilder) Build(ctx context.Context, req binary.BuildRequest) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	out := filepath.Join(req.Root, "bin", req.NightlyName())
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	return out, os.WriteFile(out, []byte(req.Name+" nightly "+req.Branch), 0o755)
}

// fixture is an orchestrator wired to a fake GitHub, a fake walrus bucket
// and a fake cargo, all over a fresh suiup layout.
type fixture struct {
	layout   paths.Layout
	orch     *Orchestrator
	builder  *fakeBuilder
	requests atomic.Int32
	walrus   atomic.Int32
	// suiReleases is served newest first; asset URLs are filled in per request.
	suiReleases []catalog.Release
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		layout:  testutil.SetupTestEnv(t),
		builder: &fakeBuilder{},
		suiReleases: []catalog.Release{
			suiRelease("testnet", "v1.40.1", "ubuntu-x86_64", "macos-arm64"),
			suiRelease("devnet", "v1.38.0", "ubuntu-x86_64"),
			suiRelease("testnet", "v1.39.3", "ubuntu-x86_64"),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/MystenLabs/sui/releases", func(w http.ResponseWriter, r *http.Request) {
		writeReleases(t, w, r, f.suiReleases)
	})
	mux.HandleFunc("/repos/MystenLabs/sui/releases/tags/", http.NotFound)
	mux.HandleFunc("/repos/MystenLabs/mvr/releases", func(w http.ResponseWriter, r *http.Request) {
		writeReleases(t, w, r, []catalog.Release{
			{TagName: "v0.0.5", Assets: []catalog.Asset{{Name: "mvr-ubuntu-x86_64"}, {Name: "mvr-macos-arm64"}}},
			{TagName: "v0.0.4", Assets: []catalog.Asset{{Name: "mvr-ubuntu-x86_64"}}},
		})
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		if strings.HasPrefix(name, "mvr-") {
			_, _ = w.Write([]byte("mvr " + path.Base(path.Dir(r.URL.Path))))
			return
		}
		v, _ := version.FromAssetName(name)
		_, _ = w.Write(suiArchive(t, v))
	})
	mux.HandleFunc("/walrus/", func(w http.ResponseWriter, r *http.Request) {
		f.walrus.Add(1)
		if path.Base(r.URL.Path) != "walrus-testnet-latest-ubuntu-x86_64" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("walrus testnet"))
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	f.orch = New(Options{
		Layout:        f.layout,
		Platform:      &platform.Info{OS: "linux", Arch: "amd64"},
		Catalog:       catalog.NewClient(catalog.WithBaseURL(server.URL)),
		Fetcher:       binary.NewDownloader(),
		Extractor:     binary.NewExtractor(),
		Builder:       f.builder,
		WalrusBaseURL: server.URL + "/walrus",
	})
	return f
}

func suiRelease(channel, ver string, platforms ...string) catalog.Release {
	rel := catalog.Release{TagName: channel + "-" + ver}
	for _, p := range platforms {
		rel.Assets = append(rel.Assets, catalog.Asset{Name: "sui-" + channel + "-" + ver + "-" + p + ".tgz"})
	}
	return rel
}

// writeReleases serves releases with download URLs pointing back at the server.
func writeReleases(t *testing.T, w http.ResponseWriter, r *http.Request, releases []catalog.Release) {
	out := make([]catalog.Release, len(releases))
	for i, rel := range releases {
		out[i] = rel
		out[i].Assets = nil
		for _, a := range rel.Assets {
			a.URL = "http://" + r.Host + "/download/" + rel.TagName + "/" + a.Name
			out[i].Assets = append(out[i].Assets, a)
		}
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		t.Errorf("encode releases: %v", err)
	}
}

// suiArchive builds a release tarball whose executables print their version.
func suiArchive(t *testing.T, ver string) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range []string{"sui", "sui-debug", "sui-tool"} {
		content := []byte(name + " " + ver)
		if err := tw.WriteHeader(&tar.Header{Name: "./" + name, Mode: 0o755, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
			t.Errorf("write tar header: %v", err)
		}
		if _, err := tw.Write(content); err != nil {
			t.Errorf("write tar entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Errorf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Errorf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func mustParse(t *testing.T, s string, opts spec.Options) spec.BinarySpec {
	t.Helper()
	parsed, err := spec.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", s, err)
	}
	parsed, err = parsed.Apply(opts)
	if err != nil {
		t.Fatalf("Apply(%+v) error = %v", opts, err)
	}
	return parsed
}

func (f *fixture) install(t *testing.T, s string, opts spec.Options) *InstallResult {
	t.Helper()
	res, err := f.orch.Install(context.Background(), InstallRequest{Spec: mustParse(t, s, opts)})
	if err != nil {
		t.Fatalf("Install(%q) error = %v", s, err)
	}
	return res
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(data)
}

func loadInstalled(t *testing.T, layout paths.Layout) []store.Record {
	t.Helper()
	installed, err := store.LoadInstalled(layout.InstalledFile())
	if err != nil {
		t.Fatalf("LoadInstalled() error = %v", err)
	}
	return installed.Records()
}

// wantKind fails unless err matches the sentinel of the given kind.
func wantKind(t *testing.T, err error, sentinel *apperr.Error) {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want %s error", err, sentinel.Kind)
	}
}

func wantNotExist(t *testing.T, p string) {
	t.Helper()
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (stat error %v)", p, err)
	}
}

func TestInstallRelease(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		debug    bool
		wantVer  string
		wantFile string
		content  string
	}{
		{name: "latest", spec: "sui@testnet", wantVer: "v1.40.1", wantFile: "sui-v1.40.1", content: "sui v1.40.1"},
		{name: "explicit_version", spec: "sui@testnet-1.39.3", wantVer: "v1.39.3", wantFile: "sui-v1.39.3", content: "sui v1.39.3"},
		{name: "debug", spec: "sui@testnet-v1.40.1", debug: true, wantVer: "v1.40.1", wantFile: "sui-debug-v1.40.1", content: "sui-debug v1.40.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res := f.install(t, tt.spec, spec.Options{Debug: tt.debug})

			if res.AlreadyInstalled {
				t.Error("fresh install reported as already installed")
			}
			if res.Record.Version != tt.wantVer || res.Record.Debug != tt.debug {
				t.Errorf("record = %+v, want version %s debug %v", res.Record, tt.wantVer, tt.debug)
			}
			if want := filepath.Join(f.layout.ChannelDir("testnet"), tt.wantFile); res.Record.Path != want {
				t.Errorf("path = %s, want %s", res.Record.Path, want)
			}
			if got := readFile(t, res.Record.Path); got != tt.content {
				t.Errorf("installed content = %q, want %q", got, tt.content)
			}
			if got := loadInstalled(t, f.layout); !reflect.DeepEqual(got, []store.Record{res.Record}) {
				t.Errorf("installed store = %+v", got)
			}
		})
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	f := newFixture(t)
	first := f.install(t, "sui@testnet-1.39.3", spec.Options{})
	if first.AlreadyInstalled {
		t.Fatal("first install reported as already installed")
	}

	before := f.requests.Load()
	second := f.install(t, "sui@testnet-v1.39.3", spec.Options{})

	if !second.AlreadyInstalled {
		t.Error("second install should be a no-op")
	}
	if second.Record != first.Record {
		t.Errorf("record = %+v, want %+v", second.Record, first.Record)
	}
	if got := f.requests.Load(); got != before {
		t.Errorf("an installed version touched the network: %d requests", got-before)
	}
	if n := len(loadInstalled(t, f.layout)); n != 1 {
		t.Errorf("installed store has %d records, want 1", n)
	}
}

func TestInstallMissingVersionSuggestsOtherChannels(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Install(context.Background(), InstallRequest{Spec: mustParse(t, "sui@testnet-1.38.0", spec.Options{})})

	wantKind(t, err, apperr.ErrNotFound)
	if err == nil || !strings.Contains(err.Error(), "devnet") {
		t.Errorf("error should name devnet: %v", err)
	}
	if hint := apperr.HintOf(err); !strings.Contains(hint, "sui@devnet-v1.38.0") {
		t.Errorf("hint = %q, want the devnet specifier", hint)
	}
	if n := len(loadInstalled(t, f.layout)); n != 0 {
		t.Errorf("failed install left %d records", n)
	}
}

func TestInstallAssetMissingForPlatform(t *testing.T) {
	f := newFixture(t)
	f.orch.platform = &platform.Info{OS: "windows", Arch: "amd64"}

	_, err := f.orch.Install(context.Background(), InstallRequest{Spec: mustParse(t, "sui@testnet", spec.Options{})})
	wantKind(t, err, apperr.ErrNotFound)
	if err == nil || !strings.Contains(err.Error(), "windows-x86_64") {
		t.Errorf("error should name the platform: %v", err)
	}
}

func TestInstallStandalone(t *testing.T) {
	f := newFixture(t)
	res := f.install(t, "walrus@testnet", spec.Options{})

	want := store.Record{
		Binary:  "walrus",
		Channel: "testnet",
		Version: version.Latest,
		Path:    filepath.Join(f.layout.ChannelDir("testnet"), "walrus-latest"),
	}
	if res.Record != want {
		t.Errorf("record = %+v, want %+v", res.Record, want)
	}
	if got := readFile(t, res.Record.Path); got != "walrus testnet" {
		t.Errorf("installed content = %q", got)
	}

	again := f.install(t, "walrus@testnet", spec.Options{})
	if !again.AlreadyInstalled {
		t.Error("second install should be a no-op")
	}
	if got := f.walrus.Load(); got != 1 {
		t.Errorf("walrus downloads = %d, want 1", got)
	}

	forced, err := f.orch.Install(context.Background(), InstallRequest{Spec: mustParse(t, "walrus@testnet", spec.Options{}), Force: true})
	if err != nil {
		t.Fatalf("forced Install() error = %v", err)
	}
	if forced.AlreadyInstalled {
		t.Error("forced install should download again")
	}
	if got := f.walrus.Load(); got != 2 {
		t.Errorf("walrus downloads = %d, want 2", got)
	}
	if n := len(loadInstalled(t, f.layout)); n != 1 {
		t.Errorf("installed store has %d records, want 1", n)
	}

	_, err = f.orch.Install(context.Background(), InstallRequest{Spec: mustParse(t, "walrus@devnet", spec.Options{})})
	wantKind(t, err, apperr.ErrNotFound)
}

func TestInstallFromOwnCatalog(t *testing.T) {
	f := newFixture(t)

	latest := f.install(t, "mvr", spec.Options{})
	if latest.Record.Channel != spec.Standalone || latest.Record.Version != "v0.0.5" {
		t.Errorf("record = %+v, want standalone v0.0.5", latest.Record)
	}
	if want := filepath.Join(f.layout.ChannelDir(spec.Standalone), "mvr-v0.0.5"); latest.Record.Path != want {
		t.Errorf("path = %s, want %s", latest.Record.Path, want)
	}
	if got := readFile(t, latest.Record.Path); got != "mvr v0.0.5" {
		t.Errorf("installed content = %q", got)
	}

	if pinned := f.install(t, "mvr@0.0.4", spec.Options{}); pinned.Record.Version != "v0.0.4" {
		t.Errorf("pinned version = %s, want v0.0.4", pinned.Record.Version)
	}

	_, err := f.orch.Install(context.Background(), InstallRequest{Spec: mustParse(t, "mvr@0.0.1", spec.Options{})})
	wantKind(t, err, apperr.ErrNotFound)
}

func TestInstallNightly(t *testing.T) {
	f := newFixture(t)
	s := mustParse(t, "walrus", spec.Options{Nightly: "main", Debug: true})
	wantPath := filepath.Join(f.layout.ChannelDir("main"), "bin", "walrus-debug-nightly")

	for i := 0; i < 2; i++ {
		res, err := f.orch.Install(context.Background(), InstallRequest{Spec: s})
		if err != nil {
			t.Fatalf("Install() #%d error = %v", i, err)
		}
		if res.Record.Channel != "main" || res.Record.Version != version.Nightly {
			t.Errorf("record = %+v, want main/%s", res.Record, version.Nightly)
		}
		if res.Record.Path != wantPath {
			t.Errorf("path = %s, want %s", res.Record.Path, wantPath)
		}
	}

	if f.builder.calls != 2 {
		t.Errorf("builder calls = %d, want 2 (nightly always rebuilds)", f.builder.calls)
	}
	if n := len(loadInstalled(t, f.layout)); n != 1 {
		t.Errorf("installed store has %d records, want 1", n)
	}
	if got := f.requests.Load(); got != 0 {
		t.Errorf("nightly build made %d catalog requests", got)
	}
}

func TestInstallNightlyToolchainMissing(t *testing.T) {
	f := newFixture(t)
	f.builder.err = apperr.ToolchainMissing("cargo", "install rustup")

	_, err := f.orch.Install(context.Background(), InstallRequest{Spec: mustParse(t, "sui", spec.Options{Nightly: "main"})})
	wantKind(t, err, apperr.ErrToolchainMissing)
	if n := len(loadInstalled(t, f.layout)); n != 0 {
		t.Errorf("failed build left %d records", n)
	}
}

func TestSetDefaultPromotesRequestedVersion(t *testing.T) {
	f := newFixture(t)
	f.install(t, "sui@testnet-1.39.3", spec.Options{})
	f.install(t, "sui@testnet-1.40.1", spec.Options{})

	res, err := f.orch.SetDefault(context.Background(), mustParse(t, "sui@testnet-1.39.3", spec.Options{}))
	if err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}

	if res.Path != f.orch.DefaultPath("sui") {
		t.Errorf("path = %s, want %s", res.Path, f.orch.DefaultPath("sui"))
	}
	if got := readFile(t, res.Path); got != "sui v1.39.3" {
		t.Errorf("default content = %q, want sui v1.39.3", got)
	}

	defaults, err := store.LoadDefaults(f.layout.DefaultFile())
	if err != nil {
		t.Fatal(err)
	}
	got, ok := defaults.Get("sui")
	if want := (store.Default{Channel: "testnet", Version: "v1.39.3"}); !ok || got != want {
		t.Errorf("default entry = %+v, %v; want %+v", got, ok, want)
	}

	info, err := os.Stat(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o755 {
		t.Errorf("default mode = %v, want 0755", perm)
	}

	interrupted, err := transaction.Interrupted(f.layout.JournalDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(interrupted) != 0 {
		t.Errorf("journal left %d unfinished promotions", len(interrupted))
	}
}

func TestSetDefaultWithoutVersionPicksHighest(t *testing.T) {
	f := newFixture(t)
	f.install(t, "sui@testnet-1.40.1", spec.Options{})
	f.install(t, "sui@testnet-1.39.3", spec.Options{})

	res, err := f.orch.SetDefault(context.Background(), mustParse(t, "sui@testnet", spec.Options{}))
	if err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	if res.Record.Version != "v1.40.1" {
		t.Errorf("promoted %s, want v1.40.1", res.Record.Version)
	}
	if got := readFile(t, res.Path); got != "sui v1.40.1" {
		t.Errorf("default content = %q", got)
	}
}

func TestSetDefaultNeverPromotesUnrecordedInstall(t *testing.T) {
	f := newFixture(t)

	// A file in the version store that the installed store does not know about.
	testutil.WriteFile(t, filepath.Join(f.layout.ChannelDir("testnet"), "sui-v1.39.3"), []byte("stray"), 0o755)

	for _, s := range []string{"sui@testnet-1.39.3", "sui@testnet"} {
		t.Run(s, func(t *testing.T) {
			_, err := f.orch.SetDefault(context.Background(), mustParse(t, s, spec.Options{}))
			wantKind(t, err, apperr.ErrNotFound)
			if hint := apperr.HintOf(err); !strings.Contains(hint, "suiup install") {
				t.Errorf("hint = %q, want an install suggestion", hint)
			}
		})
	}

	wantNotExist(t, f.orch.DefaultPath("sui"))
}

func TestSetDefaultMissingFile(t *testing.T) {
	f := newFixture(t)
	res := f.install(t, "sui@testnet-1.39.3", spec.Options{})
	if err := os.Remove(res.Record.Path); err != nil {
		t.Fatal(err)
	}

	_, err := f.orch.SetDefault(context.Background(), mustParse(t, "sui@testnet-1.39.3", spec.Options{}))
	wantKind(t, err, apperr.ErrNotFound)
}

func TestSetDefaultReportsInterruptedPromotion(t *testing.T) {
	f := newFixture(t)
	f.install(t, "sui@testnet-1.39.3", spec.Options{})

	stale := transaction.NewPromotion("sui", "testnet", "v1.40.1", false, "src", "dst")
	if err := stale.Advance(f.layout.JournalDir(), transaction.StatePlaced); err != nil {
		t.Fatal(err)
	}

	res, err := f.orch.SetDefault(context.Background(), mustParse(t, "sui@testnet", spec.Options{}))
	if err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	if len(res.Interrupted) != 1 || res.Interrupted[0].ID != stale.ID {
		t.Errorf("Interrupted = %+v, want the stale promotion %s", res.Interrupted, stale.ID)
	}

	left, err := transaction.Interrupted(f.layout.JournalDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("journal still holds %d entries", len(left))
	}
}

func TestCorruptInstalledStoreIsFatal(t *testing.T) {
	f := newFixture(t)
	corrupt := []byte(`{"binaries": [`)
	testutil.WriteFile(t, f.layout.InstalledFile(), corrupt, 0o644)
	ctx := context.Background()
	s := mustParse(t, "sui@testnet-1.39.3", spec.Options{})

	_, installErr := f.orch.Install(ctx, InstallRequest{Spec: s})
	_, defaultErr := f.orch.SetDefault(ctx, s)
	_, showErr := f.orch.Show()
	_, removeErr := f.orch.Remove(ctx, s.Binary)
	_, updateErr := f.orch.Update(ctx, UpdateRequest{Spec: mustParse(t, "sui", spec.Options{})})

	for name, err := range map[string]error{
		"install": installErr, "default": defaultErr, "show": showErr, "remove": removeErr, "update": updateErr,
	} {
		if !errors.Is(err, apperr.ErrIntegrity) {
			t.Errorf("%s: error = %v, want integrity error", name, err)
		}
	}
	if got := readFile(t, f.layout.InstalledFile()); got != string(corrupt) {
		t.Errorf("store was reset to %q", got)
	}
	if got := f.requests.Load(); got != 0 {
		t.Errorf("corrupt store still made %d requests", got)
	}
}

func TestSwitch(t *testing.T) {
	f := newFixture(t)
	f.install(t, "sui@testnet-1.39.3", spec.Options{})
	f.install(t, "sui@testnet-1.40.1", spec.Options{Debug: true})
	f.install(t, "sui", spec.Options{Nightly: "main"})
	sui, _ := spec.Lookup("sui")

	tests := []struct {
		channel string
		want    store.Key
	}{
		{"testnet", store.Key{Binary: "sui", Channel: "testnet", Version: "v1.39.3"}},
		{"main", store.Key{Binary: "sui", Channel: "main", Version: version.Nightly}},
	}
	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			res, err := f.orch.Switch(context.Background(), sui, tt.channel)
			if err != nil {
				t.Fatalf("Switch() error = %v", err)
			}
			if got := res.Record.Key(); got != tt.want {
				t.Errorf("switched to %+v, want %+v", got, tt.want)
			}
		})
	}

	_, err := f.orch.Switch(context.Background(), sui, "mainnet")
	wantKind(t, err, apperr.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	f.install(t, "sui@testnet-1.39.3", spec.Options{})

	var asked []store.Record
	req := UpdateRequest{
		Spec: mustParse(t, "sui", spec.Options{}),
		Confirm: func(r store.Record) (bool, error) {
			asked = append(asked, r)
			return true, nil
		},
	}

	res, err := f.orch.Update(context.Background(), req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(res.Installed) != 1 || res.Installed[0].Version != "v1.40.1" {
		t.Fatalf("Installed = %+v, want v1.40.1", res.Installed)
	}
	if len(res.Promoted) != 1 {
		t.Fatalf("Promoted = %+v, want one promotion", res.Promoted)
	}
	if got := readFile(t, res.Promoted[0].Path); got != "sui v1.40.1" {
		t.Errorf("default content = %q", got)
	}
	if len(asked) != 1 {
		t.Errorf("confirm asked %d times, want 1", len(asked))
	}

	res, err = f.orch.Update(context.Background(), req)
	if err != nil {
		t.Fatalf("second Update() error = %v", err)
	}
	if len(res.Installed) != 0 {
		t.Errorf("up-to-date channel reinstalled: %+v", res.Installed)
	}
	if len(res.Current) != 1 || res.Current[0].Version != "v1.40.1" {
		t.Errorf("Current = %+v, want v1.40.1", res.Current)
	}
	if len(asked) != 1 {
		t.Errorf("confirm asked again for an up-to-date channel")
	}
}

func TestUpdateDeclinedDoesNotPromote(t *testing.T) {
	f := newFixture(t)
	f.install(t, "walrus@testnet", spec.Options{})

	res, err := f.orch.Update(context.Background(), UpdateRequest{
		Spec:    mustParse(t, "walrus", spec.Options{}),
		Confirm: func(store.Record) (bool, error) { return false, nil },
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(res.Installed) != 1 {
		t.Errorf("Installed = %+v; standalone binaries are always pulled fresh", res.Installed)
	}
	if len(res.Promoted) != 0 {
		t.Errorf("declined update promoted %+v", res.Promoted)
	}
	if got := f.walrus.Load(); got != 2 {
		t.Errorf("walrus downloads = %d, want 2", got)
	}

	wantNotExist(t, f.orch.DefaultPath("walrus"))
}

func TestUpdateErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Update(context.Background(), UpdateRequest{Spec: mustParse(t, "sui@1.40.1", spec.Options{})})
	wantKind(t, err, apperr.ErrUserInput)

	_, err = f.orch.Update(context.Background(), UpdateRequest{Spec: mustParse(t, "mvr", spec.Options{})})
	wantKind(t, err, apperr.ErrNotFound)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	f.install(t, "sui@testnet-1.39.3", spec.Options{})
	gone := f.install(t, "sui@testnet-1.40.1", spec.Options{})
	kept := f.install(t, "walrus@testnet", spec.Options{})
	if _, err := f.orch.SetDefault(context.Background(), mustParse(t, "sui@testnet", spec.Options{})); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(gone.Record.Path); err != nil {
		t.Fatal(err)
	}

	sui, _ := spec.Lookup("sui")
	res, err := f.orch.Remove(context.Background(), sui)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if len(res.Removed) != 2 {
		t.Errorf("Removed %d records, want 2", len(res.Removed))
	}
	if want := []string{gone.Record.Path}; !slices.Equal(res.Missing, want) {
		t.Errorf("Missing = %v, want %v", res.Missing, want)
	}
	if !res.DefaultRemoved {
		t.Error("default sui should have been removed")
	}
	if got := loadInstalled(t, f.layout); !reflect.DeepEqual(got, []store.Record{kept.Record}) {
		t.Errorf("installed store = %+v, want only walrus", got)
	}

	entries, err := f.orch.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("defaults left behind: %+v", entries)
	}

	_, err = f.orch.Remove(context.Background(), sui)
	wantKind(t, err, apperr.ErrNotFound)
}

func TestShow(t *testing.T) {
	f := newFixture(t)
	f.install(t, "sui@testnet-1.40.1", spec.Options{})
	f.install(t, "sui@testnet-1.39.3", spec.Options{})
	f.install(t, "mvr", spec.Options{})
	if _, err := f.orch.SetDefault(context.Background(), mustParse(t, "mvr", spec.Options{})); err != nil {
		t.Fatal(err)
	}

	status, err := f.orch.Show()
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	var order []string
	for _, r := range status.Installed {
		order = append(order, r.Binary+"-"+r.Version)
	}
	if want := []string{"mvr-v0.0.5", "sui-v1.39.3", "sui-v1.40.1"}; !slices.Equal(order, want) {
		t.Errorf("installed order = %v, want %v", order, want)
	}

	if len(status.Defaults) != 1 || status.Defaults[0].Name != "mvr" || !status.Defaults[0].Present {
		t.Errorf("Defaults = %+v, want mvr present", status.Defaults)
	}
	if f.orch.Which() != f.layout.DefaultBinDir {
		t.Errorf("Which() = %s, want %s", f.orch.Which(), f.layout.DefaultBinDir)
	}
}
