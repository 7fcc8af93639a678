package download

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v27/github"
)

type fileServer struct {
	*httptest.Server
	hits map[string]*int32
}

// newFileServer serves the given path to content map and counts requests per
// path.
func newFileServer(t *testing.T, files map[string][]byte) *fileServer {
	t.Helper()
	s := &fileServer{hits: make(map[string]*int32)}
	for p := range files {
		s.hits[p] = new(int32)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(s.hits[r.URL.Path], 1)
		w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *fileServer) count(p string) int { return int(atomic.LoadInt32(s.hits[p])) }

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestDownloadVerifiesHash(t *testing.T) {
	content := []byte("#!/bin/sh\necho chromedriver\n")
	srv := newFileServer(t, map[string][]byte{"/chromedriver": content})
	dir := t.TempDir()

	f := File{url: srv.URL + "/chromedriver", Name: "chromedriver", hash: sha256Hex(content)}
	if err := Download(context.Background(), srv.Client(), f, dir); err != nil {
		t.Fatalf("Download() returned error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "chromedriver"))
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded %q, want %q", got, content)
	}

	if err := Download(context.Background(), srv.Client(), f, dir); err != nil {
		t.Fatalf("second Download() returned error: %v", err)
	}
	if n := srv.count("/chromedriver"); n != 1 {
		t.Errorf("file fetched %d times, want 1 when the hash matches", n)
	}

	f.hash = sha256Hex([]byte("something else"))
	if err := Download(context.Background(), srv.Client(), f, dir); err == nil || !strings.Contains(err.Error(), "hash") {
		t.Errorf("Download() with a wrong hash returned %v, want a hash error", err)
	}
}

func TestDownloadMD5(t *testing.T) {
	content := []byte("zip bytes")
	sum := md5.Sum(content)
	srv := newFileServer(t, map[string][]byte{"/f": content})

	f := File{url: srv.URL + "/f", Name: "f.bin", hash: hex.EncodeToString(sum[:]), hashType: "md5"}
	if err := Download(context.Background(), srv.Client(), f, t.TempDir()); err != nil {
		t.Errorf("Download() returned error: %v", err)
	}
}

func TestDownloadErrors(t *testing.T) {
	srv := newFileServer(t, nil)
	ctx := context.Background()
	dir := t.TempDir()

	if err := Download(ctx, srv.Client(), File{url: srv.URL + "/missing", Name: "missing"}, dir); err == nil {
		t.Errorf("Download() of a missing file returned nil error")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Errorf("a failed download left a file behind: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := Download(cancelled, srv.Client(), File{url: srv.URL + "/missing", Name: "x"}, dir); err == nil {
		t.Errorf("Download() with a cancelled context returned nil error")
	}
}

func TestDownloadRename(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/msedgedriver": []byte("bin")})
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "edge"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := File{url: srv.URL + "/msedgedriver", Name: "msedgedriver.bin", Rename: []string{"msedgedriver.bin", "edge"}}
	if err := Download(context.Background(), srv.Client(), f, dir); err != nil {
		t.Fatalf("Download() returned error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "edge"))
	if err != nil || string(got) != "bin" {
		t.Errorf("renamed file = %q, %v; want %q", got, err, "bin")
	}
}

func TestDownloadExtractsTarball(t *testing.T) {
	if _, err := exec.LookPath("tar"); err != nil {
		t.Skip("tar is not installed")
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	body := []byte("geckodriver")
	if err := tw.WriteHeader(&tar.Header{Typeflag: tar.TypeReg, Name: "geckodriver", Mode: 0o755, Size: int64(len(body))}); err != nil {
		t.Fatal(err)
	}
	tw.Write(body)
	tw.Close()
	zw.Close()

	srv := newFileServer(t, map[string][]byte{"/geckodriver.tar.gz": buf.Bytes()})
	dir := t.TempDir()
	f := File{url: srv.URL + "/geckodriver.tar.gz", Name: "geckodriver.tar.gz"}
	if err := Download(context.Background(), srv.Client(), f, dir); err != nil {
		t.Fatalf("Download() returned error: %v", err)
	}
	st, err := os.Stat(filepath.Join(dir, "geckodriver"))
	if err != nil {
		t.Fatalf("extracted binary missing: %v", err)
	}
	if st.Mode()&0o100 == 0 {
		t.Errorf("extracted binary mode = %v, want executable", st.Mode())
	}
}

func TestDownloadAll(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/a": []byte("a"), "/b": []byte("b")})
	dir := filepath.Join(t.TempDir(), "drivers")

	files := []File{
		{url: srv.URL + "/a", Name: "a"},
		{url: srv.URL + "/b", Name: "b"},
	}
	if err := DownloadAll(context.Background(), srv.Client(), files, dir); err != nil {
		t.Fatalf("DownloadAll() returned error: %v", err)
	}
	for _, name := range []string{"a", "b"} {
		if got, err := os.ReadFile(filepath.Join(dir, name)); err != nil || string(got) != name {
			t.Errorf("%s = %q, %v", name, got, err)
		}
	}

	files = append(files, File{url: srv.URL + "/c", Name: "c"})
	if err := DownloadAll(context.Background(), srv.Client(), files, dir); err == nil || !strings.Contains(err.Error(), "error handling c") {
		t.Errorf("DownloadAll() = %v, want an error naming c", err)
	}
}

func newGitHub(t *testing.T, h http.Handler) *github.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := github.NewClient(srv.Client())
	u, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	c.BaseURL = u
	return c
}

const geckodriverRelease = `{
  "tag_name": "v0.35.0",
  "assets": [
    {"name": "geckodriver-v0.35.0-linux64.tar.gz.asc", "browser_download_url": "https://example.com/linux64.tar.gz.asc"},
    {"name": "geckodriver-v0.35.0-macos.tar.gz", "browser_download_url": "https://example.com/macos.tar.gz"},
    {"name": "geckodriver-v0.35.0-linux64.tar.gz", "browser_download_url": "https://example.com/linux64.tar.gz"}
  ]
}`

func TestPlanFirefox(t *testing.T) {
	gh := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/mozilla/geckodriver/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, geckodriverRelease)
	}))

	tests := []struct {
		desc string
		opts Options
		want []string
	}{
		{
			desc: "driver only",
			opts: Options{Drivers: []string{"firefox"}, GitHub: gh},
			want: []string{"geckodriver.tar.gz https://example.com/linux64.tar.gz"},
		},
		{
			desc: "pinned browser",
			opts: Options{Drivers: []string{" Firefox "}, GitHub: gh, Browsers: true},
			want: []string{
				"geckodriver.tar.gz https://example.com/linux64.tar.gz",
				"firefox.tar.bz2 https://download-installer.cdn.mozilla.net/pub/firefox/releases/128.0/linux-x86_64/en-US/firefox-128.0.tar.bz2",
			},
		},
		{
			desc: "nightly browser",
			opts: Options{Drivers: []string{"firefox"}, GitHub: gh, Browsers: true, Latest: true},
			want: []string{
				"geckodriver.tar.gz https://example.com/linux64.tar.gz",
				"firefox-nightly.tar.bz2 https://download.mozilla.org/?product=firefox-nightly-latest-ssl&os=linux64&lang=en-US",
			},
		},
	}
	for _, test := range tests {
		files, err := Plan(context.Background(), test.opts)
		if err != nil {
			t.Errorf("%s: Plan() returned error: %v", test.desc, err)
			continue
		}
		var got []string
		for _, f := range files {
			got = append(got, f.Name+" "+f.URL())
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: Plan() mismatch (-want +got):\n%s", test.desc, diff)
		}
	}
}

func TestPlanGeckodriverMissing(t *testing.T) {
	gh := newGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tag_name": "v0.1.0", "assets": []}`)
	}))
	if _, err := Plan(context.Background(), Options{Drivers: []string{"firefox"}, GitHub: gh}); err == nil {
		t.Errorf("Plan() returned nil error for a release without assets")
	}
}

func TestPlanEdge(t *testing.T) {
	// "120.0.2210.91\r\n" in UTF-16LE with a byte order mark.
	version := []byte{0xFF, 0xFE}
	for _, r := range "120.0.2210.91\r\n" {
		version = append(version, byte(r), 0)
	}
	srv := newFileServer(t, map[string][]byte{"/LATEST_STABLE": version})

	files, err := Plan(context.Background(), Options{Drivers: []string{"edge"}, HTTPClient: srv.Client(), EdgeDriverURL: srv.URL})
	if err != nil {
		t.Fatalf("Plan() returned error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Plan() returned %d files, want 1", len(files))
	}
	if got, want := files[0].URL(), srv.URL+"/120.0.2210.91/edgedriver_linux64.zip"; got != want {
		t.Errorf("msedgedriver URL = %q, want %q", got, want)
	}

	empty := newFileServer(t, map[string][]byte{"/LATEST_STABLE": []byte("\n")})
	if _, err := Plan(context.Background(), Options{Drivers: []string{"edge"}, HTTPClient: empty.Client(), EdgeDriverURL: empty.URL}); err == nil {
		t.Errorf("Plan() returned nil error for an empty version file")
	}
}

func TestPlanUnknownBrowser(t *testing.T) {
	if _, err := Plan(context.Background(), Options{Drivers: []string{"safari"}}); err == nil {
		t.Errorf("Plan(safari) returned nil error")
	}
}

func TestDecodeVersion(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{in: []byte("121.0.2277.83\n"), want: "121.0.2277.83"},
		{in: []byte{0xFF, 0xFE, '1', 0, '2', 0, '.', 0, '0', 0}, want: "12.0"},
		{in: nil, want: ""},
	}
	for _, test := range tests {
		if got := decodeVersion(test.in); got != test.want {
			t.Errorf("decodeVersion(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestFilePath(t *testing.T) {
	f := File{Name: "chromedriver"}
	if got := f.Path(); got != "chromedriver" {
		t.Errorf("Path() = %q", got)
	}
	f.directory = "drivers"
	if got, want := f.Path(), filepath.Join("drivers", "chromedriver"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
