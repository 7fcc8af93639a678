// Package download fetches the WebDriver binaries, and optionally the
// browsers, the suite drives. Files land in one directory where the e2e
// tests and hrmsuite look for them.
package download

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf16"

	"cloud.google.com/go/storage"
	"github.com/golang/glog"
	"github.com/google/go-github/v27/github"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const (
	// DefaultDir is where binaries are stored when no directory is given.
	DefaultDir = "drivers"

	// DefaultFirefoxVersion is the Firefox release fetched unless the nightly
	// is requested.
	//
	// Update this periodically.
	DefaultFirefoxVersion = "128.0"

	// DefaultEdgeDriverURL serves msedgedriver builds and the LATEST_STABLE
	// version file.
	DefaultEdgeDriverURL = "https://msedgedriver.microsoft.com"
)

// File describes how to download a file from the Web.
type File struct {
	url      string
	Name     string
	hash     string
	hashType string // default is sha256
	// Rename moves Rename[0] to Rename[1] after extraction, both relative to
	// the download directory.
	Rename []string
	// Browser is set for browser archives as opposed to drivers.
	Browser bool
	// The directory in which to store the file.
	directory string
}

// Path is where the file is stored.
func (f File) Path() string {
	if f.directory != "" {
		return filepath.Join(f.directory, f.Name)
	}
	return f.Name
}

// URL is where the file is downloaded from.
func (f File) URL() string { return f.url }

// Options selects what Plan and Fetch download.
type Options struct {
	// Dir defaults to DefaultDir.
	Dir string
	// Drivers lists browser families, "chrome", "edge" or "firefox", whose
	// driver is fetched.
	Drivers []string
	// Browsers also fetches a Chromium snapshot and Firefox for the chosen
	// families. Edge has no portable build.
	Browsers bool
	// Latest fetches Firefox nightly instead of DefaultFirefoxVersion.
	Latest bool
	// ChromiumBuild pins the Chromium snapshot. Empty means the newest one.
	ChromiumBuild string

	HTTPClient    *http.Client
	GitHub        *github.Client
	EdgeDriverURL string
}

func (o Options) dir() string {
	if o.Dir == "" {
		return DefaultDir
	}
	return o.Dir
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

func (o Options) github() *github.Client {
	if o.GitHub != nil {
		return o.GitHub
	}
	return github.NewClient(o.httpClient())
}

// Plan resolves the files to download for o. Versions are looked up online.
func Plan(ctx context.Context, o Options) ([]File, error) {
	var files []File
	for _, d := range o.Drivers {
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "chrome":
			fs, err := chromium(ctx, o)
			if err != nil {
				return nil, err
			}
			files = append(files, fs...)
		case "edge":
			f, err := edgeDriver(ctx, o)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
		case "firefox":
			f, err := latestGitHubRelease(ctx, o.github(), "mozilla", "geckodriver", `^geckodriver-.*-linux64\.tar\.gz$`, "geckodriver.tar.gz")
			if err != nil {
				return nil, fmt.Errorf("unable to find the latest geckodriver: %v", err)
			}
			files = append(files, f)
			if o.Browsers {
				files = append(files, firefox(o.Latest))
			}
		default:
			return nil, fmt.Errorf("unknown browser %q (want chrome, edge or firefox)", d)
		}
	}
	return files, nil
}

// Fetch resolves and downloads everything o asks for.
func Fetch(ctx context.Context, o Options) error {
	files, err := Plan(ctx, o)
	if err != nil {
		return err
	}
	return DownloadAll(ctx, o.httpClient(), files, o.dir())
}

// chromium returns the chromedriver of a Chromium snapshot and, when
// browsers are requested, the snapshot itself. Both come from the same build
// so their versions match.
func chromium(ctx context.Context, o Options) ([]File, error) {
	const (
		// Bucket URL: https://console.cloud.google.com/storage/browser/chromium-browser-snapshots
		storageBktName       = "chromium-browser-snapshots"
		prefixLinux64        = "Linux_x64"
		lastChangeFile       = "Linux_x64/LAST_CHANGE"
		chromeFilename       = "chrome-linux.zip"
		chromeDriverFilename = "chromedriver_linux64.zip"
	)
	gcsPath := fmt.Sprintf("gs://%s/", storageBktName)
	client, err := storage.NewClient(ctx, option.WithHTTPClient(o.httpClient()))
	if err != nil {
		return nil, fmt.Errorf("cannot create a storage client for downloading chromium: %v", err)
	}
	defer client.Close()

	bkt := client.Bucket(storageBktName)
	build := o.ChromiumBuild
	if build == "" {
		r, err := bkt.Object(lastChangeFile).NewReader(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot create a reader for %s%s file: %v", gcsPath, lastChangeFile, err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("cannot read from %s%s file: %v", gcsPath, lastChangeFile, err)
		}
		build = strings.TrimSpace(string(data))
	}
	glog.Infof("Using Chromium build %s", build)

	var files []File
	add := func(name string, f File) error {
		object := path.Join(prefixLinux64, build, name)
		attrs, err := bkt.Object(object).Attrs(ctx)
		if err != nil {
			return fmt.Errorf("cannot get %s%s attrs: %v", gcsPath, object, err)
		}
		f.url = attrs.MediaLink
		f.hash = hex.EncodeToString(attrs.MD5)
		f.hashType = "md5"
		files = append(files, f)
		return nil
	}
	if err := add(chromeDriverFilename, File{
		Name:   chromeDriverFilename,
		Rename: []string{"chromedriver_linux64/chromedriver", "chromedriver"},
	}); err != nil {
		return nil, err
	}
	if o.Browsers {
		if err := add(chromeFilename, File{Name: chromeFilename, Browser: true}); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// edgeDriver returns the msedgedriver matching the current stable Edge.
func edgeDriver(ctx context.Context, o Options) (File, error) {
	base := o.EdgeDriverURL
	if base == "" {
		base = DefaultEdgeDriverURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/LATEST_STABLE", nil)
	if err != nil {
		return File{}, err
	}
	resp, err := o.httpClient().Do(req)
	if err != nil {
		return File{}, fmt.Errorf("msedgedriver version: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("msedgedriver version: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return File{}, fmt.Errorf("msedgedriver version: %v", err)
	}
	version := decodeVersion(data)
	if version == "" {
		return File{}, fmt.Errorf("msedgedriver version: empty response from %s", req.URL)
	}
	glog.Infof("Using msedgedriver %s", version)
	return File{
		url:  base + "/" + url.PathEscape(version) + "/edgedriver_linux64.zip",
		Name: "edgedriver_linux64.zip",
	}, nil
}

// decodeVersion reads a version file, which the Edge CDN serves as UTF-16
// with a byte order mark.
func decodeVersion(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE {
		u := make([]uint16, 0, len(b)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])|uint16(b[i+1])<<8)
		}
		return strings.TrimSpace(string(utf16.Decode(u)))
	}
	return strings.TrimSpace(string(b))
}

// firefox returns either the nightly or DefaultFirefoxVersion.
func firefox(nightly bool) File {
	if nightly {
		return File{
			url:     "https://download.mozilla.org/?product=firefox-nightly-latest-ssl&os=linux64&lang=en-US",
			Name:    "firefox-nightly.tar.bz2",
			Browser: true,
		}
	}
	v := url.PathEscape(DefaultFirefoxVersion)
	return File{
		url:     "https://download-installer.cdn.mozilla.net/pub/firefox/releases/" + v + "/linux-x86_64/en-US/firefox-" + v + ".tar.bz2",
		Name:    "firefox.tar.bz2",
		Browser: true,
	}
}

// latestGitHubRelease returns the asset of the latest release of owner/repo
// whose name matches assetName, to be stored as localFileName.
func latestGitHubRelease(ctx context.Context, client *github.Client, owner, repo, assetName, localFileName string) (File, error) {
	assetNameRE, err := regexp.Compile(assetName)
	if err != nil {
		return File{}, fmt.Errorf("invalid asset name regular expression %q: %s", assetName, err)
	}
	rel, _, err := client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return File{}, err
	}
	for _, a := range rel.Assets {
		if !assetNameRE.MatchString(a.GetName()) {
			continue
		}
		u := a.GetBrowserDownloadURL()
		if u == "" {
			return File{}, fmt.Errorf("%s does not have a download URL", a.GetName())
		}
		glog.Infof("Using %s %s", repo, rel.GetTagName())
		return File{Name: localFileName, url: u}, nil
	}
	return File{}, fmt.Errorf("release for %s not found at https://github.com/%s/%s/releases", assetName, owner, repo)
}

// DownloadAll downloads files into directory in parallel.
func DownloadAll(ctx context.Context, client *http.Client, files []File, directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}
	wg, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		wg.Go(func() error {
			if err := Download(ctx, client, file, directory); err != nil {
				return fmt.Errorf("error handling %s: %v", file.Name, err)
			}
			return nil
		})
	}
	return wg.Wait()
}

// Download a file if it is not already present, extract it and apply its
// rename. If directory is the empty string, the current directory is used.
func Download(ctx context.Context, client *http.Client, file File, directory string) error {
	file.directory = directory

	if file.hash != "" && fileSameHash(file) {
		glog.Infof("Skipping file %q which has already been downloaded.", file.Name)
	} else {
		glog.Infof("Downloading %q from %q", file.Name, file.url)
		if err := downloadFile(ctx, client, file); err != nil {
			return err
		}
	}

	if err := unzipArchive(file); err != nil {
		return err
	}

	if rename := file.Rename; len(rename) == 2 {
		from := filepath.Join(file.directory, rename[0])
		to := filepath.Join(file.directory, rename[1])
		glog.Infof("Renaming %q to %q", from, to)
		os.RemoveAll(to) // Ignore error.
		if err := os.Rename(from, to); err != nil {
			glog.Warningf("Error renaming %q to %q: %v", from, to, err)
		}
	}
	return nil
}

func newHash(hashType string) hash.Hash {
	switch strings.ToLower(hashType) {
	case "md5":
		return md5.New()
	case "sha1":
		return sha1.New()
	default:
		return sha256.New()
	}
}

func downloadFile(ctx context.Context, client *http.Client, file File) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.url, nil)
	if err != nil {
		return fmt.Errorf("%s: %v", file.Name, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: error downloading %q: %s", file.Name, file.url, resp.Status)
	}

	f, err := os.Create(file.Path())
	if err != nil {
		return fmt.Errorf("error creating %q: %v", file.Path(), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing %q: %v", file.Path(), closeErr)
		}
	}()

	if file.hash == "" {
		if _, err := io.Copy(f, resp.Body); err != nil {
			return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.url, err)
		}
		return nil
	}
	h := newHash(file.hashType)
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.url, err)
	}
	if sum := hex.EncodeToString(h.Sum(nil)); sum != file.hash {
		return fmt.Errorf("%s: got %s hash %q, want %q", file.Name, file.hashType, sum, file.hash)
	}
	return nil
}

func fileSameHash(file File) bool {
	f, err := os.Open(file.Path())
	if err != nil {
		return false
	}
	defer f.Close()

	h := newHash(file.hashType)
	if _, err := io.Copy(h, f); err != nil {
		return false
	}

	sum := hex.EncodeToString(h.Sum(nil))
	if sum != file.hash {
		glog.Warningf("File %q: got hash %q, expect hash %q", file.Name, sum, file.hash)
		return false
	}
	return true
}

func unzipArchive(file File) error {
	var unzipCmd []string

	dir := "."
	if file.directory != "" {
		dir = file.directory
	}

	switch path.Ext(file.Name) {
	case ".zip":
		unzipCmd = []string{"unzip", "-d", dir, "-o", file.Path()}
	case ".gz":
		unzipCmd = []string{"tar", "-xzf", file.Path(), "-C", dir}
	case ".bz2":
		unzipCmd = []string{"tar", "-xjf", file.Path(), "-C", dir}
	default:
		return nil
	}

	glog.Infof("Unzipping %q", file.Path())
	if out, err := exec.Command(unzipCmd[0], unzipCmd[1:]...).CombinedOutput(); err != nil {
		return fmt.Errorf("error unzipping %q: %v: %s", file.Name, err, out)
	}
	return nil
}
