/*
Copyright The reg-publish-bitrise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package archive packs local files into a single zip archive and unpacks one
back into memory.

Archives produced by Pack are reproducible: entries are written in path order
with a fixed timestamp and mode, so the same set of paths and contents always
yields the same entries.
*/
package archive

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/internal/fileutil"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
	"github.com/novr/reg-publish-bitrise/pkg/files"
)

// ContentType is the MIME type of a packed archive.
const ContentType = "application/zip"

// Extension is appended to the artifact name to form the archive file name.
const Extension = ".zip"

// epoch is the earliest time a zip header can carry.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

var drivePathPattern = regexp.MustCompile(`^[a-zA-Z]:/`)

// emptyArchiveMagic starts an archive with no entries.
var emptyArchiveMagic = []byte("PK\x05\x06")

// Pack reads every entry from disk and returns the zip archive holding them,
// keyed by relative path.
func Pack(entries []files.LocalFile) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := PackTo(buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PackTo writes the zip archive for entries to out.
func PackTo(out io.Writer, entries []files.LocalFile) error {
	sorted := make([]files.LocalFile, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RelativePath < sorted[j].RelativePath })

	zw := zip.NewWriter(out)
	seen := make(map[string]bool, len(sorted))
	for _, f := range sorted {
		name, err := entryName(f.RelativePath)
		if err != nil {
			return err
		}
		if seen[name] {
			return errors.Errorf("duplicate archive entry %q", name)
		}
		seen[name] = true
		data, err := os.ReadFile(f.AbsolutePath)
		if err != nil {
			return errs.IO(err, "reading %s", f.AbsolutePath)
		}
		if err := writeToZip(zw, name, data); err != nil {
			return errors.Wrapf(err, "writing archive entry %s", name)
		}
	}
	return errors.Wrap(zw.Close(), "closing archive")
}

// writeToZip writes a single file to a zip archive.
func writeToZip(zw *zip.Writer, name string, body []byte) error {
	h := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: epoch,
	}
	h.SetMode(0644)
	w, err := zw.CreateHeader(h)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Unpack returns the contents of a zip archive keyed by entry path.
//
// Unpack performs path security checks on every entry and refuses archives
// that would place files outside of the restore root.
func Unpack(blob []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, errs.CorruptArchive(err, "reading archive")
	}

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := entryName(f.Name)
		if err != nil {
			return nil, errs.CorruptArchive(err, "reading archive")
		}
		if _, ok := out[name]; ok {
			return nil, errs.CorruptArchive(nil, "archive contains %q more than once", name)
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, errs.CorruptArchive(err, "reading archive entry %s", name)
		}
		out[name] = data
	}
	return out, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// entryName normalizes an entry path to the / delimiter and rejects names
// that could escape the directory they are restored into.
func entryName(name string) (string, error) {
	n := strings.ReplaceAll(name, "\\", "/")

	if path.IsAbs(n) {
		return "", errors.Errorf("archive illegally contains absolute path %q", name)
	}
	n = path.Clean(n)
	if n == "." || n == "" {
		return "", errors.Errorf("archive illegally contains an empty entry name %q", name)
	}
	if n == ".." || strings.HasPrefix(n, "../") {
		return "", errors.Errorf("archive illegally references parent directory in %q", name)
	}
	// It is possible to intermix UNIX and Windows style paths in such a way
	// that c:/foo survives the checks above.
	if drivePathPattern.MatchString(n) {
		return "", errors.Errorf("archive contains illegally named file %q", name)
	}
	return n, nil
}

// LoadFile unpacks the archive stored at name.
func LoadFile(name string) (map[string][]byte, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, errs.IO(err, "reading %s", name)
	}
	if fi.IsDir() {
		return nil, errs.IO(nil, "cannot load a directory: %s", name)
	}
	blob, err := os.ReadFile(name)
	if err != nil {
		return nil, errs.IO(err, "reading %s", name)
	}
	if err := ensureArchive(name, blob); err != nil {
		return nil, err
	}
	return Unpack(blob)
}

// ensureArchive returns an informative error if the bytes do not look like a
// zip archive, before the zip reader reports a less helpful one.
func ensureArchive(name string, blob []byte) error {
	if bytes.HasPrefix(blob, emptyArchiveMagic) {
		return nil
	}
	if contentType := http.DetectContentType(blob); contentType != ContentType {
		return errs.CorruptArchive(nil, "file '%s' does not appear to be a zip archive; got '%s'", name, contentType)
	}
	return nil
}

// WriteFile stores blob at name, replacing any existing file.
func WriteFile(name string, blob []byte) error {
	if err := fileutil.WriteFile(name, blob); err != nil {
		return errs.IO(err, "writing %s", name)
	}
	return nil
}
