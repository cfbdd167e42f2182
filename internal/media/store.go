package media

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	applog "funkoshop/internal/log"
	"funkoshop/internal/metrics"
)

const defaultExt = ".webp"

const chunkSize = 32 << 10

// Upload is one uploaded file. A nil Upload means the client sent nothing for
// that slot.
type Upload interface {
	Filename() string
	Open() (io.ReadCloser, error)
}

type fileHeaderUpload struct{ fh *multipart.FileHeader }

func (u fileHeaderUpload) Filename() string { return u.fh.Filename }

func (u fileHeaderUpload) Open() (io.ReadCloser, error) { return u.fh.Open() }

// FromFileHeader adapts a multipart part; nil in, nil out.
func FromFileHeader(fh *multipart.FileHeader) Upload {
	if fh == nil {
		return nil
	}
	return fileHeaderUpload{fh: fh}
}

// ProductImages holds the relative paths that were actually written. Empty
// strings mark slots that were absent or failed.
type ProductImages struct {
	ImageFront       string
	ImageBack        string
	AdditionalImages []string
}

type Store struct {
	Root string
}

func NewStore(root string) *Store { return &Store{Root: root} }

var errOutsideRoot = errors.New("destination escapes the media root")

// Store writes r to dir/filename, creating dir as needed. Destinations outside
// Root are refused. Failures are logged and reported as false; they never
// surface as errors to the caller.
func (s *Store) Store(r io.Reader, dir, filename string) bool {
	dest := filepath.Join(dir, filename)
	err := s.within(dest)
	if err == nil {
		err = writeFile(r, dir, dest)
	}
	if err != nil {
		applog.Error(nil, "media.write.fail", err, map[string]any{"path": dest})
		metrics.MediaWrites.WithLabelValues("fail").Inc()
		return false
	}
	metrics.MediaWrites.WithLabelValues("ok").Inc()
	return true
}

func (s *Store) within(dest string) error {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errOutsideRoot
	}
	return nil
}

// pathPart sanitizes name for use as one path component. Names that reduce to
// dots only ("." or "..") yield "".
func pathPart(name string) string {
	p := Sanitize(name)
	if strings.Trim(p, ".") == "" {
		return ""
	}
	return p
}

func writeFile(r io.Reader, dir, dest string) (err error) {
	if r == nil {
		return errors.New("nil upload stream")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.CopyBuffer(f, r, make([]byte, chunkSize))
	return err
}

func (s *Store) put(u Upload, dir, filename string) bool {
	rc, err := u.Open()
	if err != nil {
		applog.Error(nil, "media.open.fail", err, map[string]any{"file": u.Filename()})
		metrics.MediaWrites.WithLabelValues("fail").Inc()
		return false
	}
	defer rc.Close()
	return s.Store(rc, dir, filename)
}

// SaveProductImages lays files out under <root>/<licence>/<product>/ as
// <product>-1 (front), <product>-box (back) and <product>-2.. (additional, in
// input order). The storefront picks the hero image by these names.
func (s *Store) SaveProductImages(front, back Upload, additional []Upload, licenceName, productName string) ProductImages {
	return s.SaveProductImagesAt(front, back, additional, licenceName, productName, 2)
}

// SaveProductImagesAt is SaveProductImages with the detail run starting at
// firstDetail, so appended uploads do not overwrite stored ones.
func (s *Store) SaveProductImagesAt(front, back Upload, additional []Upload, licenceName, productName string, firstDetail int) ProductImages {
	if firstDetail < 2 {
		firstDetail = 2
	}
	var out ProductImages
	lic := pathPart(licenceName)
	prod := pathPart(productName)
	if prod == "" {
		return out
	}
	dir := filepath.Join(s.Root, lic, prod)

	rel := func(filename string) string { return path.Join("/", lic, prod, filename) }

	if front != nil {
		name := prod + "-1" + extOf(front)
		if s.put(front, dir, name) {
			out.ImageFront = rel(name)
		}
	}
	if back != nil {
		name := prod + "-box" + extOf(back)
		if s.put(back, dir, name) {
			out.ImageBack = rel(name)
		}
	}
	idx := firstDetail
	for _, u := range additional {
		if u == nil {
			continue
		}
		name := prod + "-" + strconv.Itoa(idx) + extOf(u)
		idx++
		if s.put(u, dir, name) {
			out.AdditionalImages = append(out.AdditionalImages, rel(name))
		}
	}
	return out
}

// SaveCategoryImage stores under <root>/categories/ and returns the relative
// path, or "" when nothing was written.
func (s *Store) SaveCategoryImage(u Upload, categoryName string) string {
	return s.saveSingle(u, "categories", categoryName)
}

func (s *Store) SaveLicenceImage(u Upload, licenceName string) string {
	return s.saveSingle(u, "licences", licenceName)
}

func (s *Store) saveSingle(u Upload, sub, name string) string {
	base := pathPart(name)
	if u == nil || base == "" {
		return ""
	}
	filename := base + extOf(u)
	if !s.put(u, filepath.Join(s.Root, sub), filename) {
		return ""
	}
	return path.Join("/", sub, filename)
}

func extOf(u Upload) string {
	ext := Sanitize(strings.TrimPrefix(filepath.Ext(u.Filename()), "."))
	if ext == "" {
		return defaultExt
	}
	return "." + ext
}
