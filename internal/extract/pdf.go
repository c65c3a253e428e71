package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home on first use.
	api.DisableConfigDir()
}

// PDF extracts the text of every page, in order, one page per line group.
// Pages that fail to decode are skipped. Encrypted files are opened with Password;
// without one (or with a wrong one) they yield empty text.
type PDF struct {
	Password string
}

func (p *PDF) Extract(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf: parser panic: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	r, err := pdf.NewReaderEncrypted(f, st.Size(), p.passwordOnce())
	if err != nil {
		if p.Password == "" {
			return "", err
		}
		// ledongthuc/pdf only knows RC4 and AES-128; let pdfcpu strip anything newer.
		r, err = p.decrypt(f)
		if err != nil {
			return "", err
		}
	}

	return strings.Join(pageTexts(r), "\n"), nil
}

// passwordOnce offers the configured password a single time; the reader keeps asking
// until it gets an empty string.
func (p *PDF) passwordOnce() func() string {
	offered := false
	return func() string {
		if offered || p.Password == "" {
			return ""
		}
		offered = true
		return p.Password
	}
}

func (p *PDF) decrypt(rs io.ReadSeeker) (*pdf.Reader, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	conf := model.NewDefaultConfiguration()
	conf.UserPW = p.Password
	conf.OwnerPW = p.Password

	var buf bytes.Buffer
	if err := api.Decrypt(rs, &buf, conf); err != nil {
		return nil, fmt.Errorf("pdf: decrypt: %w", err)
	}
	return pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
}

// pageTexts returns the non-blank text of each readable page.
func pageTexts(r *pdf.Reader) []string {
	var out []string
	for i := 1; i <= r.NumPage(); i++ {
		t, err := pageText(r, i)
		if err != nil || strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func pageText(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, rec)
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return "", errors.New("page not found")
	}
	return page.GetPlainText(nil)
}

// PageCount reports the number of pages of a PDF held in memory.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}
