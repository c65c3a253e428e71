package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDF_ExtractsPagesInOrder(t *testing.T) {
	path := writeTemp(t, "doc.pdf", buildPDF("First page", "Second page", "Third page"))

	text, err := (&PDF{}).Extract(path)
	require.NoError(t, err)

	first := strings.Index(text, "First page")
	second := strings.Index(text, "Second page")
	third := strings.Index(text, "Third page")
	require.True(t, first >= 0 && second >= 0 && third >= 0, "got %q", text)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestPDF_WholeDocumentMatchesJoinedPages(t *testing.T) {
	pages := []string{"Alpha bravo", "Charlie delta", "Echo foxtrot"}

	whole, err := (&PDF{}).Extract(writeTemp(t, "all.pdf", buildPDF(pages...)))
	require.NoError(t, err)

	var parts []string
	for i, p := range pages {
		single, err := (&PDF{}).Extract(writeTemp(t, string(rune('a'+i))+".pdf", buildPDF(p)))
		require.NoError(t, err)
		parts = append(parts, single)
	}
	assert.Equal(t, strings.Join(parts, "\n"), whole)
}

func TestPDF_SkipsBlankPages(t *testing.T) {
	text, err := (&PDF{}).Extract(writeTemp(t, "gaps.pdf", buildPDF("One", " ", "Two")))
	require.NoError(t, err)

	var single []string
	for _, p := range []string{"One", "Two"} {
		s, err := (&PDF{}).Extract(writeTemp(t, p+".pdf", buildPDF(p)))
		require.NoError(t, err)
		single = append(single, s)
	}
	assert.Equal(t, strings.Join(single, "\n"), text)
}

func TestPDF_MalformedInputYieldsEmpty(t *testing.T) {
	text, err := (&PDF{}).Extract(writeTemp(t, "broken.pdf", []byte("%PDF-1.4\nthis is not really a pdf\n")))
	assert.Error(t, err)
	assert.Empty(t, text)

	text, _ = (&PDF{}).Extract(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Empty(t, text)
}

func TestPDF_EncryptedWithoutPasswordYieldsEmpty(t *testing.T) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = "secret"
	conf.OwnerPW = "secret"

	var encrypted bytes.Buffer
	require.NoError(t, api.Encrypt(bytes.NewReader(buildPDF("Classified")), &encrypted, conf))

	text, _ := (&PDF{}).Extract(writeTemp(t, "locked.pdf", encrypted.Bytes()))
	assert.Empty(t, text)

	text, _ = (&PDF{Password: "wrong"}).Extract(writeTemp(t, "locked2.pdf", encrypted.Bytes()))
	assert.Empty(t, text)
}

func TestPageCount(t *testing.T) {
	n, err := PageCount(buildPDF("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = PageCount([]byte("nope"))
	assert.Error(t, err)
}

func TestDOCX_DropsBlankParagraphs(t *testing.T) {
	path := writeTemp(t, "doc.docx", buildDOCX(t, "A", "", "  ", "B"))

	text, err := DOCX{}.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "A\nB", text)
}

func TestDOCX_RunsTabsAndBreaks(t *testing.T) {
	body := `<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> world</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t><w:br/><w:t>Next</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:delText>removed</w:delText></w:r></w:p>`

	text, err := DOCX{}.Extract(writeTemp(t, "runs.docx", buildDOCXBody(t, body)))
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nName\tValue\nNext\nCell", text)
}

func TestDOCX_IgnoresParagraphProperties(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:tabs>` +
		`<w:tab w:val="left" w:pos="720"/><w:tab w:val="right" w:pos="9360"/>` +
		`</w:tabs></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Heading</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:tabs><w:tab w:val="center" w:pos="4680"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Body</w:t><w:tab/><w:t>end</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr></w:p>`

	text, err := DOCX{}.Extract(writeTemp(t, "tabs.docx", buildDOCXBody(t, body)))
	require.NoError(t, err)
	assert.Equal(t, "Heading\nBody\tend", text)
}

func TestDOCX_SkipsFallbackContent(t *testing.T) {
	body := `<w:p><w:r><mc:AlternateContent>` +
		`<mc:Choice Requires="wps"><w:p><w:r><w:t>Box</w:t></w:r></w:p></mc:Choice>` +
		`<mc:Fallback><w:p><w:r><w:t>Box</w:t></w:r></w:p></mc:Fallback>` +
		`</mc:AlternateContent></w:r></w:p>`

	text, err := DOCX{}.Extract(writeTemp(t, "box.docx", buildDOCXBody(t, body)))
	require.NoError(t, err)
	assert.Equal(t, "Box", text)
}

func TestDOCX_NotAZip(t *testing.T) {
	text, err := DOCX{}.Extract(writeTemp(t, "fake.docx", []byte("plain bytes")))
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestDispatcher_ExtractFromFile(t *testing.T) {
	d := NewDispatcher(nil, "")
	dir := t.TempDir()

	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		return p
	}

	tests := []struct {
		name     string
		path     string
		wantKind Kind
		wantText string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.pdf"), wantKind: KindSourceMissing},
		{name: "zero byte file", path: write("empty.pdf", nil), wantKind: KindSourceMissing},
		{name: "unsupported extension", path: write("data.xyz", []byte("x")), wantKind: KindUnsupported},
		{name: "no extension", path: write("README", []byte("x")), wantKind: KindUnsupported},
		{name: "whitespace pdf", path: write("blank.pdf", buildPDF(" ")), wantKind: KindEmpty},
		{name: "malformed pdf", path: write("bad.pdf", []byte("not a pdf at all")), wantKind: KindEmpty},
		{name: "docx", path: write("doc.docx", buildDOCX(t, "A", "", "  ", "B")), wantKind: KindSuccess, wantText: "A\nB"},
		{name: "blank docx", path: write("blank.docx", buildDOCX(t, "", "   ")), wantKind: KindEmpty},
		{name: "txt passthrough", path: write("notes.txt", []byte("\ufeffline one\nline two\n")), wantKind: KindSuccess, wantText: "line one\nline two\n"},
		{name: "upper case extension", path: write("NOTES.TXT", []byte("shout")), wantKind: KindSuccess, wantText: "shout"},
		{name: "whitespace txt", path: write("space.txt", []byte(" \n\t ")), wantKind: KindEmpty},
		{name: "invalid utf8 txt", path: write("bin.txt", []byte{0xff, 0xfe, 0xfd}), wantKind: KindFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := d.ExtractFromFile(tt.path)
			assert.Equal(t, tt.wantKind, out.Kind, "outcome %s", out.Kind)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, out.Text)
			}
			assert.Equal(t, tt.wantKind == KindSuccess, out.OK())
			if !out.OK() {
				assert.NotEmpty(t, out.Message())
			}
		})
	}
}

func TestDispatcher_PDFSuccess(t *testing.T) {
	out := NewDispatcher(nil, "").ExtractFromFile(writeTemp(t, "ok.pdf", buildPDF("Quarterly results")))
	require.Equal(t, KindSuccess, out.Kind)
	assert.Contains(t, out.Text, "Quarterly results")
}

func TestDispatcher_UnsupportedCarriesExtension(t *testing.T) {
	out := NewDispatcher(nil, "").ExtractFromFile(writeTemp(t, "sheet.XLSX", []byte("x")))
	assert.Equal(t, KindUnsupported, out.Kind)
	assert.Equal(t, ".xlsx", out.Extension)
	assert.Contains(t, out.Message(), ".xlsx")
}

func TestDispatcher_CustomExtractor(t *testing.T) {
	calls := 0
	d := NewDispatcher(nil, "", WithExtractor(".md", ExtractorFunc(func(string) (string, error) {
		calls++
		return "", errors.New("boom")
	})))

	assert.True(t, d.Supports(".MD"))
	assert.True(t, d.Supports(".txt"))
	assert.False(t, d.Supports(".xyz"))

	out := d.ExtractFromFile(writeTemp(t, "readme.md", []byte("# title")))
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindEmpty, out.Kind)
	assert.EqualError(t, out.Err, "boom")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "success", KindSuccess.String())
	assert.Equal(t, "source_missing", KindSourceMissing.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
