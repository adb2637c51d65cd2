package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	content := []byte("Hello world\nLine 2")
	got, err := e.ExtractBytes(content, ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainUTF8(t *testing.T) {
	e := NewExtractor()
	content := []byte("caf\xc3\xa9") // valid UTF-8
	got, err := e.ExtractBytes(content, ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	content := []byte("hello\x80world") // invalid UTF-8
	got, err := e.ExtractBytes(content, ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	got, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract("/nonexistent/path/file.txt")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestExtractBytes_unknownExtension(t *testing.T) {
	e := NewExtractor()
	content := []byte("raw content")
	got, err := e.ExtractBytes(content, ".xyz")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	// Unknown extension falls back to plain
	if got != "raw content" {
		t.Errorf("got %q", got)
	}
}

// minimalDocx returns .docx zip bytes with word/document.xml built from the
// given paragraph bodies, each body being raw run XML.
func minimalDocx(paragraphs ...string) []byte {
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p w:rsidR="00A">` + p + `</w:p>`)
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	e := NewExtractor()
	content := minimalDocx(`<w:r><w:t>Course material text</w:t></w:r>`)
	got, err := e.ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Course material text" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxParagraphsSeparated(t *testing.T) {
	e := NewExtractor()
	content := minimalDocx(
		`<w:r><w:t>First paragraph.</w:t></w:r>`,
		`<w:r><w:t>Second paragraph.</w:t></w:r>`,
	)
	got, err := e.ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "First paragraph.\n\nSecond paragraph." {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxRunsConcatenate(t *testing.T) {
	e := NewExtractor()
	// A word split across runs must not gain a space in the middle.
	content := minimalDocx(`<w:r><w:t>micro</w:t></w:r><w:r><w:t>learning</w:t></w:r>`)
	got, err := e.ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "microlearning" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxEntitiesUnescaped(t *testing.T) {
	e := NewExtractor()
	content := minimalDocx(`<w:r><w:t xml:space="preserve">Q &amp; A &lt;notes&gt;</w:t></w:r>`)
	got, err := e.ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Q & A <notes>" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxNotZip(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte("not a zip"), ".docx")
	if err == nil {
		t.Error("expected error for invalid docx")
	}
}

func TestExtractBytes_docxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("other.xml")
	_ = w.Close()
	e := NewExtractor()
	_, err := e.ExtractBytes(buf.Bytes(), ".docx")
	if err == nil {
		t.Error("expected error when word/document.xml missing")
	}
}
