package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/freteiro/internal/extract"
	"github.com/dgallion1/freteiro/internal/tariff"
	pdflib "github.com/ledongthuc/pdf"
)

// buildPDF writes a minimal uncompressed PDF with one content stream per
// page, using a Helvetica font without a Widths array.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, content := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// Runs positioned with Td inside one text object, as report generators emit them.
const manifestPage = "BT /F1 10 Tf 50 700 Td (Veiculo ABC-1234) Tj ET\n" +
	"BT /F1 10 Tf 50 680 Td (Romaneio 2024/03/15-001) Tj 150 0 Td (Rota) Tj 40 0 Td (ARAPIRACA) Tj 80 0 Td (Dt.Saida) Tj ET\n" +
	"BT /F1 10 Tf 50 660 Td (KM Inicial) Tj 60 0 Td (1000) Tj 60 0 Td (KM Final) Tj 60 0 Td (1120) Tj ET"

func TestPDFParser_RunsAreSeparated(t *testing.T) {
	secondPage := "BT /F1 10 Tf 50 700 Td (Romaneio 2024/03/16-002) Tj 150 0 Td (Rota) Tj 40 0 Td (IGACI) Tj ET"
	data := buildPDF(manifestPage, secondPage)

	doc, err := (&PDFParser{}).Parse(context.Background(), bytes.NewReader(data), "marco.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "marco" {
		t.Errorf("expected title marco, got %q", doc.Title)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}

	want := strings.Join([]string{
		"Veiculo ABC-1234", "Romaneio 2024/03/15-001", "Rota", "ARAPIRACA", "Dt.Saida",
		"KM Inicial", "1000", "KM Final", "1120",
	}, "  ")
	if doc.Pages[0] != want {
		t.Errorf("expected page text %q, got %q", want, doc.Pages[0])
	}

	res := extract.ParseDocument(doc.Pages, extract.DefaultOptions())
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.Plate != "ABC-1234" {
		t.Errorf("expected plate ABC-1234, got %q", res.Plate)
	}
	first := res.Records[0]
	if first.Region != tariff.Region1 {
		t.Errorf("expected region %q, got %q", tariff.Region1, first.Region)
	}
	if first.OdometerStart == nil || *first.OdometerStart != 1000 {
		t.Errorf("expected start 1000, got %v", first.OdometerStart)
	}
	if first.OdometerEnd == nil || *first.OdometerEnd != 1120 {
		t.Errorf("expected end 1120, got %v", first.OdometerEnd)
	}
}

func TestPageText(t *testing.T) {
	glyph := func(s string, x, y, w float64) pdflib.Text {
		return pdflib.Text{FontSize: 10, X: x, Y: y, W: w, S: s}
	}
	word := func(s string, x, y float64) []pdflib.Text {
		var out []pdflib.Text
		for i, r := range s {
			out = append(out, glyph(string(r), x+float64(i)*5, y, 5))
		}
		return out
	}
	concat := func(parts ...[]pdflib.Text) []pdflib.Text {
		var out []pdflib.Text
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	tests := []struct {
		name   string
		glyphs []pdflib.Text
		want   string
	}{
		{"contiguous glyphs", word("KM Inicial", 50, 700), "KM Inicial"},
		{"horizontal gap", concat(word("Rota", 50, 700), word("IGACI", 90, 700)), "Rota  IGACI"},
		{"small kerning stays", concat(word("Ro", 50, 700), word("ta", 61, 700)), "Rota"},
		{"line change", concat(word("1000", 50, 700), word("KM", 70, 680)), "1000  KM"},
		{"move backwards", concat(word("fim", 200, 700), word("inicio", 50, 700)), "fim  inicio"},
		{"show-text boundary", concat(word("AB", 50, 700), []pdflib.Text{glyph("\n", 60, 700, 0)}, word("CD", 60, 700)), "AB  CD"},
		{"zero width glyphs", []pdflib.Text{glyph("K", 50, 700, 0), glyph("M", 50, 700, 0), glyph("1", 120, 700, 0)}, "KM  1"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageText(tt.glyphs); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
