// Package render produces the signed quote document.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/princinho/climaquote/i18n"
	"github.com/princinho/climaquote/models"
)

var ErrInvalidImage = errors.New("invalid image data url")

// Image is an already loaded picture. Type is a gofpdf image type (PNG, JPG).
type Image struct {
	Data []byte
	Type string
}

type Input struct {
	Quote        models.Quote
	Company      models.CompanyInfo
	ProductImage *Image
}

type Renderer interface {
	Render(ctx context.Context, in Input) ([]byte, error)
}

type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

func (PDF) Render(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := in.Quote
	lang := q.Language
	if lang == "" {
		lang = models.BaseLanguage
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	r, g, b := parseColor(in.Company.PrimaryColor)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Letterhead.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(r, g, b)
	pdf.CellFormat(0, 8, tr(in.Company.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	contact := joinNonEmpty(" · ", in.Company.LegalName, in.Company.TaxID, in.Company.Phone, in.Company.Email, in.Company.Website)
	if contact != "" {
		pdf.CellFormat(0, 5, tr(contact), "", 1, "L", false, 0, "")
	}
	for _, a := range in.Company.Addresses {
		pdf.CellFormat(0, 5, tr(joinNonEmpty(": ", a.Label, a.Address)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Title block.
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, tr(i18n.Label("quote.title", lang)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if !q.ID.IsZero() {
		pdf.CellFormat(0, lineHeight, tr(i18n.Label("quote.number", lang)+": "+q.ID.Hex()), "", 1, "L", false, 0, "")
	}
	date := q.CreatedAt
	if q.SignedAt != nil {
		date = *q.SignedAt
	}
	if !date.IsZero() {
		pdf.CellFormat(0, lineHeight, tr(i18n.Label("quote.date", lang)+": "+date.Format("02/01/2006")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// Client.
	section(pdf, tr, i18n.Label("quote.client", lang), r, g, b)
	field(pdf, tr, i18n.Label("client.name", lang), q.Client.FullName())
	field(pdf, tr, i18n.Label("client.email", lang), q.Client.Email)
	field(pdf, tr, i18n.Label("client.phone", lang), q.Client.Phone)
	field(pdf, tr, i18n.Label("client.address", lang), joinNonEmpty(", ", q.Client.Address, q.Client.PostalCode, q.Client.City))
	if q.Client.WorkOrder != "" {
		field(pdf, tr, i18n.Label("quote.work_order", lang), q.Client.WorkOrder)
	}
	pdf.Ln(3)

	// Product and breakdown.
	section(pdf, tr, i18n.Label("quote.product", lang), r, g, b)
	if in.ProductImage != nil && len(in.ProductImage.Data) > 0 {
		name := "product"
		opts := gofpdf.ImageOptions{ImageType: in.ProductImage.Type, ReadDpi: true}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(in.ProductImage.Data))
		if pdf.Ok() {
			pdf.ImageOptions(name, pageMargin, pdf.GetY(), 40, 0, true, opts, 0, "")
		} else {
			pdf.ClearError()
		}
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, tr(joinNonEmpty(" ", q.Brand, q.Model)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(110, lineHeight, "", "B", 0, "L", true, 0, "")
	pdf.CellFormat(20, lineHeight, tr(i18n.Label("quote.quantity", lang)), "B", 0, "C", true, 0, "")
	pdf.CellFormat(0, lineHeight, tr(i18n.Label("quote.amount", lang)), "B", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	line(pdf, tr, lang, i18n.Label("quote.option", lang)+": "+q.Option.Name, 1, q.Option.Amount)
	line(pdf, tr, lang, i18n.Label("quote.kit", lang)+": "+q.Kit.Name, 1, q.Kit.Amount)
	for _, e := range q.Extras {
		line(pdf, tr, lang, e.Name, e.Quantity, e.Amount)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(130, 8, tr(i18n.Label("quote.total", lang)), "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr(i18n.FormatMoney(q.Price, lang)), "T", 1, "R", false, 0, "")
	pdf.Ln(3)

	// Financing.
	section(pdf, tr, i18n.Label("quote.financing", lang), r, g, b)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, lineHeight, tr(q.FinancingText), "", "L", false)
	if q.FinancedTotal != q.Price {
		field(pdf, tr, i18n.Label("quote.financed_total", lang), i18n.FormatMoney(q.FinancedTotal, lang))
	}
	pdf.Ln(3)

	// Terms.
	if terms := i18n.Resolve(in.Company.LegalTerms, lang); terms != "" {
		section(pdf, tr, i18n.Label("quote.terms", lang), r, g, b)
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(0, 4, tr(terms), "", "J", false)
		pdf.Ln(3)
	}

	// Signature.
	if q.Signature != "" {
		data, imgType, err := DecodeDataURL(q.Signature)
		if err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		section(pdf, tr, i18n.Label("quote.signature", lang), r, g, b)
		opts := gofpdf.ImageOptions{ImageType: imgType}
		pdf.RegisterImageOptionsReader("signature", opts, bytes.NewReader(data))
		pdf.ImageOptions("signature", pageMargin, pdf.GetY(), 60, 0, true, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string, r, g, b int) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(r, g, b)
	pdf.CellFormat(0, 7, tr(title), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func field(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(35, lineHeight, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, lineHeight, tr(value), "", 1, "L", false, 0, "")
}

func line(pdf *gofpdf.Fpdf, tr func(string) string, lang, name string, qty int, amount float64) {
	pdf.CellFormat(110, lineHeight, tr(name), "", 0, "L", false, 0, "")
	pdf.CellFormat(20, lineHeight, strconv.Itoa(qty), "", 0, "C", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr(i18n.FormatMoney(amount, lang)), "", 1, "R", false, 0, "")
}

// DecodeDataURL decodes a base64 image data URL such as the one produced by
// a signature pad and returns its bytes with the gofpdf image type.
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, "", ErrInvalidImage
	}
	var imgType string
	switch strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64") {
	case "image/png":
		imgType = "PNG"
	case "image/jpeg", "image/jpg":
		imgType = "JPG"
	default:
		return nil, "", ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", ErrInvalidImage
	}
	return data, imgType, nil
}

// parseColor reads #rrggbb, defaulting to a dark blue.
func parseColor(hex string) (int, int, int) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 20, 60, 120
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 20, 60, 120
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
