package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/climaquote/models"
)

func signaturePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sampleQuote() models.Quote {
	signed := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	return models.Quote{
		ID:            bson.NewObjectID(),
		Brand:         "Daikin",
		Model:         "TXF35",
		Option:        models.QuoteLine{Name: "3,5 kW", Quantity: 1, UnitPrice: 1000, Amount: 1000},
		Kit:           models.QuoteLine{Name: "Básico", Quantity: 1, UnitPrice: 200, Amount: 200},
		Price:         1200,
		FinancedTotal: 1260,
		FinancingText: "12 meses · 12 × 105 €",
		Client:        models.ClientData{Name: "Lucía", Surname: "Pérez", Email: "lucia@example.com", Phone: "600000000", Address: "C/ Mayor 1", PostalCode: "28001"},
		Language:      "es",
		Status:        models.QuoteStatusSigned,
		SignedAt:      &signed,
	}
}

func pageCount(pdf []byte) int {
	s := string(pdf)
	return strings.Count(s, "/Type /Page") - strings.Count(s, "/Type /Pages")
}

func TestRenderSignedQuote(t *testing.T) {
	q := sampleQuote()
	q.Signature = signaturePNG(t)
	company := models.CompanyInfo{
		Name:         "Clima Norte",
		PrimaryColor: "#0a7cff",
		LegalTerms:   models.LocalizedText{"es": "Validez de 30 días."},
	}

	out, err := NewPDF().Render(context.Background(), Input{Quote: q, Company: company})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, 1, pageCount(out))
}

func TestRenderPaginatesLongQuotes(t *testing.T) {
	q := sampleQuote()
	for i := 0; i < 90; i++ {
		q.Extras = append(q.Extras, models.QuoteLine{Name: "Metro de tubo", Quantity: 1, UnitPrice: 10, Amount: 10})
	}

	out, err := NewPDF().Render(context.Background(), Input{Quote: q})
	require.NoError(t, err)
	assert.Greater(t, pageCount(out), 1)
}

func TestRenderRejectsBrokenSignature(t *testing.T) {
	q := sampleQuote()
	q.Signature = "data:image/gif;base64,R0lGOD"

	_, err := NewPDF().Render(context.Background(), Input{Quote: q})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPDF().Render(ctx, Input{Quote: sampleQuote()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeDataURL(t *testing.T) {
	data, typ, err := DecodeDataURL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, "JPG", typ)
	assert.Equal(t, []byte{1, 2, 3}, data)

	for _, bad := range []string{"", "hello", "data:image/png;base64,", "data:image/png,abc", "data:image/png;base64,%%%"} {
		_, _, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrInvalidImage, bad)
	}
}

func TestParseColor(t *testing.T) {
	r, g, b := parseColor("#0a7cff")
	assert.Equal(t, []int{10, 124, 255}, []int{r, g, b})
	r, g, b = parseColor("nope")
	assert.Equal(t, []int{20, 60, 120}, []int{r, g, b})
}

func TestHTTPImages(t *testing.T) {
	pngData := []byte("\x89PNG\r\n\x1a\nrest")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngData)
		case "/doc.gif":
			w.Header().Set("Content-Type", "image/gif")
			_, _ = w.Write([]byte("GIF89a"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPImages(time.Second)
	img, err := f.Fetch(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, "PNG", img.Type)
	assert.Equal(t, pngData, img.Data)

	_, err = f.Fetch(context.Background(), srv.URL+"/doc.gif")
	assert.Error(t, err)
	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	f.MaxBytes = 4
	_, err = f.Fetch(context.Background(), srv.URL+"/ok.png")
	assert.Error(t, err)
}
