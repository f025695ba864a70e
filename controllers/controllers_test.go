package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/extract"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/notify"
	"github.com/princinho/climaquote/quote"
	"github.com/princinho/climaquote/render"
	"github.com/princinho/climaquote/storage"
	"github.com/princinho/climaquote/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, in render.Input) ([]byte, error) {
	return []byte("%PDF-1.4 " + in.Quote.ID.Hex()), nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *stubNotifier) Send(_ context.Context, msg notify.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return true
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type stubExtractor struct {
	draft *models.ProductDraft
	err   error
}

func (s stubExtractor) Extract(context.Context, extract.File) (*models.ProductDraft, error) {
	return s.draft, s.err
}

type env struct {
	t        *testing.T
	r        *gin.Engine
	app      *App
	products *database.MemoryCollection[models.Product]
	quotes   *database.MemoryCollection[models.Quote]
	company  *database.MemoryCollection[models.CompanyInfo]
	blobs    *storage.Memory
	notifier *stubNotifier
	product  string
	token    string
}

const operatorSecret = "let-me-in"

func coef(v float64) *float64 { return &v }

func activeProduct() models.Product {
	return models.Product{
		Brand:            "Daikin",
		Model:            "TXF35",
		Type:             "split",
		Status:           models.ProductStatusActive,
		Features:         []models.LocalizedText{{"es": "WiFi"}},
		PricingOptions:   []models.PricingOption{{ID: "o1", Name: models.LocalizedText{"es": "3,5 kW"}, Price: 1000}, {ID: "o2", Name: models.LocalizedText{"es": "5 kW"}, Price: 1400}},
		InstallationKits: []models.InstallationKit{{ID: "k1", Name: models.LocalizedText{"es": "Básico"}, Price: 200}},
		Extras:           []models.Extra{{ID: "e1", Name: models.LocalizedText{"es": "Metro de tubo"}, Price: 50}},
		FinancingPlans: []models.FinancingPlan{
			{Label: models.LocalizedText{"es": "12 meses"}, Months: 12, Coefficient: coef(1.05)},
			{Label: models.LocalizedText{"es": "24 meses"}, Months: 24, Coefficient: coef(1.1), RequiresDocuments: true},
		},
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{
		t:        t,
		products: database.NewMemoryCollection[models.Product](),
		quotes:   database.NewMemoryCollection[models.Quote](),
		company:  database.NewMemoryCollection[models.CompanyInfo](),
		blobs:    storage.NewMemory("mem://files"),
		notifier: &stubNotifier{},
	}

	id, err := e.products.Insert(ctx, activeProduct())
	require.NoError(t, err)
	e.product = id

	draft := activeProduct()
	draft.Brand = "Mitsubishi"
	draft.Status = models.ProductStatusDraft
	_, err = e.products.Insert(ctx, draft)
	require.NoError(t, err)

	require.NoError(t, utils.SeedCompany(ctx, e.company, zerolog.Nop()))

	now := func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }
	svc := quote.NewService(quote.Deps{
		Quotes:        e.quotes,
		Products:      e.products,
		Company:       e.company,
		Blobs:         e.blobs,
		Renderer:      stubRenderer{},
		Notifier:      e.notifier,
		PublicBaseURL: "https://clima.example.com",
		Log:           zerolog.Nop(),
		Now:           now,
	})

	e.app = &App{
		Products:  e.products,
		Company:   e.company,
		Quotes:    svc,
		Blobs:     e.blobs,
		Extractor: extract.Disabled{},
		Uploads:   utils.NewFileValidator(1, []string{".png", ".jpg", ".pdf"}, []string{"image/png", "image/jpeg", "application/pdf"}),
		Auth: AuthSettings{
			Secret:    operatorSecret,
			JWTSecret: []byte("jwt-test-secret"),
			TokenTTL:  time.Hour,
		},
		Log: zerolog.Nop(),
	}

	e.r = gin.New()
	Register(e.r, e.app, nil)
	return e
}

func (e *env) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) multipart(path string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	for name, data := range files {
		part, err := mw.CreateFormFile(name, name+".png")
		require.NoError(e.t, err)
		_, err = part.Write(data)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) login() {
	e.t.Helper()
	w := e.do(http.MethodPost, "/auth/login", gin.H{"secret": operatorSecret})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &res))
	e.token = res.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func signature(t *testing.T) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))
}

func quoteData(t *testing.T, productID string, mutate func(map[string]any)) string {
	t.Helper()
	data := map[string]any{
		"productId": productID,
		"selection": map[string]any{"optionId": "o2", "kitId": "k1", "extras": map[string]int{"e1": 2}, "financingIndex": -1},
		"language":  "es",
		"client": map[string]any{
			"name": "Lucía", "surname": "Pérez", "email": "lucia@example.com",
			"phone": "600000000", "address": "C/ Mayor 1", "postalCode": "28001",
		},
		"signature":     signature(t),
		"acceptedTerms": true,
	}
	if mutate != nil {
		mutate(data)
	}
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return string(raw)
}

func TestPingAndHealth(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/ping", nil).Code)
	w := e.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCatalog(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[struct {
		Items   []models.Product `json:"items"`
		Ceiling float64          `json:"ceiling"`
		Brands  []string         `json:"brands"`
	}](t, w)
	require.Len(t, res.Items, 1, "drafts are hidden")
	assert.Equal(t, "Daikin", res.Items[0].Brand)
	assert.Equal(t, 1500.0, res.Ceiling)
	assert.Equal(t, []string{"Daikin"}, res.Brands)

	w = e.do(http.MethodGet, "/catalog?brand=Fujitsu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[struct {
		Items []models.Product `json:"items"`
	}](t, w).Items)

	w = e.do(http.MethodGet, "/catalog?maxPrice=900", nil)
	assert.Empty(t, decode[struct {
		Items []models.Product `json:"items"`
	}](t, w).Items)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/catalog?maxPrice=cheap", nil).Code)
}

func TestCatalogTotalsCountFilteredItems(t *testing.T) {
	e := newEnv(t)
	second := activeProduct()
	second.Brand = "Fujitsu"
	_, err := e.products.Insert(context.Background(), second)
	require.NoError(t, err)

	type totals struct {
		Items        []models.Product `json:"items"`
		Total        int              `json:"total"`
		CatalogTotal int              `json:"catalogTotal"`
	}

	res := decode[totals](t, e.do(http.MethodGet, "/catalog?brand=Fujitsu", nil))
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 2, res.CatalogTotal)

	res = decode[totals](t, e.do(http.MethodGet, "/catalog?brand=Carrier", nil))
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 2, res.CatalogTotal)
}

func TestGetProductHidesDrafts(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/products/"+e.product, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/products/"+bson.NewObjectID().Hex(), nil).Code)

	products, err := e.products.List(context.Background(), database.Filter{Status: string(models.ProductStatusDraft)})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/products/"+products[0].ID.Hex(), nil).Code)
}

func TestPriceProduct(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/products/"+e.product+"/price", gin.H{
		"selection": gin.H{"optionId": "o2", "kitId": "k1", "extras": gin.H{"e1": 3, "ghost": 1, "zero": 0}, "financingIndex": 0},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[struct {
		Breakdown struct {
			Total     float64 `json:"total"`
			Financing struct {
				Months        int     `json:"months"`
				FinancedTotal float64 `json:"financedTotal"`
			} `json:"financing"`
		} `json:"breakdown"`
		Selection struct {
			Extras map[string]int `json:"extras"`
		} `json:"selection"`
		UnknownExtras []string `json:"unknownExtras"`
		FinancingText string   `json:"financingText"`
	}](t, w)

	assert.InDelta(t, 1750, res.Breakdown.Total, 1e-9)
	assert.Equal(t, 12, res.Breakdown.Financing.Months)
	assert.InDelta(t, 1837.5, res.Breakdown.Financing.FinancedTotal, 1e-9)
	assert.NotContains(t, res.Selection.Extras, "zero")
	assert.Equal(t, []string{"ghost"}, res.UnknownExtras)
	assert.True(t, strings.HasPrefix(res.FinancingText, "12 meses"))

	w = e.do(http.MethodPost, "/products/"+e.product+"/price", gin.H{
		"selection": gin.H{"optionId": "o1", "kitId": "k1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	unfinanced := decode[struct {
		Breakdown struct {
			Total     float64 `json:"total"`
			Financing struct {
				Months        int     `json:"months"`
				FinancedTotal float64 `json:"financedTotal"`
			} `json:"financing"`
		} `json:"breakdown"`
	}](t, w)
	assert.Equal(t, 0, unfinanced.Breakdown.Financing.Months, "no financingIndex means paying in full")
	assert.InDelta(t, unfinanced.Breakdown.Total, unfinanced.Breakdown.Financing.FinancedTotal, 1e-9)
}

func TestCreateQuoteInPerson(t *testing.T) {
	e := newEnv(t)

	w := e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, nil)}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[quote.SaveResult](t, w)
	assert.Equal(t, models.QuoteStatusSigned, res.Status)
	assert.NotEmpty(t, res.DocumentURL)
	assert.True(t, res.NotificationSent)
	assert.Equal(t, 1, e.notifier.count())

	stored, err := e.quotes.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1700, stored.Price, 1e-9)
	assert.Equal(t, "5 kW", stored.Option.Name)
	_, ok := e.blobs.Get(res.DocumentURL)
	assert.True(t, ok)
}

func TestCreateQuoteRejections(t *testing.T) {
	e := newEnv(t)

	w := e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, func(d map[string]any) {
		d["client"].(map[string]any)["email"] = "not-an-email"
	})}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	res := decode[struct {
		Details map[string]string `json:"details"`
	}](t, w)
	assert.Contains(t, res.Details, "email")

	w = e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, func(d map[string]any) {
		delete(d, "signature")
	})}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), quote.ErrSignatureRequired.Error())

	w = e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, func(d map[string]any) {
		d["acceptedTerms"] = false
	})}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Equal(t, http.StatusBadRequest, e.multipart("/quotes", map[string]string{}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.multipart("/quotes", map[string]string{"data": "{"}, nil).Code)
	assert.Equal(t, http.StatusNotFound,
		e.multipart("/quotes", map[string]string{"data": quoteData(t, bson.NewObjectID().Hex(), nil)}, nil).Code)

	list, err := e.quotes.List(context.Background(), database.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, e.blobs.Len())
}

func TestCreateQuoteFinancingDocuments(t *testing.T) {
	e := newEnv(t)
	withPlan := func(d map[string]any) {
		d["selection"].(map[string]any)["financingIndex"] = 1
	}

	w := e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, withPlan)}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "identity document")

	w = e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, withPlan)}, map[string][]byte{
		quote.KindIdentityDocument: pngBytes(t),
		quote.KindIncomeProof:      pngBytes(t),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[quote.SaveResult](t, w)

	stored, err := e.quotes.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Attachments, 2)
	assert.InDelta(t, 1870, stored.FinancedTotal, 1e-9)

	w = e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, withPlan)}, map[string][]byte{
		quote.KindIdentityDocument: []byte("plain text is not an image"),
		quote.KindIncomeProof:      pngBytes(t),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoteSignature(t *testing.T) {
	e := newEnv(t)

	w := e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, func(d map[string]any) {
		d["clientNotPresent"] = true
		delete(d, "signature")
	})}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[quote.SaveResult](t, w)
	assert.Equal(t, models.QuoteStatusPending, res.Status)
	assert.Equal(t, "https://clima.example.com/sign/"+res.ID, res.SignatureLink)
	assert.Equal(t, 0, e.notifier.count())

	w = e.do(http.MethodGet, "/sign/"+res.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Presupuesto válido")

	assert.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, "/sign/"+res.ID, gin.H{"signature": ""}).Code)

	w = e.do(http.MethodPost, "/sign/"+res.ID, gin.H{"signature": signature(t)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	signed := decode[quote.SaveResult](t, w)
	assert.Equal(t, models.QuoteStatusSigned, signed.Status)
	assert.NotEmpty(t, signed.DocumentURL)
	assert.Equal(t, 1, e.notifier.count())

	w = e.do(http.MethodPost, "/sign/"+res.ID, gin.H{"signature": signature(t)})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "link not valid or already signed")
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/sign/"+res.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/sign/garbage", nil).Code)
}

func TestLoginAndAdminGate(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/auth/login", gin.H{"secret": "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/auth/login", gin.H{}).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/admin/products", nil).Code)

	e.login()
	w := e.do(http.MethodGet, "/admin/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Items []models.Product `json:"items"`
	}](t, w).Items, 2)
}

func TestLoginWithHashedSecret(t *testing.T) {
	e := newEnv(t)
	hash, err := utils.HashPassword("hashed-secret")
	require.NoError(t, err)
	e.app.Auth.SecretHash = hash

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/auth/login", gin.H{"secret": operatorSecret}).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodPost, "/auth/login", gin.H{"secret": "hashed-secret"}).Code)
}

func TestAdminProductLifecycle(t *testing.T) {
	e := newEnv(t)
	e.login()

	w := e.do(http.MethodPost, "/admin/products", gin.H{
		"brand": "Fujitsu", "model": "ASY25", "type": "split",
		"pricingOptions": []gin.H{{"name": gin.H{"es": "2,5 kW"}, "price": 800}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Product](t, w)
	id := created.ID.Hex()
	assert.Equal(t, models.ProductStatusDraft, created.Status)
	require.Len(t, created.PricingOptions, 1)
	assert.NotEmpty(t, created.PricingOptions[0].ID)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/admin/products", gin.H{"brand": "x"}).Code)

	w = e.do(http.MethodPatch, "/admin/products/"+id, gin.H{"status": "active", "model": "ASY25 Eco"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Product](t, w)
	assert.Equal(t, models.ProductStatusActive, updated.Status)
	assert.Equal(t, "ASY25 Eco", updated.Model)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPatch, "/admin/products/"+id, gin.H{"status": "gone"}).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPatch, "/admin/products/"+bson.NewObjectID().Hex(), gin.H{"model": "x"}).Code)

	// nested collections
	w = e.do(http.MethodPost, "/admin/products/"+id+"/collections/extras", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = e.do(http.MethodPatch, "/admin/products/"+id+"/collections/extras/0", gin.H{"name": gin.H{"es": "Bomba"}, "price": 90})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPatch, "/admin/products/"+id+"/collections/extras/5", gin.H{"price": 1}).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/admin/products/"+id+"/collections/colours", nil).Code)

	stored, err := e.products.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, stored.Extras, 1)
	assert.Equal(t, "Bomba", stored.Extras[0].Name["es"])
	assert.InDelta(t, 90, stored.Extras[0].Price, 1e-9)

	w = e.do(http.MethodDelete, "/admin/products/"+id+"/collections/extras/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored, err = e.products.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, stored.Extras)

	// duplicate
	w = e.do(http.MethodPost, "/admin/products/"+id+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	dup := decode[models.Product](t, w)
	assert.NotEqual(t, id, dup.ID.Hex())
	assert.Equal(t, "ASY25 Eco (copia)", dup.Model)
	assert.Equal(t, models.ProductStatusDraft, dup.Status)

	// soft delete, restore, purge
	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/admin/products/"+id, nil).Code)
	w = e.do(http.MethodGet, "/admin/products?deleted=true", nil)
	deleted := decode[struct {
		Items []models.Product `json:"items"`
	}](t, w).Items
	require.Len(t, deleted, 1)
	assert.Equal(t, id, deleted[0].ID.Hex())
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/admin/products?deleted=maybe", nil).Code)

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/admin/products/"+id+"/restore", nil).Code)
	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/admin/products/"+id+"/permanent", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/admin/products/"+id, nil).Code)
}

func TestUploadProductMedia(t *testing.T) {
	e := newEnv(t)
	e.login()

	w := e.multipart("/admin/products/"+e.product+"/media/image", nil, map[string][]byte{"file": pngBytes(t)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[struct {
		URL string `json:"url"`
	}](t, w).URL
	assert.True(t, strings.HasPrefix(first, "mem://files/products/"+e.product+"/"))

	w = e.multipart("/admin/products/"+e.product+"/media/image", nil, map[string][]byte{"file": pngBytes(t)})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[struct {
		URL string `json:"url"`
	}](t, w).URL

	stored, err := e.products.Get(context.Background(), e.product)
	require.NoError(t, err)
	assert.Equal(t, second, stored.ImageURL)
	_, ok := e.blobs.Get(first)
	assert.False(t, ok, "replaced image is removed")

	w = e.multipart("/admin/products/"+e.product+"/media/datasheet", nil, map[string][]byte{"file": pngBytes(t)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.multipart("/admin/products/"+e.product+"/media/video", nil, map[string][]byte{"file": pngBytes(t)})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtractProduct(t *testing.T) {
	e := newEnv(t)
	e.login()

	files := map[string][]byte{"file": pngBytes(t)}
	assert.Equal(t, http.StatusServiceUnavailable, e.multipart("/admin/products/extract", nil, files).Code)

	e.app.Extractor = stubExtractor{draft: &models.ProductDraft{Brand: "LG", Model: "Dualcool"}}
	w := e.multipart("/admin/products/extract", nil, files)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "LG", decode[models.ProductDraft](t, w).Brand)

	e.app.Extractor = stubExtractor{err: errors.New("upstream timeout")}
	assert.Equal(t, http.StatusBadGateway, e.multipart("/admin/products/extract", nil, files).Code)

	e.app.Extractor = stubExtractor{err: extract.ErrUnsupportedFile}
	assert.Equal(t, http.StatusUnsupportedMediaType, e.multipart("/admin/products/extract", nil, files).Code)

	list, err := e.products.List(context.Background(), database.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "extraction never persists")
}

func TestSettings(t *testing.T) {
	e := newEnv(t)
	e.login()

	w := e.do(http.MethodGet, "/admin/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Climatización", decode[models.CompanyInfo](t, w).Name)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/admin/settings", gin.H{"name": "X", "primaryColor": "blue"}).Code)

	w = e.do(http.MethodPut, "/admin/settings", gin.H{
		"name":         "Clima Norte SL",
		"primaryColor": "#0a7f3f",
		"addresses":    []gin.H{{"label": "Tienda", "address": "C/ Sol 2"}},
		"legalTerms":   gin.H{"es": "Condiciones nuevas"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	e.token = ""
	w = e.do(http.MethodGet, "/company", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[models.CompanyInfo](t, w)
	assert.Equal(t, "Clima Norte SL", info.Name)
	assert.Equal(t, "C/ Sol 2", info.Addresses[0].Address)
	assert.False(t, info.CreatedAt.IsZero(), "creation time survives replacement")
}

func TestAdminQuotes(t *testing.T) {
	e := newEnv(t)

	w := e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, nil)}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	signed := decode[quote.SaveResult](t, w)

	w = e.multipart("/quotes", map[string]string{"data": quoteData(t, e.product, func(d map[string]any) {
		d["clientNotPresent"] = true
	})}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	pending := decode[quote.SaveResult](t, w)

	e.login()

	w = e.do(http.MethodGet, "/admin/quotes?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[struct {
		Items []models.Quote `json:"items"`
	}](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, pending.ID, items[0].ID.Hex())

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/admin/quotes/"+signed.ID, nil).Code)

	w = e.do(http.MethodPost, "/admin/quotes/"+signed.ID+"/resend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notificationSent":true`)
	assert.Equal(t, 2, e.notifier.count())
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/admin/quotes/"+pending.ID+"/resend", nil).Code)

	w = e.do(http.MethodGet, "/admin/quotes?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	newest := decode[struct {
		Items []models.Quote `json:"items"`
	}](t, w).Items
	require.Len(t, newest, 1)
	assert.Equal(t, pending.ID, newest[0].ID.Hex())

	w = e.do(http.MethodGet, "/admin/quotes?limit=-3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Items []models.Quote `json:"items"`
	}](t, w).Items, 2)

	w = e.do(http.MethodGet, "/admin/quotes/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, "attachment; filename=climatizacion-quotes-"), disposition)
	assert.True(t, strings.HasSuffix(disposition, ".xlsx"), disposition)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/admin/quotes/"+pending.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/sign/"+pending.ID, nil).Code, "deleted links stop working")
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/admin/quotes/"+pending.ID+"/restore", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/sign/"+pending.ID, nil).Code)

	docs := e.blobs.Len()
	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/admin/quotes/"+signed.ID+"/permanent", nil).Code)
	assert.Equal(t, docs-1, e.blobs.Len())
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/admin/quotes/"+signed.ID, nil).Code)
}
