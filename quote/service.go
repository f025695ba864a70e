package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/metrics"
	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/notify"
	"github.com/princinho/climaquote/render"
	"github.com/princinho/climaquote/storage"
	"github.com/princinho/climaquote/utils"
)

// Attachment kinds.
const (
	KindIdentityDocument = "identityDocument"
	KindIncomeProof      = "incomeProof"
)

type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (u *Upload) empty() bool { return u == nil || len(u.Data) == 0 }

// Submission is what the client supplies on the confirmation step.
type Submission struct {
	Client           models.ClientData
	Signature        string
	ClientNotPresent bool
	AcceptedTerms    bool
	IdentityDocument *Upload
	IncomeProof      *Upload
}

type SaveResult struct {
	ID               string             `json:"id"`
	Status           models.QuoteStatus `json:"status"`
	DocumentURL      string             `json:"documentUrl,omitempty"`
	NotificationSent bool               `json:"notificationSent"`
	SignatureLink    string             `json:"signatureLink,omitempty"`
}

type Deps struct {
	Quotes   database.Collection[models.Quote]
	Products database.Collection[models.Product]
	Company  database.Collection[models.CompanyInfo]
	Blobs    storage.BlobStore
	Renderer render.Renderer
	Notifier notify.Notifier
	// Images is optional; without it documents carry no product picture.
	Images        render.ImageFetcher
	PublicBaseURL string
	Log           zerolog.Logger
	Now           func() time.Time
}

type Service struct {
	d Deps
}

func NewService(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = notify.Disabled{}
	}
	return &Service{d: d}
}

// SignatureLink is the shareable URL for a pending quote.
func (s *Service) SignatureLink(id string) string {
	return strings.TrimRight(s.d.PublicBaseURL, "/") + "/sign/" + id
}

// Validate runs every precondition of Submit without touching any store.
func Validate(f Finalizing, sub Submission) error {
	if err := ValidateClient(NormalizeClient(sub.Client)); err != nil {
		return err
	}
	if !sub.ClientNotPresent {
		if strings.TrimSpace(sub.Signature) == "" {
			return ErrSignatureRequired
		}
		if _, _, err := render.DecodeDataURL(sub.Signature); err != nil {
			return &ValidationError{Fields: map[string]string{"signature": "image"}}
		}
	}
	if !sub.AcceptedTerms {
		return ErrTermsNotAccepted
	}
	if f.RequiresDocuments() && (sub.IdentityDocument.empty() || sub.IncomeProof.empty()) {
		return ErrDocumentsRequired
	}
	return nil
}

// Submit stores the confirmed configuration. In person it renders, stores
// and emails the signed document; with ClientNotPresent it stores a pending
// quote and returns its signature link.
func (s *Service) Submit(ctx context.Context, f Finalizing, sub Submission) (SaveResult, error) {
	if err := Validate(f, sub); err != nil {
		return SaveResult{}, err
	}

	id := bson.NewObjectID()
	log := s.d.Log.With().Str("quote_id", id.Hex()).Logger()
	now := s.d.Now().UTC()

	attachments, err := s.uploadAttachments(ctx, id.Hex(), sub)
	if err != nil {
		return SaveResult{}, err
	}
	uploaded := make([]string, 0, len(attachments)+1)
	for _, a := range attachments {
		uploaded = append(uploaded, a.PublicURL)
	}

	q := f.Build(NormalizeClient(sub.Client))
	q.ID = id
	q.Attachments = attachments
	q.CreatedAt = now
	q.UpdatedAt = now

	if sub.ClientNotPresent {
		q.Status = models.QuoteStatusPending
		if _, err := s.d.Quotes.Insert(ctx, q); err != nil {
			storage.RemoveBestEffort(ctx, s.d.Blobs, log, uploaded...)
			return SaveResult{}, fmt.Errorf("save pending quote: %w", err)
		}
		metrics.QuotesCreated.WithLabelValues("remote").Inc()
		log.Info().Msg("pending quote stored, awaiting remote signature")
		return SaveResult{
			ID:            id.Hex(),
			Status:        q.Status,
			SignatureLink: s.SignatureLink(id.Hex()),
		}, nil
	}

	q.Status = models.QuoteStatusSigned
	q.Signature = sub.Signature
	q.SignedAt = &now

	product := f.Product()
	docURL, err := s.renderAndUpload(ctx, q, &product, log)
	if err != nil {
		storage.RemoveBestEffort(ctx, s.d.Blobs, log, uploaded...)
		return SaveResult{}, err
	}
	q.DocumentURL = docURL
	uploaded = append(uploaded, docURL)

	if _, err := s.d.Quotes.Insert(ctx, q); err != nil {
		storage.RemoveBestEffort(ctx, s.d.Blobs, log, uploaded...)
		return SaveResult{}, fmt.Errorf("save signed quote: %w", err)
	}
	metrics.QuotesCreated.WithLabelValues("in_person").Inc()
	log.Info().Str("document_url", docURL).Msg("signed quote stored")

	sent := s.notify(ctx, q, log)
	return SaveResult{
		ID:               id.Hex(),
		Status:           q.Status,
		DocumentURL:      docURL,
		NotificationSent: sent,
	}, nil
}

// LoadPending resolves the quote behind a signature link.
func (s *Service) LoadPending(ctx context.Context, id string) (models.Quote, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return models.Quote{}, ErrLinkInvalid
	}
	q, err := s.d.Quotes.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Quote{}, ErrLinkInvalid
	}
	if err != nil {
		return models.Quote{}, fmt.Errorf("load quote: %w", err)
	}
	if q.IsDeleted || q.Status != models.QuoteStatusPending {
		return models.Quote{}, ErrLinkInvalid
	}
	return q, nil
}

// FinalizeRemote signs a pending quote. Only one call per quote can succeed:
// the status moves from pending to signed with a conditional update.
func (s *Service) FinalizeRemote(ctx context.Context, id, signature string) (SaveResult, error) {
	q, err := s.LoadPending(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLinkInvalid) {
			metrics.RemoteSignatures.WithLabelValues("rejected").Inc()
		}
		return SaveResult{}, err
	}
	if strings.TrimSpace(signature) == "" {
		return SaveResult{}, ErrSignatureRequired
	}
	if _, _, err := render.DecodeDataURL(signature); err != nil {
		return SaveResult{}, &ValidationError{Fields: map[string]string{"signature": "image"}}
	}

	log := s.d.Log.With().Str("quote_id", id).Logger()
	now := s.d.Now().UTC()
	q.Signature = signature
	q.Status = models.QuoteStatusSigned
	q.SignedAt = &now

	docURL, err := s.renderAndUpload(ctx, q, s.productOf(ctx, q, log), log)
	if err != nil {
		metrics.RemoteSignatures.WithLabelValues("error").Inc()
		return SaveResult{}, err
	}

	ok, err := s.d.Quotes.UpdateIf(ctx, id,
		database.Patch{"status": models.QuoteStatusPending, "isDeleted": false},
		database.Patch{
			"status":      models.QuoteStatusSigned,
			"signature":   signature,
			"signedAt":    now,
			"documentUrl": docURL,
		})
	if err != nil {
		storage.RemoveBestEffort(ctx, s.d.Blobs, log, docURL)
		metrics.RemoteSignatures.WithLabelValues("error").Inc()
		return SaveResult{}, fmt.Errorf("save signed quote: %w", err)
	}
	if !ok {
		storage.RemoveBestEffort(ctx, s.d.Blobs, log, docURL)
		metrics.RemoteSignatures.WithLabelValues("rejected").Inc()
		log.Warn().Msg("quote was signed concurrently")
		return SaveResult{}, ErrLinkInvalid
	}
	metrics.RemoteSignatures.WithLabelValues("signed").Inc()
	log.Info().Str("document_url", docURL).Msg("remote signature stored")

	q.DocumentURL = docURL
	sent := s.notify(ctx, q, log)
	return SaveResult{ID: id, Status: q.Status, DocumentURL: docURL, NotificationSent: sent}, nil
}

// ResendNotification emails the stored document again. Nothing is
// re-rendered.
func (s *Service) ResendNotification(ctx context.Context, id string) (bool, error) {
	q, err := s.d.Quotes.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if q.Status != models.QuoteStatusSigned || q.DocumentURL == "" {
		return false, ErrNotSigned
	}
	return s.notify(ctx, q, s.d.Log.With().Str("quote_id", id).Logger()), nil
}

func (s *Service) List(ctx context.Context, f database.Filter) ([]models.Quote, error) {
	return s.d.Quotes.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (models.Quote, error) {
	return s.d.Quotes.Get(ctx, id)
}

func (s *Service) SoftDelete(ctx context.Context, id string) error {
	return s.d.Quotes.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id string) error {
	return s.d.Quotes.Restore(ctx, id)
}

// Delete removes the record for good, then its files when the store can.
func (s *Service) Delete(ctx context.Context, id string) error {
	q, err := s.d.Quotes.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.d.Quotes.Delete(ctx, id); err != nil {
		return err
	}
	urls := []string{q.DocumentURL}
	for _, a := range q.Attachments {
		urls = append(urls, a.PublicURL)
	}
	storage.RemoveBestEffort(ctx, s.d.Blobs, s.d.Log.With().Str("quote_id", id).Logger(), urls...)
	return nil
}

func (s *Service) uploadAttachments(ctx context.Context, quoteID string, sub Submission) ([]models.QuoteAttachment, error) {
	var out []models.QuoteAttachment
	folder := "clients/" + quoteID
	for _, item := range []struct {
		kind string
		file *Upload
	}{
		{KindIdentityDocument, sub.IdentityDocument},
		{KindIncomeProof, sub.IncomeProof},
	} {
		if item.file.empty() {
			continue
		}
		url, err := s.d.Blobs.Upload(ctx, folder, item.file.Data, item.file.ContentType)
		if err != nil {
			urls := make([]string, 0, len(out))
			for _, a := range out {
				urls = append(urls, a.PublicURL)
			}
			storage.RemoveBestEffort(ctx, s.d.Blobs, s.d.Log, urls...)
			return nil, fmt.Errorf("upload %s: %w", item.kind, err)
		}
		out = append(out, models.QuoteAttachment{
			Kind:      item.kind,
			PublicURL: url,
			FileName:  item.file.FileName,
			MimeType:  item.file.ContentType,
			SizeBytes: int64(len(item.file.Data)),
		})
	}
	return out, nil
}

func (s *Service) renderAndUpload(ctx context.Context, q models.Quote, product *models.Product, log zerolog.Logger) (string, error) {
	in := render.Input{Quote: q, Company: s.company(ctx, log)}
	if product != nil && product.ImageURL != "" && s.d.Images != nil {
		img, err := s.d.Images.Fetch(ctx, product.ImageURL)
		if err != nil {
			log.Warn().Err(err).Msg("product image unavailable")
		} else {
			in.ProductImage = img
		}
	}

	start := time.Now()
	pdf, err := s.d.Renderer.Render(ctx, in)
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error().Err(err).Msg("render failed")
		return "", fmt.Errorf("render quote document: %w", err)
	}

	url, err := s.d.Blobs.Upload(ctx, "quotes/"+q.ID.Hex(), pdf, "application/pdf")
	if err != nil {
		log.Error().Err(err).Msg("document upload failed")
		return "", fmt.Errorf("upload quote document: %w", err)
	}
	return url, nil
}

// productOf re-resolves the quoted product. A missing product never blocks
// signing.
func (s *Service) productOf(ctx context.Context, q models.Quote, log zerolog.Logger) *models.Product {
	if q.ProductID == nil || s.d.Products == nil {
		return nil
	}
	p, err := s.d.Products.Get(ctx, q.ProductID.Hex())
	if err != nil {
		log.Warn().Err(err).Str("product_id", q.ProductID.Hex()).Msg("quoted product not resolvable")
		return nil
	}
	return &p
}

func (s *Service) company(ctx context.Context, log zerolog.Logger) models.CompanyInfo {
	if s.d.Company == nil {
		return utils.DefaultCompany(s.d.Now())
	}
	info, err := utils.LoadCompany(ctx, s.d.Company, s.d.Now())
	if err != nil {
		log.Warn().Err(err).Msg("company settings unavailable")
		return utils.DefaultCompany(s.d.Now())
	}
	return info
}

// notify sends the document and records a successful delivery.
func (s *Service) notify(ctx context.Context, q models.Quote, log zerolog.Logger) bool {
	sent := s.d.Notifier.Send(ctx, notify.Message{
		Email:       q.Client.Email,
		Name:        q.Client.FullName(),
		Brand:       q.Brand,
		Model:       q.Model,
		DocumentURL: q.DocumentURL,
		Language:    q.Language,
	})
	metrics.Notifications.WithLabelValues(metrics.NotificationResult(sent)).Inc()
	if !sent {
		return false
	}
	if err := s.d.Quotes.Update(ctx, q.ID.Hex(), database.Patch{"notificationSent": true}); err != nil {
		log.Error().Err(err).Msg("could not record notification")
		return false
	}
	return true
}
