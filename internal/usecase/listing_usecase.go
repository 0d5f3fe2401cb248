package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/internal/domain/validation"
	"webshop/internal/infrastructure/imaging"
	"webshop/pkg/config"
	"webshop/pkg/errors"
	"webshop/pkg/logger"
)

const MinDescriptionLength = 40

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	store       *store.ViewStore
	session     *session.Session
	compressor  ImageCompressor
	prefs       session.Preferences
	vip         *VipUseCase
	images      config.ImageConfig
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	viewStore *store.ViewStore,
	sess *session.Session,
	compressor ImageCompressor,
	prefs session.Preferences,
	vip *VipUseCase,
	images config.ImageConfig,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		store:       viewStore,
		session:     sess,
		compressor:  compressor,
		prefs:       prefs,
		vip:         vip,
		images:      images,
	}
}

type CreateListingInput struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Price         string               `json:"price"`
	Category      entity.Category      `json:"category"`
	ContactEmail  string               `json:"contactEmail"`
	ContactPhone  string               `json:"contactPhone"`
	PaymentMethod entity.PaymentMethod `json:"paymentMethod"`
	RequestVip    bool                 `json:"requestVip"`
	Images        []imaging.ImageFile  `json:"-"`
}

// CreateListingResult is returned once the listing is visible. Warnings
// carry non-fatal failures of the photo phase.
type CreateListingResult struct {
	Listing        *entity.Listing    `json:"listing"`
	ImageAvailable bool               `json:"imageAvailable"`
	VipTransaction *VipTransaction    `json:"vipTransaction,omitempty"`
	Warnings       []*errors.AppError `json:"-"`
}

// UploadOutcome describes one photo upload and its reconciliation.
type UploadOutcome struct {
	ImageURL   string `json:"imageUrl,omitempty"`
	Available  bool   `json:"available"`
	Compressed bool   `json:"compressed"`
	Size       int64  `json:"size"`
}

// ContactDefaults prefill the creation form.
type ContactDefaults struct {
	ContactEmail  string               `json:"contactEmail"`
	ContactPhone  string               `json:"contactPhone"`
	Category      entity.Category      `json:"category"`
	PaymentMethod entity.PaymentMethod `json:"paymentMethod"`
}

// CreateListing validates the input locally, creates the listing without a
// photo, uploads the photos and reconciles the image reference, then makes
// the listing visible and selected. Once the create call succeeds nothing
// below fails the operation; photo problems become warnings.
func (uc *ListingUseCase) CreateListing(ctx context.Context, input CreateListingInput) (*CreateListingResult, error) {
	email := uc.session.Email()
	if email == "" {
		return nil, errors.Unauthorized("Log in to create a listing", nil)
	}
	draft, err := uc.validateCreate(email, input)
	if err != nil {
		return nil, err
	}

	// Phase 1: metadata only.
	created, err := uc.listingRepo.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	if created == nil || created.Listing == nil || created.Listing.ID <= 0 {
		return nil, errors.ServerRejected(0, "The server did not return an id for the new listing")
	}
	listing := backfill(created.Listing, draft)
	logger.Info("created listing %d for %s", listing.ID, email)

	if !created.ImageFieldPresent {
		if fetched, err := uc.listingRepo.GetByID(ctx, listing.ID); err != nil {
			logger.Warn("enrichment of listing %d failed, keeping create response: %v", listing.ID, err)
		} else {
			listing = backfill(fetched, listing)
		}
	}

	// Phase 2: photos. Failures never undo Phase 1.
	result := &CreateListingResult{}
	for _, img := range input.Images {
		outcome, err := uc.uploadAndReconcile(ctx, listing.ID, email, img)
		if err != nil {
			logger.Warn("photo %q for listing %d not uploaded: %v", img.Name, listing.ID, err)
			result.Warnings = append(result.Warnings, errors.ImageUploadFailed(err))
			continue
		}
		if outcome.ImageURL != "" {
			listing.ImageURL = entity.StringPtr(outcome.ImageURL)
			result.ImageAvailable = true
		}
	}

	uc.resolve(listing)
	stored, ok := uc.store.UpsertListing(listing)
	if !ok {
		stored = listing
	}
	uc.store.Select(stored.ID)
	result.Listing = stored

	if phone := entity.Deref(draft.ContactPhone); phone != "" && uc.prefs != nil {
		if err := uc.prefs.SetContactPhone(email, phone); err != nil {
			logger.Warn("failed to remember contact phone: %v", err)
		}
	}

	if input.RequestVip && uc.vip != nil {
		tx, err := uc.vip.Begin(stored.ID)
		if err != nil {
			logger.Warn("VIP upgrade for listing %d not started: %v", stored.ID, err)
		} else {
			result.VipTransaction = tx
		}
	}

	return result, nil
}

func (uc *ListingUseCase) validateCreate(email string, input CreateListingInput) (*entity.Listing, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.ValidationFailed("title", "Please enter a title")
	}
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return nil, errors.ValidationFailed("description", "Description must be at least 40 characters")
	}
	price, err := ParsePrice(input.Price)
	if err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = entity.CategoryOther
	}
	if !category.Valid() {
		return nil, errors.ValidationFailed("category", "Unknown category")
	}
	payment := input.PaymentMethod
	if payment == "" {
		payment = entity.PaymentCashOnDelivery
	}
	if !payment.Valid() {
		return nil, errors.ValidationFailed("paymentMethod", "Unknown payment method")
	}

	contactEmail := entity.OptionalString(input.ContactEmail)
	contactPhone := entity.OptionalString(input.ContactPhone)
	if contactEmail == nil && contactPhone == nil {
		return nil, errors.ValidationFailed("contact", "Please provide a contact email or phone")
	}
	if contactEmail != nil {
		if err := validation.Var("contactEmail", *contactEmail, "email"); err != nil {
			return nil, err
		}
	}

	if len(input.Images) == 0 {
		return nil, errors.ValidationFailed("images", "Please add a photo")
	}
	for _, img := range input.Images {
		if err := uc.compressor.CheckSize(img); err != nil {
			return nil, err
		}
	}

	return &entity.Listing{
		Title:         title,
		Description:   description,
		Price:         price,
		OwnerEmail:    email,
		Category:      category,
		ContactEmail:  contactEmail,
		ContactPhone:  contactPhone,
		IsVip:         entity.BoolPtr(false),
		PaymentMethod: &payment,
	}, nil
}

// ParsePrice accepts a comma or a dot as the decimal separator.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	price, err := decimal.NewFromString(raw)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, errors.ValidationFailed("price", "Please enter a valid price (greater than 0)")
	}
	return price, nil
}

// uploadAndReconcile compresses the photo when needed, uploads it and works
// out where the backend serves it from.
func (uc *ListingUseCase) uploadAndReconcile(ctx context.Context, id int64, email string, img imaging.ImageFile) (*UploadOutcome, error) {
	upload := repository.ImageUpload{Filename: img.Name, ContentType: img.ContentType, Data: img.Data}
	outcome := &UploadOutcome{Size: img.Size()}

	if img.Size() > uc.images.Threshold {
		compressed, err := uc.compressor.Compress(ctx, img, uc.images.Budget)
		if err != nil {
			return nil, err
		}
		upload = repository.ImageUpload{
			Filename:    compressed.Name,
			ContentType: compressed.ContentType,
			Data:        compressed.Data,
		}
		outcome.Compressed = true
		outcome.Size = compressed.Size()
	} else {
		mtype := mimetype.Detect(img.Data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, errors.InvalidImage(nil)
		}
		if upload.ContentType == "" {
			upload.ContentType = mtype.String()
		}
		if upload.Filename == "" {
			upload.Filename = "photo" + mtype.Extension()
		}
	}

	resp, err := uc.listingRepo.UploadImage(ctx, id, email, upload)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.ImageAvailable:
		outcome.ImageURL = uc.listingRepo.RawImageURL(id)
	case resp.ImageURL != "":
		outcome.ImageURL = uc.listingRepo.ResolveImageURL(resp.ImageURL)
	default:
		outcome.ImageURL = uc.pollImage(ctx, id)
	}
	outcome.Available = outcome.ImageURL != ""
	return outcome, nil
}

// pollImage asks for the image reference a few times with a fixed pause in
// between. Absence is not an error.
func (uc *ListingUseCase) pollImage(ctx context.Context, id int64) string {
	attempts := uc.images.PollAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		ref, err := uc.listingRepo.GetImageURL(ctx, id)
		if err != nil {
			logger.Debug("image poll %d for listing %d failed: %v", attempt+1, id, err)
		} else if ref != "" {
			return uc.listingRepo.ResolveImageURL(ref)
		}

		if attempt < attempts-1 {
			if !sleep(ctx, uc.images.PollBackoff) {
				return ""
			}
		}
	}
	logger.Debug("listing %d has no image reference yet", id)
	return ""
}

// RefreshListings replaces the listing collection with a fresh snapshot.
func (uc *ListingUseCase) RefreshListings(ctx context.Context) ([]*entity.Listing, error) {
	listings, err := uc.listingRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		uc.resolve(l)
	}
	uc.store.ReplaceListings(listings)
	return uc.store.Listings(), nil
}

// OpenListing selects a listing for the detail view, refreshing it from the
// backend. When the read fails the known snapshot is shown instead. A 404 is
// returned as is and leaves the collection alone, since only an explicit
// delete removes a listing.
func (uc *ListingUseCase) OpenListing(ctx context.Context, id int64) (*entity.Listing, error) {
	fetched, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		known, ok := uc.store.Listing(id)
		if !ok {
			return nil, err
		}
		logger.Warn("showing cached listing %d: %v", id, err)
		uc.store.Select(id)
		return known, nil
	}

	if !fetched.HasImage() {
		if known, ok := uc.store.Listing(id); !ok || !known.HasImage() {
			if ref, err := uc.listingRepo.GetImageURL(ctx, id); err != nil {
				logger.Debug("image lookup for listing %d failed: %v", id, err)
			} else if ref != "" {
				fetched.ImageURL = entity.StringPtr(ref)
			}
		}
	}

	uc.resolve(fetched)
	stored, ok := uc.store.UpsertListing(fetched)
	if !ok {
		return nil, errors.ServerRejected(0, "The server returned an incomplete listing")
	}
	uc.store.Select(id)
	return stored, nil
}

// UploadImage adds or replaces the photo of a listing the user owns.
func (uc *ListingUseCase) UploadImage(ctx context.Context, id int64, img imaging.ImageFile) (*entity.Listing, *UploadOutcome, error) {
	email := uc.session.Email()
	if email == "" {
		return nil, nil, errors.Unauthorized("Log in to upload a photo", nil)
	}
	listing, ok := uc.store.Listing(id)
	if !ok {
		return nil, nil, errors.NotFound("Listing", nil)
	}
	if !listing.OwnedBy(email) {
		return nil, nil, errors.Forbidden("Only the owner can change the photo", nil)
	}
	if err := uc.compressor.CheckSize(img); err != nil {
		return nil, nil, err
	}

	outcome, err := uc.uploadAndReconcile(ctx, id, email, img)
	if err != nil {
		return nil, nil, err
	}
	if outcome.ImageURL != "" {
		listing.ImageURL = entity.StringPtr(outcome.ImageURL)
	}
	stored, _ := uc.store.UpsertListing(listing)
	if stored == nil {
		stored = listing
	}
	return stored, outcome, nil
}

// DeleteListing removes a listing the user owns, remotely and from every view.
func (uc *ListingUseCase) DeleteListing(ctx context.Context, id int64) error {
	email := uc.session.Email()
	if email == "" {
		return errors.Unauthorized("Log in to delete a listing", nil)
	}
	if listing, ok := uc.store.Listing(id); ok && !listing.OwnedBy(email) {
		return errors.Forbidden("Only the owner can delete this listing", nil)
	}

	// Already gone remotely is as good as deleted.
	if err := uc.listingRepo.Delete(ctx, id); err != nil {
		if appErr, ok := errors.As(err); !ok || appErr.RemoteStatus != http.StatusNotFound {
			return err
		}
	}
	uc.store.RemoveListing(id)
	logger.Info("deleted listing %d", id)
	return nil
}

func (uc *ListingUseCase) ContactDefaults() ContactDefaults {
	email := uc.session.Email()
	defaults := ContactDefaults{
		ContactEmail:  email,
		Category:      entity.CategoryOther,
		PaymentMethod: entity.PaymentCashOnDelivery,
	}
	if email != "" && uc.prefs != nil {
		phone, err := uc.prefs.ContactPhone(email)
		if err != nil {
			logger.Warn("failed to read remembered phone: %v", err)
		}
		defaults.ContactPhone = phone
	}
	return defaults
}

// resolve turns a relative image path into an absolute URL.
func (uc *ListingUseCase) resolve(l *entity.Listing) {
	if l != nil && l.HasImage() {
		l.ImageURL = entity.StringPtr(uc.listingRepo.ResolveImageURL(*l.ImageURL))
	}
}

// backfill fills the fields primary lacks from fallback.
func backfill(primary, fallback *entity.Listing) *entity.Listing {
	out := primary.Clone()
	if fallback == nil {
		return out
	}
	if out.ID == 0 {
		out.ID = fallback.ID
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = fallback.Title
	}
	if strings.TrimSpace(out.Description) == "" {
		out.Description = fallback.Description
	}
	if out.Price.IsZero() {
		out.Price = fallback.Price
	}
	if out.OwnerEmail == "" {
		out.OwnerEmail = fallback.OwnerEmail
	}
	if out.Category == "" {
		out.Category = fallback.Category
	}
	if !out.HasImage() && fallback.HasImage() {
		out.ImageURL = entity.StringPtr(*fallback.ImageURL)
	}
	if out.ContactEmail == nil && fallback.ContactEmail != nil {
		out.ContactEmail = entity.StringPtr(*fallback.ContactEmail)
	}
	if out.ContactPhone == nil && fallback.ContactPhone != nil {
		out.ContactPhone = entity.StringPtr(*fallback.ContactPhone)
	}
	if out.IsVip == nil && fallback.IsVip != nil {
		out.IsVip = entity.BoolPtr(*fallback.IsVip)
	}
	if out.PaymentMethod == nil && fallback.PaymentMethod != nil {
		p := *fallback.PaymentMethod
		out.PaymentMethod = &p
	}
	return out
}

// sleep waits for d or until ctx is done, reporting whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// MaxImageSize is the largest photo accepted before compression.
func (uc *ListingUseCase) MaxImageSize() int64 {
	return uc.compressor.HardCap()
}
