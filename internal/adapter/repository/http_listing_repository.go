package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/httpclient"
	"webshop/pkg/config"
	"webshop/pkg/errors"
)

type httpListingRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPListingRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.ListingRepository {
	return &httpListingRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

// createListingPayload omits the id, which the backend assigns.
type createListingPayload struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Price         decimal.Decimal       `json:"price"`
	OwnerEmail    string                `json:"ownerEmail"`
	Category      entity.Category       `json:"category"`
	ContactEmail  *string               `json:"contactEmail"`
	ContactPhone  *string               `json:"contactPhone"`
	PaymentMethod *entity.PaymentMethod `json:"paymentMethod"`
	IsVip         bool                  `json:"isVip"`
	ImageURL      *string               `json:"imageUrl"`
}

func (r *httpListingRepository) Create(ctx context.Context, listing *entity.Listing) (*repository.CreatedListing, error) {
	payload := createListingPayload{
		Title:         listing.Title,
		Description:   listing.Description,
		Price:         listing.Price,
		OwnerEmail:    listing.OwnerEmail,
		Category:      listing.Category,
		ContactEmail:  listing.ContactEmail,
		ContactPhone:  listing.ContactPhone,
		PaymentMethod: listing.PaymentMethod,
		IsVip:         listing.VIP(),
		ImageURL:      listing.ImageURL,
	}

	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:        http.MethodPost,
		Path:          "/items",
		Body:          payload,
		Timeout:       r.timeouts.Create,
		ColdStartHint: true,
	})
	if err != nil {
		return nil, err
	}

	var created entity.Listing
	if err := httpclient.DecodeObject(resp.Body, &created); err != nil {
		return nil, err
	}

	return &repository.CreatedListing{
		Listing:           &created,
		ImageFieldPresent: httpclient.HasField(resp.Body, "imageUrl"),
	}, nil
}

func (r *httpListingRepository) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/items/%d", id),
		Timeout:  r.timeouts.Enrichment,
		NoCache:  true,
		Endpoint: "GET /items/:id",
	})
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.RemoteStatus == http.StatusNotFound {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, err
	}

	var listing entity.Listing
	if err := httpclient.DecodeObject(resp.Body, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *httpListingRepository) List(ctx context.Context) ([]*entity.Listing, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:       http.MethodGet,
		Path:         "/items",
		DegradedPath: "/items/list",
		Timeout:      r.timeouts.Default,
	})
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[*entity.Listing](resp.Body)
}

func (r *httpListingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodDelete,
		Path:     fmt.Sprintf("/items/%d", id),
		Timeout:  r.timeouts.Default,
		Endpoint: "DELETE /items/:id",
	})
	return err
}

func (r *httpListingRepository) GetImageURL(ctx context.Context, id int64) (string, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/items/%d/image", id),
		Timeout:  r.timeouts.Enrichment,
		NoCache:  true,
		Endpoint: "GET /items/:id/image",
	})
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.RemoteStatus == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}

	var body struct {
		ImageURL *string `json:"imageUrl"`
	}
	if err := httpclient.DecodeObject(resp.Body, &body); err != nil {
		return "", err
	}
	return entity.Deref(body.ImageURL), nil
}

func (r *httpListingRepository) RawImageURL(id int64) string {
	return fmt.Sprintf("%s/items/%d/image/raw", r.executor.BaseURL(), id)
}

func (r *httpListingRepository) UploadImage(ctx context.Context, id int64, ownerEmail string, image repository.ImageUpload) (*repository.UploadResult, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/upload/%d", id),
		Form: &httpclient.MultipartForm{
			Fields: map[string]string{"ownerEmail": ownerEmail},
			Files: []httpclient.FormFile{{
				Field:       "file",
				Filename:    image.Filename,
				ContentType: image.ContentType,
				Data:        image.Data,
			}},
		},
		Timeout:  r.timeouts.Upload,
		Endpoint: "POST /upload/:id",
	})
	if err != nil {
		return nil, err
	}

	// Older deployments answer with plain text; treat that as "not yet known".
	result := &repository.UploadResult{}
	if err := httpclient.DecodeObject(resp.Body, result); err != nil {
		result.Message = resp.Text()
	}
	return result, nil
}

func (r *httpListingRepository) ResolveImageURL(ref string) string {
	return entity.ResolveImageURL(r.executor.BaseURL(), ref)
}
