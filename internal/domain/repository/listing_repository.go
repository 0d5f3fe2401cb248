package repository

import (
	"context"

	"webshop/internal/domain/entity"
)

// UploadResult is the backend's answer to a photo upload.
type UploadResult struct {
	ImageURL       string `json:"imageUrl"`
	ImageAvailable bool   `json:"imageAvailable"`
	Message        string `json:"message"`
}

// ImageUpload is one encoded photo ready for multipart transfer.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreatedListing is the metadata create response. ImageFieldPresent is false
// when the backend trimmed imageUrl from the payload entirely.
type CreatedListing struct {
	Listing           *entity.Listing
	ImageFieldPresent bool
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) (*CreatedListing, error)
	GetByID(ctx context.Context, id int64) (*entity.Listing, error)
	// List returns all listings, preferring the light endpoint where the
	// deployment requires it.
	List(ctx context.Context) ([]*entity.Listing, error)
	Delete(ctx context.Context, id int64) error
	// GetImageURL returns "" with a nil error when the listing has no image yet.
	GetImageURL(ctx context.Context, id int64) (string, error)
	RawImageURL(id int64) string
	UploadImage(ctx context.Context, id int64, ownerEmail string, image ImageUpload) (*UploadResult, error)
	ResolveImageURL(ref string) string
}
