package usecase

import (
	"context"
	"strings"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/internal/domain/validation"
	"webshop/pkg/errors"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	store      *store.ViewStore
	session    *session.Session
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository, viewStore *store.ViewStore, sess *session.Session) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		store:      viewStore,
		session:    sess,
	}
}

type CreateReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// GetReviews loads the reviews of a listing into the store. A failure leaves
// an empty list behind so the detail view never shows another listing's reviews.
func (uc *ReviewUseCase) GetReviews(ctx context.Context, itemID int64) ([]*entity.Review, error) {
	reviews, err := uc.reviewRepo.List(ctx, itemID)
	if err != nil {
		uc.store.ReplaceReviews(itemID, nil)
		return nil, err
	}
	uc.store.ReplaceReviews(itemID, reviews)
	return reviews, nil
}

func (uc *ReviewUseCase) CreateReview(ctx context.Context, itemID int64, input CreateReviewInput) (*entity.Review, error) {
	email := uc.session.Email()
	if email == "" {
		return nil, errors.Unauthorized("Log in to leave a review", nil)
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if listing, ok := uc.store.Listing(itemID); ok && listing.OwnedBy(email) {
		return nil, errors.Forbidden("You cannot review your own listing", nil)
	}

	review, err := uc.reviewRepo.Create(ctx, itemID, &entity.Review{
		AuthorEmail: email,
		Rating:      input.Rating,
		Comment:     input.Comment,
	})
	if err != nil {
		return nil, err
	}
	uc.store.AppendReview(itemID, review)
	return review, nil
}
