package usecase

import (
	"context"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/pkg/errors"
	"webshop/pkg/logger"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	listingRepo  repository.ListingRepository
	store        *store.ViewStore
	session      *session.Session
}

func NewFavoriteUseCase(
	favoriteRepo repository.FavoriteRepository,
	listingRepo repository.ListingRepository,
	viewStore *store.ViewStore,
	sess *session.Session,
) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		listingRepo:  listingRepo,
		store:        viewStore,
		session:      sess,
	}
}

// LoadFavorites never fails: any error, including a timeout, leaves an empty
// favorites list and is only logged.
func (uc *FavoriteUseCase) LoadFavorites(ctx context.Context) []*entity.Favorite {
	email := uc.session.Email()
	if email == "" {
		uc.store.ClearFavorites()
		return []*entity.Favorite{}
	}

	favorites, err := uc.favoriteRepo.List(ctx, email)
	if err != nil {
		logger.Warn("favorites for %s unavailable: %v", email, err)
		uc.store.ClearFavorites()
		return []*entity.Favorite{}
	}
	for _, f := range favorites {
		uc.resolve(f)
	}
	uc.store.ReplaceFavorites(favorites)
	return uc.store.Snapshot().Favorites
}

func (uc *FavoriteUseCase) AddFavorite(ctx context.Context, itemID int64) (*entity.Favorite, error) {
	email := uc.session.Email()
	if email == "" {
		return nil, errors.Unauthorized("Log in to save favorites", nil)
	}
	if uc.store.IsFavorite(itemID) {
		return nil, nil
	}

	favorite, err := uc.favoriteRepo.Add(ctx, email, itemID)
	if err != nil {
		return nil, err
	}
	if favorite == nil {
		favorite = &entity.Favorite{UserEmail: email}
	}
	if favorite.Item == nil {
		if listing, ok := uc.store.Listing(itemID); ok {
			favorite.Item = listing
		} else {
			favorite.Item = &entity.Listing{ID: itemID}
		}
	}
	uc.resolve(favorite)

	current := uc.store.Snapshot().Favorites
	uc.store.ReplaceFavorites(append(current, favorite))
	return favorite, nil
}

func (uc *FavoriteUseCase) RemoveFavorite(ctx context.Context, itemID int64) error {
	email := uc.session.Email()
	if email == "" {
		return errors.Unauthorized("Log in to manage favorites", nil)
	}

	if err := uc.favoriteRepo.Remove(ctx, email, itemID); err != nil {
		return err
	}

	current := uc.store.Snapshot().Favorites
	kept := make([]*entity.Favorite, 0, len(current))
	for _, f := range current {
		if f.ItemID() != itemID {
			kept = append(kept, f)
		}
	}
	uc.store.ReplaceFavorites(kept)
	return nil
}

func (uc *FavoriteUseCase) resolve(f *entity.Favorite) {
	if f != nil && f.Item.HasImage() {
		f.Item.ImageURL = entity.StringPtr(uc.listingRepo.ResolveImageURL(*f.Item.ImageURL))
	}
}
