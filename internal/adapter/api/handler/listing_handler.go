package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"webshop/internal/domain/entity"
	"webshop/internal/infrastructure/imaging"
	"webshop/internal/usecase"
	"webshop/pkg/errors"
	"webshop/pkg/response"
	"webshop/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

func (h *ListingHandler) ListListings(c echo.Context) error {
	listings, err := h.listingUseCase.RefreshListings(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	if !params.Enabled {
		return response.Success(c, listings)
	}
	return response.Paginated(c, utils.Paginate(listings, params), int64(len(listings)), params.Page, params.PageSize)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.OpenListing(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

// CreateListing accepts a multipart form: the listing fields plus one or
// more "images" files.
func (h *ListingHandler) CreateListing(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, errors.ValidationFailed("images", "Expected a multipart form with a photo"))
	}

	files := form.File["images"]
	if len(files) == 0 {
		files = form.File["image"]
	}
	images, err := h.readImages(files)
	if err != nil {
		return response.Error(c, err)
	}

	requestVip, _ := strconv.ParseBool(c.FormValue("requestVip"))
	input := usecase.CreateListingInput{
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		Price:         c.FormValue("price"),
		Category:      entity.Category(c.FormValue("category")),
		ContactEmail:  c.FormValue("contactEmail"),
		ContactPhone:  c.FormValue("contactPhone"),
		PaymentMethod: entity.PaymentMethod(c.FormValue("paymentMethod")),
		RequestVip:    requestVip,
		Images:        images,
	}

	result, err := h.listingUseCase.CreateListing(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Partial(c, http.StatusCreated, result, result.Warnings...)
}

func (h *ListingHandler) UploadImage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.ValidationFailed("image", "Please add a photo"))
	}
	images, err := h.readImages([]*multipart.FileHeader{fh})
	if err != nil {
		return response.Error(c, err)
	}

	listing, outcome, err := h.listingUseCase.UploadImage(c.Request().Context(), id, images[0])
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"listing": listing,
		"upload":  outcome,
	})
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.listingUseCase.DeleteListing(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Listing deleted"})
}

func (h *ListingHandler) GetDefaults(c echo.Context) error {
	return response.Success(c, h.listingUseCase.ContactDefaults())
}

// readImages loads the uploaded files, refusing anything above the hard cap
// without reading it whole.
func (h *ListingHandler) readImages(files []*multipart.FileHeader) ([]imaging.ImageFile, error) {
	limit := h.listingUseCase.MaxImageSize()
	images := make([]imaging.ImageFile, 0, len(files))
	for _, fh := range files {
		if fh.Size > limit {
			return nil, errors.ImageTooLarge(fh.Size, limit)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.InvalidImage(err)
		}
		data, err := io.ReadAll(io.LimitReader(f, limit+1))
		f.Close()
		if err != nil {
			return nil, errors.InvalidImage(err)
		}
		if int64(len(data)) > limit {
			return nil, errors.ImageTooLarge(int64(len(data)), limit)
		}
		images = append(images, imaging.ImageFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Data:        data,
		})
	}
	return images, nil
}
