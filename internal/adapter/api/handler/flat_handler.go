package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/internal/usecase"
	"flatnest/pkg/errors"
	"flatnest/pkg/response"
)

type FlatHandler struct {
	flatUseCase *usecase.FlatUseCase
}

func NewFlatHandler(flatUseCase *usecase.FlatUseCase) *FlatHandler {
	return &FlatHandler{
		flatUseCase: flatUseCase,
	}
}

type flatRequest struct {
	City          string  `json:"city" validate:"required"`
	StreetName    string  `json:"street_name" validate:"required"`
	StreetNumber  int     `json:"street_number" validate:"required,gt=0"`
	AreaSize      float64 `json:"area_size" validate:"required,gt=0"`
	HasAC         bool    `json:"has_ac"`
	YearBuilt     int     `json:"year_built" validate:"required,gt=1800"`
	RentPrice     float64 `json:"rent_price" validate:"required,gt=0"`
	AvailableDate string  `json:"available_date" validate:"required"`
}

func (r *flatRequest) toEntity() (*entity.Flat, error) {
	availableDate, err := time.Parse("2006-01-02", r.AvailableDate)
	if err != nil {
		return nil, errors.BadRequest("available_date must be in YYYY-MM-DD format", err)
	}

	return &entity.Flat{
		City:          r.City,
		StreetName:    r.StreetName,
		StreetNumber:  r.StreetNumber,
		AreaSize:      r.AreaSize,
		HasAC:         r.HasAC,
		YearBuilt:     r.YearBuilt,
		RentPrice:     r.RentPrice,
		AvailableDate: availableDate,
	}, nil
}

func (h *FlatHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	var req flatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	flat, err := req.toEntity()
	if err != nil {
		return response.Error(c, err)
	}

	created, err := h.flatUseCase.Create(c.Request().Context(), uid, flat)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, created)
}

func (h *FlatHandler) GetByID(c echo.Context) error {
	flat, err := h.flatUseCase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, flat)
}

func (h *FlatHandler) Update(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	var req flatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	flat, err := req.toEntity()
	if err != nil {
		return response.Error(c, err)
	}

	updated, err := h.flatUseCase.Update(c.Request().Context(), uid, c.Param("id"), flat)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, updated)
}

func (h *FlatHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	if err := h.flatUseCase.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Flat deleted",
	})
}

func (h *FlatHandler) List(c echo.Context) error {
	filter := repository.FlatFilter{
		City: c.QueryParam("city"),
	}
	if v := c.QueryParam("max_rent_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return response.Error(c, errors.BadRequest("max_rent_price must be a number", err))
		}
		filter.MaxRentPrice = price
	}
	if v := c.QueryParam("min_area_size"); v != "" {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return response.Error(c, errors.BadRequest("min_area_size must be a number", err))
		}
		filter.MinAreaSize = size
	}

	flats, err := h.flatUseCase.List(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, flats)
}

func (h *FlatHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	flats, err := h.flatUseCase.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, flats)
}
