package handler

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/usecase"
	"flatnest/pkg/response"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) Add(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	if err := h.favoriteUseCase.Add(c.Request().Context(), uid, c.Param("flatId")); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{
		"message": "Flat added to favorites",
	})
}

func (h *FavoriteHandler) Remove(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	if err := h.favoriteUseCase.Remove(c.Request().Context(), uid, c.Param("flatId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Flat removed from favorites",
	})
}

func (h *FavoriteHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	flats, err := h.favoriteUseCase.ListFlats(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, flats)
}

func (h *FavoriteHandler) Check(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	isFavorite, err := h.favoriteUseCase.IsFavorite(c.Request().Context(), uid, c.Param("flatId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{
		"is_favorite": isFavorite,
	})
}
