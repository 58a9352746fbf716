package healthcarefinder

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	finder *Finder
}

func NewHandler(finder *Finder) *Handler {
	return &Handler{finder: finder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/localization/organization/search", h.Search)
}

func (h *Handler) Search(c echo.Context) error {
	var search SearchRequest
	if err := c.Bind(&search); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.finder.SearchOrganizations(c.Request().Context(), search.Normalized())
	switch {
	case errors.Is(err, ErrBadSearchParams):
		return echo.NewHTTPError(http.StatusBadRequest, "Bad search parameters")
	case errors.Is(err, ErrUpstream):
		return echo.NewHTTPError(http.StatusInternalServerError,
			"Error while processing your request. Please try again later")
	case errors.Is(err, ErrHydration):
		return echo.NewHTTPError(http.StatusInternalServerError, "Error while processing your request")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if resp == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No organizations found")
	}
	return c.JSON(http.StatusOK, resp)
}
