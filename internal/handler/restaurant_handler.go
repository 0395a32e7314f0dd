package handler

import (
	"github.com/gin-gonic/gin"

	"restau/internal/service"
)

// RestaurantHandler lists restaurants.
type RestaurantHandler struct {
	restaurantService service.RestaurantService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(restaurantService service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

// Mine handles GET /api/v1/restaurants/mine
// @Summary Restaurants visible to the caller
// @Tags restaurants
// @Produce json
// @Success 200 {object} Response{data=[]domain.Restaurant}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /restaurants/mine [get]
func (h *RestaurantHandler) Mine(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	restaurants, err := h.restaurantService.Mine(c.Request.Context(), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, restaurants)
}

// List handles GET /api/v1/restaurants
// @Summary All restaurants
// @Tags restaurants
// @Produce json
// @Success 200 {object} Response{data=[]domain.Restaurant}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Insufficient role"
// @Security BearerAuth
// @Router /restaurants [get]
func (h *RestaurantHandler) List(c *gin.Context) {
	restaurants, err := h.restaurantService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, restaurants)
}
