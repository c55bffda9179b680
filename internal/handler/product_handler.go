package handler

import (
	"net/http"
	"strconv"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	in := usecase.ListProductsInput{
		Page:  1,
		Limit: 20,
		Q:     c.QueryParam("q"),
		Sort:  c.QueryParam("sort"),
	}

	if s := c.QueryParam("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "invalid page")
		}
		in.Page = v
	}
	if s := c.QueryParam("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		in.Limit = v
	}
	if s := c.QueryParam("categoryId"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			return badRequest(c, "invalid categoryId")
		}
		in.CategoryID = &v
	}
	if s := c.QueryParam("minPrice"); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return badRequest(c, "invalid minPrice")
		}
		in.MinPrice = &v
	}
	if s := c.QueryParam("maxPrice"); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return badRequest(c, "invalid maxPrice")
		}
		in.MaxPrice = &v
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
