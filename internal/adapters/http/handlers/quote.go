package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
)

// ExportFilename is the attachment name of GET /quotes/export.
const ExportFilename = "quotes.json"

// QuoteHandler serves the quote list, categories, and import/export.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// ListQuotes handles GET /api/v1/quotes.
// Without a category query the remembered selection is used.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	ctx := c.Request.Context()

	category := req.Category
	if category == "" {
		category = h.service.SelectedCategory(ctx)
	}

	page, err := dto.Paginate(dto.ToQuoteResponses(h.service.List(ctx, category)), req.PaginationRequest)
	if err != nil {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, page)
}

// AddQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	q, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToQuoteResponse(q))
}

// RandomQuote handles GET /api/v1/quotes/random.
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	ctx := c.Request.Context()

	category, ok := c.GetQuery("category")
	if !ok {
		category = h.service.SelectedCategory(ctx)
	}

	q, err := h.service.RandomQuote(ctx, category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(q))
}

// LastViewed handles GET /api/v1/quotes/last-viewed.
func (h *QuoteHandler) LastViewed(c *gin.Context) {
	q, err := h.service.LastViewed(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(q))
}

// Export handles GET /api/v1/quotes/export.
func (h *QuoteHandler) Export(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import handles POST /api/v1/quotes/import. The body is the exported JSON array.
func (h *QuoteHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "reading body: "+err.Error())
		return
	}

	res, err := h.service.Import(c.Request.Context(), data)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	message := "No new quotes to import."
	if res.Added > 0 {
		message = app.MessageQuotesImported
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Added: res.Added, Skipped: res.Skipped, Message: message})
}

// Categories handles GET /api/v1/categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: h.service.Categories(ctx),
		Selected:   h.service.SelectedCategory(ctx),
	})
}

// SelectCategory handles PUT /api/v1/categories/selected. "all" clears the filter.
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.SetSelectedCategory(ctx, req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: h.service.Categories(ctx),
		Selected:   h.service.SelectedCategory(ctx),
	})
}

// RegisterRoutes registers the quote and category routes.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.RandomQuote)
	quotes.GET("/last-viewed", h.LastViewed)
	quotes.GET("/export", h.Export)
	quotes.POST("/import", h.Import)

	categories := rg.Group("/categories")
	categories.GET("", h.Categories)
	categories.PUT("/selected", h.SelectCategory)
}

