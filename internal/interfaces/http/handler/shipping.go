package handler

import (
	"context"
	"mime"
	"net/http"

	"github.com/freightdesk/backend/internal/application/shipping"
	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/freightdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ShippingService is the use case surface behind the shipment endpoints.
type ShippingService interface {
	PreviewGroups(ctx context.Context, days int) (*shipping.GroupPreview, error)
	SearchPurchaseOrders(ctx context.Context, req shipping.SearchRequest) (*shipping.SearchResult, error)
	BuildBOLBundle(ctx context.Context, req shipping.BOLBundleRequest) (*shipping.BOLBundle, error)
	PushWMSOrders(ctx context.Context, req shipping.WMSPushRequest) (*shipping.WMSPushResult, error)
}

// ShippingHandler serves LTL consolidation, BOL and WMS endpoints.
type ShippingHandler struct {
	BaseHandler
	svc ShippingService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(svc ShippingService) *ShippingHandler {
	return &ShippingHandler{svc: svc}
}

// Routes returns the shipment routes, mounted under /shipments.
func (h *ShippingHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("shipments", "/shipments").
		GET("/groups", h.PreviewGroups).
		POST("/search", h.SearchPurchaseOrders).
		POST("/bols", h.BuildBOLBundle).
		POST("/wms-orders", h.PushWMSOrders)
}

// GroupsQuery is the query string of GET /shipments/groups.
type GroupsQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=31"`
}

// PreviewGroups godoc
// @ID           previewShipmentGroups
// @Summary      Preview LTL groups
// @Description  Fetches recent LTL orders and shows how they consolidate into shipments
// @Tags         shipments
// @Produce      json
// @Param        days query int false "Look-back window in days" minimum(1) maximum(31)
// @Success      200 {object} APIResponse[shipping.GroupPreview]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /shipments/groups [get]
func (h *ShippingHandler) PreviewGroups(c *gin.Context) {
	var q GroupsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	preview, err := h.svc.PreviewGroups(c.Request.Context(), q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// SearchPurchaseOrders godoc
// @ID           searchShipments
// @Summary      Search purchase orders
// @Description  Looks up LTL orders by purchase order number
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body shipping.SearchRequest true "Purchase orders"
// @Success      200 {object} APIResponse[shipping.SearchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /shipments/search [post]
func (h *ShippingHandler) SearchPurchaseOrders(c *gin.Context) {
	var req shipping.SearchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.SearchPurchaseOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BuildBOLBundle godoc
// @ID           buildBOLBundle
// @Summary      Build BOL bundle
// @Description  Renders one Bill of Lading per shipment group and returns them as a ZIP.
// @Description  Send Accept: application/json to receive the batch summary instead of the archive.
// @Tags         shipments
// @Accept       json
// @Produce      application/zip
// @Produce      json
// @Param        request body shipping.BOLBundleRequest false "Batch selection"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /shipments/bols [post]
func (h *ShippingHandler) BuildBOLBundle(c *gin.Context) {
	var req shipping.BOLBundleRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	bundle, err := h.svc.BuildBOLBundle(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header(middleware.HeaderBatchID, bundle.BatchID)
	if bundle.Artifact != nil && bundle.Artifact.URL != "" {
		c.Header(middleware.HeaderArtifactURL, bundle.Artifact.URL)
	}

	if c.NegotiateFormat(bol.ContentTypeZIP, binding.MIMEJSON) == binding.MIMEJSON {
		h.Success(c, bundle)
		return
	}
	if len(bundle.Data) == 0 {
		h.ErrorWithCode(c, dto.ErrCodeInvalidState, "No Bill of Lading could be rendered for this batch")
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": bundle.FileName}))
	c.Data(http.StatusOK, bol.ContentTypeZIP, bundle.Data)
}

// PushWMSOrders godoc
// @ID           pushWMSOrders
// @Summary      Submit WMS orders
// @Description  Builds one createOrder request per purchase order and submits them to the WMS.
// @Description  Per-order outcomes are reported in rows; a failed order does not fail the batch.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body shipping.WMSPushRequest true "Purchase orders and overrides"
// @Success      200 {object} APIResponse[shipping.WMSPushResult]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /shipments/wms-orders [post]
func (h *ShippingHandler) PushWMSOrders(c *gin.Context) {
	var req shipping.WMSPushRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.PushWMSOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
