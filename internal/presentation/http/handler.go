package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"

	appcart "github.com/flashmarket/storefront/internal/application/cart"
	"github.com/flashmarket/storefront/internal/domain/addon"
	domcart "github.com/flashmarket/storefront/internal/domain/cart"
	"github.com/flashmarket/storefront/internal/domain/catalog"
	dominv "github.com/flashmarket/storefront/internal/domain/inventory"
	dompay "github.com/flashmarket/storefront/internal/domain/payment"
	"github.com/flashmarket/storefront/internal/observability"
)

const componentHTTPHandler = "http_server"

// Handler exposes the cart facade as a small JSON API. It is the checkout
// caller from the facade's point of view: payment settlement happens here,
// around Checkout, never inside the cart engine.
type Handler struct {
	cart    *appcart.Service
	source  catalog.Source
	methods map[string]dompay.Method
	log     observability.Logger
	tel     observability.Observability
}

func NewHandler(cartSvc *appcart.Service, source catalog.Source, methods map[string]dompay.Method,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		cart:    cartSvc,
		source:  source,
		methods: methods,
		log:     tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:     tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.handle(mux, "GET /products", h.handleListProducts)
	h.handle(mux, "GET /cart", h.handleSummary)
	h.handle(mux, "DELETE /cart", h.handleClear)
	h.handle(mux, "POST /cart/items", h.handleAddItem)
	h.handle(mux, "DELETE /cart/items/{id}", h.handleRemoveItem)
	h.handle(mux, "PATCH /cart/items/{id}", h.handleSetQuantity)
	h.handle(mux, "PUT /cart/items/{id}/addons", h.handleApplyAddOns)
	h.handle(mux, "DELETE /cart/items/{id}/addons/{type}", h.handleRemoveAddOn)
	h.handle(mux, "POST /cart/discounts", h.handleRedeemCode)
	h.handle(mux, "POST /cart/undo", h.handleUndo)
	h.handle(mux, "POST /cart/redo", h.handleRedo)
	h.handle(mux, "GET /cart/history", h.handleHistoryStats)
	h.handle(mux, "POST /checkout", h.handleCheckout)
	h.handle(mux, "GET /health", h.handleHealth)

	return mux
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.Handle(pattern, h.withObservability(pattern, handler))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.source.List(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	type productView struct {
		catalog.Product
		UnitsLeft int `json:"units_left"`
	}
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{Product: p, UnitsLeft: h.cart.AvailableUnits(p.ID)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, summaryView(h.cart.Summary()))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.source.Get(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	res := h.cart.AddProduct(r.Context(), product, req.Quantity)
	h.writeResult(w, res)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	res := h.cart.RemoveProduct(r.Context(), r.PathValue("id"))
	h.writeResult(w, res)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := h.cart.SetQuantity(r.Context(), r.PathValue("id"), req.Quantity)
	h.writeResult(w, res)
}

type applyAddOnsRequest struct {
	AddOns []string `json:"add_ons"`
}

func (h *Handler) handleApplyAddOns(w http.ResponseWriter, r *http.Request) {
	var req applyAddOnsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	types := make([]addon.Type, 0, len(req.AddOns))
	for _, t := range req.AddOns {
		types = append(types, addon.Type(t))
	}
	res := h.cart.ApplyAddOns(r.Context(), r.PathValue("id"), types)
	h.writeResult(w, res)
}

func (h *Handler) handleRemoveAddOn(w http.ResponseWriter, r *http.Request) {
	res := h.cart.RemoveAddOn(r.Context(), r.PathValue("id"), addon.Type(r.PathValue("type")))
	h.writeResult(w, res)
}

type redeemCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleRedeemCode(w http.ResponseWriter, r *http.Request) {
	var req redeemCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := h.cart.RedeemDiscountCode(r.Context(), req.Code)
	if !res.Success {
		h.writeResult(w, res.Result)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  res.Message,
		"discount": res.Discount,
	})
}

func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.cart.Undo(r.Context()))
}

func (h *Handler) handleRedo(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, h.cart.Redo(r.Context()))
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

func (h *Handler) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, h.cart.HistoryStats())
}

type checkoutRequest struct {
	Method  string            `json:"method"`
	Details map[string]string `json:"details"`
}

// handleCheckout settles the payment first, then commits the cart. The two
// steps are not transactional; a commit failure after settlement would need
// a refund path in a real gateway integration.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	method, ok := h.methods[req.Method]
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("unknown payment method"))
		return
	}

	if h.cart.IsEmpty() {
		writeError(w, http.StatusConflict, appcart.ErrEmptyCart)
		return
	}

	summary := h.cart.Summary()
	processor := dompay.NewProcessor(method)
	receipt, err := processor.Pay(r.Context(), summary.Totals.Total, req.Details)
	if err != nil {
		var verr *dompay.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    "invalid payment details",
				"problems": verr.Problems,
			})
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}

	res := h.cart.Checkout(r.Context(), method.Info().ID)
	if !res.Success {
		h.writeResult(w, res.Result)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": res.Message,
		"summary": summaryView(res.Summary),
		"payment": receipt,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeResult(w http.ResponseWriter, res appcart.Result) {
	if res.Success {
		writeJSON(w, http.StatusOK, map[string]string{"message": res.Message})
		return
	}
	writeJSON(w, statusForError(res.Err), map[string]string{"error": res.Message})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domcart.ErrLineNotFound), errors.Is(err, dominv.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appcart.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, dominv.ErrInsufficientStock),
		errors.Is(err, dominv.ErrUnavailable),
		errors.Is(err, appcart.ErrEmptyCart),
		errors.Is(err, appcart.ErrNothingToUndo),
		errors.Is(err, appcart.ErrNothingToRedo),
		errors.Is(err, appcart.ErrNoAddOns):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// summaryView shapes the facade summary for JSON without leaking internal
// field names.
func summaryView(s appcart.Summary) map[string]any {
	lines := make([]map[string]any, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, map[string]any{
			"cart_item_id": l.CartItemID,
			"product_id":   l.BaseID,
			"name":         l.Name,
			"quantity":     l.Quantity,
			"base_price":   l.BasePrice,
			"price":        l.Price,
			"add_ons":      l.AddOns,
		})
	}
	return map[string]any{
		"lines":          lines,
		"quantity_total": s.QuantityTotal,
		"subtotal":       s.Totals.Subtotal,
		"discount":       s.Totals.Discount,
		"tax":            s.Totals.Tax,
		"total":          s.Totals.Total,
		"discounts":      s.Discounts,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
