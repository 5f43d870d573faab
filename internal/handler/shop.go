package handler

import (
	"context"
	"net/http"

	"github.com/osse101/pointshop/internal/catalog"
	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/purchase"
)

// Gate decides whether a chat command may run
type Gate interface {
	CheckAndConsume(ctx context.Context, user domain.Identity, command string) (domain.GateDecision, error)
}

// ShopHandlers serves the storefront used by chat front-ends
type ShopHandlers struct {
	catalog  catalog.Service
	purchase purchase.Service
	gate     Gate
}

// NewShopHandlers creates storefront handlers
func NewShopHandlers(catalogSvc catalog.Service, purchaseSvc purchase.Service, gate Gate) *ShopHandlers {
	return &ShopHandlers{catalog: catalogSvc, purchase: purchaseSvc, gate: gate}
}

// PurchaseRequest is the body of POST /shop/purchase
type PurchaseRequest struct {
	Platform string `json:"platform" validate:"required,platform"`
	UserID   string `json:"user_id" validate:"required,max=128,excludesall=\x00\n\r\t"`
	Item     string `json:"item" validate:"required,max=100"`
}

// GateRequest is the body of POST /shop/gate
type GateRequest struct {
	Platform string `json:"platform" validate:"required,platform"`
	UserID   string `json:"user_id" validate:"required,max=128,excludesall=\x00\n\r\t"`
	Command  string `json:"command" validate:"required,max=100"`
}

// GateResponse is the decision plus a ready-to-show message for blocked calls
type GateResponse struct {
	domain.GateDecision
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}

// HandleListItems handles GET /shop/items
func (h *ShopHandlers) HandleListItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listItems(w, r, h.catalog, domain.ViewStorefront)
	}
}

// HandlePurchase handles POST /shop/purchase
func (h *ShopHandlers) HandlePurchase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PurchaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Purchase"); err != nil {
			return
		}

		user := domain.NewIdentity(req.Platform, req.UserID)
		receipt, err := h.purchase.Purchase(r.Context(), user, req.Item)
		if err != nil {
			respondServiceError(w, r, "Purchase", err)
			return
		}

		logger.FromContext(r.Context()).Info("Purchase completed", "user", user.String(), "item", receipt.ItemName)
		respondJSON(w, http.StatusCreated, receipt)
	}
}

// HandleGate handles POST /shop/gate. Blocked decisions are answered with 200;
// only failures to decide are errors.
func (h *ShopHandlers) HandleGate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GateRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Gate check"); err != nil {
			return
		}

		decision, err := h.gate.CheckAndConsume(r.Context(), domain.NewIdentity(req.Platform, req.UserID), req.Command)
		if err != nil {
			respondServiceError(w, r, "Gate check", err)
			return
		}

		resp := GateResponse{GateDecision: decision, Allowed: decision.Allowed()}
		if err := decision.Err(); err != nil {
			resp.Message = err.Error()
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleEntitlements handles GET /shop/entitlements
func (h *ShopHandlers) HandleEntitlements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := identityFromQuery(r, w)
		if !ok {
			return
		}

		entitlements, err := h.purchase.Entitlements(r.Context(), user)
		if err != nil {
			respondServiceError(w, r, "List entitlements", err)
			return
		}
		respondJSON(w, http.StatusOK, entitlements)
	}
}

// listItems serves one page of a catalog view from the query parameters
func listItems(w http.ResponseWriter, r *http.Request, svc catalog.Service, view domain.ItemView) {
	page, ok := GetIntQueryParam(r, w, ParamPage)
	if !ok {
		return
	}
	pageSize, ok := GetIntQueryParam(r, w, ParamPageSize)
	if !ok {
		return
	}

	result, err := svc.List(r.Context(), catalog.ListQuery{
		View:     view,
		Kind:     domain.ItemKind(r.URL.Query().Get(ParamKind)),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(w, r, "List items", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
