package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/pointshop/internal/catalog"
	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/purchase"
)

// Admins authorizes the acting identity of an admin request
type Admins interface {
	Require(id domain.Identity) error
}

// RequireAdmin rejects requests whose X-Actor header is not an allowlisted
// admin. The accepted actor is stored on the request context.
func RequireAdmin(admins Admins) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := domain.ParseIdentity(r.Header.Get(HeaderActor))
			if err != nil {
				respondError(w, http.StatusUnauthorized, CodePermissionDenied, ErrMsgMissingActor)
				return
			}
			if err := admins.Require(actor); err != nil {
				logger.FromContext(r.Context()).Warn(LogMsgAdminRequestDenied, "actor", actor.String(), "path", r.URL.Path)
				respondError(w, http.StatusForbidden, CodePermissionDenied, domain.ErrMsgPermissionDenied)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// AdminHandlers serves catalog management and usage administration
type AdminHandlers struct {
	catalog  catalog.Service
	purchase purchase.Service
}

// NewAdminHandlers creates admin handlers
func NewAdminHandlers(catalogSvc catalog.Service, purchaseSvc purchase.Service) *AdminHandlers {
	return &AdminHandlers{catalog: catalogSvc, purchase: purchaseSvc}
}

// GrantUsesRequest is the body of POST /admin/usage
type GrantUsesRequest struct {
	Platform string `json:"platform" validate:"required,platform"`
	UserID   string `json:"user_id" validate:"required,max=128,excludesall=\x00\n\r\t"`
	Command  string `json:"command" validate:"required,max=100"`
	Amount   int    `json:"amount" validate:"gte=1,max=10000"`
}

// HandleListItems handles GET /admin/items
func (h *AdminHandlers) HandleListItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listItems(w, r, h.catalog, domain.ViewAdmin)
	}
}

// HandleGetItem handles GET /admin/items/{id}
func (h *AdminHandlers) HandleGetItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemIDParam(w, r)
		if !ok {
			return
		}
		item, err := h.catalog.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, "Get item", err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// HandleCreateItem handles POST /admin/items
func (h *AdminHandlers) HandleCreateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.NewItem
		if err := DecodeAndValidateRequest(r, w, &req, "Create item"); err != nil {
			return
		}

		item, err := h.catalog.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, "Create item", err)
			return
		}

		actor, _ := ActorFromContext(r.Context())
		logger.FromContext(r.Context()).Info("Catalog item created", "actor", actor.String(), "item_id", item.ID, "name", item.Name)
		respondJSON(w, http.StatusCreated, item)
	}
}

// HandleUpdateItem handles PATCH /admin/items/{id}
func (h *AdminHandlers) HandleUpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemIDParam(w, r)
		if !ok {
			return
		}
		var patch catalog.ItemPatch
		if err := DecodeAndValidateRequest(r, w, &patch, "Update item"); err != nil {
			return
		}

		item, err := h.catalog.Update(r.Context(), id, patch)
		if err != nil {
			respondServiceError(w, r, "Update item", err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// HandleDeleteItem handles DELETE /admin/items/{id}
func (h *AdminHandlers) HandleDeleteItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemIDParam(w, r)
		if !ok {
			return
		}
		if err := h.catalog.Delete(r.Context(), id); err != nil {
			respondServiceError(w, r, "Delete item", err)
			return
		}

		actor, _ := ActorFromContext(r.Context())
		logger.FromContext(r.Context()).Info("Catalog item deleted", "actor", actor.String(), "item_id", id)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgItemDeleted})
	}
}

// HandleGrantUses handles POST /admin/usage
func (h *AdminHandlers) HandleGrantUses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GrantUsesRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Grant uses"); err != nil {
			return
		}

		actor, _ := ActorFromContext(r.Context())
		grant, err := h.purchase.GrantUses(r.Context(), actor, domain.NewIdentity(req.Platform, req.UserID), req.Command, req.Amount)
		if err != nil {
			respondServiceError(w, r, "Grant uses", err)
			return
		}
		respondJSON(w, http.StatusOK, grant)
	}
}

// HandleUsageReport handles GET /admin/usage
func (h *AdminHandlers) HandleUsageReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := GetIntQueryParam(r, w, ParamPage)
		if !ok {
			return
		}
		pageSize, ok := GetIntQueryParam(r, w, ParamPageSize)
		if !ok {
			return
		}

		actor, _ := ActorFromContext(r.Context())
		report, err := h.purchase.UsageReport(r.Context(), actor, page, pageSize)
		if err != nil {
			respondServiceError(w, r, "Usage report", err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, ParamID), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid item id")
		return 0, false
	}
	return id, true
}
