package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-firebase-push/internal/storage/cache"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// ReportReader lists recently journaled failure reports.
type ReportReader interface {
	Recent(ctx context.Context, n int64) ([]cache.Entry, error)
}

type SendAPI struct {
	Sender  push.Sender
	Reports ReportReader // nil when no journal is configured
	Logger  *slog.Logger
}

func NewSendAPI(sender push.Sender, reports ReportReader, logger *slog.Logger) *SendAPI {
	return &SendAPI{
		Sender:  sender,
		Reports: reports,
		Logger:  logger,
	}
}

type SendResponse struct {
	Success bool `json:"success"`
}

// Send handles POST /api/v1/send with a push.Request body.
// The outcome is a plain success flag; failure causes go to the notifier.
func (api *SendAPI) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req push.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	caller, _ := middleware.GetUserHandleFromContext(ctx)

	if !api.Sender.Send(ctx, req.Token, req.Parameters) {
		api.Logger.Info("Send: push not delivered", "caller", caller)
		response.WriteJSONError(w, http.StatusBadGateway, "push notification not sent")
		return
	}

	api.Logger.Debug("Send: push delivered", "caller", caller)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(SendResponse{Success: true})
}

const defaultReportLimit = 50

// RecentReports handles GET /api/v1/reports?limit=N.
func (api *SendAPI) RecentReports(w http.ResponseWriter, r *http.Request) {
	if api.Reports == nil {
		response.WriteJSONError(w, http.StatusNotFound, "report journal not enabled")
		return
	}

	limit := int64(defaultReportLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			response.WriteJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := api.Reports.Recent(r.Context(), limit)
	if err != nil {
		api.Logger.Error("failed to read report journal", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "journal read failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(entries)
}
