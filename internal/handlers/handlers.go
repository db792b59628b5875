package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func sendStatusJSONOrLog(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to encode response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

// statusFor maps engine and repository errors onto HTTP status codes.
func statusFor(err error) int {
	var multi schema.MultiError
	switch {
	case errors.Is(err, mines.ErrInvalidConfiguration),
		errors.Is(err, mines.ErrIllegalInteraction),
		errors.As(err, &multi):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrFull):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// sendError writes err with the status it maps to. Internal errors are
// logged and hidden from the client.
func sendError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
		sendStatusJSONOrLog(w, logger, status, map[string]string{
			"error": "internal error",
		})
		return
	}
	logger.Debug("request rejected",
		slog.Int("status_code", status), slog.Any("error", err))
	sendStatusJSONOrLog(w, logger, status, wrapError(err))
}

func Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}
