package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/peachsweeper/internal/config"
	"github.com/vancomm/peachsweeper/internal/hint"
	"github.com/vancomm/peachsweeper/internal/middleware"
	"github.com/vancomm/peachsweeper/internal/repository"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("session token required")
	ErrForbidden    = errors.New("session token belongs to another game")
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger logrus.FieldLogger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.WithError(err).WithField("response", v).Error("unable to send response")
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidSession),
		errors.Is(err, config.ErrUnknownDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, hint.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// sendError answers with the status err maps to. Server errors are logged
// and their text is not sent to the client.
func sendError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		middleware.RequestLogger(r.Context(), logger).
			WithError(err).
			Error("unable to handle request")
		w.WriteHeader(status)
		return
	}
	w.WriteHeader(status)
	sendJSONOrLog(w, logger, wrapError(err))
}
