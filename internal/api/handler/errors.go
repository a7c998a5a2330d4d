package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/arcadebot/internal/api/apierr"
	"github.com/mcoot/arcadebot/internal/middleware"
)

// WriteError writes the error body for err. Server-side failures are logged
// with the request id since the client only sees a generic code.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if status := apierr.WriteError(w, err); status >= http.StatusInternalServerError {
		middleware.Logger(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}
