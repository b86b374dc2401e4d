package slidebase

import (
	"net/http"

	api "github.com/dracory/api"
)

// WriteSuccess writes a success envelope with a message and status code.
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status == http.StatusOK {
		api.Respond(w, r, api.Success(msg))
		return
	}
	api.RespondWithStatusCode(w, r, api.Success(msg), status)
}

// WriteSuccessWithData writes a success envelope with message and data.
func WriteSuccessWithData(w http.ResponseWriter, r *http.Request, msg string, data map[string]any) {
	api.Respond(w, r, api.SuccessWithData(msg, data))
}

// WriteError writes an error envelope with the given status code.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status == http.StatusOK {
		api.Respond(w, r, api.Error(msg))
		return
	}
	api.RespondWithStatusCode(w, r, api.Error(msg), status)
}
