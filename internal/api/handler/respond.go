package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"codecoach/internal/common"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, common.ErrBadRequest)
	}
	return nil
}

// respondError writes err with the status HTTPStatusFromError picks. Server
// side failures keep the cause in details; a graded submission that could
// not be recorded and an unparsable completion reply also carry a result.
func respondError(w http.ResponseWriter, err error) {
	code := common.HTTPStatusFromError(err)

	var persistErr *common.PersistenceError
	if errors.As(err, &persistErr) {
		common.RespondWithErrorDetails(w, code, "Failed to record solved question", err.Error(), persistErr.Outcome)
		return
	}

	var upstreamErr *common.UpstreamFormatError
	if errors.As(err, &upstreamErr) {
		var raw interface{}
		if upstreamErr.Raw != "" {
			raw = upstreamErr.Raw
		}
		common.RespondWithErrorDetails(w, code, "Failed to parse AI response", err.Error(), raw)
		return
	}

	if code >= http.StatusInternalServerError {
		common.RespondWithErrorDetails(w, code, http.StatusText(code), err.Error(), nil)
		return
	}
	common.RespondWithError(w, code, err.Error())
}
