package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// pathSchemeCode parses the {schemeCode} path segment.
func pathSchemeCode(r *http.Request) (int, bool) {
	code, err := strconv.Atoi(r.PathValue("schemeCode"))
	if err != nil {
		return 0, false
	}
	return code, true
}
