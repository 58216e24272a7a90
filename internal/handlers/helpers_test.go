package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func muxVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}
