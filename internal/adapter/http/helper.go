package http

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// pathID reads a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// optionalID parses an optional positive id from a query or form value.
// Empty yields nil.
func optionalID(raw string) (*uint64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	return &n, true
}
