package purview

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	perr "glossarysync/internal/platform/errors"
)

const excerptLen = 512

// StatusError carries a non-2xx catalog response
type StatusError struct {
	Op     string
	Status int
	Body   string
}

// Error interface
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("purview %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("purview %s: status %d: %s", e.Op, e.Status, e.Body)
}

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

// StatusOf returns the catalog status carried by err, or 0
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// checkStatus maps every status >= 400 to a coded error
// 401 unauthorized, 403 forbidden, 404 on a single-term read not found, anything else upstream
func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	se := &StatusError{Op: op, Status: resp.StatusCode, Body: excerpt(resp.Body)}

	var err error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		err = perr.Wrap(se, perr.ErrorCodeUnauthorized, "catalog rejected the bearer token")
	case resp.StatusCode == http.StatusForbidden:
		err = perr.Wrap(se, perr.ErrorCodeForbidden, "permission error, check the Data Steward role")
	case resp.StatusCode == http.StatusNotFound && op == OpGetTerm:
		err = perr.Wrap(se, perr.ErrorCodeNotFound, "catalog resource not found")
	default:
		err = perr.Wrapf(se, perr.ErrorCodeUpstream, "catalog returned status %d", resp.StatusCode)
	}
	return perr.WithOp(err, op)
}

// excerpt reads a bounded, single-line slice of an error body for diagnostics
func excerpt(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, excerptLen))
	return strings.Join(strings.Fields(string(b)), " ")
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
