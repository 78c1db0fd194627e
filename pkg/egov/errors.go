package egov

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	// Body is the start of the response body, for diagnostics.
	Body string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("e-Gov API returned %s for %s", e.Status, e.URL)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
