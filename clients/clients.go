package clients

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrExternalService wraps non-2xx replies and undecodable bodies.
var ErrExternalService = errors.New("external service failure")

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 60 * time.Second}} }

func statusErr(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return fmt.Errorf("%s %s: %s: %w", service, resp.Status, string(body), ErrExternalService)
}
