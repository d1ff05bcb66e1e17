package atmos

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/user/atmos-energy/internal/usage"
	"go.uber.org/zap"
)

func (c *Client) downloadURL(period usage.BillingPeriod) string {
	return fmt.Sprintf("%s?&billingPeriod=%s&%s",
		c.url(downloadPath), period.Label, c.now().Format(cacheBusterLayout))
}

// Fetch downloads the usage workbook for one billing period. It issues
// exactly one request and returns the raw bytes once the declared content
// type matches a spreadsheet.
func (c *Client) Fetch(ctx context.Context, s *Session, period usage.BillingPeriod) ([]byte, error) {
	if !s.Active() {
		return nil, fmt.Errorf("%w: download of %s attempted without login", ErrSessionState, period.Label)
	}

	resp, body, err := c.do(ctx, c.httpClient(s.jar, false), http.MethodGet, c.downloadURL(period), nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		location := resp.Header.Get("Location")
		c.logger.Error("download redirected, session may have expired",
			zap.String("period", period.Label),
			zap.String("location", location),
		)
		return nil, fmt.Errorf("%w: redirected to %q, session may have expired", ErrResponseFormat, location)
	}

	if err := c.validateContentType(resp.Header.Get("Content-Type")); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) validateContentType(contentType string) error {
	if c.acceptsContentType(contentType) {
		return nil
	}
	c.logger.Error("unexpected content type",
		zap.String("content_type", contentType),
		zap.Strings("expected", c.contentTypes),
	)
	return fmt.Errorf("%w: content type %q", ErrResponseFormat, contentType)
}

func (c *Client) acceptsContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, accepted := range c.contentTypes {
		if mediaType == accepted {
			return true
		}
	}
	return false
}
