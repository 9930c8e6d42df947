package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// GetJSON performs an authorized GET and decodes the 2xx response body into
// out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.Do(ctx, http.MethodGet, path, &RequestOptions{Query: query})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("[Client.GetJSON] %s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.GetJSON] decode %s", path)
	}
	return nil
}

// PostJSON performs an authorized POST with a JSON body and, when out is
// non-nil, decodes the 2xx response into it.
func (c *Client) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(err, "[Client.PostJSON] marshal %s", path)
	}

	resp, err := c.Do(ctx, http.MethodPost, path, &RequestOptions{
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("[Client.PostJSON] %s returned %s", path, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.PostJSON] decode %s", path)
	}
	return nil
}
