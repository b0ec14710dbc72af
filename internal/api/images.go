package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"newskoo/internal/models"
)

func (c *Client) ListImages(ctx context.Context, page, perPage int) ([]models.Image, *models.PageMeta, error) {
	v := url.Values{}
	setInt(v, "page", page)
	setInt(v, "per_page", perPage)
	var out listEnvelope[models.Image]
	if err := c.get(ctx, "/api/upload/images", v, &out); err != nil {
		return nil, nil, err
	}
	return out.Data, &out.Meta, nil
}

// UploadImage sends the file as multipart form data and returns the
// stored image record. Upload bypasses the JSON body path but keeps the
// bearer header and the single-retry 401 recovery.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*models.Image, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	upload := func() (*http.Response, error) {
		u := *c.baseURL
		u.Path = strings.TrimRight(u.Path, "/") + "/api/upload/image"
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("build upload request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if sess, err := c.sessions.Session(); err == nil && sess.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		return resp, nil
	}

	resp, err := upload()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		original := decodeResponse(resp, nil)
		sess, sessErr := c.sessions.Session()
		if sessErr != nil || sess == nil || sess.RefreshToken == "" {
			return nil, original
		}
		if err := c.refreshAccessToken(ctx); err != nil {
			return nil, err
		}
		if resp, err = upload(); err != nil {
			return nil, err
		}
	}

	var out models.Image
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteImage removes a stored image by its public URL.
func (c *Client) DeleteImage(ctx context.Context, imageURL string) error {
	return c.do(ctx, http.MethodDelete, "/api/upload/image", nil, nil,
		map[string]string{"url": imageURL}, nil)
}
