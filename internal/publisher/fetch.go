package publisher

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	// Decoders for the formats templates are stored in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// FetchTemplate downloads and decodes a template image. Refs with a scheme
// are fetched as-is; bare keys are resolved against the CDN base.
func (u *Uploader) FetchTemplate(ctx context.Context, imageRef string) (image.Image, error) {
	if imageRef == "" {
		return nil, fmt.Errorf("publisher: empty template image ref")
	}

	url := imageRef
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = strings.TrimRight(u.cfg.CDNBaseURL, "/") + "/" + strings.TrimLeft(imageRef, "/")
	}

	client := &http.Client{Timeout: time.Duration(u.cfg.HTTPTimeoutS) * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("publisher: build template request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publisher: fetch template %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("publisher: fetch template %s: http %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("publisher: decode template %s: %w", url, err)
	}
	return img, nil
}
