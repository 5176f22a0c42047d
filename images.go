package spacetraveling

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxBannerWidth = 1440
	jpegQuality    = 80
	maxBannerSize  = 10 << 20 // 10MB
)

// processImage decodes an image from src, shrinks it to maxWidth when wider,
// and encodes it as JPEG.
func processImage(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxWidth {
		newH := max(1, h*maxWidth/w)
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// localizeBanner downloads the banner of post and returns it as a page
// served from BannerPath.
func (a *App) localizeBanner(ctx context.Context, post PostDetail) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, post.Banner, nil)
	if err != nil {
		return Page{}, fmt.Errorf("banner %q: %w", post.UID, err)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("banner %q: %w", post.UID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("banner %q: unexpected status %d", post.UID, resp.StatusCode)
	}

	data, err := processImage(io.LimitReader(resp.Body, maxBannerSize), maxBannerWidth)
	if err != nil {
		return Page{}, fmt.Errorf("banner %q: %w", post.UID, err)
	}
	return Page{
		Path:        BannerPath(post.UID),
		ContentType: mimeJPEG,
		Body:        data,
	}, nil
}
