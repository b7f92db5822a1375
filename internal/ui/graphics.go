package ui

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"fitflow/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/qeesung/image2ascii/convert"
)

// ASCII preview size in terminal cells.
const (
	previewWidth  = 48
	previewHeight = 24
)

// MediaLoader fetches exercise demonstration images.
type MediaLoader struct {
	httpClient *http.Client
}

func NewMediaLoader() *MediaLoader {
	return &MediaLoader{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch downloads and decodes the image at url. Animated GIFs decode to
// their first frame.
func (l *MediaLoader) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media error: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func loadMediaCmd(loader *MediaLoader, ex model.Exercise) tea.Cmd {
	if loader == nil || ex.GifURL == "" {
		return nil
	}
	return func() tea.Msg {
		img, err := loader.Fetch(context.Background(), ex.GifURL)
		if err != nil {
			return model.MediaLoadedMsg{ExerciseID: ex.ID, Err: err}
		}
		return model.MediaLoadedMsg{
			ExerciseID: ex.ID,
			ASCII:      convertToASCII(img, previewWidth, previewHeight),
		}
	}
}

// convertToASCII converts an image to colored ASCII art.
func convertToASCII(img image.Image, targetWidth, targetHeight int) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.Colored = true
	opts.Ratio = 0.5

	return converter.Image2ASCIIString(img, &opts)
}
