package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// plantumlAlphabet is PlantUML's URL-safe variant of base64.
const plantumlAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

var plantumlEncoding = base64.NewEncoding(plantumlAlphabet).WithPadding(base64.NoPadding)

// DefaultTimeout bounds a single server request.
const DefaultTimeout = 30 * time.Second

// Server renders through a PlantUML server such as
// https://www.plantuml.com/plantuml.
type Server struct {
	BaseURL string
	Client  *http.Client
}

// Render implements Renderer. The text travels in the request path, so
// very large diagrams may exceed a server's URL limit.
func (s *Server) Render(ctx context.Context, text string, format Format) ([]byte, error) {
	encoded, err := Encode(text)
	if err != nil {
		return nil, &Error{Format: format, Err: err}
	}
	url := strings.TrimRight(s.BaseURL, "/") + "/" + string(format) + "/" + encoded

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Format: format, Err: err}
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Format: format, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Format: format, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Format: format, Err: fmt.Errorf("server returned %s", resp.Status)}
	}
	return body, nil
}

// Encode compresses text the way PlantUML servers expect in a URL:
// raw deflate followed by PlantUML's base64 alphabet, with each
// trailing group filled out to four characters.
func Encode(text string) (string, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write([]byte(text)); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}

	s := plantumlEncoding.EncodeToString(buf.Bytes())
	if r := len(s) % 4; r != 0 {
		s += strings.Repeat("0", 4-r)
	}
	return s, nil
}
