// internal/uplink/client.go
package uplink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	// FormField is the multipart field the station server reads.
	FormField = "file"
	fileName  = "data.txt"

	ackOK = "OK"

	// maxReply bounds how much of the server reply is read.
	maxReply = 4096
)

var (
	// ErrRejected is returned when the server answers without acknowledging.
	ErrRejected = errors.New("uplink: upload not acknowledged")
)

// Client posts message batches to the station server.
// Stateless: one batch = one request.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

type Config struct {
	URL     string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("uplink: url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Upload sends lines as one text file, one message per line.
// Lines must satisfy LineSafe. It succeeds only on a 200 reply whose
// trimmed body is exactly "OK".
func (c *Client) Upload(ctx context.Context, lines [][]byte) error {
	body, contentType, err := buildForm(lines)
	if err != nil {
		return fmt.Errorf("uplink: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return fmt.Errorf("uplink: request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("uplink: post: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReply))
	if err != nil {
		return fmt.Errorf("uplink: read reply: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(reply)))
	}
	if strings.TrimSpace(string(reply)) != ackOK {
		return fmt.Errorf("%w: reply %q", ErrRejected, strings.TrimSpace(string(reply)))
	}
	return nil
}

// LineSafe reports whether msg survives the server's line handling
// unchanged: the server splits the file on newlines and trims every line.
func LineSafe(msg []byte) bool {
	if len(msg) == 0 {
		return false
	}
	if bytes.ContainsAny(msg, "\r\n") {
		return false
	}
	return !isTrimmed(msg[0]) && !isTrimmed(msg[len(msg)-1])
}

// isTrimmed matches the characters the server strips from line ends.
func isTrimmed(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', 0x00, 0x0B:
		return true
	}
	return false
}

//
// ---- form builder ----
//

func buildForm(lines [][]byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(FormField, fileName)
	if err != nil {
		return nil, "", err
	}
	for _, l := range lines {
		if _, err := fw.Write(l); err != nil {
			return nil, "", err
		}
		if _, err := fw.Write([]byte{'\n'}); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
