package viewer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Video is an uploaded gameplay recording held as a data URL.
type Video struct {
	Name    string
	MIME    string
	Size    int64
	DataURL string
}

// progressReader reports percent complete as bytes are consumed.
type progressReader struct {
	r        io.Reader
	total    int64
	loaded   int64
	last     int
	progress func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.loaded += int64(n)
	if p.progress != nil && p.total > 0 {
		pct := int(100 * p.loaded / p.total)
		if pct != p.last {
			p.last = pct
			p.progress(pct)
		}
	}
	return n, err
}

// ReadDataURL reads a video into a data URL. progress is called with the
// floored percent whenever it changes; a non-positive size disables it.
func ReadDataURL(r io.Reader, name, mime string, size int64, progress func(percent int)) (*Video, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	if !strings.HasPrefix(mime, "video/") && mime != "application/octet-stream" {
		return nil, fmt.Errorf("unsupported video type %q", mime)
	}
	var buf bytes.Buffer
	buf.WriteString("data:" + mime + ";base64,")
	enc := base64.NewEncoder(base64.StdEncoding, &buf)
	pr := &progressReader{r: r, total: size, last: -1, progress: progress}
	n, err := io.Copy(enc, pr)
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode video: %w", err)
	}
	return &Video{Name: name, MIME: mime, Size: n, DataURL: buf.String()}, nil
}
