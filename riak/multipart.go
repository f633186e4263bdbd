package riak

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/tarmac-project/riak-sdk/httpclient"
)

// DecodeMultipart splits a 2xx multipart response into Parts. Each part
// carries its own MIME headers and body and the outer status; parts that are
// themselves multipart are split recursively. The returned composite keeps
// the outer headers and a re-readable Body over the raw payload.
//
// Non-2xx responses are returned unchanged. An empty body yields an empty,
// non-nil Parts.
func DecodeMultipart(resp *httpclient.Response) (*httpclient.Response, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", ErrDecodeMultipart)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	raw, err := resp.ReadBody()
	if err != nil {
		return nil, errors.Join(ErrDecodeMultipart, err)
	}

	out := &httpclient.Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       io.NopCloser(bytes.NewReader(raw)),
		Parts:      []*httpclient.Response{},
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	out.Parts, err = decodeParts(resp.Header.Get("Content-Type"), raw, resp)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

func decodeParts(contentType string, raw []byte, outer *httpclient.Response) ([]*httpclient.Response, error) {
	if contentType == "" {
		return nil, fmt.Errorf("%w: missing content type", ErrDecodeMultipart)
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errors.Join(ErrDecodeMultipart, err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("%w: content type %q is not multipart", ErrDecodeMultipart, mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing boundary", ErrDecodeMultipart)
	}

	parts := []*httpclient.Response{}
	mr := multipart.NewReader(bytes.NewReader(raw), boundary)
	for {
		p, err := mr.NextPart()
		// A wrapped EOF is a truncated body, only a bare EOF ends the stream.
		if err == io.EOF { //nolint:errorlint
			break
		}
		if err != nil {
			return nil, errors.Join(ErrDecodeMultipart, err)
		}

		body, err := io.ReadAll(p)
		_ = p.Close()
		if err != nil {
			return nil, errors.Join(ErrDecodeMultipart, err)
		}

		part := &httpclient.Response{
			Status:     outer.Status,
			StatusCode: outer.StatusCode,
			Header:     http.Header(p.Header),
		}
		if len(body) > 0 {
			part.Body = io.NopCloser(bytes.NewReader(body))
		}
		if ct := p.Header.Get("Content-Type"); isMultipart(ct) {
			part.Parts, err = decodeParts(ct, body, outer)
			if err != nil {
				return nil, err
			}
		}
		parts = append(parts, part)
	}
	return parts, nil
}
