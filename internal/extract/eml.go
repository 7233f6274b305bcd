package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// EML returns the headers and body text of an RFC 5322 message.
// Plain text parts are preferred over HTML parts.
func EML(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: not an email message: %v", domain.ErrValidation, err)
	}

	body, err := messageBody(msg.Header.Get("Content-Type"), msg.Body)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, name := range []string{"From", "To", "Date", "Subject"} {
		if v := decodeHeader(msg.Header.Get(name)); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, v)
		}
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(body))
	return strings.TrimSpace(b.String()), nil
}

// decodeHeader decodes RFC 2047 encoded words, returning the raw value on failure.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

func messageBody(contentType string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartBody(r, params["boundary"])
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", domain.ErrValidation, err)
	}
	if mediaType == "text/html" {
		return HTML(raw)
	}
	return string(raw), nil
}

func multipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	var textParts, htmlParts []string
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: reading multipart body: %v", domain.ErrValidation, err)
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "text/plain"
		}
		raw, readErr := io.ReadAll(part)
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, strings.TrimSpace(string(raw)))
		case mediaType == "text/html":
			if text, err := HTML(raw); err == nil {
				htmlParts = append(htmlParts, text)
			}
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested, err := multipartBody(bytes.NewReader(raw), params["boundary"]); err == nil && nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n\n"), nil
	}
	return strings.Join(htmlParts, "\n\n"), nil
}
