// ABOUTME: PDF plain-text extraction for document ingestion
// ABOUTME: Wraps ledongthuc/pdf behind a bytes-in, text-out function
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the plain text of a PDF document. Documents from which
// no text can be extracted (scanned images, empty files) produce an error so
// callers reject them before any embedding work starts.
func ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to buffer pdf text: %w", err)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text extracted from pdf")
	}
	return text, nil
}
