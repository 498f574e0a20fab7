package content

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// extractFB2 collects the character data inside the <body> elements of a
// FictionBook 2 document.
func extractFB2(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open fb2: %w", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	var sb strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse fb2: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "body" || depth > 0 {
				depth++
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			if depth > 0 {
				text := strings.TrimSpace(string(t))
				if text != "" {
					sb.WriteString(text)
					sb.WriteString("\n")
				}
			}
		}
	}
	return sb.String(), nil
}
