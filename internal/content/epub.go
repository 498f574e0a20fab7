package content

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// EPUB is a zip with a manifest: META-INF/container.xml names the OPF
// package file, whose spine lists the reading-order documents.

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Manifest []struct {
		ID   string `xml:"id,attr"`
		Href string `xml:"href,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// extractEPUB walks the spine documents in order and concatenates their
// character data.
func extractEPUB(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open epub: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var container epubContainer
	if err := decodeZipXML(files["META-INF/container.xml"], &container); err != nil {
		return "", fmt.Errorf("failed to read epub container: %w", err)
	}
	if len(container.Rootfiles) == 0 {
		return "", fmt.Errorf("epub container names no rootfile")
	}
	opfPath := container.Rootfiles[0].FullPath

	var pkg epubPackage
	if err := decodeZipXML(files[opfPath], &pkg); err != nil {
		return "", fmt.Errorf("failed to read epub package: %w", err)
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}

	base := path.Dir(opfPath)
	var sb strings.Builder
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		docPath := href
		if base != "." {
			docPath = path.Join(base, href)
		}
		f, ok := files[docPath]
		if !ok {
			continue
		}
		text, err := zipFileText(f)
		if err != nil {
			return "", fmt.Errorf("failed to read epub document %s: %w", docPath, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func decodeZipXML(f *zip.File, dest any) error {
	if f == nil {
		return fmt.Errorf("missing archive entry")
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(dest)
}

// zipFileText strips markup from an XHTML document, keeping character
// data separated by newlines.
func zipFileText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return markupText(rc)
}

// markupText collects trimmed character data from an XML/XHTML stream.
func markupText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if cd, ok := tok.(xml.CharData); ok {
			text := strings.TrimSpace(string(cd))
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}
