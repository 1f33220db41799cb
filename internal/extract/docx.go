package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXML is the main document body inside a .docx package.
const docxDocumentXML = "word/document.xml"

// docxTextNode matches <w:t>text</w:t> including variants carrying attributes
// such as xml:space="preserve".
var docxTextNode = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCX extracts text from .docx bytes. A DOCX file is a zip whose main
// body lives in word/document.xml; pulling every <w:t> text node keeps the
// content regardless of paragraph or run attributes.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXML {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("extract DOCX: open %s: %w", f.Name, err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", docxDocumentXML)
	}

	nodes := docxTextNode.FindAllSubmatch(docXML, -1)
	if len(nodes) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, node := range nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.Write(bytes.TrimSpace(node[1]))
	}
	return strings.TrimSpace(b.String()), nil
}
