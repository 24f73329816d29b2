package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"estate-intake/internal/domain"
)

// The overlay is a full A4 page whose only content is a bottom-anchored
// signature row. Stamped onto static pages it drops each signer's mark
// just above the page footer without touching the printed content.
const overlayTmplText = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    html, body {
      width: 210mm; max-width: 210mm; min-width: 210mm;
      height: 297mm; min-height: 297mm; max-height: 297mm;
      margin: 0; padding: 0;
      font-family: Arial, sans-serif;
      background: transparent; overflow: hidden;
    }
    .overlay {
      width: 210mm; height: 297mm;
      display: flex; flex-direction: column; justify-content: flex-end;
    }
    .signature-row {
      display: flex; align-items: flex-end; gap: 40px;
      padding: 0 24px 18px 24px;
    }
    .signer-label {
      color: #58595b; font-style: italic; font-size: 10px;
      text-align: center; margin-bottom: 2px;
    }
    .signature-img {
      width: 150px; height: 40px;
      display: flex; align-items: center; justify-content: center;
    }
    .signature-img img { max-width: 100%; max-height: 100%; object-fit: contain; }
  </style>
</head>
<body>
  <div class="overlay">
    <div class="signature-row">
      {{range .Signers}}
      <div>
        <div class="signer-label">{{.Label}}</div>
        <div class="signature-img"><img src="{{.Image}}" alt="Signature" /></div>
      </div>
      {{end}}
    </div>
  </div>
</body>
</html>`

var overlayTmpl = template.Must(template.New("overlay").Parse(overlayTmplText))

// RenderSignatureOverlay returns the overlay page HTML, or "" when no
// applicant supplied a signature (nothing to stamp).
func RenderSignatureOverlay(form domain.ApplicationForm) (string, error) {
	signers := signerBlocks(form)
	if len(signers) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := overlayTmpl.Execute(&buf, struct{ Signers []signerBlock }{signers}); err != nil {
		return "", fmt.Errorf("signature overlay template: %w", err)
	}
	return buf.String(), nil
}
