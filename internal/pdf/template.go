package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"estate-intake/internal/domain"
)

// Templater produces the self-contained HTML documents the browser
// prints. Each document is one A4 page with every style inlined and
// every image embedded as a data URI; the render adapter loads them
// with no network access.
type Templater struct {
	assets *Assets
}

func NewTemplater(assets *Assets) *Templater {
	return &Templater{assets: assets}
}

// Box counts per field, measured in cells. The multi-line fields are
// split into full rows by the grid renderer, not by the caller.
const (
	boxesName    = 20
	boxesTax     = 23
	boxesContact = 28

	taxWardLines = 2
	addressLines = 3
)

var pageFuncs = template.FuncMap{
	"grid": func(value string, boxes int) template.HTML {
		return template.HTML(RenderGrid(value, boxes, gridBoxWidth, gridBoxHeight))
	},
	"gridLines": func(value string, boxes, lines int) template.HTML {
		return template.HTML(RenderGridLines(value, boxes, lines, gridBoxWidth, gridBoxHeight))
	},
}

const pageShellCSS = `
    * { margin: 0; padding: 0; box-sizing: border-box; }
    html, body {
      width: 210mm; max-width: 210mm; min-width: 210mm;
      height: 297mm; min-height: 297mm; max-height: 297mm;
      margin: 0; padding: 0;
      font-family: Arial, sans-serif; font-size: 13px;
      background: white; overflow: hidden; color: #58595b;
    }
    main {
      padding: 24px;
      width: 210mm; max-width: 210mm; min-width: 210mm;
      height: 297mm; min-height: 297mm; max-height: 297mm;
    }
    .container {
      width: 100%; padding: 20px; border: 1px solid #58595b;
      overflow: hidden; box-sizing: border-box; height: 100%;
      display: grid; grid-template-rows: 86px auto auto;
    }
    .header { margin-bottom: 24px; }
    .field-row { display: flex; align-items: center; gap: 10px; margin-bottom: 6px; }
    .label {
      font-weight: bold; color: #58595b; font-size: 12px;
      width: 100px; min-width: 100px; flex-shrink: 0;
    }
    .label-wide { width: 200px; min-width: 200px; }
    .fields-area {
      display: flex; flex-wrap: wrap; flex-direction: column;
      gap: 12px; margin-bottom: 12px;
    }
    .photo-section { width: 162px; flex-shrink: 0; }
    .photo-box { border: 1px solid #ee1e23; background: white; padding: 8px; width: 100%; }
    .photo-container {
      aspect-ratio: 3/4; background: white; border: 1px solid #9ca3af;
      display: flex; align-items: center; justify-content: center;
      overflow: hidden; width: 100%;
    }
    .photo-container img { width: 100%; height: 100%; object-fit: cover; }
    .checkbox-group { display: flex; flex-direction: row; gap: 40px; }
    .checkbox-item { display: flex; align-items: center; gap: 6px; }
    .checkbox {
      width: 12px; height: 12px; border: 1px solid #ff7f82; background: white;
      display: flex; align-items: center; justify-content: center;
    }
    .checkbox.checked { background: #ff7f82; }
    .checkbox-text { font-weight: bold; color: #58595b; font-size: 9px; }
    .section-title { text-transform: uppercase; font-size: 12px; margin: 0; }
    .value-field {
      border-bottom: 1px solid #58595b; color: #58595b; flex: 1;
      min-width: 150px; height: 20px; font-size: 13px; padding-left: 4px;
    }
`

const headerTmplText = `
  <div class="header">
    <div style="display: flex; justify-content: space-between; align-items: center; gap: 8px; width: 100%;">
      <div>{{if .ProjectLogo}}<img src="{{.ProjectLogo}}" alt="Project Logo" style="width: auto; height: 40px;" />{{end}}</div>
      <div>{{if .ResidenceLogo}}<img src="{{.ResidenceLogo}}" alt="Residence Logo" style="width: auto; height: 48px;" />{{end}}</div>
    </div>
  </div>`

const signatureFooterTmplText = `
  {{if .Signers}}
  <div style="padding-top: 12px; display: flex; align-items: flex-start; gap: 40px; align-self: end;">
    {{range .Signers}}
    <div>
      <div style="margin-bottom: 4px; text-align: center;">
        <span style="color: #58595b; font-style: italic; font-size: 11px;">{{.Label}}</span>
      </div>
      <div style="margin-bottom: 4px;">
        <label style="font-weight: bold; color: #58595b; font-size: 11px;">Signature:</label>
      </div>
      <div style="border: 1px dashed #ee1e23; background-color: white; border-radius: 12px; width: 170px; height: 45px; display: flex; align-items: center; justify-content: center;">
        <img src="{{.Image}}" alt="Signature" style="max-width: 100%; max-height: 100%; object-fit: contain;" />
      </div>
    </div>
    {{end}}
  </div>
  {{end}}`

const applicantTmplText = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=612, initial-scale=1.0">
  <style>` + pageShellCSS + `</style>
</head>
<body>
  <main>
    <div class="container">
      ` + headerTmplText + `
      <div class="fields-area">
        <h2 class="section-title">{{.Slot}}. {{.Heading}}</h2>
        <div style="display: flex; gap: 12px;">
          <div style="flex: 1; display: flex; flex-direction: column; gap: 6px; min-width: 0;">
            <div class="field-row">
              <div class="label">{{.A.Title}}</div>
              {{grid .Name 20}}
            </div>
            <div class="field-row">
              <div class="label">{{.A.Relation}}</div>
              {{grid .A.RelativeOf 20}}
            </div>
            <div class="field-row">
              <div class="label">Nationality:</div>
              {{grid .A.Nationality 20}}
            </div>
            <div class="field-row">
              <div class="label">Age:</div>
              {{grid .A.Age 20}}
            </div>
            <div class="field-row">
              <div class="label">DOB:</div>
              {{grid .A.DOB 20}}
            </div>
            <div class="field-row">
              <div class="label">Profession:</div>
              {{grid .A.Profession 20}}
            </div>
            <div class="field-row">
              <div class="label">Aadhar No.:</div>
              {{grid .A.Aadhaar 20}}
            </div>
          </div>
          <div class="photo-section">
            <div class="photo-box">
              <div class="photo-container">
                {{if .Photo}}<img src="{{.Photo}}" alt="Applicant Photo" />{{else}}<span style="color: #9ca3af; font-size: 8px; text-align: center; padding: 4px;">Photo</span>{{end}}
              </div>
            </div>
          </div>
        </div>

        <div style="display: flex; flex-direction: column; gap: 6px;">
          <div class="field-row" style="align-items: flex-start; margin-top: 2px;">
            <div class="label" style="padding-top: 4px;">Residential Status:</div>
            <div class="checkbox-group">
              {{range .Statuses}}
              <div class="checkbox-item">
                <div class="checkbox{{if .Checked}} checked{{end}}">{{if .Checked}}<span style="color: white; font-weight: bold; font-size: 9px;">&#10003;</span>{{end}}</div>
                <span class="checkbox-text">{{.Label}}</span>
              </div>
              {{end}}
            </div>
          </div>
          <div class="field-row">
            <div class="label label-wide">Income Tax Permanent Account No.:</div>
            {{grid .A.PAN 23}}
          </div>
          <div class="field-row" style="align-items: flex-start;">
            <div class="label label-wide" style="padding-top: 4px; line-height: 1.25;">Ward / Circle / Special Range / Place, where assessed to income tax:</div>
            {{gridLines .A.ITWard 23 2}}
          </div>
          <div class="field-row" style="align-items: flex-start;">
            <div class="label" style="padding-top: 4px;">Correspondence Address:</div>
            {{gridLines .A.CorrespondenceAddress 28 3}}
          </div>
          <div class="field-row">
            <div class="label">Tel No.:</div>
            {{grid .A.TelNo 28}}
          </div>
          <div class="field-row">
            <div class="label">Mobile:</div>
            {{grid .A.Phone 28}}
          </div>
          <div class="field-row">
            <div class="label">E-Mail ID:</div>
            {{grid .A.Email 28}}
          </div>
        </div>

        {{if .ShowOrg}}
        <div style="display: flex; flex-direction: column; gap: 6px; margin-top: 8px;">
          <h2 class="section-title">OR (COMPANY / FIRM / HUF)</h2>
          <div class="field-row">
            <div class="label">M/s.</div>
            {{grid .A.Organization.Name 20}}
          </div>
          <div class="field-row" style="align-items: flex-start;">
            <div class="label label-wide" style="padding-top: 4px;">Reg. Office / Corporate Office:</div>
            <div style="display: flex; flex-direction: column; gap: 2px;">
              <div>{{grid .A.Organization.RegOfficeLine1 23}}</div>
              <div>{{grid .A.Organization.RegOfficeLine2 23}}</div>
            </div>
          </div>
          <div class="field-row" style="align-items: flex-start;">
            <div class="label label-wide" style="padding-top: 4px;">Authorized Signatory:</div>
            <div style="display: flex; flex-direction: column; gap: 2px;">
              <div>{{grid .A.Organization.AuthorizedSignatoryLine1 23}}</div>
              <div>{{grid .A.Organization.AuthorizedSignatoryLine2 23}}</div>
            </div>
          </div>
          <div class="field-row">
            <div class="label label-wide">Board Resolution dated / Power of Attorney:</div>
            {{grid .A.Organization.BoardResolutionDate 20}}
          </div>
          <div class="field-row">
            <div class="label">PAN No./TIN No.:</div>
            {{grid .A.Organization.PANOrTIN 23}}
          </div>
          <div class="field-row">
            <div class="label">Tel No.:</div>
            {{grid .A.Organization.TelNo 28}}
          </div>
          <div class="field-row">
            <div class="label">Mobile No.:</div>
            {{grid .A.Organization.MobileNo 28}}
          </div>
          <div class="field-row">
            <div class="label">E-mail ID:</div>
            {{grid .A.Organization.Email 28}}
          </div>
          <div class="field-row">
            <div class="label">Fax No.:</div>
            {{grid .A.Organization.FaxNo 28}}
          </div>
        </div>
        {{end}}
      </div>
      ` + signatureFooterTmplText + `
    </div>
  </main>
</body>
</html>`

const declarationTmplText = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=612, initial-scale=1.0">
  <style>` + pageShellCSS + `
    .fields-section { display: flex; flex-direction: column; margin-bottom: 40px; border: 1px solid #58595b; }
    .rate-box { border-left: 1px solid #58595b; padding: 24px; min-height: 200px; flex-grow: 1; flex-basis: 0; }
    .note-section { color: #58595b; margin-bottom: 40px; }
    .declaration-text { font-size: 13px; line-height: 1.5; color: #58595b; }
    .declaration-footer { margin-top: 20px; }
    .date-place-row { display: flex; flex-direction: column; width: max-content; gap: 20px; }
    .date-place-item { display: flex; align-items: center; gap: 12px; }
    .apt-label { color: #58595b; font-size: 12px; width: 85px; min-width: 85px; flex-shrink: 0; }
  </style>
</head>
<body>
  <main>
    <div class="container">
      ` + headerTmplText + `
      <div class="fields-area">
        <h2 class="section-title">4. DETAILS OF THE SAID APARTMENT AND ITS PRICING</h2>

        <div class="fields-section">
          <div style="flex: 1 0 0; display: flex;">
            <div style="display: flex; flex-direction: column; gap: 10px; padding: 20px; width: 55%;">
              <div class="field-row">
                <div class="apt-label">Tower</div>
                <div class="value-field">{{.Form.Tower}}</div>
              </div>
              <div class="field-row">
                <div class="apt-label">Apartment No.</div>
                <div class="value-field">{{.Form.ApartmentNumber}}</div>
              </div>
              <div class="field-row">
                <div class="apt-label">Type</div>
                <div class="value-field">{{.Form.BHKDisplay}}</div>
              </div>
              <div class="field-row">
                <div class="apt-label">Floor</div>
                <div class="value-field">{{.Form.Floor}}</div>
              </div>
              <div class="field-row">
                <div class="apt-label" style="width: auto; min-width: 50px;">Carpet Area:</div>
                <div style="display: flex; align-items: center; gap: 8px;">
                  <div class="value-field" style="min-width: 55px;">{{.Form.CarpetAreaSqm}}</div>
                  <span style="font-size: 11px;">sq.mtr. (</span>
                  <div class="value-field" style="min-width: 55px;">{{.Form.CarpetAreaSqft}}</div>
                  <span style="font-size: 11px;">sq.ft.)</span>
                </div>
              </div>
              <div class="field-row">
                <div class="apt-label" style="width: auto; min-width: 50px;">Unit Price (in rupees)</div>
                <div class="value-field">{{.UnitPrice}}</div>
              </div>
              <p style="font-size: 12px;">
                Applicable taxes and cesses payable by the <strong>Applicant(s)</strong> which are in addition to total unit price (this includes GST payable at rates as specified from time to time, which at present is 5%)
              </p>
            </div>
            <div class="rate-box">
              <div style="color: #58595b; margin-bottom: 8px; font-size: 11px;">
                Rate of <b>Said Apartment</b> per square meter*
              </div>
              <div style="min-height: 160px;"></div>
            </div>
          </div>
          <div style="display: flex; border-top: 1px solid #58595b">
            <div class="field-row" style="margin-bottom: 0; padding: 15px 20px; width: calc(55% + 1px); border-right: 1px solid #58595b">
              <div class="apt-label" style="width: auto; min-width: 100px;">Total Price <span style="font-weight: 500">(in rupees)</span></div>
              <div class="value-field">{{.TotalPrice}}</div>
            </div>
          </div>
        </div>

        <div class="note-section">
          <h2 class="section-title" style="margin: 0 0 15px;">*NOTE:</h2>
          <div>
            <div style="margin-bottom: 7px;">
              1. The <strong>Total Price</strong> for the <strong>Said Apartment</strong> is based on the <strong>Carpet Area</strong>.
            </div>
            <div>
              2. The <strong>Promoter</strong> has taken the conversion factor of 10.764 sq.ft. per sqm. for the purpose of this <strong>Application</strong> (1 feet = 304.8 mm)
            </div>
          </div>
        </div>

        <div>
          <h2 class="section-title" style="margin: 0 0 15px;">5. DECLARATION</h2>
          <div class="declaration-text">
            The <strong>Applicant(s)</strong> hereby declares that the above particulars / information given by the <strong>Applicant(s)</strong> are true and correct and nothing has been concealed therefrom.
          </div>
          <div class="declaration-footer">
            <div style="color: #58595b; font-size: 13px; margin-bottom: 20px;">Yours Faithfully</div>
            <div class="date-place-row">
              <div class="date-place-item">
                <label style="color: #58595b; font-size: 12px; flex-shrink: 0;">Date:</label>
                <div class="value-field" style="min-width: 100px;">{{.Date}}</div>
              </div>
              <div class="date-place-item">
                <label style="color: #58595b; font-size: 12px; flex-shrink: 0;">Place:</label>
                <div class="value-field" style="min-width: 150px;">{{.Form.DeclarationPlace}}</div>
              </div>
            </div>
          </div>
        </div>
      </div>
      ` + signatureFooterTmplText + `
    </div>
  </main>
</body>
</html>`

var (
	applicantTmpl   = template.Must(template.New("applicant").Funcs(pageFuncs).Parse(applicantTmplText))
	declarationTmpl = template.Must(template.New("declaration").Funcs(pageFuncs).Parse(declarationTmplText))
)

type statusOption struct {
	Label   string
	Checked bool
}

type signerBlock struct {
	Label string
	Image template.URL
}

type applicantPageData struct {
	Slot    int
	Heading string
	Name    string
	A       domain.Applicant
	Photo   template.URL
	ShowOrg bool

	ProjectLogo   template.URL
	ResidenceLogo template.URL
	Statuses      []statusOption
	Signers       []signerBlock
}

type declarationPageData struct {
	Form       domain.ApplicationForm
	UnitPrice  string
	TotalPrice string
	Date       string

	ProjectLogo   template.URL
	ResidenceLogo template.URL
	Signers       []signerBlock
}

var signerLabels = map[int]string{
	domain.SlotFirst:  "Sole/First Applicant",
	domain.SlotSecond: "Second Applicant",
	domain.SlotThird:  "Third Applicant",
}

// signerBlocks collects every applicant's available signature; the same
// footer composition appears on every generated page, whichever slot
// the page belongs to.
func signerBlocks(form domain.ApplicationForm) []signerBlock {
	var out []signerBlock
	for slot := domain.SlotFirst; slot <= domain.SlotThird; slot++ {
		a := form.Applicant(slot)
		if a.HasSignature() {
			out = append(out, signerBlock{Label: signerLabels[slot], Image: template.URL(a.Signature)})
		}
	}
	return out
}

// RenderApplicantPage produces the HTML for one applicant slot, or ""
// when the slot is not included per the inclusion predicate.
func (t *Templater) RenderApplicantPage(a domain.Applicant, slot int, form domain.ApplicationForm) (string, error) {
	if !a.HasData(slot) {
		return "", nil
	}

	heading := "SOLE OR FIRST APPLICANT(S):-"
	if slot > domain.SlotFirst {
		heading = fmt.Sprintf("JOINT APPLICANT %d:-", slot-1)
	}

	data := applicantPageData{
		Slot:          slot,
		Heading:       heading,
		Name:          strings.TrimSpace(a.Name),
		A:             a,
		Photo:         template.URL(a.Photograph),
		ShowOrg:       slot == domain.SlotThird && a.Organization.HasData(),
		ProjectLogo:   template.URL(t.assets.ProjectLogo()),
		ResidenceLogo: template.URL(t.assets.ResidenceLogo()),
		Statuses: []statusOption{
			{Label: "Resident", Checked: a.ResidentialStatus == domain.StatusResident},
			{Label: "Non- Resident", Checked: a.ResidentialStatus == domain.StatusNonResident},
			{Label: "Foreign National of Indian Origin", Checked: a.ResidentialStatus == domain.StatusForeignNational},
		},
		Signers: signerBlocks(form),
	}

	var buf bytes.Buffer
	if err := applicantTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("applicant page template (slot %d): %w", slot, err)
	}
	return buf.String(), nil
}

// RenderDeclarationPage produces the apartment/pricing/declaration page.
// Always present in the assembled document.
func (t *Templater) RenderDeclarationPage(form domain.ApplicationForm) (string, error) {
	data := declarationPageData{
		Form:          form,
		UnitPrice:     cleanPrice(form.UnitPrice),
		TotalPrice:    cleanPrice(form.TotalPrice),
		Date:          domain.NormalizeDate(form.DeclarationDate),
		ProjectLogo:   template.URL(t.assets.ProjectLogo()),
		ResidenceLogo: template.URL(t.assets.ResidenceLogo()),
		Signers:       signerBlocks(form),
	}

	var buf bytes.Buffer
	if err := declarationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("declaration page template: %w", err)
	}
	return buf.String(), nil
}

// cleanPrice strips currency formatting the client may have applied.
func cleanPrice(s string) string {
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
