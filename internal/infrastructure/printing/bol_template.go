package printing

import (
	"bytes"
	"html/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/freightdesk/backend/internal/domain/bol"
)

// bolView is the data handed to the BOL template.
type bolView struct {
	Title  string
	Fields bol.Fields
	Lines  []bolLine
}

type bolLine struct {
	Index   int
	Desc    string
	HUType  string
	PkgType string
	HUQty   string
	PkgQty  string
	NMFC    string
	Class   string
}

// Field returns a field value; keys the document does not carry are empty.
func (v bolView) Field(name string) string {
	return v.Fields.Get(name)
}

// Checked reports whether a checkbox field holds the Yes token.
func (v bolView) Checked(name string) bool {
	return v.Fields.Get(name) == "Yes"
}

func newBOLView(doc *bol.Document) bolView {
	v := bolView{Title: doc.FileName, Fields: doc.Fields}
	for i := 1; i <= doc.Lines; i++ {
		f := doc.Fields
		v.Lines = append(v.Lines, bolLine{
			Index:   i,
			Desc:    f.Get(bol.LineField(bol.LineDesc, i)),
			HUType:  f.Get(bol.LineField(bol.LineHUType, i)),
			PkgType: f.Get(bol.LineField(bol.LinePkgType, i)),
			HUQty:   f.Get(bol.LineField(bol.LineHUQty, i)),
			PkgQty:  f.Get(bol.LineField(bol.LinePkgQty, i)),
			NMFC:    f.Get(bol.LineField(bol.LineNMFC, i)),
			Class:   f.Get(bol.LineField(bol.LineClass, i)),
		})
	}
	return v
}

// BOLTemplate renders a bol.Document to HTML.
type BOLTemplate struct {
	tmpl *template.Template
}

// NewBOLTemplate parses the built-in straight bill of lading layout.
func NewBOLTemplate() (*BOLTemplate, error) {
	return ParseBOLTemplate(defaultBOLTemplate)
}

// ParseBOLTemplate parses a custom layout. The template sees .Field,
// .Checked, .Lines and the upper and title functions.
func ParseBOLTemplate(text string) (*BOLTemplate, error) {
	// Casers keep state, so each call gets its own.
	tmpl, err := template.New("bol").Funcs(template.FuncMap{
		"upper": func(s string) string { return cases.Upper(language.AmericanEnglish).String(s) },
		"title": func(s string) string { return cases.Title(language.AmericanEnglish).String(s) },
	}).Parse(text)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse BOL template", err)
	}
	return &BOLTemplate{tmpl: tmpl}, nil
}

// Execute renders doc.
func (t *BOLTemplate) Execute(doc *bol.Document) (string, error) {
	if doc == nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "document is nil", nil)
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, newBOLView(doc)); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute BOL template", err)
	}
	return buf.String(), nil
}

const defaultBOLTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Arial, Helvetica, sans-serif; font-size: 10px; margin: 0; }
  h1 { font-size: 16px; text-align: center; margin: 0 0 6px; }
  table { width: 100%; border-collapse: collapse; }
  td, th { border: 1px solid #000; padding: 3px 4px; vertical-align: top; }
  th { background: #e6e6e6; text-align: left; }
  .label { font-size: 8px; color: #333; display: block; }
  .box { display: inline-block; width: 9px; height: 9px; border: 1px solid #000; text-align: center; line-height: 9px; font-size: 8px; }
  .num { text-align: right; }
  .sign { height: 40px; }
</style>
</head>
<body>
<h1>{{upper "straight bill of lading"}}</h1>
<table>
  <tr>
    <td><span class="label">Date</span>{{.Field "Date"}}</td>
    <td><span class="label">BOL Number</span>{{.Field "BOLNumber"}}</td>
    <td><span class="label">Page</span>1 of {{.Field "Page_ttl"}}</td>
  </tr>
</table>
<table>
  <tr><th colspan="2">{{title "ship from"}}</th><th colspan="2">{{title "carrier"}}</th></tr>
  <tr>
    <td colspan="2">
      {{.Field "FromName"}}<br>{{.Field "FromAddress"}}<br>{{.Field "FromCityStateZip"}}<br>
      <span class="label">SID#</span>{{.Field "FromSID"}}
    </td>
    <td colspan="2">
      <span class="label">Carrier Name</span>{{.Field "CarrierName"}}<br>
      <span class="label">SCAC</span>{{.Field "SCAC"}}<br>
      <span class="label">Pro Number</span>{{.Field "ProNumber"}}<br>
      <span class="label">Pickup Date</span>{{.Field "PickupDate"}}
    </td>
  </tr>
  <tr><th colspan="2">{{title "ship to"}}</th><th colspan="2">{{title "third party freight charges bill to"}}</th></tr>
  <tr>
    <td colspan="2">
      {{.Field "ToName"}}<br>{{.Field "ToCompany"}}<br>{{.Field "ToAddress"}}<br>{{.Field "ToCityStateZip"}}<br>
      <span class="label">Phone</span>{{.Field "ToPhone"}}
    </td>
    <td colspan="2">
      {{.Field "BillName"}}<br>{{.Field "BillAddress"}}<br>{{.Field "BillCityStateZip"}}
    </td>
  </tr>
  <tr>
    <td colspan="2"><span class="label">Special Instructions</span>{{.Field "Instructions"}}</td>
    <td colspan="2">
      <span class="label">Freight Charge Terms</span>
      <span class="box">{{if .Checked "Term_Pre"}}X{{end}}</span> Prepaid
      <span class="box">{{if .Checked "Term_Collect"}}X{{end}}</span> Collect
      <span class="box">{{if .Checked "Term_CustChg"}}X{{end}}</span> 3rd Party<br>
      <span class="box">{{if .Checked "MasterBOL"}}X{{end}}</span> Master BOL
    </td>
  </tr>
</table>
<table>
  <tr><th colspan="7">{{title "carrier information"}}</th></tr>
  <tr>
    <th>HU Qty</th><th>HU Type</th><th>Pkg Qty</th><th>Pkg Type</th>
    <th>Commodity Description</th><th>NMFC #</th><th>Class</th>
  </tr>
  {{range .Lines}}
  <tr>
    <td class="num">{{.HUQty}}</td><td>{{.HUType}}</td><td class="num">{{.PkgQty}}</td><td>{{.PkgType}}</td>
    <td>{{.Desc}}</td><td>{{.NMFC}}</td><td>{{.Class}}</td>
  </tr>
  {{end}}
  <tr>
    <td colspan="4"><span class="label">Total Packages</span>{{.Field "TotalPkgs"}} ({{.Field "NumPkgs1"}} handling units)</td>
    <td colspan="3"><span class="label">Total Weight (lb)</span>{{.Field "TotalWeight"}}</td>
  </tr>
</table>
<table>
  <tr>
    <td class="sign" style="width:50%"><span class="label">Shipper Signature / Date</span></td>
    <td class="sign"><span class="label">Carrier Signature / Pickup Date</span></td>
  </tr>
</table>
</body>
</html>
`
