package services

import (
	"bytes"
	"html/template"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background:#f4f4f4; padding:24px;">
  <div style="max-width:480px; margin:0 auto; background:#ffffff; border-radius:8px; padding:32px;">
    <h2 style="margin-top:0;">{{.Heading}}</h2>
    <p>{{.Intro}}</p>
    <p style="font-size:32px; letter-spacing:8px; font-weight:bold; text-align:center;">{{.Code}}</p>
    <p>This code expires in {{.Minutes}} minutes. If you did not request it, you can ignore this email.</p>
    <p style="color:#888;">{{.SiteName}}</p>
  </div>
</body>
</html>`))

var linkTemplate = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background:#f4f4f4; padding:24px;">
  <div style="max-width:480px; margin:0 auto; background:#ffffff; border-radius:8px; padding:32px;">
    <h2 style="margin-top:0;">{{.Heading}}</h2>
    <p>{{.Intro}}</p>
    <p style="text-align:center;"><a href="{{.URL}}" style="background:#e50914; color:#fff; padding:12px 24px; border-radius:4px; text-decoration:none;">{{.Action}}</a></p>
    <p>This link expires in {{.Minutes}} minutes.</p>
    <p style="color:#888;">{{.SiteName}}</p>
  </div>
</body>
</html>`))

var bulkTemplate = template.Must(template.New("bulk").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding:24px;">
  <div style="max-width:600px; margin:0 auto;">
    {{range .Paragraphs}}<p>{{.}}</p>{{end}}
    <p style="color:#888;">{{.SiteName}}</p>
  </div>
</body>
</html>`))

type OTPMail struct {
	Heading  string
	Intro    string
	Code     string
	Minutes  int
	SiteName string
}

type LinkMail struct {
	Heading  string
	Intro    string
	URL      string
	Action   string
	Minutes  int
	SiteName string
}

type BulkMail struct {
	Paragraphs []string
	SiteName   string
}

func RenderOTPMail(data OTPMail) (string, error) {
	return render(otpTemplate, data)
}

func RenderLinkMail(data LinkMail) (string, error) {
	return render(linkTemplate, data)
}

func RenderBulkMail(data BulkMail) (string, error) {
	return render(bulkTemplate, data)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
