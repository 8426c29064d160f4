// services/ticket.go
package services

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"

	"festival-registration-system/models"
	"festival-registration-system/utils"
)

// TicketRenderer draws the fixed-layout A4 ticket: festival header, event
// info, participant block, team table for group events, rules and the QR
// image. All user-supplied text is sanitized before it reaches the layout
// engine.
type TicketRenderer struct {
	festivalName string
	logoPath     string
}

func NewTicketRenderer(festivalName, logoPath string) *TicketRenderer {
	return &TicketRenderer{festivalName: festivalName, logoPath: logoPath}
}

// Render produces the ticket PDF. The document's creation date is pinned to
// the registration's CreatedAt so rendering the same registration twice
// yields identical bytes.
func (r *TicketRenderer) Render(reg *models.Registration, event *models.Event, qrPNG []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(reg.CreatedAt.UTC())
	pdf.SetModificationDate(reg.CreatedAt.UTC())
	pdf.SetTitle(r.festivalName+" Ticket", false)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	r.drawHeader(pdf)
	r.drawEventBlock(pdf, reg, event)
	r.drawParticipantBlock(pdf, reg)
	if event.Mode == models.ModeGroup && len(reg.TeamMembers) > 0 {
		r.drawTeamTable(pdf, reg)
	}
	r.drawRules(pdf, event)
	r.drawQR(pdf, reg, qrPNG)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, artifactErrorf(err, "failed to render ticket for %s", reg.RegistrationID)
	}
	return buf.Bytes(), nil
}

func (r *TicketRenderer) drawHeader(pdf *fpdf.Fpdf) {
	if r.logoPath != "" {
		if _, err := os.Stat(r.logoPath); err == nil {
			pdf.ImageOptions(r.logoPath, 15, 12, 22, 0, false,
				fpdf.ImageOptions{ReadDpi: true}, 0, "")
		}
	}
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(40, 14)
	pdf.CellFormat(0, 10, utils.SanitizeText(r.festivalName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetX(40)
	pdf.CellFormat(0, 7, "Event Ticket", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetDrawColor(80, 80, 80)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(5)
}

func (r *TicketRenderer) drawEventBlock(pdf *fpdf.Fpdf, reg *models.Registration, event *models.Event) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, utils.SanitizeText(event.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	r.labelRow(pdf, "Category", event.Category)
	r.labelRow(pdf, "Participation", event.Mode)
	r.labelRow(pdf, "Date", reg.ResolvedEventDate)
	pdf.Ln(4)
}

func (r *TicketRenderer) drawParticipantBlock(pdf *fpdf.Fpdf, reg *models.Registration) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Participant", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	r.labelRow(pdf, "Name", reg.LeaderName)
	r.labelRow(pdf, "Email", reg.LeaderEmail)
	r.labelRow(pdf, "Phone", reg.LeaderPhone)
	if reg.IsHomeInstitution {
		r.labelRow(pdf, "Register No", reg.LeaderRegisterNo)
	} else {
		r.labelRow(pdf, "College", reg.LeaderCollege)
		if reg.LeaderRegisterNo != "" {
			r.labelRow(pdf, "Register No", reg.LeaderRegisterNo)
		}
	}
	r.labelRow(pdf, "Payment", reg.PaymentState)
	pdf.Ln(4)
}

func (r *TicketRenderer) drawTeamTable(pdf *fpdf.Fpdf, reg *models.Registration) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Team Members", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 7, "Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(90, 7, "Register No / College", "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, member := range reg.TeamMembers {
		identity := member.RegisterNo
		if !reg.IsHomeInstitution {
			identity = member.College
			if member.RegisterNo != "" {
				identity = fmt.Sprintf("%s (%s)", member.College, member.RegisterNo)
			}
		}
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 7, utils.Truncate(utils.SanitizeText(member.Name), 45), "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 7, utils.Truncate(utils.SanitizeText(identity), 50), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *TicketRenderer) drawRules(pdf *fpdf.Fpdf, event *models.Event) {
	rules := event.RuleList()
	if len(rules) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Rules", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, rule := range rules {
		pdf.CellFormat(5, 6, "-", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, utils.SanitizeText(rule), "", "L", false)
	}
	pdf.Ln(2)
}

func (r *TicketRenderer) drawQR(pdf *fpdf.Fpdf, reg *models.Registration, qrPNG []byte) {
	name := "qr-" + reg.RegistrationID
	pdf.RegisterImageOptionsReader(name,
		fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	y := pdf.GetY()
	if y > 215 {
		pdf.AddPage()
		y = pdf.GetY()
	}
	pdf.ImageOptions(name, 145, y, 45, 45, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetXY(15, y+10)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 8, utils.SanitizeText(reg.RegistrationID), "", 1, "L", false, 0, "")
	pdf.SetX(15)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(120, 5, "Present this ticket and the QR code at the venue entrance.", "", 1, "L", false, 0, "")
	pdf.SetY(y + 50)
}

// labelRow prints one "Label: value" line.
func (r *TicketRenderer) labelRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(35, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, utils.SanitizeText(value), "", 1, "L", false, 0, "")
}
