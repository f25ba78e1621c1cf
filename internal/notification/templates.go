package notification

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var spanishWeekdays = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// FormatSpanishDate renders "lunes, 2 de marzo de 2026 a las 10:00".
func FormatSpanishDate(date time.Time, timeStr string) string {
	s := fmt.Sprintf("%s, %d de %s de %d",
		spanishWeekdays[date.Weekday()], date.Day(), spanishMonths[date.Month()-1], date.Year())
	if timeStr != "" {
		s += " a las " + timeStr
	}
	return s
}

const baseStyle = `body { font-family: 'Segoe UI', Tahoma, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #667eea; color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
.content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
.card { background: white; padding: 25px; border-radius: 8px; margin: 20px 0; }
.row { margin: 10px 0; padding: 10px 0; border-bottom: 1px solid #eee; }
.label { font-weight: bold; color: #666; }
.footer { text-align: center; margin-top: 30px; color: #666; font-size: 14px; }`

var appointmentTmpl = template.Must(template.New("appointment").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>{{.Title}}</title><style>` + baseStyle + `</style></head>
<body>
  <div class="header"><h1>{{.Title}}</h1><p>{{.Subtitle}}</p></div>
  <div class="content">
    <p>Estimado/a <strong>{{.PatientName}}</strong>,</p>
    <p>{{.Intro}}</p>
    <div class="card">
      <div class="row"><span class="label">ID de Cita:</span> #{{.AppointmentID}}</div>
      <div class="row"><span class="label">Doctor:</span> Dr. {{.DoctorName}}</div>
      <div class="row"><span class="label">Especialidad:</span> {{.DoctorSpecialty}}</div>
      <div class="row"><span class="label">Fecha y Hora:</span> {{.FormattedDate}}</div>
      {{if .Reason}}<div class="row"><span class="label">Motivo:</span> {{.Reason}}</div>{{end}}
      {{if .Fee}}<div class="row"><span class="label">Costo de Consulta:</span> ${{.Fee}}</div>{{end}}
    </div>
    {{if .Extra}}<div class="card"><strong>{{.ExtraTitle}}</strong><p>{{.Extra}}</p></div>{{end}}
    <div class="footer">
      <p>{{.Closing}}</p>
      <p><em>Este es un mensaje automático, por favor no responda a este correo</em></p>
    </div>
  </div>
</body>
</html>`))

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Verificación de correo</title><style>` + baseStyle + `</style></head>
<body>
  <div class="header"><h1>Verifica tu correo electrónico</h1></div>
  <div class="content">
    <p>Estimado/a <strong>{{.Name}}</strong>,</p>
    <p>Para completar tu registro, verifica tu dirección de correo haciendo clic en el siguiente enlace:</p>
    <p><a href="{{.Link}}">Verificar mi correo</a></p>
    <div class="footer"><p><em>Si no creaste esta cuenta, ignora este mensaje</em></p></div>
  </div>
</body>
</html>`))

type appointmentTmplData struct {
	Title           string
	Subtitle        string
	Intro           string
	PatientName     string
	AppointmentID   string
	DoctorName      string
	DoctorSpecialty string
	FormattedDate   string
	Reason          string
	Fee             string
	ExtraTitle      string
	Extra           string
	Closing         string
}

func (m *AppointmentEmail) tmplData() appointmentTmplData {
	data := appointmentTmplData{
		PatientName:     m.PatientName,
		AppointmentID:   m.AppointmentID.String(),
		DoctorName:      m.DoctorName,
		DoctorSpecialty: m.DoctorSpecialty,
		FormattedDate:   FormatSpanishDate(m.Date, m.Time),
		Reason:          m.Reason,
	}
	if m.ConsultationFee != nil {
		data.Fee = fmt.Sprintf("%.2f", *m.ConsultationFee)
	}
	return data
}

func renderConfirmation(m *AppointmentEmail) (string, error) {
	data := m.tmplData()
	data.Title = "Cita Médica Confirmada"
	data.Subtitle = "Su cita ha sido agendada exitosamente"
	data.Intro = "Nos complace confirmar que su cita médica ha sido agendada exitosamente."
	data.Closing = "Gracias por confiar en nuestros servicios médicos"
	return render(data)
}

func renderUpdate(m *AppointmentEmail, changes string) (string, error) {
	data := m.tmplData()
	data.Title = "Cita Médica Actualizada"
	data.Subtitle = "Se han realizado cambios en su cita"
	data.Intro = "Le informamos que se han realizado cambios en su cita médica:"
	data.ExtraTitle = "Cambios realizados:"
	data.Extra = changes
	data.Closing = "Si tiene alguna pregunta sobre estos cambios, no dude en contactarnos"
	return render(data)
}

func renderCancellation(m *AppointmentEmail, reason string) (string, error) {
	data := m.tmplData()
	data.Title = "Cita Médica Cancelada"
	data.Subtitle = "Su cita ha sido cancelada"
	data.Intro = "Lamentamos informarle que su cita médica ha sido cancelada:"
	if reason != "" {
		data.ExtraTitle = "Motivo de la cancelación:"
		data.Extra = reason
	}
	data.Closing = "Gracias por su comprensión"
	return render(data)
}

func renderReminder(m *AppointmentEmail) (string, error) {
	data := m.tmplData()
	data.Title = "Recordatorio de Cita"
	data.Subtitle = "Su cita médica se acerca"
	data.Intro = "Le recordamos que tiene una cita médica próxima. Recuerde llegar 15 minutos antes y traer su documento de identidad."
	data.Closing = "Nos vemos pronto"
	return render(data)
}

func render(data appointmentTmplData) (string, error) {
	var sb strings.Builder
	if err := appointmentTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering email template: %w", err)
	}
	return sb.String(), nil
}

func renderVerification(name, link string) (string, error) {
	var sb strings.Builder
	err := verificationTmpl.Execute(&sb, struct {
		Name string
		Link template.URL
	}{Name: name, Link: template.URL(link)})
	if err != nil {
		return "", fmt.Errorf("rendering verification template: %w", err)
	}
	return sb.String(), nil
}
