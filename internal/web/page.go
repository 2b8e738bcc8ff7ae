package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"dashcal/internal/calendar"
	appLog "dashcal/internal/log"
	"dashcal/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("calendar.html").Funcs(template.FuncMap{
		"boxStyle":   boxStyle,
		"colorStyle": colorStyle,
		"clock":      clock,
		"hourLabel":  hourLabel,
	}).ParseFS(templateFS, "templates/calendar.html"),
)

// pageData is the template context for /calendar.
type pageData struct {
	View     calendar.View
	Weekdays []string
	Date     string
}

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// handleCalendarPage renders the current view as static HTML. The capture
// job waits for data-ready on the root element before taking a screenshot.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controllerFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := pageData{
		View:     ctrl.Render(eventsInLocation(s.store.List(), s.loc)),
		Weekdays: weekdayNames,
		Date:     ctrl.Reference().Format(dateLayout),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		appLog.Error("failed to render calendar page", err, "mode", data.View.Mode)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func boxStyle(b calendar.Box) template.CSS {
	return template.CSS(fmt.Sprintf("top:%.2f%%;height:%.2f%%;background:%s",
		b.TopPercent, b.HeightPercent, b.Event.Color.Resolve().Hex()))
}

func colorStyle(c model.Color) template.CSS {
	return template.CSS("background:" + c.Resolve().Hex())
}

func clock(ev model.Event) string {
	return ev.Start.Format("15:04") + "-" + ev.End.Format("15:04")
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
