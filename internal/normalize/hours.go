package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cafesync/internal/model"
)

const (
	allDayOpen  = "00:00"
	allDayClose = "23:59"
)

// Ordem importa: a primeira ocorrência encontrada define o dia.
var days = []struct {
	name string
	idx  int
}{
	{"Sunday", 0},
	{"Monday", 1},
	{"Tuesday", 2},
	{"Wednesday", 3},
	{"Thursday", 4},
	{"Friday", 5},
	{"Saturday", 6},
}

// Aceita espaço comum, U+202F e U+00A0 antes de am/pm; separador "–" ou "-".
var timeRange = regexp.MustCompile(`(\d{1,2}[.:]\d{2}[\s\x{202F}\x{00A0}]*[aApP][mM])[\s\x{202F}\x{00A0}]*[–-][\s\x{202F}\x{00A0}]*(\d{1,2}[.:]\d{2}[\s\x{202F}\x{00A0}]*[aApP][mM])`)

var clockSpaces = strings.NewReplacer(".", ":", "\u202f", " ", "\u00a0", " ")

var clockNoSpace = regexp.MustCompile(`(\d)([aApP][mM])$`)

// DayOfWeek finds the first English weekday name in line (Sunday = 0).
func DayOfWeek(line string) (int, bool) {
	for _, d := range days {
		if strings.Contains(line, d.name) {
			return d.idx, true
		}
	}
	return 0, false
}

// Hours parses the scraped opening_hours lines, e.g. "Tuesday \t 8.00 am–11.00 pm".
// Lines without a weekday, or with a weekday but no recognizable schedule, are dropped.
func Hours(lines []string) []model.OperatingHours {
	var out []model.OperatingHours
	for _, line := range lines {
		if h, ok := HoursLine(line); ok {
			out = append(out, h)
		}
	}
	return out
}

// HoursLine parses one opening_hours line into a row for its weekday.
// ok is false when the line names no weekday or has no schedule.
func HoursLine(line string) (model.OperatingHours, bool) {
	clean := strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))

	day, ok := DayOfWeek(clean)
	if !ok {
		return model.OperatingHours{}, false
	}

	if m := timeRange.FindStringSubmatch(clean); m != nil {
		return model.OperatingHours{
			DayOfWeek: day,
			OpenTime:  To24h(m[1]),
			CloseTime: To24h(m[2]),
		}, true
	}

	switch {
	case strings.Contains(clean, "24 hours"):
		open, closing := allDayOpen, allDayClose
		return model.OperatingHours{DayOfWeek: day, OpenTime: &open, CloseTime: &closing}, true
	case strings.Contains(clean, "Closed"):
		return model.OperatingHours{DayOfWeek: day, IsClosed: true}, true
	}

	return model.OperatingHours{}, false
}

// To24h converte "8.00 pm" / "8:00 PM" em "20:00:00". Entrada inválida devolve nil.
func To24h(s string) *string {
	clean := strings.ToUpper(strings.TrimSpace(clockSpaces.Replace(s)))
	clean = clockNoSpace.ReplaceAllString(clean, "$1 $2")
	clean = strings.Join(strings.Fields(clean), " ")

	hour, _, _ := strings.Cut(clean, ":")
	if h, err := strconv.Atoi(hour); err != nil || h < 1 || h > 12 {
		return nil
	}

	t, err := time.Parse("3:04 PM", clean)
	if err != nil {
		return nil
	}
	out := t.Format("15:04:05")
	return &out
}
