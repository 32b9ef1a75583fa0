// Package export writes rosters and generated shifts in JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/kilianp07/roster/core/model"
	"github.com/kilianp07/roster/core/scheduler"
)

// WriteResultJSON writes the full result to w as indented JSON.
func WriteResultJSON(w io.Writer, res *scheduler.ScheduleResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteResultCSV writes one row per assignment. shifts supplies day and time
// columns; assignments to unknown shifts leave them empty.
func WriteResultCSV(w io.Writer, res *scheduler.ScheduleResult, shifts []model.Shift) error {
	byID := make(map[string]model.Shift, len(shifts))
	for _, s := range shifts {
		byID[s.ID()] = s
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"assistant_id", "shift_id", "day", "start", "end", "hours"}); err != nil {
		return err
	}
	for _, a := range res.Assignments {
		rec := []string{a.AssistantID, a.ShiftID, "", "", "", ""}
		if s, ok := byID[a.ShiftID]; ok {
			rec[2] = s.Day().String()
			rec[3] = s.Start().String()
			rec[4] = s.End().String()
			rec[5] = formatFloat(s.DurationHours())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHoursCSV writes per-assistant hours against their baseline, sorted by
// assistant id.
func WriteHoursCSV(w io.Writer, res *scheduler.ScheduleResult) error {
	ids := make([]string, 0, len(res.AssistantHours))
	for id := range res.AssistantHours {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"assistant_id", "hours", "baseline"}); err != nil {
		return err
	}
	for _, id := range ids {
		if err := cw.Write([]string{id, formatFloat(res.AssistantHours[id]), formatFloat(res.Baselines[id])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type demandJSON struct {
	Course         string  `json:"course"`
	TutorsRequired int     `json:"tutors_required"`
	Weight         float64 `json:"weight"`
}

type shiftJSON struct {
	ID       string            `json:"id"`
	Day      model.Weekday     `json:"day"`
	Start    model.ClockTime   `json:"start"`
	End      model.ClockTime   `json:"end"`
	MinStaff int               `json:"min_staff"`
	MaxStaff *int              `json:"max_staff,omitempty"`
	Demands  []demandJSON      `json:"demands"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WriteShiftsJSON writes shifts in the same shape input files use, so the
// output can be edited and fed back as an input document.
func WriteShiftsJSON(w io.Writer, shifts []model.Shift) error {
	out := make([]shiftJSON, 0, len(shifts))
	for _, s := range shifts {
		sj := shiftJSON{
			ID:       s.ID(),
			Day:      s.Day(),
			Start:    s.Start(),
			End:      s.End(),
			MinStaff: s.MinStaff(),
			Demands:  make([]demandJSON, 0, len(s.Demands())),
			Metadata: s.Metadata(),
		}
		for _, d := range s.Demands() {
			sj.Demands = append(sj.Demands, demandJSON{Course: d.CourseCode, TutorsRequired: d.TutorsRequired, Weight: d.Weight})
		}
		if maxStaff, ok := s.MaxStaff(); ok {
			sj.MaxStaff = &maxStaff
		}
		out = append(out, sj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"shifts": out})
}

// WriteShiftsCSV writes one row per shift.
func WriteShiftsCSV(w io.Writer, shifts []model.Shift) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"shift_id", "day", "start", "end", "min_staff", "max_staff", "demands"}); err != nil {
		return err
	}
	for _, s := range shifts {
		maxStaff := ""
		if m, ok := s.MaxStaff(); ok {
			maxStaff = strconv.Itoa(m)
		}
		demands := ""
		for i, d := range s.Demands() {
			if i > 0 {
				demands += ";"
			}
			demands += fmt.Sprintf("%s:%d", d.CourseCode, d.TutorsRequired)
		}
		rec := []string{s.ID(), s.Day().String(), s.Start().String(), s.End().String(), strconv.Itoa(s.MinStaff()), maxStaff, demands}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
