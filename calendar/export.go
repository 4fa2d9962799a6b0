// Package calendar renders a scheduled plan as an iCalendar (RFC 5545)
// document so tasks can be imported into Google Calendar, Outlook and
// other iCalendar-compatible applications.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ganttic"
)

const (
	// DefaultHoursPerDay is the working hours mapped onto one working day.
	DefaultHoursPerDay = 8.0

	// dayStartHour is the wall-clock hour at which a working day begins.
	dayStartHour = 9
)

type exportConfig struct {
	startDate       time.Time
	hoursPerDay     float64
	includeWeekends bool
	subtaskEvents   bool
}

// Option represents configuration options for calendar export.
type Option func(*exportConfig)

// WithStartDate sets the project start date. Default is tomorrow at the
// start of the working day.
func WithStartDate(startDate time.Time) Option {
	return func(c *exportConfig) {
		c.startDate = startDate
	}
}

// WithHoursPerDay sets the working hours per day. Default is
// DefaultHoursPerDay. Non-positive values fall back to the default.
func WithHoursPerDay(hours float64) Option {
	return func(c *exportConfig) {
		c.hoursPerDay = hours
	}
}

// WithWeekends includes Saturday and Sunday as working days. Default is
// Monday through Friday only.
func WithWeekends() Option {
	return func(c *exportConfig) {
		c.includeWeekends = true
	}
}

// WithSubtaskEvents adds one event per subtask, placed sequentially
// within its parent task's window. Default is subtasks listed in the
// task event description only.
func WithSubtaskEvents() Option {
	return func(c *exportConfig) {
		c.subtaskEvents = true
	}
}

// Export renders the plan as an iCalendar document: one event per task
// spanning its duration plus buffer in working time, and a transparent
// all-day event spanning the whole project. The plan must already be
// scheduled; start offsets are taken as-is.
func Export(p *ganttic.Plan, options ...Option) string {
	cfg := &exportConfig{
		hoursPerDay: DefaultHoursPerDay,
	}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.hoursPerDay <= 0 {
		cfg.hoursPerDay = DefaultHoursPerDay
	}
	if cfg.startDate.IsZero() {
		now := time.Now()
		cfg.startDate = time.Date(now.Year(), now.Month(), now.Day()+1, dayStartHour, 0, 0, 0, now.Location())
	}
	if p == nil {
		p = &ganttic.Plan{}
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ganttic//Project Planner//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + escapeText(p.Title),
		"X-WR-CALDESC:" + escapeText(p.Summary),
	}

	for _, task := range p.Tasks {
		lines = append(lines, taskEvents(task, cfg)...)
	}

	projectEnd := addWorkingHours(cfg.startDate, p.TotalDuration(), cfg)
	lines = append(lines,
		"BEGIN:VEVENT",
		"UID:"+uuid.NewString()+"@ganttic",
		"DTSTAMP:"+formatDateTime(time.Now()),
		"DTSTART;VALUE=DATE:"+cfg.startDate.Format("20060102"),
		"DTEND;VALUE=DATE:"+projectEnd.Format("20060102"),
		"SUMMARY:"+escapeText(p.Title),
		"DESCRIPTION:"+escapeText(projectDescription(p)),
		"TRANSP:TRANSPARENT",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	return strings.Join(lines, "\r\n")
}

func taskEvents(task ganttic.Task, cfg *exportConfig) []string {
	taskStart := addWorkingHours(cfg.startDate, task.StartOffsetHours, cfg)
	taskEnd := addWorkingHours(taskStart, task.DurationHours+task.BufferHours, cfg)

	var description []string
	if task.Description != "" {
		description = append(description, task.Description, "")
	}
	description = append(description,
		"Phase: "+task.Phase,
		fmt.Sprintf("Duration: %.1fh", task.DurationHours),
	)
	if task.BufferHours > 0 {
		description = append(description, fmt.Sprintf("Buffer: %.1fh", task.BufferHours))
	}
	description = append(description, "Complexity: "+string(task.Complexity))
	if len(task.Subtasks) > 0 {
		description = append(description, "", "Subtasks:")
		for i, st := range task.Subtasks {
			line := fmt.Sprintf("%d. %s (%.1fh)", i+1, st.Name, st.DurationHours)
			if st.Description != "" {
				line += " - " + st.Description
			}
			description = append(description, line)
		}
	}

	events := []string{
		"BEGIN:VEVENT",
		"UID:" + uuid.NewString() + "@ganttic",
		"DTSTAMP:" + formatDateTime(time.Now()),
		"DTSTART:" + formatDateTime(taskStart),
		"DTEND:" + formatDateTime(taskEnd),
		"SUMMARY:" + escapeText(task.Name),
		"DESCRIPTION:" + escapeText(strings.Join(description, "\n")),
		"CATEGORIES:" + escapeText(task.Phase),
		"STATUS:CONFIRMED",
		"TRANSP:OPAQUE",
		"END:VEVENT",
	}

	if cfg.subtaskEvents {
		subStart := taskStart
		for _, st := range task.Subtasks {
			subEnd := addWorkingHours(subStart, st.DurationHours, cfg)
			events = append(events,
				"BEGIN:VEVENT",
				"UID:"+uuid.NewString()+"@ganttic",
				"DTSTAMP:"+formatDateTime(time.Now()),
				"DTSTART:"+formatDateTime(subStart),
				"DTEND:"+formatDateTime(subEnd),
				"SUMMARY:"+escapeText(task.Name+" / "+st.Name),
				"DESCRIPTION:"+escapeText(st.Description),
				"CATEGORIES:"+escapeText(task.Phase),
				"STATUS:CONFIRMED",
				"TRANSP:OPAQUE",
				"END:VEVENT",
			)
			subStart = subEnd
		}
	}

	return events
}

// addWorkingHours advances a timestamp by the given number of working
// hours, spilling into following working days when the current day's
// working window is exhausted.
func addWorkingHours(start time.Time, hours float64, cfg *exportConfig) time.Time {
	current := start
	remaining := hours

	for remaining > 0 {
		if !isWorkingDay(current, cfg) {
			current = nextWorkingMorning(current)
			continue
		}

		if current.Hour() < dayStartHour {
			current = time.Date(current.Year(), current.Month(), current.Day(), dayStartHour, 0, 0, 0, current.Location())
		}

		dayEnd := float64(dayStartHour) + cfg.hoursPerDay
		hoursLeft := dayEnd - float64(current.Hour()) - float64(current.Minute())/60
		if hoursLeft < 0 {
			hoursLeft = 0
		}

		if remaining <= hoursLeft {
			current = current.Add(time.Duration(remaining * float64(time.Hour)))
			remaining = 0
		} else {
			remaining -= hoursLeft
			current = nextWorkingMorning(current)
		}
	}

	return current
}

func isWorkingDay(t time.Time, cfg *exportConfig) bool {
	if cfg.includeWeekends {
		return true
	}
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func nextWorkingMorning(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, dayStartHour, 0, 0, 0, t.Location())
}

func formatDateTime(t time.Time) string {
	return t.Format("20060102T150405") + "Z"
}

// escapeText escapes commas, semicolons, backslashes and newlines as
// required by RFC 5545.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, ";", "\\;")
	text = strings.ReplaceAll(text, "\n", "\\n")
	return text
}

func projectDescription(p *ganttic.Plan) string {
	summary := p.Summary
	if summary == "" {
		summary = "No description provided."
	}
	lines := []string{
		"Project: " + p.Title,
		"",
		summary,
		"",
		fmt.Sprintf("Total Duration: %.1f hours", p.TotalDuration()),
		fmt.Sprintf("Total Tasks: %d", len(p.Tasks)),
	}
	if len(p.Assumptions) > 0 {
		lines = append(lines, "", "Assumptions:")
		for _, assumption := range p.Assumptions {
			lines = append(lines, "- "+assumption)
		}
	}
	return strings.Join(lines, "\n")
}
