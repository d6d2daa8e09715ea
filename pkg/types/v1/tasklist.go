package v1

import (
	"fmt"
	"strings"
)

// TaskListStatus counts the markdown checklist items of a note.
type TaskListStatus struct {
	Checked int
	Total   int
}

func (s TaskListStatus) String() string {
	if s.Total == 0 {
		return "no tasks"
	}
	return fmt.Sprintf("%d/%d done", s.Checked, s.Total)
}

// Done reports whether every task is checked. A note without tasks is never done.
func (s TaskListStatus) Done() bool {
	return s.Total > 0 && s.Checked == s.Total
}

// TaskList scans content line by line for "- [ ]" style items. Any list
// bullet works and the check mark may be x or X.
func TaskList(content string) TaskListStatus {
	var s TaskListStatus
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 5 || !strings.ContainsRune("-*+", rune(line[0])) || line[1] != ' ' {
			continue
		}
		switch line[2:5] {
		case "[ ]":
			s.Total++
		case "[x]", "[X]":
			s.Total++
			s.Checked++
		}
	}
	return s
}
