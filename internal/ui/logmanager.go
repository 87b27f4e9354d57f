package ui

import (
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2/widget"
)

const DefaultMaxLogMessages = 100

type logEntry struct {
	at  time.Time
	msg string
}

// LogUIManager keeps recent catalog and viewer messages and pages through
// them in the status bar.
type LogUIManager struct {
	entries         []logEntry
	currentLogIndex int
	maxLogMessages  int
	now             func() time.Time

	statusLogLabel   *widget.Label
	statusLogUpBtn   *widget.Button
	statusLogDownBtn *widget.Button
}

func NewLogUIManager(logLabel *widget.Label, upBtn, downBtn *widget.Button, maxMessages int) *LogUIManager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	return &LogUIManager{
		entries:          make([]logEntry, 0, maxMessages),
		currentLogIndex:  -1,
		maxLogMessages:   maxMessages,
		now:              time.Now,
		statusLogLabel:   logLabel,
		statusLogUpBtn:   upBtn,
		statusLogDownBtn: downBtn,
	}
}

// AddLogMessage records message, mirrors it to the console and jumps the
// status bar to it. Must be called on the UI goroutine.
func (lm *LogUIManager) AddLogMessage(message string) {
	log.Printf("showcase: %s", message)
	lm.entries = append(lm.entries, logEntry{at: lm.now(), msg: message})
	if len(lm.entries) > lm.maxLogMessages {
		lm.entries = lm.entries[len(lm.entries)-lm.maxLogMessages:]
	}
	lm.currentLogIndex = len(lm.entries) - 1
	lm.UpdateLogDisplay()
}

// Messages returns the kept messages, oldest first, with their times.
func (lm *LogUIManager) Messages() []string {
	out := make([]string, len(lm.entries))
	for i, e := range lm.entries {
		out[i] = e.at.Format("15:04:05") + "  " + e.msg
	}
	return out
}

func (lm *LogUIManager) UpdateLogDisplay() {
	if lm.statusLogLabel == nil || lm.statusLogUpBtn == nil || lm.statusLogDownBtn == nil {
		return
	}
	if len(lm.entries) == 0 {
		lm.statusLogLabel.SetText("")
		lm.statusLogUpBtn.Disable()
		lm.statusLogDownBtn.Disable()
		return
	}

	if lm.currentLogIndex < 0 {
		lm.currentLogIndex = 0
	} else if lm.currentLogIndex >= len(lm.entries) {
		lm.currentLogIndex = len(lm.entries) - 1
	}

	e := lm.entries[lm.currentLogIndex]
	lm.statusLogLabel.SetText(fmt.Sprintf("[%d/%d] %s %s", lm.currentLogIndex+1, len(lm.entries), e.at.Format("15:04:05"), e.msg))
	if lm.currentLogIndex <= 0 {
		lm.statusLogUpBtn.Disable()
	} else {
		lm.statusLogUpBtn.Enable()
	}
	if lm.currentLogIndex >= len(lm.entries)-1 {
		lm.statusLogDownBtn.Disable()
	} else {
		lm.statusLogDownBtn.Enable()
	}
}

func (lm *LogUIManager) ShowPreviousLogMessage() {
	if len(lm.entries) == 0 || lm.currentLogIndex <= 0 {
		return
	}
	lm.currentLogIndex--
	lm.UpdateLogDisplay()
}

func (lm *LogUIManager) ShowNextLogMessage() {
	if len(lm.entries) == 0 || lm.currentLogIndex >= len(lm.entries)-1 {
		return
	}
	lm.currentLogIndex++
	lm.UpdateLogDisplay()
}
