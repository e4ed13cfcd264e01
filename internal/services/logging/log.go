package logging

import (
	"fmt"
	"sync"
	"time"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
)

// Log collects monitor notifications. Messages are kept in a scrollable
// history; the most recent ones are also shown inline for a few seconds.
type Log struct {
	history   *History
	sync      sync.Mutex
	activeLMs []activeLM
	redraw    func(bool)
	debug     bool
}
type activeLM struct {
	Message string
	timer   *time.Timer
}

func New(redraw func(bool)) *Log {
	return &Log{
		history: &History{redraw: redraw, silence: true},
		redraw:  redraw,
		debug:   false,
	}
}

func (l *Log) Notify(text string, colour string) {
	str := fmt.Sprintf("%s%s%s%s%s", display.ClearLine, colour, text, common.Reset, display.ClearEnd)
	l.history.add(str)

	l.sync.Lock()
	l.activeLMs = append(
		[]activeLM{{
			Message: str,
			timer: time.AfterFunc(5*time.Second, func() {
				l.sync.Lock()
				if len(l.activeLMs) > 0 {
					l.activeLMs = l.activeLMs[:len(l.activeLMs)-1]
				}
				l.sync.Unlock()
				l.redraw(false)
			})}}, l.activeLMs...)
	l.sync.Unlock()
	l.redraw(false)
}

func (l *Log) SetDebug(enabled bool) {
	if l.debug != enabled {
		if enabled {
			l.Info("Debug output enabled")
			l.debug = true
		} else {
			l.Info("Debug output disabled")
			l.debug = false
		}
	}
}

func (l *Log) Debugf(text string, a ...interface{}) {
	l.Debug(fmt.Sprintf(text, a...))
}
func (l *Log) Debug(text string) {
	if l.debug {
		l.Notify(text, common.White)
	} else {
		l.history.add(fmt.Sprintf("%s%s%s%s", common.White, text, common.Reset, display.ClearEnd))
	}
}
func (l *Log) Infof(text string, a ...interface{}) {
	l.Info(fmt.Sprintf(text, a...))
}
func (l *Log) Info(text string) {
	l.Notify(text, common.BrightWhite)
}
func (l *Log) Warnf(text string, a ...interface{}) {
	l.Warn(fmt.Sprintf(text, a...))
}
func (l *Log) Warn(text string) {
	l.Notify(text, common.BrightYellow)
}
func (l *Log) Errorf(text string, a ...interface{}) {
	l.Error(fmt.Sprintf(text, a...))
}
func (l *Log) Error(text string) {
	l.Notify(text, common.BrightRed)
}

func (l *Log) LogBlock() []string {
	var tmp []string
	l.sync.Lock()
	defer l.sync.Unlock()
	for _, alm := range l.activeLMs {
		tmp = append(tmp, alm.Message)
	}
	return tmp
}
func (l *Log) Dump() {
	lines := l.LogBlock()
	for i := len(lines) - 1; i >= 0; i-- {
		fmt.Printf("%s\n", lines[i])
	}
}

func (l *Log) HistoryViewer() common.UI {
	return l.history
}
