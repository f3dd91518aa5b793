// Package tray provides a system tray status item for the rep counter.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/exercise"
)

const idleTitle = "Idle"

// Tray represents the system tray application.
type Tray struct {
	onDashboard func()
	onStop      func()
	onQuit      func()
	mu          sync.RWMutex

	ready  bool
	status string

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuStop   *systray.MenuItem
}

// New creates a new Tray showing the idle status.
func New() *Tray {
	return &Tray{status: idleTitle}
}

// OnDashboard sets the callback called when "Open dashboard" is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnStop sets the callback called when "Stop workout" is clicked.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called and must run on the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("RepCount")
	systray.SetTooltip("RepCount workout tracker")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Current workout")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open dashboard", "Open the dashboard in a browser")
	t.menuStop = systray.AddMenuItem("Stop workout", "Stop the current workout")
	if t.status == idleTitle {
		t.menuStop.Disable()
	}
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit RepCount")
	t.ready = true
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-menuDashboard.ClickedCh:
				t.call(func() func() { return t.onDashboard })
			case <-t.menuStop.ClickedCh:
				t.call(func() func() { return t.onStop })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ready = false
}

// call runs the selected callback outside the lock.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	fn := pick()
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Update implements app.Notifier. A nil status means no workout is running.
func (t *Tray) Update(st *app.Status) {
	line := StatusLine(st)

	t.mu.Lock()
	defer t.mu.Unlock()
	if line == t.status {
		return
	}
	t.status = line
	if !t.ready {
		return
	}
	t.menuStatus.SetTitle(line)
	if st == nil {
		t.menuStop.Disable()
	} else {
		t.menuStop.Enable()
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// StatusLine renders a workout as "<exercise> set i/n: r/t".
func StatusLine(st *app.Status) string {
	if st == nil {
		return idleTitle
	}
	p := st.Progress
	unit := ""
	if p.HoldSeconds > 0 || st.Archetype == string(exercise.Plank) {
		unit = "s"
	}
	line := fmt.Sprintf("%s set %d/%d: %d/%d%s", st.Exercise, p.SetIndex, p.TotalSets, p.RepCount, p.TargetReps, unit)
	switch {
	case p.WorkoutComplete:
		line += " (done)"
	case p.Resting:
		line += fmt.Sprintf(" (rest %ds)", p.RestSeconds)
	}
	return line
}
