package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// StageOutput is the display state of one pipeline stage.
type StageOutput struct {
	ID          int
	Name        string
	Status      string
	Message     string
	StreamLines []string
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
}

type ErrorReport struct {
	Stage string
	Error error
	Time  time.Time
}

// Manager renders stage status lines and their stream output. In live mode the
// block is redrawn in place every displayTick; otherwise only the final state
// is written when the display stops.
type Manager struct {
	out         io.Writer
	live        bool
	stages      []*StageOutput
	mutex       sync.RWMutex
	numLines    int
	maxStreams  int // Max output stream lines per stage
	errors      []ErrorReport
	doneCh      chan struct{}
	displayTick time.Duration
	displayWg   sync.WaitGroup
	stopOnce    sync.Once
}

func NewManager(out io.Writer, live bool) *Manager {
	return &Manager{
		out:         out,
		live:        live,
		maxStreams:  12,
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
	}
}

func (m *Manager) RegisterStage(name string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	now := time.Now()
	m.stages = append(m.stages, &StageOutput{
		ID:          len(m.stages) + 1,
		Name:        name,
		Status:      "pending",
		StartTime:   now,
		LastUpdated: now,
	})
	return len(m.stages)
}

// stage must be called with the mutex held.
func (m *Manager) stage(id int) *StageOutput {
	if id < 1 || id > len(m.stages) {
		return nil
	}
	return m.stages[id-1]
}

func (m *Manager) Start(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.stage(id); info != nil {
		info.Status = "running"
		info.Message = message
		info.StartTime = time.Now()
		info.LastUpdated = info.StartTime
	}
}

func (m *Manager) SetMessage(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.stage(id); info != nil {
		info.Message = message
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) GetStatus(id int) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if info := m.stage(id); info != nil {
		return info.Status
	}
	return "unknown"
}

func (m *Manager) Complete(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.stage(id); info != nil {
		info.StreamLines = nil
		if message == "" {
			info.Message = fmt.Sprintf("Completed %s", info.Name)
		} else {
			info.Message = message
		}
		info.Complete = true
		info.Status = "success"
		info.LastUpdated = time.Now()
	}
}

// Skip marks a stage as finished without doing any work.
func (m *Manager) Skip(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.stage(id); info != nil {
		info.StreamLines = nil
		info.Message = message
		info.Complete = true
		info.Status = "warning"
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) ReportError(id int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.stage(id); info != nil {
		info.Complete = true
		info.Status = "error"
		info.Error = err
		if info.Message == "" {
			info.Message = fmt.Sprintf("Failed %s", info.Name)
		}
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{Stage: info.Name, Error: err, Time: info.LastUpdated})
	}
}

// SetStreamLines replaces the stream output of a stage.
func (m *Manager) SetStreamLines(id int, lines []string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.stage(id); info != nil {
		if len(lines) > m.maxStreams {
			lines = lines[len(lines)-m.maxStreams:]
		}
		info.StreamLines = append([]string(nil), lines...)
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) GetStatusIndicator(status string) string {
	switch status {
	case "success", "pass":
		return successStyle.Render(StyleSymbols["pass"])
	case "error", "fail":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["arrow"])
	}
}

func styleMessage(status, message string) string {
	switch status {
	case "success":
		return successStyle.Render(message)
	case "error":
		return errorStyle.Render(message)
	case "warning":
		return warningStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

func (m *Manager) updateDisplay() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	availableLines := getTerminalHeight() - 3 // Leave some buffer for prompt
	if m.numLines > 0 {
		fmt.Fprintf(m.out, "\033[%dA\033[J", m.numLines)
	}
	m.numLines = m.render(availableLines)
}

// render writes every stage and its stream lines, stopping after maxLines
// lines when maxLines is positive. It returns the number of lines written.
func (m *Manager) render(maxLines int) int {
	lineCount := 0
	full := func() bool { return maxLines > 0 && lineCount >= maxLines }
	indent := strings.Repeat(" ", 2+4)
	for _, info := range m.stages {
		if full() {
			break
		}
		var elapsed time.Duration
		switch {
		case info.Complete:
			elapsed = info.LastUpdated.Sub(info.StartTime).Round(time.Second)
		case info.Status != "pending":
			elapsed = time.Since(info.StartTime).Round(time.Second)
		}
		message := info.Message
		if info.Status == "pending" && message == "" {
			message = "Waiting..."
		}
		fmt.Fprintf(m.out, "%s%s %s %s %s\n", strings.Repeat(" ", 2), m.GetStatusIndicator(info.Status),
			debugStyle.Render(elapsed.String()), headerStyle.Render(info.Name), styleMessage(info.Status, message))
		lineCount++
		for _, line := range info.StreamLines {
			if full() {
				break
			}
			fmt.Fprintf(m.out, "%s%s\n", indent, streamStyle.Render(line))
			lineCount++
		}
	}
	return lineCount
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if m.live {
					m.updateDisplay()
				}
			case <-m.doneCh:
				if m.live {
					m.updateDisplay()
				} else {
					m.mutex.RLock()
					m.render(0)
					m.mutex.RUnlock()
				}
				m.ShowSummary()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	m.stopOnce.Do(func() { close(m.doneCh) })
	m.displayWg.Wait()
}

func (m *Manager) displayErrors() {
	if len(m.errors) == 0 {
		return
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, err := range m.errors {
		fmt.Fprintf(m.out, "%s%s %s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", err.Time.Format("15:04:05"))),
			errorStyle.Render(fmt.Sprintf("Stage: %s", err.Stage)))
		fmt.Fprintf(m.out, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", err.Error)))
	}
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	fmt.Fprintln(m.out)
	var done, failures int
	for _, info := range m.stages {
		switch info.Status {
		case "success", "warning":
			done++
		case "error":
			failures++
		}
	}
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+success2Style.Render(fmt.Sprintf("Completed %d of %d stages", done, len(m.stages))))
	if failures > 0 {
		fmt.Fprintln(m.out, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed %d of %d stages", failures, len(m.stages))))
	}
	m.displayErrors()
	fmt.Fprintln(m.out)
}
