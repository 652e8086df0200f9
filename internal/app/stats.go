package app

import (
	"io"
	"time"

	"github.com/yeoul2023/study-timer/internal/timetrack"
)

// RecentDays is the window of the recent average.
const RecentDays = 5

func (a *App) SessionStats() timetrack.SessionStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.Sessions(a.ledger.Store(), a.ledger.TodayKey())
}

func (a *App) TotalHours() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.TotalHours(a.ledger.Store())
}

func (a *App) ProductiveHours() []timetrack.HourScore {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.ProductiveHours(a.ledger.Store(), a.now().Location())
}

func (a *App) PredictGoalCompletion() timetrack.Prediction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.Predict(a.ledger.Store(), a.ledger.TodayKey(), a.now())
}

// RecentAverage averages study hours over the last RecentDays days.
func (a *App) RecentAverage() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.RecentAverage(a.ledger.Store(), RecentDays)
}

func (a *App) Weekly() []timetrack.DayHours {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.Weekly(a.ledger.Store(), a.now())
}

func (a *App) ExportForAI() timetrack.Export {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.ExportForAI(a.ledger.Store(), a.now())
}

func (a *App) ExportCSV(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.WriteCSV(w, a.ledger.Store())
}

// Report collects the days between from and to for a printable report.
func (a *App) Report(from, to time.Time) timetrack.ReportData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.BuildReport(a.ledger.Store(), from, to, a.now().Location())
}

// Keys returns every stored date key, ascending.
func (a *App) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timetrack.SortedKeys(a.ledger.Store())
}

// Now returns the App's clock reading.
func (a *App) Now() time.Time { return a.now() }
