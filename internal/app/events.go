package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/repcount/internal/progress"
	"github.com/ayusman/repcount/internal/session"
	"github.com/ayusman/repcount/internal/store"
)

// sink fans one session's events out. It runs on the session goroutine.
func (a *App) sink(r *run) session.Sink {
	return func(ev session.Event) {
		if ev.Kind == session.KindFrame {
			a.observeFrame(r, ev)
		}
		if ev.SetComplete && ev.SetIndex > r.setsLogged {
			r.setsLogged = ev.SetIndex
			a.setComplete(r, ev)
		}

		if a.cfg.Hub != nil {
			a.cfg.Hub.Broadcast(ev)
		}
		if a.cfg.Notifier != nil {
			st := r.status
			st.Progress = ev
			a.cfg.Notifier.Update(&st)
		}
	}
}

func (a *App) observeFrame(r *run, ev session.Event) {
	name := r.cfg.Name
	a.metrics.CounterFrames.WithLabelValues(name).Inc()
	a.metrics.HistFrameDuration.Observe(ev.Latency.Seconds())
	if ev.Reposition {
		a.metrics.CounterReposition.WithLabelValues(name).Inc()
	}
	if ev.RepDetected {
		a.metrics.CounterReps.WithLabelValues(name, "full").Inc()
	}
	if ev.PartialRep {
		a.metrics.CounterReps.WithLabelValues(name, "partial").Inc()
	}
}

func (a *App) setComplete(r *run, ev session.Event) {
	logger := log.WithFields(log.Fields{"session": ev.SessionID, "set": ev.SetIndex})
	a.metrics.CounterSets.WithLabelValues(r.cfg.Name).Inc()

	if a.cfg.Store != nil {
		err := a.cfg.Store.Sets().Create(&store.SetResult{
			SessionID:   ev.SessionID,
			SetIndex:    ev.SetIndex,
			Reps:        ev.RepCount,
			PartialReps: ev.PartialReps - r.partialsLogged,
			Hold:        time.Duration(ev.HoldSeconds * float64(time.Second)),
			CompletedAt: ev.At,
		})
		if err != nil {
			logger.Errorf("Failed to save set: %v", err)
		}
		if err := a.cfg.Store.Sessions().UpdateProgress(ev.SessionID, ev.TotalReps, ev.PartialReps, ev.SetIndex); err != nil {
			logger.Errorf("Failed to update session: %v", err)
		}
	}

	r.partialsLogged = ev.PartialReps

	if a.cfg.Outbox == nil {
		return
	}
	if r.user == "" {
		logger.Debug("No user configured, progress not reported")
		return
	}
	rec := progress.Record{
		UserEmail:    r.user,
		ExerciseName: r.cfg.Name,
		CurrentSet:   ev.SetIndex,
		TotalSets:    ev.TotalSets,
		TargetReps:   ev.TargetReps,
		CurrentReps:  ev.RepCount,
	}
	if err := a.cfg.Outbox.Enqueue(rec); err != nil {
		logger.Errorf("Failed to queue progress: %v", err)
		return
	}
	a.refreshPending()

	if a.cfg.Flusher != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.cfg.Flusher.FlushNow()
		}()
	}
}

// ObserveFlush records the outcome of an outbox flush. It is meant as the
// progress scheduler callback.
func (a *App) ObserveFlush(res progress.FlushResult, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "offline"
	case res.Delivered == 0 && res.Dropped == 0:
		result = "empty"
	}
	a.metrics.CounterFlushes.WithLabelValues(result).Inc()
	a.refreshPending()
}

func (a *App) refreshPending() {
	if a.cfg.Outbox == nil {
		return
	}
	n, err := a.cfg.Outbox.Pending()
	if err != nil {
		log.Warnf("Failed to count pending progress: %v", err)
		return
	}
	a.metrics.GaugeProgressPending.Set(float64(n))
}

// PendingProgress returns how many progress records await delivery.
func (a *App) PendingProgress() (int, error) {
	if a.cfg.Outbox == nil {
		return 0, nil
	}
	return a.cfg.Outbox.Pending()
}

// History returns recent sessions, newest first.
func (a *App) History(limit int) ([]*store.Session, error) {
	if a.cfg.Store == nil {
		return nil, nil
	}
	return a.cfg.Store.Sessions().List(limit)
}
