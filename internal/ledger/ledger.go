// Package ledger holds the in-memory aggregate for one day and the mutation
// rules that keep it consistent. Nothing here performs I/O.
package ledger

import (
	"math"

	"github.com/saadjs/kcal-sync/internal/model"
)

// driftEpsilon absorbs floating-point residue left by add-then-subtract cycles.
const driftEpsilon = 1e-9

// Ledger is the running DailySummary for "today" plus today's entries in the
// order they were logged. It is not safe for concurrent use; the owner
// serializes access.
type Ledger struct {
	summary model.DailySummary
	entries []model.Entry
}

func New(date string) *Ledger {
	return &Ledger{summary: model.DailySummary{Date: date}}
}

// Summary returns a copy of the current aggregate.
func (l *Ledger) Summary() model.DailySummary {
	s := l.summary
	if s.DailyLogID != nil {
		id := *s.DailyLogID
		s.DailyLogID = &id
	}
	return s
}

func (l *Ledger) Entries() []model.Entry {
	out := make([]model.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset drops every total, goal and entry and starts an empty day.
func (l *Ledger) Reset(date string) {
	l.summary = model.DailySummary{Date: date}
	l.entries = nil
}

// Replace installs server truth. Entries are replaced only when entries is
// non-nil so a record-only fetch keeps the local list.
func (l *Ledger) Replace(summary model.DailySummary, entries []model.Entry) {
	l.summary = summary
	if entries != nil {
		l.entries = append([]model.Entry(nil), entries...)
	}
}

func (l *Ledger) MarkStale(stale bool) {
	l.summary.Stale = stale
}

// ApplyAddition adds every delta field to the matching summary field.
func (l *Ledger) ApplyAddition(d model.Delta) {
	s := &l.summary
	s.CaloriesEaten += d.Calories
	s.ProteinG += d.ProteinG
	s.CarbsG += d.CarbsG
	s.FatG += d.FatG
	s.FiberG += d.FiberG
	s.IronMg += d.IronMg
	s.CalciumMg += d.CalciumMg
	s.PotassiumMg += d.PotassiumMg
	s.VitaminAUg += d.VitaminAUg
	s.VitaminB12Ug += d.VitaminB12Ug
	s.FolateUg += d.FolateUg
	s.VitaminCMg += d.VitaminCMg
	s.AlcoholG += d.AlcoholG
	s.StandardDrinks += d.StandardDrinks
	s.CaffeineMg += d.CaffeineMg
	s.WaterMl += d.WaterMl
}

// AddEntry appends e to today's entries and applies its contribution.
func (l *Ledger) AddEntry(e model.Entry) {
	l.entries = append(l.entries, e)
	l.ApplyAddition(e.Contribution())
}

// ApplyDeletion subtracts the entry's tracked fields, flooring every field at
// zero, and removes the entry from the list. Deleting an entry that is not in
// the list still subtracts: the server totals may include entries this
// session never fetched.
func (l *Ledger) ApplyDeletion(e model.Entry) {
	l.subtract(e.Contribution())
	for i := range l.entries {
		if l.entries[i].SameEntry(e) {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
}

func (l *Ledger) subtract(d model.Delta) {
	s := &l.summary
	s.CaloriesEaten = subInt(s.CaloriesEaten, d.Calories)
	s.ProteinG = sub(s.ProteinG, d.ProteinG)
	s.CarbsG = sub(s.CarbsG, d.CarbsG)
	s.FatG = sub(s.FatG, d.FatG)
	s.FiberG = sub(s.FiberG, d.FiberG)
	s.IronMg = sub(s.IronMg, d.IronMg)
	s.CalciumMg = sub(s.CalciumMg, d.CalciumMg)
	s.PotassiumMg = sub(s.PotassiumMg, d.PotassiumMg)
	s.VitaminAUg = sub(s.VitaminAUg, d.VitaminAUg)
	s.VitaminB12Ug = sub(s.VitaminB12Ug, d.VitaminB12Ug)
	s.FolateUg = sub(s.FolateUg, d.FolateUg)
	s.VitaminCMg = sub(s.VitaminCMg, d.VitaminCMg)
	s.AlcoholG = sub(s.AlcoholG, d.AlcoholG)
	s.StandardDrinks = sub(s.StandardDrinks, d.StandardDrinks)
	s.CaffeineMg = sub(s.CaffeineMg, d.CaffeineMg)
	s.WaterMl = sub(s.WaterMl, d.WaterMl)
}

// Recompute rebuilds the consumed totals from the entry list. Goals, burned
// calories, identity and date are kept. Only valid when the entry list is
// known to be complete for the day.
func (l *Ledger) Recompute() {
	prev := l.summary
	l.summary = model.DailySummary{
		Date:           prev.Date,
		DailyLogID:     prev.DailyLogID,
		CaloriesGoal:   prev.CaloriesGoal,
		CaloriesBurned: prev.CaloriesBurned,
		CarbsGoalG:     prev.CarbsGoalG,
		ProteinGoalG:   prev.ProteinGoalG,
		FatGoalG:       prev.FatGoalG,
		WaterGoalMl:    prev.WaterGoalMl,
		Stale:          prev.Stale,
	}
	for _, e := range l.entries {
		l.ApplyAddition(e.Contribution())
	}
}

func sub(prior, v float64) float64 {
	out := prior - v
	if out < driftEpsilon || math.IsNaN(out) {
		return 0
	}
	return out
}

func subInt(prior, v int) int {
	if v >= prior {
		return 0
	}
	return prior - v
}
