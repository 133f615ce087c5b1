package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/array-sim/internal/commands"
	"github.com/talgya/array-sim/internal/engine"
	"github.com/talgya/array-sim/internal/processor"
)

// printStatus renders the game as plain text. It runs on the engine goroutine.
func printStatus(w io.Writer, sim *engine.Simulation, ctrl *commands.Controller) {
	var b strings.Builder
	storage := sim.Storage()

	fmt.Fprintf(&b, "\n== credits %s | storage %s/%s | upkeep %s/day | power %.1f | next job %s | day %s",
		humanize.Comma(int64(sim.Credits())),
		humanize.Comma(int64(storage.Stored)), humanize.Comma(int64(storage.Capacity)),
		humanize.Comma(int64(sim.TotalUpkeep()+sim.TotalElectricityCost())),
		sim.TotalPowerDraw(),
		percent(sim.JobSpawnProgress()), percent(sim.DayProgress()),
	)
	if sim.ThermalPasteActive() {
		b.WriteString(" | paste")
	}
	b.WriteString(" ==\n")

	if ctrl.StoreOpen {
		writeStore(&b, sim, ctrl)
	} else {
		writeProcessors(&b, sim, ctrl)
		writeJobs(&b, sim, ctrl)
	}

	b.WriteString("-- log --\n")
	for _, m := range sim.Messages() {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	io.WriteString(w, b.String())
}

func writeProcessors(b *strings.Builder, sim *engine.Simulation, ctrl *commands.Controller) {
	fmt.Fprintf(b, "processors%s\n", focusMark(ctrl.Focus == commands.FocusOnProcessors))
	for i, p := range sim.Processors() {
		cursor := " "
		if i == ctrl.SelectedProcessor {
			cursor = ">"
		}
		fmt.Fprintf(b, "%s %d %-18s %-9s rel %3.0f%% heat %.2f cool %d %-6s",
			cursor, i, p.Name, p.Status, p.Reliability*100, p.Heat, p.EffectiveCooling, p.Mode)
		if p.Status == processor.KindWorking && p.TotalMs > 0 {
			done := 1 - float64(p.RemainingMs)/float64(p.TotalMs)
			fmt.Fprintf(b, " %s", percent(done))
			if p.Overheating {
				b.WriteString(" HOT")
			}
		}
		if p.Wear > 0 {
			fmt.Fprintf(b, " wear %s", percent(p.Wear))
		}
		if sug, ok := sim.AssistSuggestion(i); ok {
			fmt.Fprintf(b, " [assist: job %d, %.1fs, rel %.0f%%]", sug.JobIndex, sug.ETASeconds, sug.Reliability*100)
		}
		b.WriteString("\n")
	}
}

func writeJobs(b *strings.Builder, sim *engine.Simulation, ctrl *commands.Controller) {
	fmt.Fprintf(b, "jobs%s\n", focusMark(ctrl.Focus == commands.FocusOnJobs))
	if ctrl.Pending != nil {
		fmt.Fprintf(b, "  pending: %s [%s]\n", ctrl.Pending.Name, ctrl.Pending.Tag)
	}
	for i, j := range sim.Jobs() {
		cursor := " "
		if i == ctrl.SelectedJob {
			cursor = ">"
		}
		fmt.Fprintf(b, "%s %d %-20s %-7s %5.1fs %s cr q%d data %d\n",
			cursor, i, j.Name, j.Tag, float64(j.BaseTimeMs)/1000,
			humanize.Comma(int64(j.BaseReward)), j.QualityTarget, j.DataOutput)
	}
}

func writeStore(b *strings.Builder, sim *engine.Simulation, ctrl *commands.Controller) {
	procIndex := engine.NoSelection
	if n := sim.ProcessorCount(); n > 0 {
		procIndex = min(ctrl.SelectedProcessor, n-1)
	}
	b.WriteString("store\n")
	for _, e := range sim.Store(procIndex) {
		cursor := " "
		if e.Index == ctrl.SelectedStoreItem {
			cursor = ">"
		}
		price := "--"
		if e.Available {
			price = humanize.Comma(int64(e.Cost)) + " cr"
			if !e.Affordable {
				price += " (short)"
			}
		}
		fmt.Fprintf(b, "%s %d %-28s %-16s x%d  %s\n", cursor, e.Index, e.Item.Name, price, e.Purchases, e.Item.Description)
	}
}

func focusMark(focused bool) string {
	if focused {
		return " *"
	}
	return ""
}

func percent(f float64) string {
	return humanize.FormatFloat("#,###.", f*100) + "%"
}
