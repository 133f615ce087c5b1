package engine

import (
	"log/slog"
	"slices"

	"github.com/dustin/go-humanize"
)

// Messages returns the retained log lines, oldest first.
func (s *Simulation) Messages() []string {
	return slices.Clone(s.messages)
}

// AddMessage appends a line to the in-game log.
func (s *Simulation) AddMessage(msg string) {
	s.pushMessage(msg)
}

// RestoreMessages replaces the log, keeping only the newest lines.
func (s *Simulation) RestoreMessages(msgs []string) {
	s.messages = s.messages[:0]
	for _, m := range msgs {
		s.pushMessage(m)
	}
}

func (s *Simulation) pushMessage(msg string) {
	limit := max(s.cfg.MessageLimit, 1)
	if len(s.messages) >= limit {
		s.messages = append(s.messages[:0], s.messages[len(s.messages)-limit+1:]...)
	}
	s.messages = append(s.messages, msg)
	slog.Info("game message", "text", msg)
}

func credits(n uint64) string {
	return humanize.Comma(int64(n))
}
