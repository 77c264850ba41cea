package chat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/internal/validate"
)

type styleSuggestion struct {
	Suggestion string
	Stylist    string
	Price      string
}

// styleTable is the fixed triage catalog. Keys are matched as
// case-insensitive substrings of the requested style.
var styleTable = map[string]styleSuggestion{
	"degrade":     {Suggestion: "corte degradê com acabamento na navalha", Stylist: "Carlos", Price: "R$ 45"},
	"social":      {Suggestion: "corte social clássico com tesoura", Stylist: "Ana", Price: "R$ 35"},
	"barba":       {Suggestion: "barba desenhada com toalha quente", Stylist: "Carlos", Price: "R$ 30"},
	"luzes":       {Suggestion: "luzes com matização", Stylist: "Fernanda", Price: "R$ 180"},
	"progressiva": {Suggestion: "escova progressiva com selagem", Stylist: "Fernanda", Price: "R$ 220"},
}

// handleTriage answers "triagem <estilo> <nome>" from the fixed style table.
// It never creates records.
func (m *Machine) handleTriage(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return msgTriageUse
	}
	style := strings.ToLower(fields[1])
	name := strings.Join(fields[2:], " ")

	for key, s := range styleTable {
		if strings.Contains(key, style) {
			return fmt.Sprintf("%s, nossa sugestão para %s: %s, com %s, por %s.",
				name, key, s.Suggestion, s.Stylist, s.Price)
		}
	}
	return fmt.Sprintf("Não reconhecemos o estilo %q. Temos sugestões para: %s.", fields[1], strings.Join(styleKeys(), ", "))
}

func styleKeys() []string {
	keys := make([]string, 0, len(styleTable))
	for key := range styleTable {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// handleFeedback parses "feedback <nome> <comentário...> <nota>" and persists
// the record. The last token is the rating.
func (m *Machine) handleFeedback(ctx context.Context, text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) < 4 {
		return msgFeedbackUse, nil
	}

	rating, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || !validate.ValidRating(rating) {
		return msgFeedbackUse, nil
	}

	fb := appointments.Feedback{
		ClientName: fields[1],
		Comment:    strings.Join(fields[2:len(fields)-1], " "),
		Rating:     rating,
	}
	if err := m.repo.InsertFeedback(ctx, fb); err != nil {
		m.logger.Error("chat: feedback insert failed", "error", err)
		return msgTryAgain, nil
	}
	return msgFeedbackOK, nil
}

// handleReport produces the admin summary and emits CSV dumps to the report
// sink. Non-admin requesters get a refusal and no state change.
func (m *Machine) handleReport(ctx context.Context, requesterID string) (string, error) {
	if requesterID != m.adminID {
		return msgReportDenied, nil
	}

	today := dateOnly(m.now()).Format(appointments.DateLayout)
	active, err := m.repo.FindFrom(ctx, today)
	if err != nil {
		m.logger.Error("chat: report query failed", "error", err)
		return msgTryAgain, nil
	}
	cancels, err := m.repo.ListCancellations(ctx)
	if err != nil {
		m.logger.Error("chat: report query failed", "error", err)
		return msgTryAgain, nil
	}

	if m.reports != nil {
		if err := m.reports.DumpAppointments(ctx, active); err != nil {
			m.logger.Warn("chat: appointment dump failed", "error", err)
		}
		if err := m.reports.DumpCancellations(ctx, cancels); err != nil {
			m.logger.Warn("chat: cancellation dump failed", "error", err)
		}
	}

	return fmt.Sprintf("Relatório: %d agendamentos ativos, %d cancelamentos registrados.", len(active), len(cancels)), nil
}
