package chat

import "fmt"

// MenuText is the top-level menu shown whenever routing falls through.
const MenuText = `Olá! Sou o assistente do salão. Escolha uma opção:
1 - Agendar horário
2 - Cancelar agendamento
3 - Ver horários de hoje
4 - Horário de funcionamento
5 - Endereço
6 - Falar com um atendente
7 - Sair`

const (
	msgAskDate       = "Informe a data desejada (DD/MM/AAAA):"
	msgAskTime       = "Informe o horário desejado (HH:MM):"
	msgAskName       = "Informe o nome do cliente:"
	msgAskCancel     = "Informe o nome e o horário do agendamento a cancelar (ex: Joao 14:30):"
	msgInvalidDate   = "Data inválida. Use o formato DD/MM/AAAA."
	msgPastDate      = "Essa data já passou. Informe uma data a partir de hoje."
	msgInvalidTime   = "Horário inválido. Use o formato HH:MM."
	msgOutsideHours  = "Estamos fechados nesse horário. Consulte a opção 4 para o horário de funcionamento."
	msgPastDateTime  = "Esse horário já passou. Escolha um horário futuro."
	msgLimitReached  = "Você já possui 3 agendamentos ativos. Cancele um deles para agendar outro."
	msgSlotTaken     = "Esse horário já está reservado. Escolha outra data ou horário."
	msgCancelFormat  = "Não entendi. Envie o nome e o horário separados por espaço (ex: Joao 14:30)."
	msgCancelOK      = "Agendamento cancelado com sucesso."
	msgNotFound      = "Não encontrei nenhum agendamento com esses dados."
	msgTryAgain      = "Tivemos um problema ao processar sua mensagem. Tente novamente em instantes."
	msgBackToMenu    = "Tudo bem, voltando ao menu."
	msgFarewell      = "Obrigado pelo contato. Até logo!"
	msgHours         = "Funcionamento: segunda a sexta e domingo das 09:00 às 20:00, sábado das 10:00 às 16:00."
	msgSideWelcome   = "Certo! Um atendente vai falar com você em instantes. Envie \"sair\" para voltar ao menu."
	msgSideExit      = "Atendimento encerrado."
	msgSideIdle      = "Encerramos a conversa com o atendente por inatividade. Envie qualquer mensagem para ver o menu."
	msgPresenceYes   = "Presença confirmada. Até amanhã!"
	msgPresenceAgain = "Não entendi. Responda \"sim\" para confirmar ou \"não\" para cancelar o agendamento."
	msgFeedbackOK    = "Obrigado pelo feedback!"
	msgFeedbackUse   = "Para avaliar, envie: feedback <nome> <comentário> <nota de 1 a 5>"
	msgTriageUse     = "Para sugestão de estilo, envie: triagem <estilo> <nome>"
	msgReportDenied  = "Esse comando é restrito à administração."
)

func addressText(address string) string {
	return fmt.Sprintf("Estamos na %s.", address)
}

func bookingConfirmation(name, dateBR, timeStr, address string) string {
	return fmt.Sprintf("Agendamento confirmado!\nNome: %s\nData: %s\nHorário: %s\nEndereço: %s",
		name, dateBR, timeStr, address)
}

func adminBookingNotice(name, dateBR, timeStr string) string {
	return fmt.Sprintf("Novo agendamento: %s em %s às %s.", name, dateBR, timeStr)
}

func adminCancelNotice(name, dateBR, timeStr string) string {
	return fmt.Sprintf("Cancelamento: %s em %s às %s.", name, dateBR, timeStr)
}

// SameDayReminder is the message sent on the morning of the appointment.
func SameDayReminder(name, timeStr, salon string) string {
	return fmt.Sprintf("Olá %s! Lembrete: você tem horário hoje às %s no %s.", name, timeStr, salon)
}

// PresencePrompt asks the requester to confirm tomorrow's appointment.
func PresencePrompt(name, timeStr string) string {
	return fmt.Sprintf("Olá %s! Você tem horário amanhã às %s. Podemos confirmar sua presença? Responda \"sim\" ou \"não\".", name, timeStr)
}
