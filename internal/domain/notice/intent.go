// Package notice defines the notification intents emitted by lifecycle
// transitions. The lifecycle commits first; intents are delivered by a
// separate dispatcher and a delivery failure never affects the transition.
package notice

import "fmt"

// Kind identifies a notification template. Kinds map one-to-one to the
// lifecycle transitions that produce user-facing mail.
type Kind string

const (
	KindSubmissionReceived     Kind = "submission_received"
	KindApproved               Kind = "approved"
	KindRejected               Kind = "rejected"
	KindAccountabilityReceived Kind = "accountability_received"
	KindAccountabilityApproved Kind = "accountability_approved"
	KindReimbursementCompleted Kind = "reimbursement_completed"
)

// IsValid checks that the kind is one of the defined templates.
func (k Kind) IsValid() bool {
	switch k {
	case KindSubmissionReceived, KindApproved, KindRejected,
		KindAccountabilityReceived, KindAccountabilityApproved, KindReimbursementCompleted:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Intent is a request to notify a recipient about a lifecycle change.
type Intent struct {
	RequestID    string
	Recipient    string
	Kind         Kind
	EmployeeName string
	EventName    string
	Reason       string
}

// Render produces the subject and body for the intent's template.
func (i Intent) Render() (subject, body string) {
	switch i.Kind {
	case KindSubmissionReceived:
		return "Solicitação Recebida - CITI",
			fmt.Sprintf("Olá %s,\n\nRecebemos sua solicitação para o evento \"%s\".\nEla será analisada pelos comitês Científico e Administrativo.\n\nAtenciosamente,\nEquipe CITI",
				i.EmployeeName, i.EventName)

	case KindApproved:
		return "Auxílio Aprovado - CITI",
			fmt.Sprintf("Parabéns! Sua solicitação para %s foi aprovada pelos comitês Científico e Administrativo.\n\nPróximo passo: participe do evento e envie a prestação de contas.",
				i.EventName)

	case KindRejected:
		body := fmt.Sprintf("Sua solicitação para %s foi recusada.", i.EventName)
		if i.Reason != "" {
			body += fmt.Sprintf("\n\nMotivo: %s", i.Reason)
		}
		body += "\n\nVocê pode enviar uma nova solicitação após os ajustes."
		return "Solicitação Recusada - CITI", body

	case KindAccountabilityReceived:
		return "Prestação de Contas Enviada - CITI",
			fmt.Sprintf("Recebemos os documentos de prestação de contas para o evento %s.\nEles serão analisados pela gestão.",
				i.EventName)

	case KindAccountabilityApproved:
		return "Prestação de Contas Aprovada - CITI",
			"Sua prestação de contas foi aprovada. O reembolso entrou na fila de pagamento e será feito em até 60 dias."

	case KindReimbursementCompleted:
		return "Reembolso Finalizado - CITI",
			"O pagamento do seu reembolso foi realizado. O processo está concluído."
	}

	return "Atualização do Pedido - CITI", fmt.Sprintf("Sua solicitação para %s foi atualizada.", i.EventName)
}
