package conversation

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"consumo_wpp_backend/internal/consumption"
	"consumo_wpp_backend/platform/apperr"
	"consumo_wpp_backend/platform/logger"
)

const intentSystemPrompt = `Você é um classificador de intenção para um sistema de registro de consumo de insumos agrícolas via WhatsApp.

Sua única tarefa é decidir se a mensagem do usuário é o registro de UM NOVO consumo de insumos (produtos aplicados, quantidades, talhões, propriedades, máquinas, datas, safras, pontos de estoque) ou a resposta a uma pergunta feita pelo sistema sobre um registro em andamento.

Considere VÁLIDA qualquer mensagem que:
- relate o uso ou aplicação de um produto agrícola;
- responda ou complemente uma pergunta anterior do assistente;
- corrija ou confirme dados de um registro em andamento.

As seguintes intenções são ESTRITAMENTE PROIBIDAS, mesmo quando falam de consumos:
- ALTERAÇÃO: editar ou corrigir um registro já salvo (ex: "mude o registro de ontem para 10 litros");
- EXCLUSÃO: apagar ou cancelar um registro já salvo (ex: "apague o último lançamento");
- RELATÓRIO: consultar, listar ou somar registros existentes (ex: "quais foram meus últimos gastos?");
- REGISTRO EM MASSA: registrar vários consumos independentes de uma vez (ex: uma planilha ou lista de lançamentos).

Se o HISTÓRICO DA CONVERSA estiver vazio, a mensagem só é válida se for plausivelmente o início de um novo registro de consumo. Saudações isoladas, pedidos de suporte, perguntas sobre outros assuntos e spam são INVÁLIDOS.

Responda em JSON com os campos 'intencao_valida' (booleano) e 'justificativa' (texto curto).`

// shortReplyTokenLimit marks follow-up messages that are almost
// certainly answers to a pending question ("5 litros", "o primeiro").
// Classifying those out of context produces false denials.
const shortReplyTokenLimit = 5

type intentVerdict struct {
	Valid         bool   `json:"intencao_valida"`
	Justification string `json:"justificativa"`
}

// IntentClassifier decides whether an inbound message belongs to the
// consumption registration flow before any extraction happens.
type IntentClassifier struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewIntentClassifier(client *genai.Client, model string, log *logger.Logger) *IntentClassifier {
	return &IntentClassifier{client: client, model: model, log: log}
}

// Classify returns whether the message should enter the pipeline.
// Short replies inside an ongoing conversation skip the model call.
func (c *IntentClassifier) Classify(ctx context.Context, message string, history []consumption.Turn) (bool, error) {
	if len(history) > 0 && len(strings.Fields(message)) <= shortReplyTokenLimit {
		return true, nil
	}

	prompt := "MENSAGEM DO USUÁRIO:\n" + message
	if len(history) > 0 {
		prompt += "\n\nHISTÓRICO DA CONVERSA:\n" + consumption.FormatHistory(history)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(intentSystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"intencao_valida": {Type: genai.TypeBoolean},
					"justificativa":   {Type: genai.TypeString},
				},
				Required: []string{"intencao_valida", "justificativa"},
			},
		})
	if err != nil {
		return false, apperr.Infra("falha ao classificar a intenção da mensagem", err)
	}

	var verdict intentVerdict
	if err := json.Unmarshal([]byte(resp.Text()), &verdict); err != nil {
		return false, apperr.Infra("resposta inválida do classificador de intenção", err)
	}

	if !verdict.Valid {
		c.log.Info("message denied by intent classifier", "justification", verdict.Justification)
	}
	return verdict.Valid, nil
}
