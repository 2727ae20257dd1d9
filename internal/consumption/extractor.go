package consumption

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"consumo_wpp_backend/platform/apperr"
	"consumo_wpp_backend/platform/logger"
)

const extractorSystemPrompt = `Você é um assistente especialista em extrair informações de consumo agrícola a partir de um texto.
Sua tarefa é preencher os campos do modelo de dados com base na mensagem do usuário e no histórico.

Siga estas regras estritamente:
1. Produtos: crie uma lista em 'produtos_mencionados'. Para cada produto (insumo químico, fertilizante), adicione um objeto com seu 'nome' e 'quantidade'.
   Ex: "Boxer 1, Convicto 13" -> produtos_mencionados: [{"nome": "Boxer", "quantidade": "1"}, {"nome": "Convicto", "quantidade": "13"}]
2. Máquinas: crie uma lista em 'maquinas_mencionadas'. Para cada máquina, adicione um objeto com seu 'nome' e, se disponíveis, 'horimetro_inicio' e 'horimetro_fim'.
3. Locais: extraia 'talhoes_mencionados' e/ou 'propriedades_mencionadas' como listas de strings.
   Ex: "no talhão A e B" -> talhoes_mencionados: ["A", "B"]
   Ex: "na fazenda C" -> propriedades_mencionadas: ["C"]
4. Tipo de rateio: determine o 'tipo_rateio' com base na seguinte prioridade:
   - Se a mensagem mencionar um ou mais talhões/glebas, o tipo é 'talhao'. Ignore qualquer menção à fazenda/propriedade no mesmo comando.
   - Se a mensagem mencionar APENAS uma ou mais fazendas/propriedades, o tipo é 'propriedade'.
5. Data: extraia a 'data_mencionada' como uma string EXATAMENTE como o usuário falou (ex: "ontem", "dia 20", "20/07", "24 de julho").
6. Safra: a safra pode ser mencionada apenas através de números (ex: 23/24, 2023/2024 ou 24).
7. Se uma lista não for mencionada, seu valor deve ser [].
   Se o usuário indicar que NÃO usou uma máquina (ex: "aplicação manual", "sem trator"), preencha 'maquinas_mencionadas' com [].
8. Se um campo de texto (ponto_estoque_mencionado, data_mencionada, safra_mencionada, tipo_rateio) não for mencionado, seu valor deve ser "".`

// Extractor performs the structured extraction stage with Gemini.
type Extractor struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewExtractor(client *genai.Client, model string, log *logger.Logger) *Extractor {
	return &Extractor{client: client, model: model, log: log}
}

// Extract fills a ReportedConsumption from the message and history.
// When the mandatory minimum is missing it returns the clarification
// question instead of a record.
func (e *Extractor) Extract(ctx context.Context, message string, history []Turn) (*ReportedConsumption, string, error) {
	prompt := buildExtractionPrompt(message, history)

	resp, err := e.client.Models.GenerateContent(ctx, e.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(extractorSystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    reportedConsumptionSchema(),
		},
	)
	if err != nil {
		return nil, "", apperr.Infra("falha ao extrair informações da mensagem", err)
	}

	var rec ReportedConsumption
	if err := json.Unmarshal([]byte(resp.Text()), &rec); err != nil {
		e.log.Error("extraction returned invalid json", "error", err.Error())
		return nil, "", apperr.Infra("falha ao extrair informações da mensagem", err)
	}

	if ok, question := CheckCompleteness(rec); !ok {
		return nil, question, nil
	}
	return &rec, "", nil
}

func buildExtractionPrompt(message string, history []Turn) string {
	var sb strings.Builder
	sb.WriteString("Analise o histórico e a nova mensagem para extrair as informações de consumo.\n\n")
	sb.WriteString("Histórico da Conversa:\n")
	sb.WriteString(FormatHistory(history))
	sb.WriteString("\n\nNova Mensagem do Usuário:\n")
	sb.WriteString(fmt.Sprintf("'%s'", message))
	return sb.String()
}

// FormatHistory renders turns as "role: content" lines for prompts.
func FormatHistory(history []Turn) string {
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, t.Role+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

func reportedConsumptionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"produtos_mencionados": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"nome":       {Type: genai.TypeString},
						"quantidade": {Type: genai.TypeString},
					},
					Required: []string{"nome", "quantidade"},
				},
			},
			"maquinas_mencionadas": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"nome":             {Type: genai.TypeString},
						"horimetro_inicio": {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
						"horimetro_fim":    {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
					},
					Required: []string{"nome"},
				},
			},
			"talhoes_mencionados":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"propriedades_mencionadas": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"tipo_rateio":              {Type: genai.TypeString},
			"ponto_estoque_mencionado": {Type: genai.TypeString},
			"data_mencionada":          {Type: genai.TypeString},
			"safra_mencionada":         {Type: genai.TypeString},
		},
		Required: []string{"produtos_mencionados", "tipo_rateio"},
	}
}
