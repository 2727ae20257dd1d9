package preprocess

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"consumo_wpp_backend/platform/logger"
)

const visionPrompt = `Você recebe a foto de um registro de consumo de insumos agrícolas (anotação em papel, rótulo de produto, caderno de campo ou planilha).

Extraia as informações visíveis e descreva-as em UMA frase em português, como se o próprio usuário estivesse relatando o consumo. Inclua, quando visível: nome do produto, quantidade com unidade, local de aplicação (talhão ou propriedade), máquina utilizada e data.

Exemplo de saída: "Usei 15 litros de Tordon no talhão T-04 da Fazenda Santa Rita no dia 12/03."

Se a imagem não contiver nenhuma informação de consumo agrícola, responda com texto vazio.`

// GeminiDescriber converts photos of handwritten or printed records
// into a one-sentence report the extraction stage can process.
type GeminiDescriber struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewGeminiDescriber(client *genai.Client, model string, log *logger.Logger) *GeminiDescriber {
	return &GeminiDescriber{client: client, model: model, log: log}
}

func (d *GeminiDescriber) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: visionPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	return resp.Text(), nil
}
