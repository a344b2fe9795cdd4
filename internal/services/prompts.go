package services

import (
	"fmt"
	"strings"

	"github.com/intelmarket/gestor-pav/internal/llm"
	"github.com/intelmarket/gestor-pav/internal/models"
)

const (
	systemCliente  = "Você é um analista de mercado B2B. Sempre responda em JSON válido com dados precisos."
	systemMercado  = "Você é um analista de mercado. Sempre responda em JSON válido com dados do mercado brasileiro."
	systemProdutos = "Você é um especialista em produtos B2B. Sempre responda em JSON válido."
)

func clientePrompt(entity models.Entity) llm.Prompt {
	var b strings.Builder
	b.WriteString("Você é um analista de mercado B2B especializado em empresas brasileiras.\n\n")
	fmt.Fprintf(&b, "EMPRESA: %s\n", entity.Nome())
	if cnpj := entity.String("cnpj"); cnpj != "" {
		fmt.Fprintf(&b, "CNPJ: %s\n", cnpj)
	} else {
		b.WriteString("CNPJ: Desconhecido\n")
	}
	if cidade := entity.String("cidade"); cidade != "" {
		fmt.Fprintf(&b, "CIDADE/UF: %s, %s\n", cidade, entity.String("uf"))
	}
	b.WriteString(`
TAREFA: Enriquecer dados da empresa com informações REAIS e VERIFICÁVEIS.

CAMPOS:
1. cnpj: CNPJ REAL no formato XX.XXX.XXX/XXXX-XX com dígitos verificadores VÁLIDOS, null se não souber COM CERTEZA
2. email: Email corporativo, null se não souber
3. telefone: Telefone (XX) XXXXX-XXXX, null se não souber
4. site: Site oficial https://..., null se não souber
5. cidade: Cidade completa (obrigatório)
6. uf: Estado 2 letras maiúsculas (obrigatório)
7. porte: Micro | Pequena | Média | Grande
8. setor: Setor específico (ex: "Tecnologia - Software")
9. produtoPrincipal: Principal produto/serviço (max 200 chars)
10. segmentacaoB2bB2c: B2B | B2C | B2B2C

REGRAS:
- NUNCA invente emails, telefones ou sites
- Seja conservador e preciso

Retorne APENAS JSON válido com exatamente esses campos.`)

	return llm.Prompt{System: systemCliente, User: b.String(), Temperature: 0.8, MaxTokens: 1000}
}

func mercadoPrompt(entity models.Entity, cliente map[string]any) llm.Prompt {
	var b strings.Builder
	b.WriteString("Você é um analista de mercado especializado em inteligência competitiva do Brasil.\n\n")
	fmt.Fprintf(&b, "EMPRESA: %s\n", entity.Nome())
	fmt.Fprintf(&b, "PRODUTO PRINCIPAL: %s\n", text(cliente["produtoPrincipal"]))
	fmt.Fprintf(&b, "SETOR: %s\n", text(cliente["setor"]))
	fmt.Fprintf(&b, "CIDADE/UF: %s, %s\n", text(cliente["cidade"]), text(cliente["uf"]))
	b.WriteString(`
TAREFA: Identificar o MERCADO PRINCIPAL e fazer ANÁLISE COMPLETA com dados REAIS do Brasil.

CAMPOS:
nome, categoria (Indústria | Comércio | Serviços | Tecnologia), segmentacao (B2B | B2C | B2B2C),
tamanhoMercado, crescimentoAnual, tendencias, principaisPlayers,
sentimento (Positivo | Neutro | Negativo), scoreAtratividade (inteiro 0-100),
nivelSaturacao (Baixo | Médio | Alto), oportunidades (array de 3-5 strings),
riscos (array de 2-3 strings), recomendacaoEstrategica (max 500 chars).

Retorne APENAS JSON válido com esses campos.`)

	return llm.Prompt{System: systemMercado, User: b.String(), Temperature: 0.5, MaxTokens: 2500}
}

func produtosPrompt(entity models.Entity, cliente, mercado map[string]any) llm.Prompt {
	var b strings.Builder
	b.WriteString("Você é um especialista em análise de produtos B2B.\n\n")
	fmt.Fprintf(&b, "EMPRESA: %s\n", entity.Nome())
	fmt.Fprintf(&b, "PRODUTO PRINCIPAL: %s\n", text(cliente["produtoPrincipal"]))
	fmt.Fprintf(&b, "MERCADO: %s\n", text(mercado["nome"]))
	fmt.Fprintf(&b, "PORTE: %s\n", text(cliente["porte"]))
	if site := text(cliente["site"]); site != "" {
		fmt.Fprintf(&b, "SITE: %s\n", site)
	}
	b.WriteString(`
TAREFA: Identificar os 3 PRINCIPAIS produtos/serviços com DETALHES COMPLETOS.

Para cada produto: nome, descricao, categoria, funcionalidades (array), publicoAlvo,
diferenciais (array), tecnologias, precificacao (null se não souber).

REGRAS:
- EXATAMENTE 3 produtos, DIFERENTES entre si
- Descrições ESPECÍFICAS desta empresa

Retorne APENAS JSON válido: {"produtos": [ ... ]}`)

	return llm.Prompt{System: systemProdutos, User: b.String(), Temperature: 0.7, MaxTokens: 2500}
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
