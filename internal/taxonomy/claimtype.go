// Package taxonomy holds the closed vocabulary used when decoding structured
// extraction output: the TST claim-type table and the judgment enums.
//
// Claim types carry their numeric TST code packed into the value itself,
// "(CODE) Label". Labels are kept byte-for-byte as they appear in the source
// table, including the occasional trailing space; codes are the stable key.
package taxonomy

import (
	"fmt"
	"strconv"
	"strings"
)

// ClaimType is one entry of the claim-type table, packed as "(CODE) Label".
type ClaimType string

// ClaimTypes is the complete closed vocabulary. Codes are unique; labels are
// not (the TST table repeats a few labels under distinct codes).
var ClaimTypes = []ClaimType{
	"(13994) Aviso Prévio",
	"(13924) Integração em Verbas Rescisórias",
	"(13970) Verbas Rescisórias",
	"(14017) Anotação/Retenção da CTPS",
	"(13745) Anotação/Baixa/Retificação",
	"(14018) Assédio Moral",
	"(13787) Adicional de Horas Extras",
	"(13722) Reconhecimento de Relação de Emprego",
	"(13719) FGTS",
	"(13828) Trabalhador Avulso",
	"(14023) Desconfiguração de Justa Causa",
	"(13799) Adicional de Hora Extra",
	"(13875) Adicional de Insalubridade",
	"(13769) Horas Extras",
	"(13832) Abono",
	"(13184) Honorários na Justiça do Trabalho ",
	"(13716) CTPS",
	"(13984) Estabilidade Decorrente de Norma Coletiva",
	"(13877) Adicional de Periculosidade",
	"(13983) Estabilidade Acidentária",
	"(13962) Justa Causa/Falta Grave",
	"(13968) Rescisão Indireta",
	"(13772) Intervalo Intrajornada",
	"(13749) Depósito/Diferenças",
	"(13833) Adicional",
	"(13186) Horas Extras ",
	"(14000) Multa do Artigo  477 da CLT",
	"(13732) Acúmulo de Função",
	"(13385) Contratuais ",
	"(14033) Indenização por Dano Moral",
	"(13609) Reintegração de Empregado ",
	"(13995) Décimo Terceiro Salário Proporcional",
	"(13793) Divisor",
	"(13605) Plano de Saúde ",
	"(13913) Incorporação",
	"(12948) Anulação / Nulidade de Ato ou Negócio Jurídico ",
	"(13961) Indenização por Rescisão Antecipada do Contrato a Termo",
	"(13978) Termo de Rescisão Contratual",
	"(13864) Vale Transporte",
	"(14005) Proporcional",
	"(14036) Grupo Econômico",
	"(13692) isonomia/Diferença Salarial",
	"(13765) Adicional Noturno",
	"(13062) Anotação na CTPS ",
	"(11848) Alimentação",
	"(12975) Descontos Fiscais ",
	"(13976) Acordo - Comissão de Conciliação Prévia",
	"(13406) Dispensa / Rescisão do Contrato de Trabalho ",
	"(13810) Abono Pecuniário",
	"(13855) Quebra de Caixa",
	"(14031) Responsabilidade Civil em Outras Relações de Trabalho",
	"(13789) Cargo de Confiança",
	"(13998) Multa de 40% do FGTS",
	"(13796) Reflexos",
	"(13752) Cooperativa de Trabalho",
	"(13920) Aumento Compensatório Especial",
	"(14010) Indenização por Dano Moral",
	"(13949) Rescisão do Contrato de Trabalho",
	"(14039) Sucessão de Empregadores",
	"(13768) Controle de Jornada",
	"(13954) Despedida/Dispensa Imotivada",
	"(13525) Relação de Trabalho ",
	"(13648) Bancários",
	"(14040) Terceirização/Tomador de Serviços",
	"(14024) Doença Ocupacional",
	"(13988) Gestante",
	"(13861) Supressão/Redução de Horas Extras Habituais - Indenização",
	"(14120) Subempreitada",
	"(13831) Verbas Remuneratórias, Indenizatórias e Benefícios",
	"(14012) Acidente de Trabalho",
	"(14016) Acidente de Trabalho",
	"(13931) Reajuste Salarial",
	"(14043) Ente Público",
	"(13922) Diferenças por Desvio de Função",
	"(13790) Comissionista",
	"(13990) Dispensa Discriminatória",
	"(13671) Radialistas",
	"(13048) Acordo e Convenção Coletivos de Trabalho ",
	"(14014) Doença Ocupacional",
	"(8961) Antecipação de Tutela / Tutela Específica",
	"(13109) Conexão ",
	"(13781) Banco de Horas",
	"(10652) Competência da Justiça do Trabalho",
	"(13254) Permuta ",
	"(4435) Aplicabilidade",
	"(13724) Suspensão/Interrupção do Contrato de Trabalho",
	"(13843) Décimo Terceiro Salário",
	"(11870) Utilização de bens públicos",
	"(13764) Duração do Trabalho",
	"(13725) Unicidade Contratual",
	"(13013) Negociação Coletiva Trabalhista ",
	"(13852) PIS - Indenização",
	"(13709) Advertência/Suspensão",
	"(13999) Multa do Artigo 467 da CLT ",
	"(13940) Salário por Fora - Integração",
	"(13621) Contribuição Sindical",
	"(13814) Indenização/Dobra/Terço Constitucional",
	"(13996) Férias Proporcionais",
	"(13974) Nulidade",
	"(13667) Professores",
	"(13390) Dano Moral / Material ",
	"(12979) Devolução / Entrega de Objetos / Documentos ",
	"(14015) Pensão Vitalícia",
	"(13930) Promoção",
	"(14009) Indenização por Dano Material",
	"(13846) Gorjeta",
	"(13748) Correção Monetária",
	"(13939) Salário por Equiparação/Isonomia",
	"(13899) Outros Descontos Salariais",
	"(14034) Responsabilidade Solidária/Subsidiária",
	"(13805) Feriado em Dobro",
	"(13797) Supressão/Redução de Horas Extras/Indenização",
	"(13812) Férias Coletivas",
	"(14066) Mora",
	"(13929) Plano de Cargos e Salários",
	"(13715) Contrato por Prazo Determinado",
}

// byCode is built once at init so code lookup never scans the table.
var byCode = func() map[int]ClaimType {
	m := make(map[int]ClaimType, len(ClaimTypes))
	for _, ct := range ClaimTypes {
		code := ct.Code()
		if _, dup := m[code]; dup {
			panic(fmt.Sprintf("taxonomy: duplicate claim-type code %d", code))
		}
		m[code] = ct
	}
	return m
}()

// UnmappedCodeError reports a claim-type code outside the closed vocabulary.
// It is never coerced to a default claim type; a model that emits an unknown
// code fails the whole attempt.
type UnmappedCodeError struct {
	Code int
}

func (e *UnmappedCodeError) Error() string {
	return fmt.Sprintf("claim-type code not in taxonomy: %d", e.Code)
}

// FromCode resolves a numeric code to its ClaimType. Returns an
// *UnmappedCodeError when the code is not in the vocabulary.
func FromCode(code int) (ClaimType, error) {
	ct, ok := byCode[code]
	if !ok {
		return "", &UnmappedCodeError{Code: code}
	}
	return ct, nil
}

// Codes returns every valid code, in table order. Used to build the enum
// constraint handed to providers.
func Codes() []int {
	codes := make([]int, len(ClaimTypes))
	for i, ct := range ClaimTypes {
		codes[i] = ct.Code()
	}
	return codes
}

// Code extracts the numeric code from the packed "(CODE) Label" value.
func (c ClaimType) Code() int {
	s := string(c)
	end := strings.IndexByte(s, ')')
	if len(s) < 2 || s[0] != '(' || end < 0 {
		return 0
	}
	code, err := strconv.Atoi(s[1:end])
	if err != nil {
		return 0
	}
	return code
}

// Description returns the label without the code prefix.
func (c ClaimType) Description() string {
	s := string(c)
	end := strings.IndexByte(s, ')')
	if end < 0 || end+2 > len(s) {
		return s
	}
	return s[end+2:]
}
