package taxonomy

// DecisionType classifies the judgment as a whole.
type DecisionType string

const (
	DecisionSentencaMerito    DecisionType = "sentenca_merito"
	DecisionHomologacaoAcordo DecisionType = "homologacao_acordo"
	DecisionExtincaoSemMerito DecisionType = "extincao_sem_julgamento_merito"
)

// DecisionTypes lists the valid decision types in schema order.
var DecisionTypes = []DecisionType{
	DecisionSentencaMerito,
	DecisionHomologacaoAcordo,
	DecisionExtincaoSemMerito,
}

// DecisionOutcome is the adjudication of a single claim.
type DecisionOutcome string

const (
	OutcomeProcedente             DecisionOutcome = "procedente"
	OutcomeParcialmenteProcedente DecisionOutcome = "parcialmente_procedente"
	OutcomeImprocedente           DecisionOutcome = "improcedente"
	OutcomeAcordo                 DecisionOutcome = "acordo"
	OutcomePrejudicado            DecisionOutcome = "prejudicado"
)

// DecisionOutcomes lists the valid outcomes in schema order.
var DecisionOutcomes = []DecisionOutcome{
	OutcomeProcedente,
	OutcomeParcialmenteProcedente,
	OutcomeImprocedente,
	OutcomeAcordo,
	OutcomePrejudicado,
}

// Gratuidade records whether fee-waiver status was granted.
type Gratuidade string

const (
	GratuidadeConcedida    Gratuidade = "concedida"
	GratuidadeNaoConcedida Gratuidade = "nao_concedida"
)

// Gratuidades lists the valid gratuidade values in schema order.
var Gratuidades = []Gratuidade{GratuidadeConcedida, GratuidadeNaoConcedida}

// Reflexos records whether a claim triggers derivative effects on other
// compensation items.
type Reflexos string

const (
	ReflexosSim Reflexos = "sim"
	ReflexosNao Reflexos = "nao"
)

// ReflexosValues lists the valid reflexos values in schema order.
var ReflexosValues = []Reflexos{ReflexosSim, ReflexosNao}
