package domain

// TechnicalStatus is the case's position in the operational workflow. The
// enumeration branches (requirement and appeal detours, TIE pickup sub-flow),
// so legality of a move is a lookup in the adjacency table below rather than
// an ordering comparison.
type TechnicalStatus string

const (
	StatusContatoInicial          TechnicalStatus = "CONTATO_INICIAL"
	StatusAguardandoDocumentos    TechnicalStatus = "AGUARDANDO_DOCUMENTOS"
	StatusDocumentosEmConferencia TechnicalStatus = "DOCUMENTOS_EM_CONFERENCIA"
	StatusProntoParaSubmissao     TechnicalStatus = "PRONTO_PARA_SUBMISSAO"
	StatusEnviadoJuridico         TechnicalStatus = "ENVIADO_JURIDICO"
	StatusEmRevisaoJuridica       TechnicalStatus = "EM_REVISAO_JURIDICA"
	StatusProntoParaProtocolo     TechnicalStatus = "PRONTO_PARA_PROTOCOLO"
	StatusProtocolado             TechnicalStatus = "PROTOCOLADO"
	StatusEmAcompanhamento        TechnicalStatus = "EM_ACOMPANHAMENTO"
	StatusExigenciaOrgao          TechnicalStatus = "EXIGENCIA_ORGAO"
	StatusAprovado                TechnicalStatus = "APROVADO"
	StatusDenegado                TechnicalStatus = "DENEGADO"
	StatusAguardandoRecurso       TechnicalStatus = "AGUARDANDO_RECURSO"
	StatusRecursoProtocolado      TechnicalStatus = "RECURSO_PROTOCOLADO"
	StatusTIEAgendado             TechnicalStatus = "TIE_AGENDADO"
	StatusTIEAguardandoRetirada   TechnicalStatus = "TIE_AGUARDANDO_RETIRADA"
	StatusTIERetirado             TechnicalStatus = "TIE_RETIRADO"
	StatusEncerradoAprovado       TechnicalStatus = "ENCERRADO_APROVADO"
	StatusEncerradoNegado         TechnicalStatus = "ENCERRADO_NEGADO"
	StatusArquivado               TechnicalStatus = "ARQUIVADO"
)

// statusGraph is the legal transition table. A missing source key means the
// status is terminal.
var statusGraph = map[TechnicalStatus][]TechnicalStatus{
	StatusContatoInicial:          {StatusAguardandoDocumentos, StatusProntoParaSubmissao, StatusArquivado},
	StatusAguardandoDocumentos:    {StatusDocumentosEmConferencia, StatusProntoParaSubmissao, StatusArquivado},
	StatusDocumentosEmConferencia: {StatusAguardandoDocumentos, StatusProntoParaSubmissao},
	StatusProntoParaSubmissao:     {StatusEnviadoJuridico, StatusAguardandoDocumentos},
	StatusEnviadoJuridico:         {StatusEmRevisaoJuridica, StatusAguardandoDocumentos},
	StatusEmRevisaoJuridica:       {StatusProntoParaProtocolo, StatusAguardandoDocumentos},
	StatusProntoParaProtocolo:     {StatusProtocolado},
	StatusProtocolado:             {StatusEmAcompanhamento, StatusExigenciaOrgao},
	StatusEmAcompanhamento:        {StatusExigenciaOrgao, StatusAprovado, StatusDenegado, StatusEncerradoAprovado, StatusEncerradoNegado},
	StatusExigenciaOrgao:          {StatusEmAcompanhamento},
	StatusAprovado:                {StatusTIEAgendado, StatusEmAcompanhamento},
	StatusDenegado:                {StatusAguardandoRecurso, StatusEmAcompanhamento},
	StatusAguardandoRecurso:       {StatusRecursoProtocolado, StatusEmAcompanhamento},
	StatusRecursoProtocolado:      {StatusEmAcompanhamento},
	StatusTIEAgendado:             {StatusTIEAguardandoRetirada},
	StatusTIEAguardandoRetirada:   {StatusTIERetirado},
	StatusTIERetirado:             {StatusEncerradoAprovado},
	StatusEncerradoAprovado:       {},
	StatusEncerradoNegado:         {},
	StatusArquivado:               {},
}

// AllStatuses lists every technical status, useful for exhaustive checks.
var AllStatuses = []TechnicalStatus{
	StatusContatoInicial,
	StatusAguardandoDocumentos,
	StatusDocumentosEmConferencia,
	StatusProntoParaSubmissao,
	StatusEnviadoJuridico,
	StatusEmRevisaoJuridica,
	StatusProntoParaProtocolo,
	StatusProtocolado,
	StatusEmAcompanhamento,
	StatusExigenciaOrgao,
	StatusAprovado,
	StatusDenegado,
	StatusAguardandoRecurso,
	StatusRecursoProtocolado,
	StatusTIEAgendado,
	StatusTIEAguardandoRetirada,
	StatusTIERetirado,
	StatusEncerradoAprovado,
	StatusEncerradoNegado,
	StatusArquivado,
}

// Valid reports whether s is a known technical status.
func (s TechnicalStatus) Valid() bool {
	_, ok := statusGraph[s]
	return ok
}

// CanTransitionTo reports whether the edge s → target exists.
func (s TechnicalStatus) CanTransitionTo(target TechnicalStatus) bool {
	for _, next := range statusGraph[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal targets from s.
func (s TechnicalStatus) NextStatuses() []TechnicalStatus {
	next := statusGraph[s]
	out := make([]TechnicalStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether the case can never leave s.
func (s TechnicalStatus) IsTerminal() bool {
	return len(statusGraph[s]) == 0 && s.Valid()
}

// PastProtocol reports whether the case has already been filed with the
// authority. Requirements can only exist, and documents only be deferred
// post-protocol, from here on.
func (s TechnicalStatus) PastProtocol() bool {
	switch s {
	case StatusProtocolado, StatusEmAcompanhamento, StatusExigenciaOrgao,
		StatusAprovado, StatusDenegado, StatusAguardandoRecurso, StatusRecursoProtocolado,
		StatusTIEAgendado, StatusTIEAguardandoRetirada, StatusTIERetirado,
		StatusEncerradoAprovado, StatusEncerradoNegado:
		return true
	}
	return false
}

// Priority of a case; changing it is an unguarded field update, never a
// transition.
type Priority string

const (
	PriorityNormal   Priority = "NORMAL"
	PriorityUrgente  Priority = "URGENTE"
	PriorityEmEspera Priority = "EM_ESPERA"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityUrgente, PriorityEmEspera:
		return true
	}
	return false
}

// ServiceType determines which document checklist is released when the case
// enters document collection.
type ServiceType string

const (
	ServiceVisa          ServiceType = "VISA"
	ServiceWork          ServiceType = "WORK"
	ServiceReunification ServiceType = "REUNIFICATION"
	ServiceRenewal       ServiceType = "RENEWAL"
	ServiceNationality   ServiceType = "NATIONALITY"
	ServiceOther         ServiceType = "OTHER"
)

// DecisionResult is the authority's decision on the case.
type DecisionResult string

const (
	DecisionAprovado    DecisionResult = "APROVADO"
	DecisionNegado      DecisionResult = "NEGADO"
	DecisionEmAndamento DecisionResult = "EM_ANDAMENTO"
	DecisionNulo        DecisionResult = "NULO"
)

// ResourceStatus tracks the appeal sub-state opened by a DENEGADO decision.
// The appeal has no enforced sub-machine of its own; these are annotations.
type ResourceStatus string

const (
	ResourceNone        ResourceStatus = ""
	ResourcePendente    ResourceStatus = "PENDENTE"
	ResourceProtocolado ResourceStatus = "PROTOCOLADO"
	ResourceDecidido    ResourceStatus = "DECIDIDO"
)
