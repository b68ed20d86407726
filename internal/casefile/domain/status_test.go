package domain

import (
	"errors"
	"testing"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		name string
		from TechnicalStatus
		to   TechnicalStatus
		want bool
	}{
		{"initial to document collection", StatusContatoInicial, StatusAguardandoDocumentos, true},
		{"initial straight to ready", StatusContatoInicial, StatusProntoParaSubmissao, true},
		{"initial to archive", StatusContatoInicial, StatusArquivado, true},
		{"initial cannot skip to protocol", StatusContatoInicial, StatusProtocolado, false},
		{"documents back and forth", StatusDocumentosEmConferencia, StatusAguardandoDocumentos, true},
		{"ready back to collection", StatusProntoParaSubmissao, StatusAguardandoDocumentos, true},
		{"legal review forward", StatusEmRevisaoJuridica, StatusProntoParaProtocolo, true},
		{"protocol to tracking", StatusProtocolado, StatusEmAcompanhamento, true},
		{"tracking to requirement", StatusEmAcompanhamento, StatusExigenciaOrgao, true},
		{"requirement resolves to tracking", StatusExigenciaOrgao, StatusEmAcompanhamento, true},
		{"approval to card appointment", StatusAprovado, StatusTIEAgendado, true},
		{"card pickup chain", StatusTIEAguardandoRetirada, StatusTIERetirado, true},
		{"card picked up closes approved", StatusTIERetirado, StatusEncerradoAprovado, true},
		{"appeal only from denial", StatusDenegado, StatusAguardandoRecurso, true},
		{"no appeal from approval", StatusAprovado, StatusAguardandoRecurso, false},
		{"appeal filed returns to tracking", StatusRecursoProtocolado, StatusEmAcompanhamento, true},
		{"denial cannot close directly", StatusDenegado, StatusEncerradoNegado, false},
		{"closed approved is terminal", StatusEncerradoAprovado, StatusEmAcompanhamento, false},
		{"archived is terminal", StatusArquivado, StatusContatoInicial, false},
		{"no self loop", StatusEmAcompanhamento, StatusEmAcompanhamento, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
				t.Fatalf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[TechnicalStatus]bool{
		StatusEncerradoAprovado: true,
		StatusEncerradoNegado:   true,
		StatusArquivado:         true,
	}

	for _, s := range AllStatuses {
		if s.IsTerminal() != terminal[s] {
			t.Errorf("%s terminal = %v, want %v", s, s.IsTerminal(), terminal[s])
		}
		if terminal[s] && len(s.NextStatuses()) != 0 {
			t.Errorf("%s is terminal but has outgoing edges %v", s, s.NextStatuses())
		}
	}
}

func TestClosureOnlyFromTrackingOrCardPickup(t *testing.T) {
	allowed := map[TechnicalStatus]bool{
		StatusEmAcompanhamento: true,
		StatusTIERetirado:      true,
	}

	for _, s := range AllStatuses {
		for _, closed := range []TechnicalStatus{StatusEncerradoAprovado, StatusEncerradoNegado} {
			if s.CanTransitionTo(closed) && !allowed[s] {
				t.Errorf("%s has an edge into %s", s, closed)
			}
		}
	}
}

func TestEveryEdgeTargetIsValid(t *testing.T) {
	for _, s := range AllStatuses {
		for _, next := range s.NextStatuses() {
			if !next.Valid() {
				t.Errorf("%s has edge to unknown status %s", s, next)
			}
		}
	}
}

func TestPastProtocol(t *testing.T) {
	if StatusProntoParaSubmissao.PastProtocol() {
		t.Error("PRONTO_PARA_SUBMISSAO should precede protocol")
	}
	for _, s := range []TechnicalStatus{StatusProtocolado, StatusEmAcompanhamento, StatusExigenciaOrgao, StatusTIERetirado} {
		if !s.PastProtocol() {
			t.Errorf("%s should be past protocol", s)
		}
	}
}

func TestTransitionToGuards(t *testing.T) {
	t.Run("suspended case refuses any move", func(t *testing.T) {
		cf := NewCaseFile("c1", "o1", "imigra", ServiceVisa)
		cf.IsSuspended = true
		if err := cf.TransitionTo(StatusAguardandoDocumentos); err != ErrCaseSuspended {
			t.Fatalf("expected ErrCaseSuspended, got %v", err)
		}
		if cf.TechnicalStatus != StatusContatoInicial {
			t.Fatalf("status changed to %s", cf.TechnicalStatus)
		}
	})

	t.Run("illegal edge yields transition error", func(t *testing.T) {
		cf := NewCaseFile("c1", "o1", "imigra", ServiceVisa)
		err := cf.TransitionTo(StatusProtocolado)
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransitionError, got %v", err)
		}
		if te.From != StatusContatoInicial || te.To != StatusProtocolado {
			t.Fatalf("unexpected detail: %+v", te)
		}
	})

	t.Run("legal edge applies", func(t *testing.T) {
		cf := NewCaseFile("c1", "o1", "imigra", ServiceVisa)
		if err := cf.TransitionTo(StatusAguardandoDocumentos); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.TechnicalStatus != StatusAguardandoDocumentos {
			t.Fatalf("status = %s", cf.TechnicalStatus)
		}
	})
}
