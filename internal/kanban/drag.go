package kanban

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseHovering
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseHovering:
		return "hovering"
	}
	return "idle"
}

// DragState é o gesto de arrastar como valor. As transições não têm efeito
// colateral: cada uma devolve o próximo estado.
type DragState struct {
	Phase     Phase
	DealID    string
	Origin    string
	Candidate string
}

// Start só sai de idle. Um único ponteiro arrasta por vez.
func (s DragState) Start(dealID, originStage string) DragState {
	if s.Phase != PhaseIdle {
		return s
	}
	return DragState{Phase: PhaseDragging, DealID: dealID, Origin: originStage}
}

// Over marca a etapa sob o ponteiro. O último Over vence.
func (s DragState) Over(stageID string) DragState {
	if s.Phase == PhaseIdle {
		return s
	}
	if stageID == "" {
		return s.Leave()
	}
	s.Phase = PhaseHovering
	s.Candidate = stageID
	return s
}

// Leave volta para a etapa de origem quando o ponteiro sai de todos os alvos.
func (s DragState) Leave() DragState {
	if s.Phase == PhaseIdle {
		return s
	}
	s.Phase = PhaseDragging
	s.Candidate = ""
	return s
}

func (s DragState) End() DragState {
	return DragState{}
}

// ActiveStage é a coluna destacada: o candidato, ou a origem sem candidato.
func (s DragState) ActiveStage() string {
	switch s.Phase {
	case PhaseHovering:
		return s.Candidate
	case PhaseDragging:
		return s.Origin
	}
	return ""
}

type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetColumn
	TargetCard
)

// Target é o que está sob o ponteiro: uma coluna, um card ou nada.
type Target struct {
	Kind TargetKind
	ID   string
}

var NoTarget = Target{}

func Column(stageID string) Target {
	return Target{Kind: TargetColumn, ID: stageID}
}

func Card(dealID string) Target {
	return Target{Kind: TargetCard, ID: dealID}
}
