package services

import "partnerhub-backend/internal/models"

// DefaultModalityCosts are the unit costs used when nothing else is configured.
func DefaultModalityCosts() map[models.Modality]int64 {
	return map[models.Modality]int64{
		models.ModalityText:     1,
		models.ModalityImage:    5,
		models.ModalityAudio:    3,
		models.ModalityVideo:    10,
		models.ModalityDocument: 2,
	}
}

// CostEstimator computes the price floor of a workflow from its steps.
type CostEstimator struct {
	costs map[models.Modality]int64
}

// NewCostEstimator copies costs. Negative costs become zero so adding a step can
// never lower the floor, and a missing text cost falls back to the default.
func NewCostEstimator(costs map[models.Modality]int64) *CostEstimator {
	table := make(map[models.Modality]int64, len(costs)+1)
	for m, c := range costs {
		if c < 0 {
			c = 0
		}
		table[m] = c
	}
	if _, ok := table[models.ModalityText]; !ok {
		table[models.ModalityText] = DefaultModalityCosts()[models.ModalityText]
	}
	return &CostEstimator{costs: table}
}

// UnitCost returns the cost of producing one output of modality m.
// Unknown modalities cost the same as text.
func (e *CostEstimator) UnitCost(m models.Modality) int64 {
	if c, ok := e.costs[m]; ok {
		return c
	}
	return e.costs[models.ModalityText]
}

// MinimumCost sums the unit cost of each step's output modality.
func (e *CostEstimator) MinimumCost(steps []models.WorkflowStep) int64 {
	var total int64
	for _, step := range steps {
		total += e.UnitCost(step.OutputType)
	}
	return total
}

// ClampPrice raises requested to the floor of steps when it is below it.
func (e *CostEstimator) ClampPrice(requested int64, steps []models.WorkflowStep) int64 {
	if floor := e.MinimumCost(steps); requested < floor {
		return floor
	}
	return requested
}
