package workflow

import "partnerhub-backend/internal/models"

type StepRequest struct {
	Order      int             `json:"order" binding:"gte=1"`
	AIModel    string          `json:"ai_model" binding:"required,max=100"`
	InputType  models.Modality `json:"input_type" binding:"omitempty,oneof=text image audio video document"`
	OutputType models.Modality `json:"output_type" binding:"required,oneof=text image audio video document"`
	Prompt     string          `json:"prompt"`
}

type CreateWorkflowRequest struct {
	Name        string        `json:"name" binding:"required,max=200"`
	Description string        `json:"description"`
	Monetized   bool          `json:"monetized"`
	Price       int64         `json:"price" binding:"gte=0"`
	Steps       []StepRequest `json:"steps" binding:"dive"`
}

type ReplaceStepsRequest struct {
	Steps []StepRequest `json:"steps" binding:"required,dive"`
}

type UpdatePriceRequest struct {
	Price     *int64 `json:"price" binding:"required,gte=0"`
	Monetized *bool  `json:"monetized"`
}

type RunRequest struct {
	Input string `json:"input"`
}

type AdhocRunRequest struct {
	Steps []StepRequest `json:"steps" binding:"required,dive"`
	Input string        `json:"input"`
}

type EstimateRequest struct {
	Steps []StepRequest `json:"steps" binding:"required,dive"`
}

type EstimateResponse struct {
	MinimumCost int64 `json:"minimum_cost"`
}

func toModelSteps(steps []StepRequest) []models.WorkflowStep {
	out := make([]models.WorkflowStep, 0, len(steps))
	for _, s := range steps {
		inputType := s.InputType
		if inputType == "" {
			inputType = models.ModalityText
		}
		out = append(out, models.WorkflowStep{
			Order:      s.Order,
			AIModel:    s.AIModel,
			InputType:  inputType,
			OutputType: s.OutputType,
			Prompt:     s.Prompt,
		})
	}
	return out
}
